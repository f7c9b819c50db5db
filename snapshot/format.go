package snapshot

import "errors"

const (
	// Magic identifies topogo snapshot files (ASCII "TOPO").
	Magic = 0x544F504F
	// Version is the current file format version (v1.0.0).
	Version = 0x00010000
)

var (
	// ErrInvalidMagic is returned when the file does not start with Magic.
	ErrInvalidMagic = errors.New("snapshot: invalid magic number")

	// ErrInvalidVersion is returned for unsupported format versions.
	ErrInvalidVersion = errors.New("snapshot: unsupported version")

	// ErrUnknownCodec is returned when the header names a codec this build
	// does not provide.
	ErrUnknownCodec = errors.New("snapshot: unknown metadata codec")

	// ErrTruncatedFile is returned when the file ends before its declared
	// sections.
	ErrTruncatedFile = errors.New("snapshot: truncated file")
)
