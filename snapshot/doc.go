// Package snapshot persists the result of one analysis pass as a compact,
// self-describing binary file.
//
// A snapshot records the persistence diagram, the component map, the
// extracted edge set and the pass parameters. Files carry a magic number,
// format version, the metadata codec name and a trailing CRC32, so corrupted
// or foreign files are rejected on load. The payload section can optionally
// be block-compressed with LZ4 (fast) or zstd (better ratio).
package snapshot
