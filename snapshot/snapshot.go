package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/topogo/codec"
	"github.com/hupe1980/topogo/homology"
	"github.com/hupe1980/topogo/rips"
)

// Analysis is the persisted form of one analysis pass.
type Analysis struct {
	// Epsilon is the connectivity threshold the pass ran with.
	Epsilon float32

	// PointCount is the size of the analyzed point set.
	PointCount int

	// Pairs is the persistence diagram (finite pairs in filtration order,
	// then infinite pairs).
	Pairs []homology.Pair

	// ComponentMap assigns each point its canonical component id.
	ComponentMap []uint32

	// Significance is the per-point topological significance scalar.
	Significance []float32

	// Edges is the extracted (possibly capped) 1-skeleton.
	Edges []rips.Edge

	// EdgesAttempted and EdgesCapacity reproduce the extraction result, so a
	// loaded snapshot still reports whether the edge set was truncated.
	EdgesAttempted int
	EdgesCapacity  int
}

// Truncated reports whether the persisted edge set was capped at extraction
// time.
func (a *Analysis) Truncated() bool {
	return a.EdgesAttempted > a.EdgesCapacity
}

// Options configure snapshot writing.
type Options struct {
	// Compression selects the payload compression. Default: CompressionZSTD.
	Compression Compression

	// Codec encodes the metadata section. Default: codec.Default.
	Codec codec.Codec
}

// metadata is the codec-encoded section of the file.
type metadata struct {
	Epsilon        float32 `json:"epsilon"`
	PointCount     int     `json:"point_count"`
	EdgesAttempted int     `json:"edges_attempted"`
	EdgesCapacity  int     `json:"edges_capacity"`
}

// Write persists a to w.
//
// Layout: magic, version, compression, codec name, metadata section, one
// compressed payload block (pairs, component map, significance, edges), and
// a trailing CRC32 over everything before it.
func Write(w io.Writer, a *Analysis, optFns ...func(*Options)) error {
	opts := Options{
		Compression: CompressionZSTD,
		Codec:       codec.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if !opts.Compression.valid() {
		return fmt.Errorf("snapshot: unknown compression type %d", opts.Compression)
	}

	cw := newChecksumWriter(w)

	if err := binary.Write(cw, binary.LittleEndian, uint32(Magic)); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.LittleEndian, uint32(Version)); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.LittleEndian, uint8(opts.Compression)); err != nil {
		return err
	}

	name := []byte(opts.Codec.Name())
	if err := binary.Write(cw, binary.LittleEndian, uint8(len(name))); err != nil {
		return err
	}
	if _, err := cw.Write(name); err != nil {
		return err
	}

	meta, err := opts.Codec.Marshal(metadata{
		Epsilon:        a.Epsilon,
		PointCount:     a.PointCount,
		EdgesAttempted: a.EdgesAttempted,
		EdgesCapacity:  a.EdgesCapacity,
	})
	if err != nil {
		return fmt.Errorf("snapshot: encode metadata: %w", err)
	}
	if err := binary.Write(cw, binary.LittleEndian, uint32(len(meta))); err != nil {
		return err
	}
	if _, err := cw.Write(meta); err != nil {
		return err
	}

	block, err := compressBlock(encodePayload(a), opts.Compression)
	if err != nil {
		return err
	}
	if err := binary.Write(cw, binary.LittleEndian, uint32(len(block))); err != nil {
		return err
	}
	if _, err := cw.Write(block); err != nil {
		return err
	}

	return binary.Write(w, binary.LittleEndian, cw.Sum())
}

// Read parses a snapshot previously produced by Write.
//
// It verifies magic, version and checksum before decoding anything, so a
// corrupted or foreign file fails loudly instead of yielding garbage.
func Read(r io.Reader) (*Analysis, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, ErrTruncatedFile
	}

	body, tail := raw[:len(raw)-4], raw[len(raw)-4:]
	want := binary.LittleEndian.Uint32(tail)
	if got := checksum(body); got != want {
		return nil, &ChecksumMismatchError{Expected: want, Actual: got}
	}

	rd := bytes.NewReader(body)

	var magic, version uint32
	if err := binary.Read(rd, binary.LittleEndian, &magic); err != nil {
		return nil, ErrTruncatedFile
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	if err := binary.Read(rd, binary.LittleEndian, &version); err != nil {
		return nil, ErrTruncatedFile
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	var comp uint8
	if err := binary.Read(rd, binary.LittleEndian, &comp); err != nil {
		return nil, ErrTruncatedFile
	}
	compression := Compression(comp)
	if !compression.valid() {
		return nil, fmt.Errorf("snapshot: unknown compression type %d", comp)
	}

	var nameLen uint8
	if err := binary.Read(rd, binary.LittleEndian, &nameLen); err != nil {
		return nil, ErrTruncatedFile
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(rd, name); err != nil {
		return nil, ErrTruncatedFile
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	var metaLen uint32
	if err := binary.Read(rd, binary.LittleEndian, &metaLen); err != nil {
		return nil, ErrTruncatedFile
	}
	metaBytes := make([]byte, metaLen)
	if _, err := io.ReadFull(rd, metaBytes); err != nil {
		return nil, ErrTruncatedFile
	}
	var meta metadata
	if err := c.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("snapshot: decode metadata: %w", err)
	}

	var blockLen uint32
	if err := binary.Read(rd, binary.LittleEndian, &blockLen); err != nil {
		return nil, ErrTruncatedFile
	}
	block := make([]byte, blockLen)
	if _, err := io.ReadFull(rd, block); err != nil {
		return nil, ErrTruncatedFile
	}
	payload, err := decompressBlock(block, compression)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Epsilon:        meta.Epsilon,
		PointCount:     meta.PointCount,
		EdgesAttempted: meta.EdgesAttempted,
		EdgesCapacity:  meta.EdgesCapacity,
	}
	if err := decodePayload(payload, a); err != nil {
		return nil, err
	}

	return a, nil
}

func checksum(data []byte) uint32 {
	cw := newChecksumWriter(io.Discard)
	_, _ = cw.Write(data)
	return cw.Sum()
}

// encodePayload serializes the array sections little-endian:
// [pairCount u32][birth f32, death f32]... [mapCount u32][u32]...
// [sigCount u32][f32]... [edgeCount u32][u u32, v u32]...
func encodePayload(a *Analysis) []byte {
	size := 4 + 8*len(a.Pairs) + 4 + 4*len(a.ComponentMap) + 4 + 4*len(a.Significance) + 4 + 8*len(a.Edges)
	buf := make([]byte, 0, size)

	put32 := func(v uint32) {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}

	put32(uint32(len(a.Pairs)))
	for _, p := range a.Pairs {
		put32(math.Float32bits(p.Birth))
		put32(math.Float32bits(p.Death))
	}

	put32(uint32(len(a.ComponentMap)))
	for _, v := range a.ComponentMap {
		put32(v)
	}

	put32(uint32(len(a.Significance)))
	for _, v := range a.Significance {
		put32(math.Float32bits(v))
	}

	put32(uint32(len(a.Edges)))
	for _, e := range a.Edges {
		put32(e.U)
		put32(e.V)
	}

	return buf
}

func decodePayload(payload []byte, a *Analysis) error {
	off := 0
	take32 := func() (uint32, error) {
		if off+4 > len(payload) {
			return 0, ErrTruncatedFile
		}
		v := binary.LittleEndian.Uint32(payload[off : off+4])
		off += 4
		return v, nil
	}
	// Counts come from the file; check each against the remaining bytes
	// before allocating, so a crafted count cannot demand a huge slice.
	takeCount := func(elemSize int) (uint32, error) {
		n, err := take32()
		if err != nil {
			return 0, err
		}
		if int64(n)*int64(elemSize) > int64(len(payload)-off) {
			return 0, ErrTruncatedFile
		}
		return n, nil
	}

	n, err := takeCount(8)
	if err != nil {
		return err
	}
	a.Pairs = make([]homology.Pair, n)
	for i := range a.Pairs {
		b, err := take32()
		if err != nil {
			return err
		}
		d, err := take32()
		if err != nil {
			return err
		}
		a.Pairs[i] = homology.Pair{Birth: math.Float32frombits(b), Death: math.Float32frombits(d)}
	}

	n, err = takeCount(4)
	if err != nil {
		return err
	}
	a.ComponentMap = make([]uint32, n)
	for i := range a.ComponentMap {
		if a.ComponentMap[i], err = take32(); err != nil {
			return err
		}
	}

	n, err = takeCount(4)
	if err != nil {
		return err
	}
	a.Significance = make([]float32, n)
	for i := range a.Significance {
		v, err := take32()
		if err != nil {
			return err
		}
		a.Significance[i] = math.Float32frombits(v)
	}

	n, err = takeCount(8)
	if err != nil {
		return err
	}
	a.Edges = make([]rips.Edge, n)
	for i := range a.Edges {
		if a.Edges[i].U, err = take32(); err != nil {
			return err
		}
		if a.Edges[i].V, err = take32(); err != nil {
			return err
		}
	}

	return nil
}
