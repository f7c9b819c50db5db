package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topogo/codec"
	"github.com/hupe1980/topogo/homology"
	"github.com/hupe1980/topogo/rips"
)

func sampleAnalysis() *Analysis {
	return &Analysis{
		Epsilon:    1.5,
		PointCount: 4,
		Pairs: []homology.Pair{
			{Birth: 0, Death: 1},
			{Birth: 0, Death: 1},
			{Birth: 0, Death: homology.Infinity},
			{Birth: 0, Death: homology.Infinity},
		},
		ComponentMap:   []uint32{0, 0, 2, 2},
		Significance:   []float32{homology.Infinity, 1, homology.Infinity, 1},
		Edges:          []rips.Edge{{U: 0, V: 1}, {U: 2, V: 3}},
		EdgesAttempted: 2,
		EdgesCapacity:  100,
	}
}

func TestRoundtrip(t *testing.T) {
	compressions := map[string]Compression{
		"None": CompressionNone,
		"LZ4":  CompressionLZ4,
		"ZSTD": CompressionZSTD,
	}

	for name, c := range compressions {
		t.Run(name, func(t *testing.T) {
			a := sampleAnalysis()

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, a, func(o *Options) {
				o.Compression = c
			}))

			got, err := Read(&buf)
			require.NoError(t, err)

			assert.Equal(t, a, got)
			assert.False(t, got.Truncated())
		})
	}
}

func TestRoundtripCodecs(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, ok := codec.ByName(name)
			require.True(t, ok)

			a := sampleAnalysis()

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, a, func(o *Options) {
				o.Codec = c
			}))

			got, err := Read(&buf)
			require.NoError(t, err)
			assert.Equal(t, a, got)
		})
	}
}

func TestRoundtripEmpty(t *testing.T) {
	a := &Analysis{
		Pairs:        []homology.Pair{},
		ComponentMap: []uint32{},
		Significance: []float32{},
		Edges:        []rips.Edge{},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, a))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestTruncatedFlagSurvives(t *testing.T) {
	a := sampleAnalysis()
	a.EdgesAttempted = 500
	a.EdgesCapacity = 100
	require.True(t, a.Truncated())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, a))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.True(t, got.Truncated())
}

func TestReadInvalidMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleAnalysis()))

	raw := buf.Bytes()
	binary.LittleEndian.PutUint32(raw[0:4], 0xDEADBEEF)
	// Re-sign so the magic check, not the checksum, fires.
	binary.LittleEndian.PutUint32(raw[len(raw)-4:], checksum(raw[:len(raw)-4]))

	_, err := Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReadUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleAnalysis()))

	raw := buf.Bytes()
	binary.LittleEndian.PutUint32(raw[4:8], 0x00990000)
	binary.LittleEndian.PutUint32(raw[len(raw)-4:], checksum(raw[:len(raw)-4]))

	_, err := Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestReadCorrupted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleAnalysis()))

	raw := buf.Bytes()
	raw[len(raw)/2] ^= 0xFF

	_, err := Read(bytes.NewReader(raw))
	var mismatch *ChecksumMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleAnalysis()))
	raw := buf.Bytes()

	_, err := Read(bytes.NewReader(raw[:2]))
	assert.ErrorIs(t, err, ErrTruncatedFile)

	// Cutting anywhere in the body breaks the trailing checksum.
	_, err = Read(bytes.NewReader(raw[:len(raw)-10]))
	assert.Error(t, err)
}

func TestDecodePayloadRejectsOversizedCounts(t *testing.T) {
	// A count field claiming far more elements than the payload holds must
	// fail before any allocation sized from it.
	sections := []struct {
		name   string
		prefix []byte // valid empty sections preceding the bad count
	}{
		{"Pairs", nil},
		{"ComponentMap", u32s(0)},
		{"Significance", u32s(0, 0)},
		{"Edges", u32s(0, 0, 0)},
	}

	for _, tt := range sections {
		t.Run(tt.name, func(t *testing.T) {
			payload := append(append([]byte{}, tt.prefix...), u32s(0xFFFFFFF0)...)

			var a Analysis
			err := decodePayload(payload, &a)
			assert.ErrorIs(t, err, ErrTruncatedFile)
		})
	}
}

func u32s(vs ...uint32) []byte {
	var out []byte
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return out
}

func TestWriteRejectsUnknownCompression(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sampleAnalysis(), func(o *Options) {
		o.Compression = Compression(42)
	})
	assert.Error(t, err)
}

func TestCompressBlockRoundtrip(t *testing.T) {
	// Repetitive data compresses, random-ish short data gets stored.
	compressible := bytes.Repeat([]byte("topology "), 200)
	tiny := []byte{1, 2, 3}

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for i, data := range [][]byte{compressible, tiny, nil} {
			block, err := compressBlock(data, c)
			require.NoError(t, err)

			got, err := decompressBlock(block, c)
			require.NoError(t, err)
			if len(data) == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, data, got, "compression %d case %d", c, i)
			}
		}
	}

	block, err := compressBlock(compressible, CompressionZSTD)
	require.NoError(t, err)
	assert.Less(t, len(block), len(compressible), "repetitive payload must shrink")
}

func TestMagicSpellsTOPO(t *testing.T) {
	m := uint32(Magic)
	assert.Equal(t, "TOPO", fmt.Sprintf("%c%c%c%c",
		byte(m>>24), byte(m>>16), byte(m>>8), byte(m)))
}
