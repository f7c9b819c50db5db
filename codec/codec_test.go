package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsAgree(t *testing.T) {
	type meta struct {
		Epsilon float32 `json:"epsilon"`
		Count   int     `json:"count"`
	}

	in := meta{Epsilon: 1.5, Count: 42}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		data, err := c.Marshal(in)
		require.NoError(t, err)

		var out meta
		require.NoError(t, c.Unmarshal(data, &out))
		assert.Equal(t, in, out)
	}

	// Cross-codec: files written with one JSON codec load with the other.
	data, err := (GoJSON{}).Marshal(in)
	require.NoError(t, err)
	var out meta
	require.NoError(t, (JSON{}).Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
