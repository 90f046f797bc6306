package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	c := Add(Add(nil, towelBasic()), towelPremium())

	data, err := Encode(c)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, c[0].ProductID, decoded[0].ProductID)
	assert.True(t, c[0].Price.Equal(decoded[0].Price))
	assert.Equal(t, TotalItems(c), TotalItems(decoded))
}

func TestDecode_Empty(t *testing.T) {
	c, err := Decode(nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDecode_Corrupted(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated json", `[{"id":1,"price":"49.99","quan`},
		{"not a cart", `{"id":1}`},
		{"zero quantity", `[{"id":1,"price":"49.99","quantity":0}]`},
		{"negative quantity", `[{"id":1,"price":"49.99","quantity":-2}]`},
		{"duplicate product", `[{"id":1,"price":"49.99","quantity":1},{"id":1,"price":"49.99","quantity":2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, ErrCorrupted)
		})
	}
}
