package contracts

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_SomeNone(t *testing.T) {
	v, ok := Some(0).Get()
	assert.True(t, ok, "zero is a present value")
	assert.Equal(t, 0.0, v)

	_, ok = None().Get()
	assert.False(t, ok)

	assert.False(t, Some(math.NaN()).IsSet())
	assert.False(t, Some(math.Inf(1)).IsSet())
	assert.False(t, Some(math.Inf(-1)).IsSet())
}

func TestOptional_FromPtr(t *testing.T) {
	x := 1.5
	assert.Equal(t, Some(1.5), FromPtr(&x))
	assert.Equal(t, None(), FromPtr(nil))
}

func TestOptional_String(t *testing.T) {
	assert.Equal(t, "n/a", None().String())
	assert.Equal(t, "12.5", Some(12.5).String())
}

func TestOptional_JSON(t *testing.T) {
	type payload struct {
		A Optional `json:"a"`
		B Optional `json:"b"`
	}

	data, err := json.Marshal(payload{A: Some(-12.25)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": -12.25, "b": null}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"a": 0, "b": null}`), &decoded))
	assert.Equal(t, Some(0), decoded.A)
	assert.Equal(t, None(), decoded.B)

	require.Error(t, json.Unmarshal([]byte(`{"a": "x"}`), &decoded))
}

func TestPriceSeries(t *testing.T) {
	s := PriceSeries{1, 2, 3, 4}

	v, ok := s.FromEnd(1)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	v, ok = s.FromEnd(4)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	_, ok = s.FromEnd(5)
	assert.False(t, ok)
	_, ok = s.FromEnd(0)
	assert.False(t, ok)

	assert.Equal(t, PriceSeries{3, 4}, s.Tail(2))
	assert.Equal(t, s, s.Tail(10))
}
