package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal_UnmarshalJSON(t *testing.T) {
	cases := map[string]string{
		`{"price": 100}`:      "100.00",
		`{"price": 100.5}`:    "100.50",
		`{"price": "150.50"}`: "150.50",
		`{"price": 1e2}`:      "100.00",
		`{"price": 1.5E1}`:    "15.00",
	}
	for in, want := range cases {
		var body struct {
			Price Decimal `json:"price"`
		}
		require.NoError(t, json.Unmarshal([]byte(in), &body), in)
		p, err := body.Price.Price()
		require.NoError(t, err, in)
		assert.Equal(t, want, p.String(), in)
	}
}

func TestDecimal_RejectsMalformed(t *testing.T) {
	for _, in := range []string{`{"price": "1e2"}`, `{"price": "1.-5"}`, `{"price": 1.234e0}`, `{"price": -1e2}`} {
		var body struct {
			Price Decimal `json:"price"`
		}
		require.NoError(t, json.Unmarshal([]byte(in), &body), in)
		_, err := body.Price.Price()
		assert.Error(t, err, in)
	}
}
