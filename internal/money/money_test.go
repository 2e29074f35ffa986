package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivIntRoundsHalfUp(t *testing.T) {
	tests := []struct {
		total string
		n     int64
		want  string
	}{
		{"100.00", 3, "33.33"},
		{"200.00", 3, "66.67"},
		{"0.05", 2, "0.03"},
		{"10.00", 4, "2.50"},
		{"0.00", 5, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			got := MustParse(tt.total).DivInt(tt.n)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPercent(t *testing.T) {
	total := MustParse("200.00")
	assert.Equal(t, "120.00", total.Percent(decimal.NewFromInt(60)).String())
	assert.Equal(t, "80.00", total.Percent(decimal.NewFromInt(40)).String())
	assert.Equal(t, "3.33", MustParse("10.00").Percent(decimal.RequireFromString("33.33")).String())
	assert.Equal(t, "0.01", MustParse("0.01").Percent(decimal.NewFromInt(50)).String())
}

func TestParseRejectsExtraPrecision(t *testing.T) {
	_, err := Parse("10.005")
	assert.Error(t, err)

	m, err := Parse("10.50")
	require.NoError(t, err)
	assert.Equal(t, "10.50", m.String())

	m, err = Parse("7")
	require.NoError(t, err)
	assert.Equal(t, "7.00", m.String())

	_, err = Parse("abc")
	assert.Error(t, err)
}

func TestArithmetic(t *testing.T) {
	a := MustParse("33.34")
	b := MustParse("33.33")

	assert.Equal(t, "100.00", Sum(a, b, b).String())
	assert.Equal(t, "0.01", a.Sub(b).String())
	assert.Equal(t, "-0.01", b.Sub(a).String())
	assert.True(t, b.Sub(a).IsNegative())
	assert.Equal(t, "0.01", b.Sub(a).Abs().String())
	assert.Equal(t, "45.00", MustParse("15.00").MulInt(3).String())
	assert.Equal(t, int64(3334), a.Minor())
	assert.True(t, FromMinor(1).Equal(MinorUnit))
	assert.Equal(t, 1, a.Cmp(b))
	assert.True(t, Zero.IsZero())
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{MustParse("12.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.50"}`, string(data))

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"19.99","b":20}`), &in))
	assert.Equal(t, "19.99", in.A.String())
	assert.Equal(t, "20.00", in.B.String())

	assert.Error(t, json.Unmarshal([]byte(`{"a":"1.999"}`), &in))
}

func TestScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan([]byte("42.10")))
	assert.Equal(t, "42.10", m.String())

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "42.10", v)
}
