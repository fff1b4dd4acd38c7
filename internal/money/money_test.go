package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := map[string]Amount{
		"1234.56": 123456,
		"1234,56": 123456,
		"1234.5":  123450,
		"1234":    123400,
		"0.01":    1,
		"-12.34":  -1234,
		".50":     50,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
}

func TestParseRejectsBadLiterals(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "12.3.4", "1.-5", "--1", "+1.50", "1.+5", "1.5a"} {
		_, err := Parse(in)
		require.Error(t, err, in)
	}
}

func TestString(t *testing.T) {
	require.Equal(t, "1234.56", Amount(123456).String())
	require.Equal(t, "0.05", Amount(5).String())
	require.Equal(t, "-3.40", Amount(-340).String())
}

func TestPercentRoundsHalfAwayFromZero(t *testing.T) {
	// 18% of 10.50 = 1.89 exactly
	require.Equal(t, Amount(189), Amount(1050).Percent(18))
	// 50% of 0.01 = 0.005 -> rounds to 0.01
	require.Equal(t, Amount(1), Amount(1).Percent(50))
	// 50% of -0.01 -> -0.01
	require.Equal(t, Amount(-1), Amount(-1).Percent(50))
	// 20% of 100.00 = 20.00
	require.Equal(t, Amount(2000), Amount(10000).Percent(20))
}

func TestMulCount(t *testing.T) {
	require.Equal(t, Amount(4500), Amount(1500).MulCount(3))
}

func TestJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(Amount(123456))
	require.NoError(t, err)
	require.Equal(t, `"1234.56"`, string(raw))

	var back Amount
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, Amount(123456), back)

	require.NoError(t, json.Unmarshal([]byte(`199.99`), &back))
	require.Equal(t, Amount(19999), back)
}
