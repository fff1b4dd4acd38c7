// Package money implements fixed-point currency amounts in kuruş
// (minor units of the Turkish lira). All arithmetic stays in int64
// minor units; two-decimal strings exist only at the presentation
// boundary.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a currency amount in kuruş. 100 Amount == 1 TRY.
type Amount int64

// ErrInvalidAmount indicates an unparseable amount literal.
var ErrInvalidAmount = errors.New("money: invalid amount")

// FromLira builds an Amount from whole lira and kuruş parts.
func FromLira(lira, kurus int64) Amount {
	return Amount(lira*100 + kurus)
}

// Parse converts a decimal literal like "1234.56", "1234,5" or "1234"
// into an Amount. At most two fractional digits are accepted.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	s = strings.ReplaceAll(s, ",", ".")
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	// Signs and other non-digit bytes must not survive past the
	// leading minus; ParseInt alone would accept "1.-5".
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	lira, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	var kurus int64
	switch len(frac) {
	case 0:
	case 1:
		kurus, err = strconv.ParseInt(frac, 10, 64)
		kurus *= 10
	case 2:
		kurus, err = strconv.ParseInt(frac, 10, 64)
	default:
		return 0, fmt.Errorf("%w: %q has more than two fractional digits", ErrInvalidAmount, s)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	a := Amount(lira*100 + kurus)
	if neg {
		a = -a
	}
	return a, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MustParse parses a literal and panics on failure. Intended for
// constants in tests and seeds.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return a + b }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return a - b }

// MulCount scales the amount by a unit count.
func (a Amount) MulCount(n int) Amount { return a * Amount(n) }

// Percent returns pct percent of the amount, rounded half away from
// zero at the kuruş level.
func (a Amount) Percent(pct int) Amount {
	v := int64(a) * int64(pct)
	if v >= 0 {
		return Amount((v + 50) / 100)
	}
	return Amount((v - 50) / 100)
}

// IsZero reports whether the amount equals zero.
func (a Amount) IsZero() bool { return a == 0 }

// Kurus returns the raw minor-unit value.
func (a Amount) Kurus() int64 { return int64(a) }

// String renders the amount with exactly two decimals, e.g. "1234.56".
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a two-decimal string. Renderer
// contracts depend on this shape.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts either a quoted decimal literal or a bare
// JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
