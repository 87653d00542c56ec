package core

// convert.go holds the numeric coercion used by the classifier and the
// pgtype/decimal conversions used by the shopping list.
//
// Enrichment responses are loosely typed: the same field can arrive as
// "12", 12, "", or be missing entirely. Everything is kept as text
// (FlexString) and coerced at the point of use:
//   - ToNumber behaves like a permissive numeric read: blank → 0, junk → 0
//   - ParseIntPrefix reads the leading integer ("12abc" → 12, "abc" → 0)

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// FlexString accepts a JSON string, number, bool or null and keeps its text.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	// numbers and booleans keep their literal text
	*f = FlexString(data)
	return nil
}

// String returns the raw text.
func (f FlexString) String() string { return string(f) }

// Number returns the value coerced with ToNumber.
func (f FlexString) Number() float64 { return ToNumber(string(f)) }

// Int returns the value coerced with ParseIntPrefix.
func (f FlexString) Int() int { return ParseIntPrefix(string(f)) }

// ToNumber converts s to a float64. Surrounding whitespace is ignored and an
// empty string is 0. Anything that is not a plain decimal number is also 0, so
// a garbage quantity never satisfies a stock or limit comparison.
func ToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "true":
		return 1
	case "false":
		return 0
	}
	if !numericRegex.MatchString(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// ParseIntPrefix reads an optionally signed base-10 integer from the start of
// s after leading whitespace. Trailing characters are ignored; no digits → 0.
func ParseIntPrefix(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// overflow: saturate rather than wrap
		if neg {
			return math.MinInt
		}
		return math.MaxInt
	}
	if neg {
		n = -n
	}
	return int(n)
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgNumeric converts a string to pgtype.Numeric.
// Handles currency symbols and thousands separators.
func ToPgNumeric(s string) pgtype.Numeric {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Numeric{Valid: false}
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if !numericRegex.MatchString(s) {
		return pgtype.Numeric{Valid: false}
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// NumericToDecimal converts a pgtype.Numeric to a decimal. NULL, NaN and
// infinities become zero.
func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// DecimalToNumeric converts a decimal to pgtype.Numeric.
func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}
