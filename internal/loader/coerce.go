package loader

import (
	"math"
	"strconv"
	"strings"
)

// Coerce converts cell text into the narrowest native value:
//
//	""              -> nil
//	"true", "FALSE" -> bool
//	"42", "-7"      -> int64
//	"3.14", "1e3"   -> float64
//	anything else   -> the string itself
//
// Numbers with leading zeros ("007", "01234") stay strings since they are
// usually identifiers. NaN, infinities and hex floats are not numbers.
func Coerce(s string) any {
	if s == "" {
		return nil
	}
	if strings.EqualFold(s, "true") {
		return true
	}
	if strings.EqualFold(s, "false") {
		return false
	}
	if !numeric(s) {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}

// numeric is a cheap pre-check that rejects text ParseFloat would accept
// but we do not want as numbers.
func numeric(s string) bool {
	digits := strings.TrimLeft(s, "+-")
	if digits == "" || strings.ContainsAny(digits, "xX_") {
		return false
	}
	c := digits[0]
	if (c < '0' || c > '9') && c != '.' {
		return false
	}
	if len(digits) > 1 && c == '0' && digits[1] != '.' && digits[1] != 'e' && digits[1] != 'E' {
		return false
	}
	return true
}
