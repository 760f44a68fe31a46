// Package core provides amount parsing and formatting utilities.
//
// Amounts are whole units of the smallest denomination. The UI only accepts
// digits, so parsing rejects signs, separators and decimals outright.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a digits-only string to an amount.
//
// Examples:
//
//	ParseAmount("500")  -> 500, nil
//	ParseAmount("")     -> 0, ErrMissingAmount
//	ParseAmount("5.00") -> 0, ErrInvalidAmount
//	ParseAmount("-1")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMissingAmount
	}
	if !IsDigits(s) {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// IsDigits reports whether s contains only ASCII digits. The empty string
// passes, matching the input filter that lets a field be cleared.
func IsDigits(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FormatAmount renders an amount with the rupee sign and Indian digit grouping
// (e.g. ₹1,25,000).
func FormatAmount(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		for i, r := range head {
			if i > 0 && (len(head)-i)%2 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(r)
		}
		b.WriteByte(',')
		b.WriteString(tail)
	} else {
		b.WriteString(digits)
	}
	if neg {
		return "-₹" + b.String()
	}
	return "₹" + b.String()
}
