package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPrice is returned by Parse for input that cannot be read as a
// non-negative amount. Callers are expected to re-prompt the user.
var ErrInvalidPrice = errors.New("invalid price")

// Format renders an amount of minor currency units as "whole.fraction CUR"
// with a zero-padded two digit fraction.
func Format(cents int64, currency string) string {
	if cents < 0 {
		cents = 0
	}
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}

// Parse reads user input like "14.99" or "14" into minor units. The
// fractional part is truncated to two digits and right-padded with zeros.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}

	whole := s
	frac := ""
	if i := strings.Index(s, "."); i >= 0 {
		whole = s[:i]
		frac = s[i+1:]
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, ErrInvalidPrice
	}

	var f int64
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return 0, ErrInvalidPrice
		}
	}

	return w*100 + f, nil
}
