package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is held as int64 paise everywhere inside the system so that balance
// arithmetic is exact. Decimal rupee strings exist only at the API and QR
// boundaries; these helpers convert between the two.

var ErrBadAmount = errors.New("malformed amount")

// ParsePaise converts a decimal rupee string ("150", "150.5", "150.00")
// into paise. At most two fraction digits are accepted and the value must
// be positive.
func ParsePaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrBadAmount
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		return 0, ErrBadAmount
	}

	rupees, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrBadAmount
	}

	var paise int64
	if hasFrac {
		if frac == "" || len(frac) > 2 {
			return 0, ErrBadAmount
		}
		if len(frac) == 1 {
			frac += "0"
		}
		// ParseInt would accept a sign here; only bare digits are valid
		for i := 0; i < len(frac); i++ {
			if frac[i] < '0' || frac[i] > '9' {
				return 0, ErrBadAmount
			}
		}
		paise, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrBadAmount
		}
	}

	if rupees > (math.MaxInt64-paise)/100 {
		return 0, ErrBadAmount
	}
	total := rupees*100 + paise
	if total <= 0 {
		return 0, ErrBadAmount
	}
	return total, nil
}

// FormatPaise renders paise as a decimal rupee string, e.g. -20000 -> "-200.00".
func FormatPaise(p int64) string {
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s%d.%02d", sign, p/100, p%100)
}
