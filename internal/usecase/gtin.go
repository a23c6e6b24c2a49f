package usecase

import (
	"strings"

	"github.com/shelfwatch/backend/internal/domain"
)

// NormalizeGTIN canonicalizes a raw barcode string to the 14-digit
// GTIN form used as the catalog join key. Separators are stripped, a
// 12-digit result is treated as UPC-A and padded to EAN-13, and only
// 8/13/14 digit codes are accepted. The last digit is validated as a
// mod-10 checksum over the body with alternating 3/1 weights starting
// from the digit adjacent to the check digit.
func NormalizeGTIN(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	code := digits.String()

	// UPC-A is EAN-13 with an implied leading zero.
	if len(code) == 12 {
		code = "0" + code
	}

	switch len(code) {
	case 8, 13, 14:
	default:
		return "", domain.ErrGTINLength
	}

	if checkDigit(code[:len(code)-1]) != int(code[len(code)-1]-'0') {
		return "", domain.ErrGTINCheckDigit
	}

	return strings.Repeat("0", 14-len(code)) + code, nil
}

// checkDigit computes the GTIN mod-10 check digit for a code body,
// weighting digits 3,1,3,... from the rightmost digit of the body.
func checkDigit(body string) int {
	sum := 0
	weight := 3
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight = 4 - weight // alternate 3 and 1
	}
	return (10 - sum%10) % 10
}
