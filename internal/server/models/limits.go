package models

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxAmountDigits is the number of significant digits a workbook cell keeps
// exactly. Longer amounts would be rounded on disk.
const MaxAmountDigits = 15

// MaxTextLength is the longest text a workbook cell holds, in characters.
const MaxTextLength = 32767

func checkAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return invalidField("amount", "must not be negative")
	}
	if significantDigits(d) > MaxAmountDigits {
		return invalidField("amount", "must have at most 15 significant digits")
	}
	return nil
}

// significantDigits counts digits from the first non-zero one; String
// already drops trailing fractional zeros.
func significantDigits(d decimal.Decimal) int {
	s := strings.Replace(d.Abs().String(), ".", "", 1)
	return len(strings.TrimLeft(s, "0"))
}

// checkText rejects values a cell cannot store verbatim.
func checkText(field, s string) error {
	if !utf8.ValidString(s) {
		return invalidField(field, "is not valid UTF-8")
	}
	if utf8.RuneCountInString(s) > MaxTextLength {
		return invalidField(field, "exceeds 32767 characters")
	}
	for _, r := range s {
		if (r < 0x20 && r != '\t' && r != '\n' && r != '\r') || r == 0xFFFE || r == 0xFFFF {
			return invalidField(field, "contains a control character")
		}
	}
	return nil
}

type textField struct {
	name  string
	value *string
}

func checkTexts(fields ...textField) error {
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := checkText(f.name, *f.value); err != nil {
			return err
		}
	}
	return nil
}
