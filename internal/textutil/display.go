package textutil

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var frenchTitle = cases.Title(language.French)

// DisplayName turns an identifier such as "salle_de_bain" into "Salle De Bain".
func DisplayName(id string) string {
	id = strings.TrimSpace(strings.ReplaceAll(id, "_", " "))
	if id == "" {
		return ""
	}
	return frenchTitle.String(id)
}

// GroupThousands formats n with a space between each group of three digits,
// the way French documents print amounts: 12500 becomes "12 500".
func GroupThousands(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
