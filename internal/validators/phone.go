package validators

import "strings"

// NormalizePhone strips formatting characters. It returns "" when the
// result is not 8 to 15 digits with an optional leading '+'.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return ""
		}
	}

	out := b.String()
	digits := strings.TrimPrefix(out, "+")
	if len(digits) < 8 || len(digits) > 15 {
		return ""
	}
	return out
}
