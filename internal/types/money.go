// README: Common money value object used across modules.
package types

import (
	"strconv"
	"strings"
)

// Money is an amount in whole currency units. The lot bills in a single
// currency, so Currency is informational.
type Money struct {
	Amount   int64
	Currency string
}

// String renders the amount as "$25.000" (dot thousands separator, no decimals).
func (m Money) String() string {
	return "$" + groupThousands(m.Amount)
}

func groupThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
