package report

import (
	"fmt"

	"parkdesk/internal/types"
)

// FormatDuration renders minutes as "45 min" or "2h 5min".
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	if h == 0 {
		return fmt.Sprintf("%d min", m)
	}
	return fmt.Sprintf("%dh %dmin", h, m)
}

// FormatCurrency renders whole pesos with a dot thousands separator: "$25.000".
func FormatCurrency(amount int64) string {
	return types.Money{Amount: amount}.String()
}
