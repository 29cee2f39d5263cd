package cron

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatRupiah renders whole rupiah with dot thousands separators, e.g. Rp 1.250.000.
func formatRupiah(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	digits := d.StringFixed(0)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "Rp " + b.String()
}
