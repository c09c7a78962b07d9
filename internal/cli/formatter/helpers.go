package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money renders an amount with thousands separators and two decimals,
// e.g. 1,234,567.89.
func Money(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	fixed := r.StringFixed(2)
	frac := fixed[strings.IndexByte(fixed, '.'):]
	return sign + humanize.Comma(r.IntPart()) + frac
}

// MoneyStyled renders a negative or zero residual dimmed and red.
func MoneyStyled(d decimal.Decimal) string {
	if d.IsNegative() {
		return StyleRed.Render(Money(d))
	}
	if d.IsZero() {
		return StyleDim.Render(Money(d))
	}
	return Money(d)
}

// TruncID shortens a UUID to its first 8 characters.
func TruncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// HumanDate formats a date as "Mar 10, 2026".
func HumanDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// OptDate renders a nullable date, or a dim placeholder.
func OptDate(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return HumanDate(*t)
}

// Ago renders a relative timestamp like "3 hours ago".
func Ago(t time.Time) string {
	return humanize.Time(t)
}

func OptString(s *string) string {
	if s == nil || *s == "" {
		return Dim("--")
	}
	return *s
}

func kv(label, value string) string {
	return fmt.Sprintf("%s  %s\n", StyleDim.Render(fmt.Sprintf("%-12s", strings.ToUpper(label))), value)
}
