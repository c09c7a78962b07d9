package cli

import (
	"strings"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func parseAmount(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	if err != nil {
		return decimal.Zero, app.InvalidInput("%s: %q is not a number", name, raw)
	}
	return d, nil
}

// optAmount returns nil when the flag was not set.
func optAmount(cmd *cobra.Command, flag, raw string) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed(flag) {
		return nil, nil
	}
	d, err := parseAmount(flag, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func amountOrZero(cmd *cobra.Command, flag, raw string) (decimal.Decimal, error) {
	d, err := optAmount(cmd, flag, raw)
	if err != nil || d == nil {
		return decimal.Zero, err
	}
	return *d, nil
}

func optDate(name, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return nil, app.InvalidInput("%s: %q is not a date (YYYY-MM-DD)", name, raw)
	}
	return &t, nil
}
