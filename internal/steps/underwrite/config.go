// internal/steps/underwrite/config.go
package underwrite

import "github.com/shopspring/decimal"

type Config struct {
	// AnnualRatePercent is the flat lending rate applied to every request.
	AnnualRatePercent decimal.Decimal
	// QuoteTenures are the tenure choices offered when quoting EMI options.
	QuoteTenures []int
}

func DefaultConfig() *Config {
	return &Config{
		AnnualRatePercent: decimal.NewFromInt(12),
		QuoteTenures:      []int{12, 24, 36, 48, 60},
	}
}
