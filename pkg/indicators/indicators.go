// Package indicators provides moving averages over close prices.
package indicators

import (
	"fmt"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
)

// CalculateSMA calculates the Simple Moving Average for the given period.
// The result has len(closes)-period+1 values aligned to the tail of closes.
func CalculateSMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 {
		return nil, fmt.Errorf("invalid period %d", period)
	}
	if len(closes) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(closes))
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	inputChan := helper.SliceToChan(decimalsToFloat64(closes))
	smaFloat := helper.ChanToSlice(sma.Compute(inputChan))

	return float64ToDecimals(smaFloat), nil
}

// CalculateEMA calculates the Exponential Moving Average for the given period.
func CalculateEMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 {
		return nil, fmt.Errorf("invalid period %d", period)
	}
	if len(closes) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(closes))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	inputChan := helper.SliceToChan(decimalsToFloat64(closes))
	emaFloat := helper.ChanToSlice(ema.Compute(inputChan))

	return float64ToDecimals(emaFloat), nil
}

func decimalsToFloat64(decimals []decimal.Decimal) []float64 {
	floats := make([]float64, len(decimals))
	for i, d := range decimals {
		floats[i] = d.InexactFloat64()
	}
	return floats
}

func float64ToDecimals(floats []float64) []decimal.Decimal {
	decimals := make([]decimal.Decimal, len(floats))
	for i, f := range floats {
		decimals[i] = decimal.NewFromFloat(f)
	}
	return decimals
}
