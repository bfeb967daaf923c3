package indicator

import (
	"fmt"

	"forex-signal-engine/internal/domain"
)

// Display colors carried through to the clients. Not used by any logic here.
const (
	colorBullish = "#00C897"
	colorBearish = "#FF4757"
	colorNeutral = "#888888"
	colorWarm    = "#FFA500"
)

// DefaultTimeframe is the candle interval the indicator batches are computed on.
const DefaultTimeframe = "15M"

// ClassifyRSI buckets an RSI value. Thresholds: >70 overbought, <30 oversold.
func ClassifyRSI(rsi float64) (status, color string) {
	switch {
	case rsi > 70:
		return "Overbought", colorBearish
	case rsi < 30:
		return "Oversold", colorBullish
	default:
		return "Neutral", colorNeutral
	}
}

// ClassifyMACD buckets a MACD value. Thresholds: >0.5 buy, <-0.5 sell.
func ClassifyMACD(macd float64) (status, color string) {
	switch {
	case macd > 0.5:
		return "Buy", colorBullish
	case macd < -0.5:
		return "Sell", colorBearish
	default:
		return "Neutral", colorNeutral
	}
}

// ClassifyATR buckets an ATR value relative to the current price:
// volatility above 2% of price is high, below 0.5% low.
func ClassifyATR(atr, price float64) (status, color string) {
	volatilityPercent := (atr / price) * 100
	switch {
	case volatilityPercent > 2:
		return "High Volatility", colorBearish
	case volatilityPercent < 0.5:
		return "Low Volatility", colorNeutral
	default:
		return "Normal Volatility", colorWarm
	}
}

// RSIReading formats and classifies one RSI value for a pair.
func RSIReading(pair string, rsi float64) domain.IndicatorReading {
	status, color := ClassifyRSI(rsi)
	return domain.IndicatorReading{
		Pair:          pair,
		IndicatorName: domain.IndicatorRSI,
		Value:         fmt.Sprintf("%.1f", rsi),
		Status:        status,
		Color:         color,
		Timeframe:     DefaultTimeframe,
	}
}

// MACDReading formats and classifies one MACD value for a pair. Positive values
// carry an explicit leading "+".
func MACDReading(pair string, macd float64) domain.IndicatorReading {
	status, color := ClassifyMACD(macd)
	value := fmt.Sprintf("%.2f", macd)
	if macd > 0 {
		value = "+" + value
	}
	return domain.IndicatorReading{
		Pair:          pair,
		IndicatorName: domain.IndicatorMACD,
		Value:         value,
		Status:        status,
		Color:         color,
		Timeframe:     DefaultTimeframe,
	}
}

// ATRReading formats and classifies one ATR value for a pair. It needs the
// pair's current price; callers skip ATR when no price is known.
func ATRReading(pair string, atr, price float64) domain.IndicatorReading {
	status, color := ClassifyATR(atr, price)
	return domain.IndicatorReading{
		Pair:          pair,
		IndicatorName: domain.IndicatorATR,
		Value:         fmt.Sprintf("%.4f", atr),
		Status:        status,
		Color:         color,
		Timeframe:     DefaultTimeframe,
	}
}

// BuildReadings assembles readings for every pair present in the fetched
// indicator batches. Each family is independent: a pair missing from one batch
// still yields readings from the others. ATR is skipped for pairs with no
// known current price.
func BuildReadings(pairs []string, rsi, macd, atr map[string]float64, prices map[string]float64) []domain.IndicatorReading {
	var readings []domain.IndicatorReading
	for _, pair := range pairs {
		if v, ok := rsi[pair]; ok {
			readings = append(readings, RSIReading(pair, v))
		}
		if v, ok := macd[pair]; ok {
			readings = append(readings, MACDReading(pair, v))
		}
		if v, ok := atr[pair]; ok {
			if price, havePrice := prices[pair]; havePrice && price != 0 {
				readings = append(readings, ATRReading(pair, v, price))
			}
		}
	}
	return readings
}
