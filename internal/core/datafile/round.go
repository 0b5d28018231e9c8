package datafile

import "github.com/shopspring/decimal"

// roundValue rounds every number in value to places decimal places,
// descending into slices, maps and decorated records.
func roundValue(value any, places int32) any {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v).Round(places).InexactFloat64()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = roundValue(item, places)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = roundValue(item, places)
		}
		return out
	case Decorated:
		return Decorated{
			Measurement: roundValue(v.Measurement, places),
			Meta:        roundValue(v.Meta, places).(map[string]any),
		}
	default:
		return value
	}
}
