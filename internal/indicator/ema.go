package indicator

import "math"

// EMA считает экспоненциальную скользящую среднюю со сглаживанием 2.
// Первое значение — SMA первых period точек, первые period-1 позиций
// заполнены NaN (прогрев). len(result) == len(data).
func EMA(data []float64, period int) []float64 {
	if period <= 0 || len(data) < period {
		out := make([]float64, len(data))
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	out := make([]float64, 0, len(data))
	for i := 0; i < period-1; i++ {
		out = append(out, math.NaN())
	}

	sum := 0.0
	for _, v := range data[:period] {
		sum += v
	}
	prev := sum / float64(period)
	out = append(out, prev)

	alpha := 2.0 / (float64(period) + 1)
	for _, v := range data[period:] {
		prev = v*alpha + prev*(1-alpha)
		out = append(out, prev)
	}

	return out
}

// LogPctChange — логарифмическое процентное изменение с лагом lag:
// ln(x[i]/x[i-lag]) * 100. Первые lag позиций — NaN.
func LogPctChange(data []float64, lag int) []float64 {
	out := make([]float64, len(data))
	for i := range out {
		if i < lag || data[i-lag] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = math.Log(data[i]/data[i-lag]) * 100
	}
	return out
}

// Last — последний элемент либо NaN для пустого среза.
func Last(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return data[len(data)-1]
}
