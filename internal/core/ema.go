package core

// emaAlpha is the exponential-moving-average smoothing factor applied to
// cpu_percent, memory_percent, and the two network rates (spec.md §4.2,
// GLOSSARY "EMA").
const emaAlpha = 0.3

// ema advances an exponential moving average by one sample. When seeded is
// false the raw sample bypasses smoothing (spec: "First emitted value
// bypasses smoothing").
func ema(prev float64, seeded bool, x float64) float64 {
	if !seeded {
		return x
	}
	return emaAlpha*x + (1-emaAlpha)*prev
}
