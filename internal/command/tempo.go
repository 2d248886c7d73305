package command

import (
	"math"
	"strings"

	"avsub/internal/options"
)

// TempoChain factors ratio into n steps of size step followed by one
// remainder step, where n = floor(log_step(ratio)). Each full step stays
// within atempo's accepted per-filter range; the remainder is always
// emitted, even when it is 1.
func TempoChain(ratio, step float64) []float64 {
	if ratio <= 0 || step <= 0 || step == 1 {
		return []float64{ratio}
	}
	n := int(math.Floor(math.Log2(ratio) / math.Log2(step)))
	if n < 0 {
		n = 0
	}
	chain := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		chain = append(chain, step)
	}
	return append(chain, ratio/math.Pow(step, float64(n)))
}

// AudioTempoFilter returns the comma-joined atempo chain for a speed keyword.
func AudioTempoFilter(ratio options.SpeedRatio) string {
	chain := TempoChain(ratio.Value(), ratio.Step())
	parts := make([]string, len(chain))
	for i, factor := range chain {
		parts[i] = "atempo=" + formatFloat(factor)
	}
	return strings.Join(parts, ",")
}

// VideoSpeedFilter rescales presentation timestamps by the reciprocal of the
// ratio.
func VideoSpeedFilter(ratio options.SpeedRatio) string {
	return "setpts=PTS/" + formatFloat(ratio.Value())
}
