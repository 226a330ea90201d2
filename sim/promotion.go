package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// neutralWeight is the selection weight of a gender that receives no bias.
const neutralWeight = 50.0

// PromotionProbability returns the probability that a single vacancy is
// filled by a member of the favored gender, given the favored gender's share
// of the pool one level below and the promotion bias in percentage points.
//
// bias is clamped to [0, 100]. The favored weight is 50+bias against a neutral
// weight of 50, each scaled by the pool share and renormalized, so the result
// rises strictly with bias for any mixed pool. With bias 0 it is favoredShare.
func PromotionProbability(favoredShare float64, bias int) float64 {
	favoredShare = math.Min(math.Max(favoredShare, 0), 1)
	wf := favoredShare * (neutralWeight + float64(clampBias(bias)))
	wo := (1 - favoredShare) * neutralWeight
	if wf+wo == 0 {
		return 0.5
	}
	return wf / (wf + wo)
}

// drawCount returns how many of n independent draws succeed with probability p.
// The binomial variate is drawn from rng, so the caller's stream stays the
// only source of randomness.
func drawCount(rng *rand.Rand, n int, p float64) int {
	switch {
	case n <= 0 || p <= 0:
		return 0
	case p >= 1:
		return n
	}
	b := distuv.Binomial{N: float64(n), P: p, Src: rng}
	return min(max(int(math.Round(b.Rand())), 0), n)
}

// attritionCount converts capacity*rate/100 into a whole number of departures.
func attritionCount(rng *rand.Rand, capacity, rate int, mode RoundingMode) int {
	exact := float64(capacity) * float64(rate) / 100
	whole := math.Floor(exact)
	frac := exact - whole
	n := int(whole)
	switch mode {
	case RoundingNearest:
		if frac >= 0.5 {
			n++
		}
	default:
		if frac > 0 && rng.Float64() < frac {
			n++
		}
	}
	return min(n, capacity)
}

// attrit removes n employees from s uniformly at random without regard to
// gender and returns how many men and women left.
func attrit(rng *rand.Rand, s *LevelState, n int) (men, women int) {
	for i := 0; i < n && s.Total() > 0; i++ {
		if rng.Intn(s.Total()) < s.Men {
			s.Men--
			men++
		} else {
			s.Women--
			women++
		}
	}
	return men, women
}
