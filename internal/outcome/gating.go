package outcome

import "github.com/ItzYourBread/cashmash-sub000/internal/rng"

// House-edge shaping parameters. Business numbers, not structure: tweak with
// care, the long-run payout ratio depends on them.
const (
	// TargetRTP bounds the long-run fraction of wagers returned to players.
	TargetRTP = 0.92

	gateBaseMin = 0.40
	gateBaseMax = 0.55
	gateCeiling = 0.85

	comebackBoost = 0.25

	pityTier1Balance = 100
	pityTier2Balance = 500
	pityTier3Balance = 2000

	pityTier1Boost = 0.20
	pityTier2Boost = 0.10
	pityTier3Boost = 0.05

	comebackSpinsMin = 3
	comebackSpinsMax = 5
)

// winThreshold computes the dynamic pass probability for the gating draw: a
// random base, raised by the low-balance pity tiers and by comeback mode,
// clamped to the ceiling.
func winThreshold(src rng.Source, balance float64, comeback bool) float64 {
	threshold := gateBaseMin + src.Float64()*(gateBaseMax-gateBaseMin)

	switch {
	case balance < pityTier1Balance:
		threshold += pityTier1Boost
	case balance < pityTier2Balance:
		threshold += pityTier2Boost
	case balance < pityTier3Balance:
		threshold += pityTier3Boost
	}

	if comeback {
		threshold += comebackBoost
	}

	if threshold > gateCeiling {
		threshold = gateCeiling
	}
	return threshold
}

// gateAllowsWin draws once against the threshold. A draw above the threshold
// zeroes any computed win regardless of the grid.
func gateAllowsWin(src rng.Source, threshold float64) bool {
	return src.Float64() <= threshold
}

// applyClawback shrinks an allowed win to a random fraction of itself with
// probability 1 - TargetRTP.
func applyClawback(src rng.Source, win float64) float64 {
	if src.Float64() < 1-TargetRTP {
		return win * src.Float64()
	}
	return win
}

// rollComebackSpins picks how many spins comeback mode stays armed.
func rollComebackSpins(src rng.Source) int {
	return comebackSpinsMin + src.Intn(comebackSpinsMax-comebackSpinsMin+1)
}
