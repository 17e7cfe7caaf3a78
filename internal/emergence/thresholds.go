package emergence

import (
	"rolecraft/internal/config"
	"rolecraft/internal/store"
)

// Fixed cut-offs that are not exposed in rolecraft.yaml.
const (
	highThreshold = 0.8

	villainLowTrust   = 0.3
	villainLowRespect = 0.4

	allyFondTrust     = 0.5
	allyDebt          = 0.6
	allyDebtRespect   = 0.5
	allyBlockFear     = 0.5
	allyBlockResent   = 0.5
	allyPenaltyFear   = 0.3
	allyPenaltyResent = 0.3

	villainPenaltyRespect   = 0.5
	villainPenaltyAffection = 0.4
)

// Thresholds holds the configurable gates for emergence detection.
type Thresholds struct {
	VillainFear       float64
	VillainResentment float64
	AllyTrust         float64
	AllyRespect       float64
	AllyAffection     float64
	MinConfidence     float64
}

func DefaultThresholds() Thresholds {
	return ThresholdsFromConfig(config.DefaultEmergenceConfig())
}

func ThresholdsFromConfig(c config.EmergenceConfig) Thresholds {
	return Thresholds{
		VillainFear:       c.VillainFear,
		VillainResentment: c.VillainResentment,
		AllyTrust:         c.AllyTrust,
		AllyRespect:       c.AllyRespect,
		AllyAffection:     c.AllyAffection,
		MinConfidence:     c.MinConfidence,
	}
}

// allyPath is one of the independent ways an NPC can qualify as an ally.
type allyPath struct {
	phrase string
	first  gate
	second gate
}

type gate struct {
	dim       store.Dimension
	threshold float64
}

func (g gate) holds(d store.Dimensions) bool {
	return d.Get(g.dim) >= g.threshold
}

func (g gate) score(d store.Dimensions) float64 {
	return aboveThreshold(d.Get(g.dim), g.threshold)
}

func (g gate) factor(d store.Dimensions) store.ContributingFactor {
	return store.ContributingFactor{Dimension: g.dim, Value: d.Get(g.dim), Threshold: g.threshold}
}

func (t Thresholds) allyPaths() []allyPath {
	return []allyPath{
		{
			phrase: "trusts and respects",
			first:  gate{store.DimTrust, t.AllyTrust},
			second: gate{store.DimRespect, t.AllyRespect},
		},
		{
			phrase: "is fond of",
			first:  gate{store.DimAffection, t.AllyAffection},
			second: gate{store.DimTrust, allyFondTrust},
		},
		{
			phrase: "feels indebted to",
			first:  gate{store.DimDebt, allyDebt},
			second: gate{store.DimRespect, allyDebtRespect},
		},
	}
}

func (t Thresholds) qualifyingAllyPaths(d store.Dimensions) []allyPath {
	var paths []allyPath
	for _, p := range t.allyPaths() {
		if p.first.holds(d) && p.second.holds(d) {
			paths = append(paths, p)
		}
	}
	return paths
}

func allyBlocked(d store.Dimensions) bool {
	return d.Fear >= allyBlockFear || d.Resentment >= allyBlockResent
}

// aboveThreshold maps value onto [0, 1]: 0 at the threshold, 1 at 1.0.
func aboveThreshold(value, threshold float64) float64 {
	if threshold >= 1 {
		if value >= 1 {
			return 1
		}
		return 0
	}
	return store.Clamp((value - threshold) / (1 - threshold))
}

// Confidence scores how strongly d supports the given emergence type. The
// result is always within [0, 1].
func (t Thresholds) Confidence(kind store.EmergenceType, d store.Dimensions) float64 {
	d = d.Clamped()
	var score float64

	switch kind {
	case store.EmergenceVillain:
		score = (aboveThreshold(d.Fear, t.VillainFear) + aboveThreshold(d.Resentment, t.VillainResentment)) / 2
		if d.Fear >= highThreshold {
			score += 0.1
		}
		if d.Resentment >= highThreshold {
			score += 0.1
		}
		if d.Trust < villainLowTrust {
			score += 0.1
		}
		if d.Respect >= villainPenaltyRespect {
			score -= 0.15
		}
		if d.Affection >= villainPenaltyAffection {
			score -= 0.1
		}
	case store.EmergenceAlly:
		paths := t.qualifyingAllyPaths(d)
		if len(paths) > 0 {
			for _, p := range paths {
				score += (p.first.score(d) + p.second.score(d)) / 2
			}
			score /= float64(len(paths))
		}
		if len(paths) >= 2 {
			score += 0.1
		}
		if len(paths) == 3 {
			score += 0.1
		}
		if d.Fear >= allyPenaltyFear {
			score -= 0.15
		}
		if d.Resentment >= allyPenaltyResent {
			score -= 0.15
		}
	}

	return store.Clamp(score)
}
