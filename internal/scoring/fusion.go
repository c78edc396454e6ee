package scoring

import (
	"math"

	"github.com/alexanderramin/ember/internal/domain"
)

// Nominal weights reported in Contribution. The fusion itself is additive:
// the workload score is the base and sentiment shifts it by a bounded amount.
const (
	WorkloadWeight  = 0.6
	SentimentWeight = 0.4
)

// Level cut points. Scores strictly below GreenMax are GREEN, scores above
// YellowMax are RED.
const (
	GreenMax  = 40.0
	YellowMax = 70.0
)

// Fusion is the combined score for one analysis.
type Fusion struct {
	Score        float64
	Level        domain.BurnoutLevel
	Contribution domain.Contribution
}

// Fuse combines the workload score with the sentiment adjustment, clamped to [0, 100].
func Fuse(workloadScore, adjustment float64) Fusion {
	score := Round1(Clamp(workloadScore+adjustment, 0, 100))
	return Fusion{
		Score: score,
		Level: LevelFor(score),
		Contribution: domain.Contribution{
			WorkloadWeight:  WorkloadWeight,
			SentimentWeight: SentimentWeight,
			WorkloadPart:    workloadScore,
			SentimentPart:   Round1(score - workloadScore),
		},
	}
}

// LevelFor classifies a final score.
func LevelFor(score float64) domain.BurnoutLevel {
	switch {
	case score < GreenMax:
		return domain.LevelGreen
	case score <= YellowMax:
		return domain.LevelYellow
	default:
		return domain.LevelRed
	}
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
