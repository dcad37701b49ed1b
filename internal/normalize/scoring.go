package normalize

import (
	"math"
	"time"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

// Scores is the placeholder scoring block attached to every event
// until a real ranking model replaces it.
type Scores struct {
	Credibility int
	Freshness   int
	Materiality int
	Overall     int
	Confidence  domain.Confidence
}

// placeholderScores assigns fixed credibility and materiality, bands
// freshness by age since discovery, and rolls up a weighted overall
// score (0.4 credibility, 0.3 freshness, 0.3 materiality).
func placeholderScores(discoveredAt time.Time) Scores {
	s := Scores{
		Credibility: 60,
		Materiality: 50,
	}

	ageDays := int(time.Since(discoveredAt).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}
	switch {
	case ageDays <= 1:
		s.Freshness = 90
	case ageDays <= 7:
		s.Freshness = 75
	case ageDays <= 30:
		s.Freshness = 55
	default:
		s.Freshness = 35
	}

	overall := math.Round(0.4*float64(s.Credibility) + 0.3*float64(s.Freshness) + 0.3*float64(s.Materiality))
	s.Overall = clampScore(int(overall))

	// Confidence tracks the freshness band, not the overall rollup.
	switch {
	case s.Freshness >= 75:
		s.Confidence = domain.ConfidenceHigh
	case s.Freshness >= 50:
		s.Confidence = domain.ConfidenceMedium
	default:
		s.Confidence = domain.ConfidenceLow
	}
	return s
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
