package features

import (
	"fmt"
	"math"

	"github.com/edaniels/golog"
)

// MatchConfig contains the parameters for matching descriptors.
type MatchConfig struct {
	// Only candidates scoring strictly below this are considered
	ScoreCutoff float64 `yaml:"score_cutoff"`

	// The best score must be less than Ratio times the second best
	Ratio float64 `yaml:"ratio"`
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		ScoreCutoff: 1.0,
		Ratio:       0.8,
	}
}

// A Match pairs a descriptor from image A with one from image B.
type Match struct {
	A     Descriptor
	B     Descriptor
	Score float64
}

func (m Match) String() string {
	return fmt.Sprintf("match[%s -> %s, ssd %.5f]", m.A.Keypoint, m.B.Keypoint, m.Score)
}

// SSD is the sum of squared differences over all histogram bins.
func SSD(d1, d2 *Descriptor) float64 {
	sum := 0.0
	for i := range d1.Bins {
		for j := range d1.Bins[i] {
			diff := d1.Bins[i][j] - d2.Bins[i][j]
			sum += diff * diff
		}
	}
	return sum
}

// MatchDescriptors finds, for each descriptor in a, its nearest
// neighbour in b, and keeps the pair if the neighbour is distinctive
// enough. With no second candidate under the cutoff, the second best
// score is +Inf, so a lone candidate always passes the ratio test.
// Equal best and second best scores never pass. Results are in the
// order of a; b may be matched more than once.
func MatchDescriptors(a, b []Descriptor, cfg MatchConfig, logger golog.Logger) []Match {
	matches := []Match{}
	nNoCandidate, nRatio := 0, 0

	for i := range a {
		bestIdx := -1
		best, secondBest := math.Inf(1), math.Inf(1)

		for j := range b {
			score := SSD(&a[i], &b[j])
			if score >= cfg.ScoreCutoff {
				continue
			}
			if score < best {
				secondBest = best
				best = score
				bestIdx = j
			} else if score < secondBest {
				secondBest = score
			}
		}

		if bestIdx < 0 {
			nNoCandidate++
			continue
		}

		if !(best < cfg.Ratio*secondBest) {
			nRatio++
			continue
		}

		matches = append(matches, Match{A: a[i], B: b[bestIdx], Score: best})
	}

	logger.Debugf("matched %d of %d descriptors (%d with no candidate under %.3f, %d failed ratio %.2f)",
		len(matches), len(a), nNoCandidate, cfg.ScoreCutoff, nRatio, cfg.Ratio)

	return matches
}
