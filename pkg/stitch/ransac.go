package stitch

import (
	"fmt"
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/abworrall/pano-stitch/pkg/emath"
	"github.com/abworrall/pano-stitch/pkg/features"
)

// sampleSize is the number of point pairs that fix a homography.
const sampleSize = 4

// Estimate is the outcome of RANSAC. Best is the 4-point candidate
// with the most inliers; Refined is the least squares fit over those
// inliers, and is what should be used for compositing.
type Estimate struct {
	Best        emath.Homography
	Refined     emath.Homography
	InlierCount int
	Inliers     []features.Match
}

func (e Estimate) String() string {
	return fmt.Sprintf("Estimate{%d inliers}, refined:\n%s", e.InlierCount, e.Refined)
}

// EstimateHomography runs RANSAC over the matches, mapping A points to B
// points. All randomness comes from rng, so a given seed always gives
// the same answer.
func EstimateHomography(matches []features.Match, cfg RansacConfig, rng *rand.Rand, logger golog.Logger) (Estimate, error) {
	est := Estimate{}

	if len(matches) < sampleSize {
		return est, errors.Wrapf(ErrEstimationFailure, "%d matches, need at least %d", len(matches), sampleSize)
	}

	src := make([]r2.Point, len(matches))
	dst := make([]r2.Point, len(matches))
	for i, m := range matches {
		src[i] = m.A.Point()
		dst[i] = m.B.Point()
	}

	nDegenerate := 0
	sampleSrc := make([]r2.Point, sampleSize)
	sampleDst := make([]r2.Point, sampleSize)

	for iter := 0; iter < cfg.Iterations; iter++ {
		for j := 0; j < sampleSize; j++ {
			idx := rng.Intn(len(matches))
			sampleSrc[j] = src[idx]
			sampleDst[j] = dst[idx]
		}

		h, err := emath.FitHomography(sampleSrc, sampleDst)
		if err != nil {
			nDegenerate++
			logger.Debugw("ransac sample skipped", "iter", iter, zap.Error(err))
			continue
		}

		n := countInliers(h, src, dst, cfg.InlierThreshold)
		if n > est.InlierCount {
			logger.Debugw("ransac new best", "iter", iter, "inliers", n)
			est.Best = h
			est.InlierCount = n
		}
	}

	logger.Debugf("ransac: %d iterations, %d degenerate samples", cfg.Iterations, nDegenerate)

	if est.InlierCount == 0 {
		return est, errors.Wrapf(ErrEstimationFailure, "no inliers after %d iterations over %d matches", cfg.Iterations, len(matches))
	}

	var inSrc, inDst []r2.Point
	for i, m := range matches {
		if isInlier(est.Best, src[i], dst[i], cfg.InlierThreshold) {
			est.Inliers = append(est.Inliers, m)
			inSrc = append(inSrc, src[i])
			inDst = append(inDst, dst[i])
		}
	}

	refined, err := emath.FitHomography(inSrc, inDst)
	if err != nil {
		logger.Warnf("refit over %d inliers failed (%v), using the best sample", len(inSrc), err)
		refined = est.Best
	}
	est.Refined = refined

	logger.Infof("ransac: %d of %d matches are inliers", est.InlierCount, len(matches))
	return est, nil
}

func isInlier(h emath.Homography, src, dst r2.Point, threshold float64) bool {
	p, err := h.Project(src)
	if err != nil {
		return false
	}
	return p.Sub(dst).Norm() <= threshold
}

func countInliers(h emath.Homography, src, dst []r2.Point, threshold float64) int {
	n := 0
	for i := range src {
		if isInlier(h, src[i], dst[i], threshold) {
			n++
		}
	}
	return n
}
