package stitch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/abworrall/pano-stitch/pkg/emath"
	"github.com/abworrall/pano-stitch/pkg/features"
)

// exactH maps integer points to integer points, so matches between
// keypoints can follow it exactly.
var exactH = emath.Homography{1, 1, 5, 0, 2, -3, 0, 0, 1}

func pointMatch(src, dst r2.Point) features.Match {
	return features.Match{
		A: features.Descriptor{Keypoint: features.Keypoint{Row: int(src.Y), Col: int(src.X)}},
		B: features.Descriptor{Keypoint: features.Keypoint{Row: int(dst.Y), Col: int(dst.X)}},
	}
}

func gridMatches(t *testing.T, h emath.Homography) []features.Match {
	t.Helper()
	matches := []features.Match{}
	for y := 10; y < 200; y += 37 {
		for x := 20; x < 300; x += 53 {
			src := r2.Point{X: float64(x), Y: float64(y)}
			dst, err := h.Project(src)
			test.That(t, err, test.ShouldBeNil)
			matches = append(matches, pointMatch(src, dst))
		}
	}
	return matches
}

func testRansacConfig() RansacConfig {
	return RansacConfig{Iterations: 500, InlierThreshold: 3.0, Seed: 1}
}

func TestEstimateHomographyExact(t *testing.T) {
	matches := gridMatches(t, exactH)

	est, err := EstimateHomography(matches, testRansacConfig(), rand.New(rand.NewSource(1)), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.InlierCount, test.ShouldEqual, len(matches))
	test.That(t, est.Inliers, test.ShouldHaveLength, len(matches))

	for _, m := range matches {
		p, err := est.Refined.Project(m.A.Point())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Sub(m.B.Point()).Norm(), test.ShouldBeLessThan, 1e-3)
	}
	for i := range exactH {
		test.That(t, est.Refined[i], test.ShouldAlmostEqual, exactH[i], 1e-6)
	}
}

func TestEstimateHomographyPerspective(t *testing.T) {
	// x' = 200x/(x+100), y' = 200y/(x+100). Each x+100 below divides
	// 20000 and 200*y, so every match lands on integer pixels.
	perspective := emath.Homography{2, 0, 0, 0, 2, 0, 0.01, 0, 1}
	matches := []features.Match{}
	for _, x := range []int{0, 25, 60, 100, 150, 300, 400} {
		for y := 0; y <= 200; y += 40 {
			src := r2.Point{X: float64(x), Y: float64(y)}
			dst, err := perspective.Project(src)
			test.That(t, err, test.ShouldBeNil)
			dst = r2.Point{X: math.Round(dst.X), Y: math.Round(dst.Y)}
			matches = append(matches, pointMatch(src, dst))
		}
	}
	test.That(t, matches[6].B.Point(), test.ShouldResemble, r2.Point{X: 40, Y: 0})
	test.That(t, matches[7].B.Point(), test.ShouldResemble, r2.Point{X: 40, Y: 64})

	est, err := EstimateHomography(matches, testRansacConfig(), rand.New(rand.NewSource(5)), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.InlierCount, test.ShouldEqual, len(matches))

	for _, m := range matches {
		p, err := est.Refined.Project(m.A.Point())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Sub(m.B.Point()).Norm(), test.ShouldBeLessThan, 1e-3)
	}
	for i := range perspective {
		test.That(t, est.Refined[i], test.ShouldAlmostEqual, perspective[i], 1e-6)
	}
}

func TestEstimateHomographyOutliers(t *testing.T) {
	matches := gridMatches(t, exactH)
	nGood := len(matches)

	// Outliers land well away from where exactH puts them
	for i := 0; i < 10; i++ {
		src := r2.Point{X: float64(15 + 29*i), Y: float64(200 - 17*i)}
		dst, err := exactH.Project(src)
		test.That(t, err, test.ShouldBeNil)
		matches = append(matches, pointMatch(src, dst.Add(r2.Point{X: float64(60 + 7*i), Y: float64(-40 - 11*i)})))
	}

	est, err := EstimateHomography(matches, testRansacConfig(), rand.New(rand.NewSource(3)), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.InlierCount, test.ShouldEqual, nGood)
	for _, m := range est.Inliers {
		p, err := exactH.Project(m.A.Point())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Sub(m.B.Point()).Norm(), test.ShouldBeLessThan, 1e-9)
	}
	for i := range exactH {
		test.That(t, est.Refined[i], test.ShouldAlmostEqual, exactH[i], 1e-6)
	}
}

func TestEstimateHomographyDeterministic(t *testing.T) {
	matches := gridMatches(t, exactH)
	matches = append(matches, pointMatch(r2.Point{X: 3, Y: 4}, r2.Point{X: 100, Y: 7}))
	logger := golog.NewTestLogger(t)

	e1, err := EstimateHomography(matches, testRansacConfig(), rand.New(rand.NewSource(42)), logger)
	test.That(t, err, test.ShouldBeNil)
	e2, err := EstimateHomography(matches, testRansacConfig(), rand.New(rand.NewSource(42)), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, e1.Best, test.ShouldResemble, e2.Best)
	test.That(t, e1.Refined, test.ShouldResemble, e2.Refined)
}

func TestEstimateHomographyFailures(t *testing.T) {
	logger := golog.NewTestLogger(t)
	rng := rand.New(rand.NewSource(1))

	_, err := EstimateHomography(nil, testRansacConfig(), rng, logger)
	test.That(t, errors.Is(err, ErrEstimationFailure), test.ShouldBeTrue)

	three := gridMatches(t, exactH)[:3]
	_, err = EstimateHomography(three, testRansacConfig(), rng, logger)
	test.That(t, errors.Is(err, ErrEstimationFailure), test.ShouldBeTrue)

	// Every sample is degenerate, so nothing is ever fitted
	same := []features.Match{}
	for i := 0; i < 8; i++ {
		same = append(same, pointMatch(r2.Point{X: 10, Y: 10}, r2.Point{X: 20, Y: 20}))
	}
	_, err = EstimateHomography(same, testRansacConfig(), rng, logger)
	test.That(t, errors.Is(err, ErrEstimationFailure), test.ShouldBeTrue)

	collinear := []features.Match{}
	for i := 0; i < 8; i++ {
		collinear = append(collinear, pointMatch(r2.Point{X: float64(10 * i), Y: 5}, r2.Point{X: float64(10*i + 3), Y: 9}))
	}
	_, err = EstimateHomography(collinear, testRansacConfig(), rng, logger)
	test.That(t, errors.Is(err, ErrEstimationFailure), test.ShouldBeTrue)
}
