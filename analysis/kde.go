package analysis

import "math"

const (
	// kdeBandwidthFactor scales the n^(-1/5) rule-of-thumb bandwidth
	kdeBandwidthFactor = 0.8

	// kdeMinBandwidth keeps the kernel well-defined when the filtered
	// returns have zero variance
	kdeMinBandwidth = 1e-6

	// outlierSigmas is the cut distance for the pre-fit outlier filter
	outlierSigmas = 3.0

	// minFilteredPoints is the smallest survivor count the filter may
	// produce before it is discarded
	minFilteredPoints = 5
)

// filterOutliers drops returns farther than outlierSigmas population
// standard deviations from the mean. When fewer than minFilteredPoints
// survive, the unfiltered slice is returned.
func filterOutliers(returns []float64) []float64 {
	if len(returns) == 0 {
		return returns
	}
	m := mean(returns)
	sd := populationStd(returns)
	if sd == 0 {
		return returns
	}

	filtered := make([]float64, 0, len(returns))
	for _, r := range returns {
		if math.Abs(r-m) <= outlierSigmas*sd {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) < minFilteredPoints {
		return returns
	}
	return filtered
}

// gaussianKDE is a kernel density estimate over a set of daily returns
type gaussianKDE struct {
	points    []float64
	bandwidth float64
}

// newGaussianKDE fits the estimator on outlier-filtered returns
func newGaussianKDE(returns []float64) *gaussianKDE {
	filtered := filterOutliers(returns)

	h := kdeBandwidthFactor * math.Pow(float64(len(filtered)), -0.2) * sampleStd(filtered)
	if h < kdeMinBandwidth {
		h = kdeMinBandwidth
	}
	return &gaussianKDE{points: filtered, bandwidth: h}
}

// evaluate returns the estimated probability density at x
func (k *gaussianKDE) evaluate(x float64) float64 {
	if len(k.points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range k.points {
		u := (x - p) / k.bandwidth
		sum += math.Exp(-0.5 * u * u)
	}
	return sum / (float64(len(k.points)) * k.bandwidth * math.Sqrt(2*math.Pi))
}
