// Package bayes estimates per-bucket event probabilities with a
// Beta-Binomial model.
//
// Buckets are opaque string keys (weekday, hour, line, whatever the caller
// groups by). Each bucket carries a Beta prior that is updated with observed
// trial/success counts; summaries expose the posterior mean and a central
// 95% credible interval
package bayes

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"checkstats/internal/platform/errors"
	"checkstats/internal/platform/logger"
)

// Jeffreys is the default noninformative prior
var Jeffreys = Prior{Alpha: 0.5, Beta: 0.5}

// zCI95 is the two-sided 95% normal quantile used by the approximate interval
const zCI95 = 1.96

// Prior is a Beta(alpha, beta) prior over an event probability
type Prior struct {
	Alpha float64
	Beta  float64
}

// Counts is one bucket's observed trials and successes
type Counts struct {
	Trials    int
	Successes int
}

// Summary is the posterior for one bucket after folding counts into a prior
type Summary struct {
	Trials     int
	Successes  int
	AlphaPrior float64
	BetaPrior  float64
	AlphaPost  float64
	BetaPost   float64
	Mean       float64
	CILow      float64
	CIHigh     float64
}

// Estimator computes Beta-Binomial posteriors. The zero value is not usable;
// use New
type Estimator struct {
	log      *logger.Logger
	warnOnce sync.Once
}

// New returns an estimator logging through the given component logger
func New(log *logger.Logger) *Estimator {
	if log == nil {
		log = logger.Named("bayes")
	}
	return &Estimator{log: log}
}

func validate(prior Prior, c Counts) error {
	if c.Trials < 0 {
		return errors.InvalidArgf("trials must be >= 0, got %d", c.Trials)
	}
	if c.Successes < 0 || c.Successes > c.Trials {
		return errors.InvalidArgf("successes must be in [0, trials], got %d of %d", c.Successes, c.Trials)
	}
	if prior.Alpha <= 0 || prior.Beta <= 0 {
		return errors.InvalidArgf("prior parameters must be > 0, got alpha=%g beta=%g", prior.Alpha, prior.Beta)
	}
	return nil
}

// Posterior folds counts into the prior and summarizes the resulting Beta
func (e *Estimator) Posterior(prior Prior, c Counts) (Summary, error) {
	if err := validate(prior, c); err != nil {
		return Summary{}, err
	}

	alphaPost := prior.Alpha + float64(c.Successes)
	betaPost := prior.Beta + float64(c.Trials-c.Successes)
	mean := alphaPost / (alphaPost + betaPost)

	low, high := e.credibleInterval(alphaPost, betaPost, mean)

	return Summary{
		Trials:     c.Trials,
		Successes:  c.Successes,
		AlphaPrior: prior.Alpha,
		BetaPrior:  prior.Beta,
		AlphaPost:  alphaPost,
		BetaPost:   betaPost,
		Mean:       mean,
		CILow:      low,
		CIHigh:     high,
	}, nil
}

// credibleInterval returns the central 95% interval of Beta(a, b). Exact
// quantiles first; if inversion degenerates, a clamped normal approximation
func (e *Estimator) credibleInterval(a, b, mean float64) (low, high float64) {
	dist := distuv.Beta{Alpha: a, Beta: b}
	low = dist.Quantile(0.025)
	high = dist.Quantile(0.975)
	if !math.IsNaN(low) && !math.IsNaN(high) {
		return low, high
	}

	e.warnOnce.Do(func() {
		e.log.Warn().
			Float64("alpha", a).
			Float64("beta", b).
			Msg("beta quantile inversion failed, using normal approximation")
	})

	sd := math.Sqrt(a * b / ((a + b) * (a + b) * (a + b + 1)))
	low = max(0, mean-zCI95*sd)
	high = min(1, mean+zCI95*sd)
	return low, high
}

// UpdatePrior returns the posterior of prior given counts, usable as the
// prior for the next batch
func (e *Estimator) UpdatePrior(prior Prior, c Counts) (Prior, error) {
	if err := validate(prior, c); err != nil {
		return Prior{}, err
	}
	return Prior{
		Alpha: prior.Alpha + float64(c.Successes),
		Beta:  prior.Beta + float64(c.Trials-c.Successes),
	}, nil
}

// UpdatePriorsByBucket updates each bucket's prior with its counts. Buckets
// with no new counts carry their prior forward unchanged; buckets with no
// prior start from Jeffreys. Inputs are never mutated
func (e *Estimator) UpdatePriorsByBucket(priors map[string]Prior, counts map[string]Counts) (map[string]Prior, error) {
	out := make(map[string]Prior, len(priors)+len(counts))
	for bucket, p := range priors {
		out[bucket] = p
	}
	for bucket, c := range counts {
		p, ok := out[bucket]
		if !ok {
			p = Jeffreys
		}
		updated, err := e.UpdatePrior(p, c)
		if err != nil {
			return nil, errors.WithField(err, bucket)
		}
		out[bucket] = updated
	}
	return out, nil
}

// SummariesByBucket summarizes the posterior of every bucket present in
// either map, in sorted bucket order. Buckets without counts are summarized
// at (0, 0), showing the prior itself
func (e *Estimator) SummariesByBucket(priors map[string]Prior, counts map[string]Counts) (map[string]Summary, error) {
	buckets := make(map[string]struct{}, len(priors)+len(counts))
	for b := range priors {
		buckets[b] = struct{}{}
	}
	for b := range counts {
		buckets[b] = struct{}{}
	}
	keys := make([]string, 0, len(buckets))
	for b := range buckets {
		keys = append(keys, b)
	}
	sort.Strings(keys)

	out := make(map[string]Summary, len(keys))
	for _, bucket := range keys {
		p, ok := priors[bucket]
		if !ok {
			p = Jeffreys
		}
		s, err := e.Posterior(p, counts[bucket])
		if err != nil {
			return nil, errors.WithField(err, bucket)
		}
		out[bucket] = s
	}
	return out, nil
}
