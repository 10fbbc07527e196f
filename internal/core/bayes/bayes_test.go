package bayes

import (
	"math"
	"testing"

	"checkstats/internal/platform/errors"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestPosteriorJeffreys(t *testing.T) {
	e := New(nil)

	s, err := e.Posterior(Jeffreys, Counts{Trials: 10, Successes: 3})
	if err != nil {
		t.Fatalf("posterior: %v", err)
	}
	if s.AlphaPost != 3.5 || s.BetaPost != 7.5 {
		t.Fatalf("posterior params = %g %g", s.AlphaPost, s.BetaPost)
	}
	if !almostEqual(s.Mean, 3.5/11.0, 1e-12) {
		t.Fatalf("mean = %g", s.Mean)
	}
	if !(s.CILow < s.Mean && s.Mean < s.CIHigh) {
		t.Fatalf("interval does not bracket mean: [%g, %g] mean %g", s.CILow, s.CIHigh, s.Mean)
	}
	if s.CILow < 0 || s.CIHigh > 1 {
		t.Fatalf("interval outside [0,1]: [%g, %g]", s.CILow, s.CIHigh)
	}
}

func TestPosteriorZeroCounts(t *testing.T) {
	e := New(nil)

	s, err := e.Posterior(Jeffreys, Counts{})
	if err != nil {
		t.Fatalf("posterior: %v", err)
	}
	if s.AlphaPost != 0.5 || s.BetaPost != 0.5 {
		t.Fatalf("zero counts must keep the prior: %g %g", s.AlphaPost, s.BetaPost)
	}
	if !almostEqual(s.Mean, 0.5, 1e-12) {
		t.Fatalf("mean = %g", s.Mean)
	}
}

func TestPosteriorTightensWithData(t *testing.T) {
	e := New(nil)

	small, err := e.Posterior(Jeffreys, Counts{Trials: 10, Successes: 5})
	if err != nil {
		t.Fatalf("posterior: %v", err)
	}
	large, err := e.Posterior(Jeffreys, Counts{Trials: 1000, Successes: 500})
	if err != nil {
		t.Fatalf("posterior: %v", err)
	}
	if large.CIHigh-large.CILow >= small.CIHigh-small.CILow {
		t.Fatalf("more data must tighten the interval: small %g, large %g",
			small.CIHigh-small.CILow, large.CIHigh-large.CILow)
	}
}

func TestPosteriorValidation(t *testing.T) {
	e := New(nil)

	cases := []struct {
		name  string
		prior Prior
		c     Counts
	}{
		{"negative trials", Jeffreys, Counts{Trials: -1}},
		{"successes exceed trials", Jeffreys, Counts{Trials: 2, Successes: 3}},
		{"negative successes", Jeffreys, Counts{Trials: 2, Successes: -1}},
		{"zero alpha", Prior{Alpha: 0, Beta: 1}, Counts{}},
		{"negative beta", Prior{Alpha: 1, Beta: -1}, Counts{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Posterior(tc.prior, tc.c)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsCode(err, errors.ErrorCodeInvalidArgument) {
				t.Fatalf("code = %v", errors.CodeOf(err))
			}
		})
	}
}

func TestUpdatePriorIsAssociative(t *testing.T) {
	e := New(nil)

	// updating in two batches must equal updating with the pooled counts
	p1, err := e.UpdatePrior(Jeffreys, Counts{Trials: 4, Successes: 1})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	p2, err := e.UpdatePrior(p1, Counts{Trials: 6, Successes: 2})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	pooled, err := e.UpdatePrior(Jeffreys, Counts{Trials: 10, Successes: 3})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p2 != pooled {
		t.Fatalf("batched %+v != pooled %+v", p2, pooled)
	}
}

func TestUpdatePriorsByBucket(t *testing.T) {
	e := New(nil)

	priors := map[string]Prior{
		"mon": {Alpha: 2, Beta: 8},
		"tue": {Alpha: 1, Beta: 1},
	}
	counts := map[string]Counts{
		"mon": {Trials: 5, Successes: 5},
		"wed": {Trials: 3, Successes: 0},
	}

	out, err := e.UpdatePriorsByBucket(priors, counts)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := out["mon"]; got != (Prior{Alpha: 7, Beta: 8}) {
		t.Fatalf("mon = %+v", got)
	}
	// no counts: carried forward unchanged
	if got := out["tue"]; got != (Prior{Alpha: 1, Beta: 1}) {
		t.Fatalf("tue = %+v", got)
	}
	// no prior: starts from Jeffreys
	if got := out["wed"]; got != (Prior{Alpha: 0.5, Beta: 3.5}) {
		t.Fatalf("wed = %+v", got)
	}
	// inputs untouched
	if priors["mon"] != (Prior{Alpha: 2, Beta: 8}) || len(priors) != 2 {
		t.Fatalf("input priors mutated: %+v", priors)
	}
}

func TestUpdatePriorsByBucketInvalidCounts(t *testing.T) {
	e := New(nil)

	_, err := e.UpdatePriorsByBucket(nil, map[string]Counts{"mon": {Trials: 1, Successes: 2}})
	if err == nil {
		t.Fatal("expected error")
	}
	pe, ok := errors.As(err)
	if !ok || pe.Field() != "mon" {
		t.Fatalf("err = %v", err)
	}
}

func TestSummariesByBucketUnion(t *testing.T) {
	e := New(nil)

	priors := map[string]Prior{"a": {Alpha: 2, Beta: 2}}
	counts := map[string]Counts{"b": {Trials: 4, Successes: 2}}

	out, err := e.SummariesByBucket(priors, counts)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("buckets = %d", len(out))
	}
	// bucket with prior only: summarized at zero counts
	a := out["a"]
	if a.Trials != 0 || a.AlphaPost != 2 || a.BetaPost != 2 {
		t.Fatalf("a = %+v", a)
	}
	// bucket with counts only: Jeffreys prior
	b := out["b"]
	if b.AlphaPrior != 0.5 || b.AlphaPost != 2.5 || b.BetaPost != 2.5 {
		t.Fatalf("b = %+v", b)
	}
}
