package ai

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"vachan/backend/internal/cache"
	"vachan/backend/internal/factcheck"
	"vachan/backend/internal/match"
)

// FactChecker tries the remote model first and degrades to the keyword
// heuristic when the model is unavailable or its reply is unusable.
type FactChecker struct {
	primary  Checker
	fallback *factcheck.Fallback
	cache    cache.Reports
	now      func() time.Time
}

// WithFallback returns a checker that never fails a valid request. The cache
// is optional and only ever holds model-generated reports.
func WithFallback(primary Checker, fallback *factcheck.Fallback, reports cache.Reports) *FactChecker {
	if fallback == nil {
		fallback = factcheck.NewFallback(nil)
	}
	return &FactChecker{primary: primary, fallback: fallback, cache: reports, now: time.Now}
}

// PrimaryEnabled reports whether a remote model is configured.
func (c *FactChecker) PrimaryEnabled() bool {
	return c != nil && c.primary != nil && c.primary.Enabled()
}

// PrimaryModel returns the remote model identifier, if any.
func (c *FactChecker) PrimaryModel() string {
	if !c.PrimaryEnabled() {
		return ""
	}
	return c.primary.Model()
}

// Check validates the request and returns exactly one report.
func (c *FactChecker) Check(ctx context.Context, req factcheck.Request) (factcheck.Report, error) {
	if err := req.Validate(); err != nil {
		return factcheck.Report{}, err
	}

	if c.PrimaryEnabled() {
		key := match.NormalizeClaim(req.Text, req.Title, req.Source).Fingerprint
		if report, ok := c.lookup(ctx, key); ok {
			report.AnalysisTime = c.now().UTC()
			return report, nil
		}

		report, err := c.primary.Check(ctx, req)
		if err == nil {
			c.store(ctx, key, report)
			return report, nil
		}
		logrus.WithError(err).WithField("model", c.primary.Model()).Warn("primary fact-check failed, using fallback")
	}

	return c.fallback.Check(req), nil
}

func (c *FactChecker) lookup(ctx context.Context, key string) (factcheck.Report, bool) {
	if c.cache == nil {
		return factcheck.Report{}, false
	}
	report, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).Warn("fact-check cache lookup")
		return factcheck.Report{}, false
	}
	if ok {
		logrus.WithField("fingerprint", key).Debug("fact-check cache hit")
	}
	return report, ok
}

func (c *FactChecker) store(ctx context.Context, key string, report factcheck.Report) {
	if c.cache == nil || report.IsFallback() {
		return
	}
	if err := c.cache.Set(ctx, key, report); err != nil {
		logrus.WithError(err).Warn("fact-check cache store")
	}
}
