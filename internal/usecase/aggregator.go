// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lelborn/lelborn/internal/config"
	"github.com/lelborn/lelborn/internal/domain"
	"github.com/lelborn/lelborn/internal/format"
	"github.com/lelborn/lelborn/internal/gateway"
)

// Aggregator is the use case for collecting a user's profile statistics.
// It sequences the gateway calls and combines their results into one data bag.
type Aggregator struct {
	fetcher gateway.Fetcher
	cfg     *config.Config
	logger  *logrus.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, cfg *config.Config, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

// Collect fetches every statistic one call at a time, timing each step.
// Any error aborts the collection; nothing is returned for a partial run.
func (a *Aggregator) Collect(ctx context.Context, now time.Time) (domain.Stats, []domain.Timing, error) {
	a.logger.Info("Collecting GitHub statistics...")
	var (
		stats   domain.Stats
		timings []domain.Timing
	)
	step := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		timings = append(timings, domain.Timing{Name: name, Duration: time.Since(start)})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		a.logger.WithField("step", name).Debug("Step complete")
		return nil
	}

	err := step("user info", func() error {
		info, err := a.fetcher.GetUserInfo(ctx)
		if err != nil {
			return err
		}
		if filled := a.cfg.MergeGitHubData(info); len(filled) > 0 {
			a.logger.WithField("keys", filled).Info("Filled profile fields from GitHub")
		}
		return nil
	})
	if err != nil {
		return domain.Stats{}, nil, err
	}

	err = step("age calculation", func() error {
		birthday, err := a.cfg.Birthday()
		if err != nil {
			return err
		}
		stats.Age = format.Age(birthday, now)
		return nil
	})
	if err != nil {
		return domain.Stats{}, nil, err
	}

	owner := a.cfg.OwnerAffiliations()
	steps := []struct {
		name string
		fn   func() error
	}{
		{"stars", func() (err error) {
			stats.Stars, err = a.fetcher.GetTotalStars(ctx, owner)
			return err
		}},
		{"repos", func() (err error) {
			stats.Repos, err = a.fetcher.GetRepositoryCount(ctx, owner)
			return err
		}},
		{"contrib repos", func() (err error) {
			stats.ContribRepos, err = a.fetcher.GetRepositoryCount(ctx, a.cfg.ContribAffiliations())
			return err
		}},
		{"followers", func() (err error) {
			stats.Followers, err = a.fetcher.GetFollowerCount(ctx)
			return err
		}},
		{"lines of code", func() (err error) {
			stats.LinesOfCode, err = a.fetcher.GetLinesOfCode(ctx, a.cfg.LOCAffiliations())
			return err
		}},
		{"commits", func() (err error) {
			from := now.AddDate(0, 0, -a.cfg.WindowDays())
			stats.Commits, err = a.fetcher.GetCommitCount(ctx, from, now)
			return err
		}},
	}
	for _, s := range steps {
		if err := step(s.name, s.fn); err != nil {
			return domain.Stats{}, nil, err
		}
	}

	a.logger.Info("Collection complete.")
	return stats, timings, nil
}
