package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/sirupsen/logrus"

	"github.com/lelborn/lelborn/internal/domain"
)

type commitStats struct {
	additions int
	deletions int
	commits   int
}

// GetLinesOfCode sums commit additions and deletions over the user's
// non-fork, non-archived repositories. The graph API has no line-level
// aggregate, so repositories are discovered first and each one is then
// fetched over REST. A repository that cannot be fetched is logged and
// skipped; the totals cover the repositories that succeeded.
func (g *GitHubGateway) GetLinesOfCode(ctx context.Context, affiliations []string) (domain.LinesOfCode, error) {
	g.logger.WithField("affiliations", affiliations).Debug("Discovering repositories for lines of code...")
	repos, err := g.listRepositories(ctx, OpLOCDiscovery, affiliations)
	if err != nil {
		return domain.LinesOfCode{}, err
	}

	candidates := make([]domain.Repository, 0, len(repos))
	for _, repo := range repos {
		if repo.IsFork || repo.IsArchived {
			continue
		}
		candidates = append(candidates, repo)
	}
	g.logger.WithFields(logrus.Fields{
		"discovered": len(repos),
		"candidates": len(candidates),
	}).Info("Fetching lines of code")

	var total commitStats
	for start := 0; start < len(candidates); start += g.batchSize {
		if start > 0 && g.batchPause > 0 {
			if err := sleep(ctx, g.batchPause); err != nil {
				return domain.LinesOfCode{}, err
			}
		}
		end := min(start+g.batchSize, len(candidates))
		g.logger.Debugf("  Fetching repository batch %d-%d of %d...", start+1, end, len(candidates))

		for _, repo := range candidates[start:end] {
			s, err := g.repositoryCommitStats(ctx, repo.FullName)
			if err != nil {
				g.logger.WithError(err).WithField("repo", repo.FullName).Warn("Could not fetch stats for repository")
				continue
			}
			total.additions += s.additions
			total.deletions += s.deletions
			total.commits += s.commits
		}
	}

	return domain.NewLinesOfCode(total.additions, total.deletions, total.commits), nil
}

// repositoryCommitStats sums the stats of the most recent commits of one repository.
// A commit whose detail cannot be read is skipped.
func (g *GitHubGateway) repositoryCommitStats(ctx context.Context, fullName string) (commitStats, error) {
	owner, repo, err := splitRepo(fullName)
	if err != nil {
		return commitStats{}, err
	}

	g.counter.Inc(OpLOCDetail)
	opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: g.commitsPerRepo}}
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return commitStats{}, fmt.Errorf("failed to list commits for %s: %w", fullName, err)
	}

	var s commitStats
	for _, c := range commits {
		g.counter.Inc(OpLOCDetail)
		detail, _, err := g.restClient.Repositories.GetCommit(ctx, owner, repo, c.GetSHA(), nil)
		if err != nil {
			g.logger.WithError(err).WithFields(logrus.Fields{"repo": fullName, "sha": c.GetSHA()}).Debug("Skipping commit without detail")
			continue
		}
		if detail.Stats == nil {
			continue
		}
		s.additions += detail.GetStats().GetAdditions()
		s.deletions += detail.GetStats().GetDeletions()
		s.commits++
	}
	return s, nil
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
