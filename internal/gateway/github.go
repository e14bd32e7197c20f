// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/gregjones/httpcache"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/lelborn/lelborn/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching statistics from GitHub.
type Fetcher interface {
	GetUserInfo(ctx context.Context) (domain.UserInfo, error)
	GetFollowerCount(ctx context.Context) (int, error)
	GetRepositoryCount(ctx context.Context, affiliations []string) (int, error)
	GetTotalStars(ctx context.Context, affiliations []string) (int, error)
	GetCommitCount(ctx context.Context, from, to time.Time) (int, error)
	GetLinesOfCode(ctx context.Context, affiliations []string) (domain.LinesOfCode, error)
	QueryCounts() map[string]int
}

// Options configures a GitHubGateway.
type Options struct {
	Token      string
	Username   string
	GraphQLURL string
	RESTURL    string

	// PageSize is the number of repositories requested per GraphQL page.
	PageSize int
	// BatchSize groups repositories in the lines of code detail phase.
	BatchSize int
	// BatchPause is slept between detail batches to soften request bursts.
	BatchPause time.Duration
	// CommitsPerRepo caps how many recent commits are inspected per repository.
	CommitsPerRepo int
	// MaxRateLimitWait bounds a single secondary rate limit sleep. Zero never sleeps.
	MaxRateLimitWait time.Duration
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	recorder      *failureRecorder
	counter       *QueryCounter
	logger        *logrus.Logger

	username       string
	pageSize       int
	batchSize      int
	batchPause     time.Duration
	commitsPerRepo int
}

var _ Fetcher = (*GitHubGateway)(nil)

// NewGitHubGateway creates a gateway with the following transport stack:
//  1. oauth2 (static bearer token)
//  2. go-github-ratelimit (secondary rate limit detection)
//  3. httpcache (in-memory ETag caching of REST reads for this run)
func NewGitHubGateway(opts Options, logger *logrus.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(
		httpcache.NewMemoryCacheTransport(),
		github_ratelimit.WithSingleSleepLimit(opts.MaxRateLimitWait, nil),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restBase := opts.RESTURL
	if restBase == "" {
		restBase = "https://api.github.com/"
	}
	if !strings.HasSuffix(restBase, "/") {
		restBase += "/"
	}
	baseURL, err := url.Parse(restBase)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REST base URL: %w", err)
	}
	graphqlURL := opts.GraphQLURL
	if graphqlURL == "" {
		graphqlURL = "https://api.github.com/graphql"
	}

	return newGitHubGateway(httpClient, baseURL, graphqlURL, opts, logger), nil
}

func newGitHubGateway(httpClient *http.Client, restBase *url.URL, graphqlURL string, opts Options, logger *logrus.Logger) *GitHubGateway {
	restClient := github.NewClient(httpClient)
	restClient.BaseURL = restBase

	recorder := &failureRecorder{base: httpClient.Transport}
	graphqlHTTP := &http.Client{Transport: recorder, Timeout: httpClient.Timeout}

	g := &GitHubGateway{
		restClient:     restClient,
		graphqlClient:  githubv4.NewEnterpriseClient(graphqlURL, graphqlHTTP),
		recorder:       recorder,
		counter:        NewQueryCounter(),
		logger:         logger,
		username:       opts.Username,
		pageSize:       opts.PageSize,
		batchSize:      opts.BatchSize,
		batchPause:     opts.BatchPause,
		commitsPerRepo: opts.CommitsPerRepo,
	}
	if g.pageSize <= 0 {
		g.pageSize = 100
	}
	if g.batchSize <= 0 {
		g.batchSize = 10
	}
	if g.commitsPerRepo <= 0 {
		g.commitsPerRepo = 100
	}
	return g
}

// query runs one counted GraphQL request and converts failures into OperationErrors.
func (g *GitHubGateway) query(ctx context.Context, op string, q interface{}, variables map[string]interface{}) error {
	g.counter.Inc(op)
	g.recorder.reset()
	if err := g.graphqlClient.Query(ctx, q, variables); err != nil {
		return g.recorder.operationError(op, err)
	}
	return nil
}

// GetUserInfo fetches the user's profile record.
func (g *GitHubGateway) GetUserInfo(ctx context.Context) (domain.UserInfo, error) {
	g.logger.Debug("Fetching user info...")
	var q userInfoQuery
	variables := map[string]interface{}{"login": githubv4.String(g.username)}
	if err := g.query(ctx, OpUserInfo, &q, variables); err != nil {
		return domain.UserInfo{}, err
	}
	u := q.User
	return domain.UserInfo{
		ID:        u.ID,
		CreatedAt: u.CreatedAt.Time,
		Location:  optional(u.Location),
		Website:   optional(u.WebsiteURL),
		Email:     optional(u.Email),
		Twitter:   optional(u.TwitterUsername),
		Bio:       optional(u.Bio),
		Company:   optional(u.Company),
		Hireable:  u.IsHireable,
	}, nil
}

// GetFollowerCount fetches the user's follower count.
func (g *GitHubGateway) GetFollowerCount(ctx context.Context) (int, error) {
	g.logger.Debug("Fetching follower count...")
	var q followerCountQuery
	variables := map[string]interface{}{"login": githubv4.String(g.username)}
	if err := g.query(ctx, OpFollowers, &q, variables); err != nil {
		return 0, err
	}
	return q.User.Followers.TotalCount, nil
}

// GetRepositoryCount reads the total number of repositories matching the affiliations in one request.
func (g *GitHubGateway) GetRepositoryCount(ctx context.Context, affiliations []string) (int, error) {
	g.logger.WithField("affiliations", affiliations).Debug("Fetching repository count...")
	var q repositoryCountQuery
	variables := map[string]interface{}{
		"login":             githubv4.String(g.username),
		"ownerAffiliations": toAffiliations(affiliations),
	}
	if err := g.query(ctx, OpReposStars, &q, variables); err != nil {
		return 0, err
	}
	return q.User.Repositories.TotalCount, nil
}

// GetTotalStars sums stargazers over every repository matching the affiliations.
func (g *GitHubGateway) GetTotalStars(ctx context.Context, affiliations []string) (int, error) {
	g.logger.WithField("affiliations", affiliations).Debug("Fetching star count...")
	repos, err := g.listRepositories(ctx, OpReposStars, affiliations)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, repo := range repos {
		total += repo.Stars
	}
	return total, nil
}

// GetCommitCount returns the user's contribution count between from and to.
func (g *GitHubGateway) GetCommitCount(ctx context.Context, from, to time.Time) (int, error) {
	g.logger.WithFields(logrus.Fields{"from": from, "to": to}).Debug("Fetching contribution count...")
	var q contributionsQuery
	variables := map[string]interface{}{
		"login": githubv4.String(g.username),
		"from":  githubv4.DateTime{Time: from},
		"to":    githubv4.DateTime{Time: to},
	}
	if err := g.query(ctx, OpCommits, &q, variables); err != nil {
		return 0, err
	}
	return q.User.ContributionsCollection.ContributionCalendar.TotalContributions, nil
}

// QueryCounts returns a copy of the per-operation request counts.
func (g *GitHubGateway) QueryCounts() map[string]int {
	return g.counter.Snapshot()
}

// TotalQueries returns the number of requests made so far.
func (g *GitHubGateway) TotalQueries() int {
	return g.counter.Total()
}

// listRepositories walks every page of the user's repositories for the affiliations.
// It stops as soon as the API reports no further page.
func (g *GitHubGateway) listRepositories(ctx context.Context, op string, affiliations []string) ([]domain.Repository, error) {
	variables := map[string]interface{}{
		"login":             githubv4.String(g.username),
		"first":             githubv4.Int(g.pageSize),
		"ownerAffiliations": toAffiliations(affiliations),
		"cursor":            (*githubv4.String)(nil),
	}
	consumed := make(map[githubv4.String]bool)

	var repos []domain.Repository
	for {
		var q repositoryPageQuery
		if err := g.query(ctx, op, &q, variables); err != nil {
			return nil, err
		}
		for _, edge := range q.User.Repositories.Edges {
			repos = append(repos, domain.Repository{
				FullName:   edge.Node.NameWithOwner,
				IsFork:     edge.Node.IsFork,
				IsArchived: edge.Node.IsArchived,
				Stars:      edge.Node.Stargazers.TotalCount,
			})
		}

		page := q.User.Repositories.PageInfo
		if !page.HasNextPage {
			break
		}
		if consumed[page.EndCursor] {
			return nil, &OperationError{Operation: op, Err: fmt.Errorf("%w: %q", ErrRepeatedCursor, page.EndCursor)}
		}
		consumed[page.EndCursor] = true
		variables["cursor"] = githubv4.NewString(page.EndCursor)
		g.logger.WithField("operation", op).Debug("  Fetching next page of repositories...")
	}
	return repos, nil
}

// toAffiliations passes the tags through verbatim and in order.
func toAffiliations(affiliations []string) []githubv4.RepositoryAffiliation {
	out := make([]githubv4.RepositoryAffiliation, 0, len(affiliations))
	for _, a := range affiliations {
		out = append(out, githubv4.RepositoryAffiliation(a))
	}
	return out
}

// optional maps null and empty strings to nil so absent fields never look like data.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
