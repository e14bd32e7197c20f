package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
// GraphQL requests arrive at /graphql, REST requests under /repos/.
func setupTestGateway(t *testing.T, handler http.Handler, opts Options) (*GitHubGateway, *logtest.Hook) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	if opts.Username == "" {
		opts.Username = "octocat"
	}
	return newGitHubGateway(server.Client(), baseURL, server.URL+"/graphql", opts, logger), hook
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func decodeGraphQL(t *testing.T, r *http.Request) graphqlRequest {
	t.Helper()
	var req graphqlRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

type repoNode struct {
	name     string
	fork     bool
	archived bool
	stars    int
}

// repoPage renders one page of the repository listing in the shape the API returns.
func repoPage(hasNext bool, endCursor string, repos ...repoNode) string {
	edges := make([]map[string]interface{}, 0, len(repos))
	for _, r := range repos {
		edges = append(edges, map[string]interface{}{
			"node": map[string]interface{}{
				"nameWithOwner": r.name,
				"isFork":        r.fork,
				"isArchived":    r.archived,
				"stargazers":    map[string]interface{}{"totalCount": r.stars},
			},
		})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{
				"repositories": map[string]interface{}{
					"edges": edges,
					"pageInfo": map[string]interface{}{
						"hasNextPage": hasNext,
						"endCursor":   endCursor,
					},
				},
			},
		},
	})
	return string(body)
}

// pagedServer serves repository pages keyed by the incoming cursor ("" for the first page)
// and records every cursor it was asked for.
func pagedServer(t *testing.T, pages map[string]string, cursors *[]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := decodeGraphQL(t, r)
		cursor, _ := req.Variables["cursor"].(string)
		*cursors = append(*cursors, cursor)
		body, ok := pages[cursor]
		if !ok {
			t.Errorf("unexpected cursor %q", cursor)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, body)
	}
}

func TestGitHubGateway_GetTotalStars(t *testing.T) {
	testCases := []struct {
		name        string
		pages       map[string]string
		expected    int
		wantCursors []string
	}{
		{
			name: "sums stars across every page",
			pages: map[string]string{
				"":   repoPage(true, "c1", repoNode{name: "octo/a", stars: 5}, repoNode{name: "octo/b", stars: 3}),
				"c1": repoPage(true, "c2", repoNode{name: "octo/c", stars: 10}, repoNode{name: "octo/d", fork: true}),
				"c2": repoPage(false, "c3", repoNode{name: "octo/e", stars: 7}),
			},
			expected:    25,
			wantCursors: []string{"", "c1", "c2"},
		},
		{
			name: "single page",
			pages: map[string]string{
				"": repoPage(false, "c1", repoNode{name: "octo/a", stars: 503}),
			},
			expected:    503,
			wantCursors: []string{""},
		},
		{
			name: "no repositories",
			pages: map[string]string{
				"": repoPage(false, ""),
			},
			expected:    0,
			wantCursors: []string{""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var cursors []string
			gateway, _ := setupTestGateway(t, pagedServer(t, tc.pages, &cursors), Options{PageSize: 2})

			stars, err := gateway.GetTotalStars(context.Background(), []string{"OWNER"})

			require.NoError(t, err)
			assert.Equal(t, tc.expected, stars)
			assert.Equal(t, tc.wantCursors, cursors)
			assert.Equal(t, len(tc.wantCursors), gateway.QueryCounts()[OpReposStars])
		})
	}
}

func TestGitHubGateway_PaginationSendsPageSizeAndAffiliations(t *testing.T) {
	var got graphqlRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		got = decodeGraphQL(t, r)
		fmt.Fprint(w, repoPage(false, ""))
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), Options{PageSize: 2})

	_, err := gateway.GetTotalStars(context.Background(), []string{"ORGANIZATION_MEMBER", "OWNER"})

	require.NoError(t, err)
	assert.Contains(t, got.Query, "repositories(first: $first, after: $cursor, ownerAffiliations: $ownerAffiliations)")
	assert.Equal(t, float64(2), got.Variables["first"])
	assert.Equal(t, []interface{}{"ORGANIZATION_MEMBER", "OWNER"}, got.Variables["ownerAffiliations"])
	assert.Equal(t, "octocat", got.Variables["login"])
	assert.Nil(t, got.Variables["cursor"])
}

func TestGitHubGateway_RepeatedCursorStopsPagination(t *testing.T) {
	requests := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, repoPage(true, "same", repoNode{name: "octo/a", stars: 1}))
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), Options{PageSize: 2})

	_, err := gateway.GetTotalStars(context.Background(), []string{"OWNER"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRepeatedCursor)
	assert.Equal(t, 2, requests)
}

func TestGitHubGateway_GetRepositoryCount(t *testing.T) {
	var got graphqlRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		got = decodeGraphQL(t, r)
		fmt.Fprint(w, `{"data":{"user":{"repositories":{"totalCount":133}}}}`)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), Options{})
	affiliations := []string{"OWNER", "COLLABORATOR", "ORGANIZATION_MEMBER"}

	count, err := gateway.GetRepositoryCount(context.Background(), affiliations)

	require.NoError(t, err)
	assert.Equal(t, 133, count)
	assert.Equal(t, []interface{}{"OWNER", "COLLABORATOR", "ORGANIZATION_MEMBER"}, got.Variables["ownerAffiliations"])
	assert.Equal(t, 1, gateway.QueryCounts()[OpReposStars])
}

func TestGitHubGateway_GetUserInfo(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		req := decodeGraphQL(t, r)
		assert.Contains(t, req.Query, "user(login: $login)")
		fmt.Fprint(w, `{"data":{"user":{
			"id":"U_kgDOA",
			"createdAt":"2020-01-15T10:30:00Z",
			"location":"London",
			"websiteUrl":"",
			"email":"",
			"twitterUsername":"lelborn",
			"bio":null,
			"company":null,
			"isHireable":true
		}}}`)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), Options{})

	info, err := gateway.GetUserInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "U_kgDOA", info.ID)
	assert.Equal(t, time.Date(2020, time.January, 15, 10, 30, 0, 0, time.UTC), info.CreatedAt.UTC())
	require.NotNil(t, info.Location)
	assert.Equal(t, "London", *info.Location)
	require.NotNil(t, info.Twitter)
	assert.Equal(t, "lelborn", *info.Twitter)
	assert.Nil(t, info.Website)
	assert.Nil(t, info.Email)
	assert.Nil(t, info.Bio)
	assert.Nil(t, info.Company)
	assert.True(t, info.Hireable)
	assert.Equal(t, 1, gateway.QueryCounts()[OpUserInfo])
}

func TestGitHubGateway_GetCommitCount(t *testing.T) {
	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 365)
	var got graphqlRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		got = decodeGraphQL(t, r)
		fmt.Fprint(w, `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"totalContributions":3145}}}}}`)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), Options{})

	commits, err := gateway.GetCommitCount(context.Background(), from, to)

	require.NoError(t, err)
	assert.Equal(t, 3145, commits)
	assert.Equal(t, "2024-06-01T00:00:00Z", got.Variables["from"])
	assert.Equal(t, "2025-06-01T00:00:00Z", got.Variables["to"])
	assert.Equal(t, 1, gateway.QueryCounts()[OpCommits])
}

// TestGitHubGateway_DiscoveryFailures consolidates the fatal error paths into a single table-driven test.
func TestGitHubGateway_DiscoveryFailures(t *testing.T) {
	testCases := []struct {
		name          string
		status        int
		responseBody  string
		call          func(g *GitHubGateway) error
		operation     string
		expectedCode  int
		expectedInMsg string
	}{
		{
			name:         "follower count - server error",
			status:       http.StatusBadGateway,
			responseBody: `{"message":"Server Error"}`,
			call: func(g *GitHubGateway) error {
				_, err := g.GetFollowerCount(context.Background())
				return err
			},
			operation:     OpFollowers,
			expectedCode:  http.StatusBadGateway,
			expectedInMsg: `follower_getter failed with status 502: {"message":"Server Error"}`,
		},
		{
			name:         "user info - unauthorized",
			status:       http.StatusUnauthorized,
			responseBody: `{"message":"Bad credentials"}`,
			call: func(g *GitHubGateway) error {
				_, err := g.GetUserInfo(context.Background())
				return err
			},
			operation:     OpUserInfo,
			expectedCode:  http.StatusUnauthorized,
			expectedInMsg: "Bad credentials",
		},
		{
			name:         "repository listing - graphql errors",
			status:       http.StatusOK,
			responseBody: `{"errors":[{"message":"Could not resolve to a User with the login of 'octocat'."}]}`,
			call: func(g *GitHubGateway) error {
				_, err := g.GetTotalStars(context.Background(), []string{"OWNER"})
				return err
			},
			operation:     OpReposStars,
			expectedInMsg: "Could not resolve to a User",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), Options{})

			err := tc.call(gateway)

			require.Error(t, err)
			var opErr *OperationError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, tc.operation, opErr.Operation)
			assert.Equal(t, tc.expectedCode, opErr.StatusCode)
			assert.Contains(t, err.Error(), tc.expectedInMsg)
			assert.Equal(t, 1, gateway.QueryCounts()[tc.operation])
		})
	}
}

func TestGitHubGateway_GetLinesOfCode(t *testing.T) {
	repos := []repoNode{
		{name: "octo/repo-1"},
		{name: "octo/repo-2"},
		{name: "octo/repo-3"},
		{name: "octo/forked", fork: true},
		{name: "octo/repo-4"},
		{name: "octo/old", archived: true},
		{name: "octo/repo-5"},
	}
	pages := map[string]string{
		"":   repoPage(true, "c1", repos[:4]...),
		"c1": repoPage(false, "c2", repos[4:]...),
	}
	weights := map[string]int{"repo-1": 1, "repo-2": 2, "repo-3": 3, "repo-4": 4, "repo-5": 5}

	var cursors []string
	var restPaths []string
	graphql := pagedServer(t, pages, &cursors)
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/graphql" {
			graphql(w, r)
			return
		}
		restPaths = append(restPaths, r.URL.Path)
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/repos/"), "/")
		if len(parts) < 3 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		repo := parts[1]
		if repo == "repo-3" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if len(parts) == 3 {
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			fmt.Fprint(w, `[{"sha":"s1"},{"sha":"s2"}]`)
			return
		}
		n := weights[repo]
		fmt.Fprintf(w, `{"sha":%q,"stats":{"additions":%d,"deletions":%d,"total":%d}}`, parts[3], 10*n, n, 11*n)
	}
	gateway, hook := setupTestGateway(t, http.HandlerFunc(handler), Options{PageSize: 4, BatchSize: 2})

	loc, err := gateway.GetLinesOfCode(context.Background(), []string{"OWNER"})

	require.NoError(t, err)
	// repo-3 fails; the others contribute two commits each.
	assert.Equal(t, 240, loc.Added)
	assert.Equal(t, 24, loc.Deleted)
	assert.Equal(t, 216, loc.Total)
	assert.Equal(t, 8, loc.Commits)
	assert.Equal(t, []string{"", "c1"}, cursors)

	for _, path := range restPaths {
		assert.NotContains(t, path, "forked")
		assert.NotContains(t, path, "/old/")
	}

	var warnings []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings = append(warnings, entry)
		}
	}
	require.Len(t, warnings, 1)
	assert.Equal(t, "octo/repo-3", warnings[0].Data["repo"])

	counts := gateway.QueryCounts()
	assert.Equal(t, 2, counts[OpLOCDiscovery])
	assert.Equal(t, 4*3+1, counts[OpLOCDetail])
}

func TestGitHubGateway_GetLinesOfCode_DiscoveryFailureIsFatal(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"boom"}`)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), Options{})

	_, err := gateway.GetLinesOfCode(context.Background(), []string{"OWNER"})

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, OpLOCDiscovery, opErr.Operation)
	assert.Equal(t, http.StatusInternalServerError, opErr.StatusCode)
}

func TestGitHubGateway_QueryCountsIsACopy(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"user":{"followers":{"totalCount":100}}}}`)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), Options{})

	followers, err := gateway.GetFollowerCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, followers)

	snapshot := gateway.QueryCounts()
	snapshot[OpFollowers] = 99
	delete(snapshot, OpUserInfo)

	fresh := gateway.QueryCounts()
	assert.Equal(t, 1, fresh[OpFollowers])
	assert.Contains(t, fresh, OpUserInfo)
	assert.Equal(t, 1, gateway.TotalQueries())
}

func TestSplitRepo(t *testing.T) {
	owner, repo, err := splitRepo("octo/hello")
	require.NoError(t, err)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "hello", repo)

	for _, bad := range []string{"", "octo", "/hello", "octo/"} {
		_, _, err := splitRepo(bad)
		assert.Error(t, err, bad)
	}
}
