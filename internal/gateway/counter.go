package gateway

// Operation names used as query counter keys.
const (
	OpUserInfo     = "user_getter"
	OpFollowers    = "follower_getter"
	OpReposStars   = "graph_repos_stars"
	OpLOCDiscovery = "recursive_loc"
	OpCommits      = "graph_commits"
	OpLOCDetail    = "loc_query"
)

// Operations lists every counted operation in reporting order.
var Operations = []string{OpUserInfo, OpFollowers, OpReposStars, OpLOCDiscovery, OpCommits, OpLOCDetail}

// QueryCounter counts API requests per operation for end-of-run diagnostics.
// Runs are strictly sequential, so it carries no lock.
type QueryCounter struct {
	counts map[string]int
}

// NewQueryCounter returns a counter with every known operation at zero.
func NewQueryCounter() *QueryCounter {
	counts := make(map[string]int, len(Operations))
	for _, op := range Operations {
		counts[op] = 0
	}
	return &QueryCounter{counts: counts}
}

// Inc records one request for op.
func (c *QueryCounter) Inc(op string) {
	c.counts[op]++
}

// Snapshot returns a copy of the counts.
func (c *QueryCounter) Snapshot() map[string]int {
	out := make(map[string]int, len(c.counts))
	for op, n := range c.counts {
		out[op] = n
	}
	return out
}

// Total is the number of requests across all operations.
func (c *QueryCounter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}
