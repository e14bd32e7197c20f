package gateway

import "github.com/shurcooL/githubv4"

type userInfoQuery struct {
	User struct {
		ID              string
		CreatedAt       githubv4.DateTime
		Location        *string
		WebsiteURL      *string `graphql:"websiteUrl"`
		Email           *string
		TwitterUsername *string
		Bio             *string
		Company         *string
		IsHireable      bool
	} `graphql:"user(login: $login)"`
}

type followerCountQuery struct {
	User struct {
		Followers struct {
			TotalCount int
		}
	} `graphql:"user(login: $login)"`
}

// repositoryCountQuery only needs totalCount; the API still insists on a page size.
type repositoryCountQuery struct {
	User struct {
		Repositories struct {
			TotalCount int
		} `graphql:"repositories(first: 1, ownerAffiliations: $ownerAffiliations)"`
	} `graphql:"user(login: $login)"`
}

type repositoryPageQuery struct {
	User struct {
		Repositories struct {
			Edges []struct {
				Node struct {
					NameWithOwner string
					IsFork        bool
					IsArchived    bool
					Stargazers    struct {
						TotalCount int
					}
				}
			}
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
		} `graphql:"repositories(first: $first, after: $cursor, ownerAffiliations: $ownerAffiliations)"`
	} `graphql:"user(login: $login)"`
}

type contributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions int
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}
