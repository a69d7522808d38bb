// internal/github/pinned.go
package github

import (
	"context"

	"github.com/shurcooL/githubv4"

	"github-portfolio-api/internal/model"
)

// pinnedQuery asks for up to 6 pinned repositories of a user.
type pinnedQuery struct {
	User struct {
		PinnedItems struct {
			Nodes []struct {
				Repository pinnedRepository `graphql:"... on Repository"`
			}
		} `graphql:"pinnedItems(first: 6, types: REPOSITORY)"`
	} `graphql:"user(login: $login)"`
}

// databaseID holds repository database IDs, which outgrow githubv4.Int (int32).
type databaseID int64

type pinnedRepository struct {
	DatabaseID      databaseID
	Name            githubv4.String
	NameWithOwner   githubv4.String
	Description     *githubv4.String
	URL             githubv4.URI
	HomepageURL     *githubv4.URI
	StargazerCount  githubv4.Int
	ForkCount       githubv4.Int
	IsPrivate       githubv4.Boolean
	IsFork          githubv4.Boolean
	IsArchived      githubv4.Boolean
	CreatedAt       githubv4.DateTime
	UpdatedAt       githubv4.DateTime
	PushedAt        *githubv4.DateTime
	PrimaryLanguage *struct {
		Name  githubv4.String
		Color *githubv4.String
	}
	Languages struct {
		Edges []struct {
			Size githubv4.Int
			Node struct {
				Name githubv4.String
			}
		}
	} `graphql:"languages(first: 5, orderBy: {field: SIZE, direction: DESC})"`
	RepositoryTopics struct {
		Nodes []struct {
			Topic struct {
				Name githubv4.String
			}
		}
	} `graphql:"repositoryTopics(first: 10)"`
}

// PinnedRepositories returns the repositories pinned on the account's profile.
// Transport failures and GraphQL errors (e.g. missing token scopes) are logged
// and yield an empty slice.
func (c *Client) PinnedRepositories(ctx context.Context) []model.Repository {
	var q pinnedQuery
	vars := map[string]any{
		"login": githubv4.String(c.username),
	}

	c.logger.Debug("Fetching pinned repositories", "user", c.username)
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		c.logger.Error("Error fetching pinned repositories", "user", c.username, "error", err)
		return []model.Repository{}
	}

	out := make([]model.Repository, 0, len(q.User.PinnedItems.Nodes))
	for _, n := range q.User.PinnedItems.Nodes {
		out = append(out, toPinnedRepository(n.Repository))
	}
	return out
}

// toPinnedRepository flattens a GraphQL repository node into our internal model.Repository.
// GraphQL has no clone URL, but carries the fork flag, language color and language sizes.
func toPinnedRepository(r pinnedRepository) model.Repository {
	isFork := bool(r.IsFork)
	repo := model.Repository{
		ID:        int64(r.DatabaseID),
		Name:      string(r.Name),
		FullName:  string(r.NameWithOwner),
		Stars:     int(r.StargazerCount),
		Forks:     int(r.ForkCount),
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
		Topics:    make([]string, 0, len(r.RepositoryTopics.Nodes)),
		Languages: make(map[string]int, len(r.Languages.Edges)),
		IsPrivate: bool(r.IsPrivate),
		IsFork:    &isFork,
		Archived:  bool(r.IsArchived),
		IsPinned:  true,
		Fork:      isFork,
	}

	if r.Description != nil {
		repo.Description = string(*r.Description)
	}
	if r.URL.URL != nil {
		repo.URL = r.URL.String()
	}
	if r.HomepageURL != nil && r.HomepageURL.URL != nil {
		homepage := r.HomepageURL.String()
		repo.Homepage = &homepage
	}
	if r.PushedAt != nil {
		pushed := r.PushedAt.Time
		repo.PushedAt = &pushed
	}
	if r.PrimaryLanguage != nil {
		name := string(r.PrimaryLanguage.Name)
		repo.Language = &name
		if r.PrimaryLanguage.Color != nil {
			color := string(*r.PrimaryLanguage.Color)
			repo.LanguageColor = &color
		}
	}
	for _, e := range r.Languages.Edges {
		repo.Languages[string(e.Node.Name)] = int(e.Size)
	}
	for _, n := range r.RepositoryTopics.Nodes {
		repo.Topics = append(repo.Topics, string(n.Topic.Name))
	}
	return repo
}
