// internal/github/client.go
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	custom_errors "github-portfolio-api/internal/errors"
	"github-portfolio-api/internal/model"
)

const (
	// Max per page; the listing never paginates past the first page.
	listPageSize = 100

	// DefaultTimeout bounds every upstream request when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	userAgent = "GitHub-Template-API"
)

// Client is a wrapper around the go-github REST client and the githubv4 GraphQL client,
// bound to a single GitHub account.
type Client struct {
	gh       *github.Client
	gql      *githubv4.Client
	username string
	logger   *slog.Logger
}

// NewClient creates and configures a new Client instance for the given account.
// The provided token is used to create an authenticated http.Client shared by REST and GraphQL calls.
func NewClient(token, username string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = timeout

	gh := github.NewClient(tc)
	gh.UserAgent = userAgent

	return &Client{
		gh:       gh,
		gql:      githubv4.NewClient(tc),
		username: username,
		logger:   logger,
	}
}

// WithEnterpriseURLs points the client at a GitHub Enterprise Server instance.
// Empty URLs keep the public GitHub endpoints.
func (c *Client) WithEnterpriseURLs(apiURL, graphqlURL string) (*Client, error) {
	c2 := *c
	if apiURL != "" {
		gh, err := c.gh.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, err
		}
		c2.gh = gh
	}
	if graphqlURL != "" {
		c2.gql = githubv4.NewEnterpriseClient(graphqlURL, c.gh.Client())
	}
	return &c2, nil
}

// Username returns the account whose repositories are served.
func (c *Client) Username() string { return c.username }

// ListRepositories fetches the first page of repositories owned by the account, sorted
// descending by sort, then drops forks when excludeForks is set and keeps only the given
// languages when any are supplied. Upstream failures are returned as *errors.UpstreamUnavailableError.
func (c *Client) ListRepositories(ctx context.Context, sort string, excludeForks bool, languages []string) ([]model.Repository, error) {
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        sort,
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}

	c.logger.Debug("Fetching repositories", "user", c.username, "sort", sort)
	repos, _, err := c.gh.Repositories.ListByUser(ctx, c.username, opts)
	if err != nil {
		c.logger.Error("Error fetching repositories", "user", c.username, "error", err)
		return nil, &custom_errors.UpstreamUnavailableError{Op: "fetch repositories", Err: err}
	}

	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, toRESTRepository(r))
	}
	return model.FilterRepositories(out, excludeForks, languages), nil
}

// RepositoryLanguages returns bytes of code per language for one repository.
// Failures are logged and yield an empty map.
func (c *Client) RepositoryLanguages(ctx context.Context, name string) map[string]int {
	languages, _, err := c.gh.Repositories.ListLanguages(ctx, c.username, name)
	if err != nil {
		c.logger.Error("Error fetching languages", "repo", name, "error", err)
		return map[string]int{}
	}
	if languages == nil {
		return map[string]int{}
	}
	return languages
}

// RepositoryReadme returns the decoded README of one repository, or nil when the
// repository has none or it could not be fetched.
func (c *Client) RepositoryReadme(ctx context.Context, name string) *model.Readme {
	content, _, err := c.gh.Repositories.GetReadme(ctx, c.username, name, nil)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			c.logger.Debug("No README found", "repo", name)
			return nil
		}
		c.logger.Error("Error fetching README", "repo", name, "error", err)
		return nil
	}
	if content == nil {
		return nil
	}

	text, err := content.GetContent()
	if err != nil {
		c.logger.Error("Error decoding README", "repo", name, "error", err)
		return nil
	}
	if text == "" {
		return nil
	}

	return &model.Readme{
		Path:        content.GetPath(),
		Size:        content.GetSize(),
		Content:     text,
		DownloadURL: content.GetDownloadURL(),
	}
}

// toRESTRepository translates a github.Repository object to our internal model.Repository.
// The REST payload carries no language breakdown or color, and is_fork is left unset.
func toRESTRepository(r *github.Repository) model.Repository {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}

	repo := model.Repository{
		ID:          r.GetID(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		URL:         r.GetHTMLURL(),
		CloneURL:    r.GetCloneURL(),
		Language:    r.Language,
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
		Topics:      topics,
		IsPrivate:   r.GetPrivate(),
		Archived:    r.GetArchived(),
		Homepage:    r.Homepage,
		Fork:        r.GetFork(),
	}
	if r.PushedAt != nil {
		pushed := r.PushedAt.Time
		repo.PushedAt = &pushed
	}
	return repo
}
