// internal/model/models.go
package model

import (
	"time"
)

// Repository is the normalized shape of a GitHub repository.
// Fields marked omitempty are only filled by one of the two upstream paths.
type Repository struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	FullName      string         `json:"full_name"`
	Description   string         `json:"description"`
	URL           string         `json:"url"`
	CloneURL      string         `json:"clone_url,omitempty"`
	Language      *string        `json:"language"`
	LanguageColor *string        `json:"language_color,omitempty"`
	Stars         int            `json:"stars"`
	Forks         int            `json:"forks"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	PushedAt      *time.Time     `json:"pushed_at"`
	Topics        []string       `json:"topics"`
	Languages     map[string]int `json:"languages,omitempty"`
	IsPrivate     bool           `json:"is_private"`
	IsFork        *bool          `json:"is_fork,omitempty"`
	Archived      bool           `json:"archived"`
	Homepage      *string        `json:"homepage"`
	IsPinned      bool           `json:"is_pinned"`

	// Fork mirrors the provider's fork flag on every path so listings can be
	// filtered after they leave the cache.
	Fork bool `json:"-"`
}

// Readme is a repository README with its content decoded to text.
type Readme struct {
	Path        string `json:"path"`
	Size        int    `json:"size"`
	Content     string `json:"content"`
	DownloadURL string `json:"download_url"`
}

// FeaturedRepository is the trimmed shape served by the featured endpoint.
type FeaturedRepository struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Language    *string   `json:"language"`
	Stars       int       `json:"stars"`
	Topics      []string  `json:"topics"`
	LastUpdated time.Time `json:"last_updated"`
}

// PinnedRepository is the display shape served by the pinned endpoint.
type PinnedRepository struct {
	Name          string         `json:"name"`
	FullName      string         `json:"full_name"`
	Description   string         `json:"description"`
	URL           string         `json:"url"`
	Homepage      *string        `json:"homepage"`
	Language      *string        `json:"language"`
	LanguageColor *string        `json:"language_color"`
	Stars         int            `json:"stars"`
	Forks         int            `json:"forks"`
	Topics        []string       `json:"topics"`
	Languages     map[string]int `json:"languages"`
	LastUpdated   time.Time      `json:"last_updated"`
	IsPinned      bool           `json:"is_pinned"`
}
