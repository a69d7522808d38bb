// internal/model/listing.go
package model

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Sort keys accepted by the repository listing.
const (
	SortUpdated  = "updated"
	SortCreated  = "created"
	SortPushed   = "pushed"
	SortFullName = "full_name"
)

const (
	maxDisplayTopics   = 5
	defaultDescription = "No description available"
)

// ValidSort reports whether s is a recognized sort key.
func ValidSort(s string) bool {
	switch s {
	case SortUpdated, SortCreated, SortPushed, SortFullName:
		return true
	}
	return false
}

// FilterRepositories drops forks when excludeForks is set, then drops entries whose
// language is not in languages (case-insensitive) when languages is non-empty.
// The input slice is not modified.
func FilterRepositories(repos []Repository, excludeForks bool, languages []string) []Repository {
	allowed := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			allowed[l] = struct{}{}
		}
	}

	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		if excludeForks && r.Fork {
			continue
		}
		if len(allowed) > 0 {
			if r.Language == nil {
				continue
			}
			if _, ok := allowed[strings.ToLower(*r.Language)]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// SortRepositories returns a copy of repos ordered descending by the given key.
// Ties keep their incoming order.
func SortRepositories(repos []Repository, key string) []Repository {
	out := slices.Clone(repos)
	slices.SortStableFunc(out, func(a, b Repository) int {
		switch key {
		case SortCreated:
			return b.CreatedAt.Compare(a.CreatedAt)
		case SortPushed:
			return pushedAt(b).Compare(pushedAt(a))
		case SortFullName:
			return cmp.Compare(strings.ToLower(b.FullName), strings.ToLower(a.FullName))
		default:
			return b.UpdatedAt.Compare(a.UpdatedAt)
		}
	})
	return out
}

// Limit truncates repos to n entries. Non-positive n means no limit.
func Limit(repos []Repository, n int) []Repository {
	if n > 0 && n < len(repos) {
		return repos[:n]
	}
	return repos
}

// Featured ranks non-fork repositories by stars, then by most recent update,
// and returns the top n in display form.
func Featured(repos []Repository, n int) []FeaturedRepository {
	ranked := FilterRepositories(repos, true, nil)
	slices.SortStableFunc(ranked, func(a, b Repository) int {
		if c := cmp.Compare(b.Stars, a.Stars); c != 0 {
			return c
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	ranked = Limit(ranked, n)

	out := make([]FeaturedRepository, 0, len(ranked))
	for _, r := range ranked {
		desc := r.Description
		if desc == "" {
			desc = defaultDescription
		}
		out = append(out, FeaturedRepository{
			Name:        r.Name,
			Description: desc,
			URL:         r.URL,
			Language:    r.Language,
			Stars:       r.Stars,
			Topics:      truncateTopics(r.Topics),
			LastUpdated: r.UpdatedAt,
		})
	}
	return out
}

// ToPinned converts pinned repositories into their display form.
func ToPinned(repos []Repository) []PinnedRepository {
	out := make([]PinnedRepository, 0, len(repos))
	for _, r := range repos {
		languages := r.Languages
		if languages == nil {
			languages = map[string]int{}
		}
		out = append(out, PinnedRepository{
			Name:          r.Name,
			FullName:      r.FullName,
			Description:   r.Description,
			URL:           r.URL,
			Homepage:      r.Homepage,
			Language:      r.Language,
			LanguageColor: r.LanguageColor,
			Stars:         r.Stars,
			Forks:         r.Forks,
			Topics:        truncateTopics(r.Topics),
			Languages:     languages,
			LastUpdated:   r.UpdatedAt,
			IsPinned:      r.IsPinned,
		})
	}
	return out
}

func truncateTopics(topics []string) []string {
	if len(topics) > maxDisplayTopics {
		topics = topics[:maxDisplayTopics]
	}
	if topics == nil {
		return []string{}
	}
	return slices.Clone(topics)
}

func pushedAt(r Repository) time.Time {
	if r.PushedAt == nil {
		return time.Time{}
	}
	return *r.PushedAt
}
