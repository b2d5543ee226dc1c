package model

import "fmt"

// MovieID is the provider-stable identifier of a movie. Items are
// deduplicated by id only.
type MovieID string

// Filter is a named, mutually exclusive catalog view. Exactly one filter
// is active at a time in the catalog engine.
type Filter string

const (
	FilterTrending   = Filter("trending")
	FilterPopular    = Filter("popular")
	FilterTopRated   = Filter("top_rated")
	FilterNowPlaying = Filter("now_playing")
)

// ParseFilter maps a raw filter keyword to a known Filter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterTrending, FilterPopular, FilterTopRated, FilterNowPlaying:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// MovieSummary is one normalized catalog entry.
type MovieSummary struct {
	ID          MovieID `json:"id"`
	Title       string  `json:"title"`
	PosterRef   string  `json:"posterRef,omitempty"`
	ReleaseYear int     `json:"releaseYear,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

// Page is one bounded batch of catalog items as returned by a provider.
type Page struct {
	Number int            `json:"number"`
	Items  []MovieSummary `json:"items"`
	IsLast bool           `json:"isLast"`
}

// CatalogState is a snapshot of the paginated catalog engine.
type CatalogState struct {
	ActiveFilter  Filter         `json:"activeFilter"`
	Items         []MovieSummary `json:"items"`
	CurrentPage   int            `json:"currentPage"`
	IsLoadingMore bool           `json:"isLoadingMore"`
	LastError     string         `json:"lastError,omitempty"`
}

// FeedState is a snapshot of the discovery queue engine.
type FeedState struct {
	Queue     []MovieSummary `json:"queue"`
	NextPage  int            `json:"nextPage"`
	IsLoading bool           `json:"isLoading"`
	Exhausted bool           `json:"exhausted"`
	LastError string         `json:"lastError,omitempty"`
}
