package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/cinelogapp/cinelog/internal/httputil"
	"go.uber.org/zap"
)

// Feed selects which TMDB listing a gateway instance serves.
type Feed string

const (
	FeedTrending = Feed("trending/movie/week")
	FeedPopular  = Feed("movie/popular")
	FeedDiscover = Feed("discover/movie")
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Gateway fetches normalized movie pages from one TMDB listing.
type Gateway struct {
	addr   string
	token  string
	feed   Feed
	client *httputil.Client
	logger *zap.Logger
}

func New(addr, token string, feed Feed, client *httputil.Client, logger *zap.Logger) *Gateway {
	return &Gateway{addr: addr, token: token, feed: feed, client: client, logger: logger}
}

type pageResponse struct {
	Page       int             `json:"page"`
	Results    []movieResponse `json:"results"`
	TotalPages int             `json:"total_pages"`
}

type movieResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

// FetchPage returns one page of the gateway's listing.
func (g *Gateway) FetchPage(ctx context.Context, page int) (*model.Page, error) {
	url := fmt.Sprintf("%s/3/%s?language=en-US&page=%d", g.addr, g.feed, page)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+g.token)

	var resp pageResponse
	if err := g.client.GetJSON(ctx, url, header, &resp); err != nil {
		return nil, fmt.Errorf("tmdb %s page %d: %w", g.feed, page, err)
	}

	items := make([]model.MovieSummary, 0, len(resp.Results))
	for _, m := range resp.Results {
		s := model.MovieSummary{
			ID:     model.MovieID(strconv.FormatInt(m.ID, 10)),
			Title:  m.Title,
			Rating: m.VoteAverage,
		}
		if m.PosterPath != "" {
			s.PosterRef = posterBaseURL + m.PosterPath
		}
		if len(m.ReleaseDate) >= 4 {
			if y, err := strconv.Atoi(m.ReleaseDate[:4]); err == nil {
				s.ReleaseYear = y
			}
		}
		items = append(items, s)
	}
	return &model.Page{
		Number: page,
		Items:  items,
		IsLast: resp.TotalPages > 0 && resp.Page >= resp.TotalPages,
	}, nil
}
