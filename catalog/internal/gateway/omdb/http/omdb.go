package http

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/cinelogapp/cinelog/internal/httputil"
	"go.uber.org/zap"
)

// omdbPageSize is fixed by the upstream search API.
const omdbPageSize = 10

// Gateway fetches now-playing movie pages from the OMDb search API. OMDb
// has no listing endpoint, so the gateway pages through a configured
// search query (the current year by default).
type Gateway struct {
	addr   string
	apiKey string
	query  string
	client *httputil.Client
	logger *zap.Logger
}

func New(addr, apiKey, query string, client *httputil.Client, logger *zap.Logger) *Gateway {
	return &Gateway{addr: addr, apiKey: apiKey, query: query, client: client, logger: logger}
}

type searchResponse struct {
	Search       []searchResult `json:"Search"`
	TotalResults string         `json:"totalResults"`
	Response     string         `json:"Response"`
	Error        string         `json:"Error"`
}

type searchResult struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Poster string `json:"Poster"`
}

func (g *Gateway) FetchPage(ctx context.Context, page int) (*model.Page, error) {
	u := fmt.Sprintf("%s/?s=%s&type=movie&page=%d&apikey=%s",
		g.addr, url.QueryEscape(g.query), page, g.apiKey)

	var resp searchResponse
	if err := g.client.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("omdb page %d: %w", page, err)
	}
	// OMDb reports "Movie not found!" past the last page rather than an
	// empty list.
	if resp.Response != "True" {
		return &model.Page{Number: page, IsLast: true}, nil
	}

	items := make([]model.MovieSummary, 0, len(resp.Search))
	for _, m := range resp.Search {
		s := model.MovieSummary{
			ID:    model.MovieID(m.ImdbID),
			Title: m.Title,
		}
		if m.Poster != "" && m.Poster != "N/A" {
			s.PosterRef = m.Poster
		}
		if len(m.Year) >= 4 {
			if y, err := strconv.Atoi(m.Year[:4]); err == nil {
				s.ReleaseYear = y
			}
		}
		items = append(items, s)
	}

	total, _ := strconv.Atoi(resp.TotalResults)
	return &model.Page{
		Number: page,
		Items:  items,
		IsLast: total > 0 && page*omdbPageSize >= total,
	}, nil
}
