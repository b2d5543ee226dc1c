package http

import (
	"context"
	"fmt"

	"github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/cinelogapp/cinelog/internal/httputil"
	"go.uber.org/zap"
)

// Gateway fetches top-rated movie pages from the IMDb titles API.
type Gateway struct {
	addr   string
	client *httputil.Client
	logger *zap.Logger
}

func New(addr string, client *httputil.Client, logger *zap.Logger) *Gateway {
	return &Gateway{addr: addr, client: client, logger: logger}
}

type titlesResponse struct {
	Titles        []titleResponse `json:"titles"`
	NextPageToken string          `json:"nextPageToken"`
}

type titleResponse struct {
	ID           string `json:"id"`
	PrimaryTitle string `json:"primaryTitle"`
	StartYear    int    `json:"startYear"`
	PrimaryImage *struct {
		URL string `json:"url"`
	} `json:"primaryImage"`
	Rating *struct {
		AggregateRating float64 `json:"aggregateRating"`
	} `json:"rating"`
}

func (g *Gateway) FetchPage(ctx context.Context, page int) (*model.Page, error) {
	url := fmt.Sprintf("%s/titles?types=MOVIE&sortBy=SORT_BY_USER_RATING&sortOrder=DESC&page=%d", g.addr, page)

	var resp titlesResponse
	if err := g.client.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("imdb page %d: %w", page, err)
	}

	items := make([]model.MovieSummary, 0, len(resp.Titles))
	for _, t := range resp.Titles {
		s := model.MovieSummary{
			ID:          model.MovieID(t.ID),
			Title:       t.PrimaryTitle,
			ReleaseYear: t.StartYear,
		}
		if t.PrimaryImage != nil {
			s.PosterRef = t.PrimaryImage.URL
		}
		if t.Rating != nil {
			s.Rating = t.Rating.AggregateRating
		}
		items = append(items, s)
	}
	return &model.Page{
		Number: page,
		Items:  items,
		IsLast: resp.NextPageToken == "",
	}, nil
}
