package http

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"

	"github.com/cinelogapp/cinelog/internal/httputil"
	"github.com/cinelogapp/cinelog/pkg/discovery"
	"github.com/cinelogapp/cinelog/review/pkg/model"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no identity exists for the user id.
var ErrNotFound = errors.New("identity not found")

// Gateway resolves author display identities against the users service,
// located through the service registry.
type Gateway struct {
	registry discovery.Registry
	client   *httputil.Client
	logger   *zap.Logger
}

func New(registry discovery.Registry, client *httputil.Client, logger *zap.Logger) *Gateway {
	return &Gateway{registry: registry, client: client, logger: logger}
}

type identityResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef"`
}

// Resolve fetches the display identity for a user id.
func (g *Gateway) Resolve(ctx context.Context, id model.UserID) (*model.Identity, error) {
	addrs, err := g.registry.ServiceAddresses(ctx, "users")
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("http://%s/identity?id=%s", addrs[rand.Intn(len(addrs))], url.QueryEscape(string(id)))

	var resp identityResponse
	if err := g.client.GetJSON(ctx, u, nil, &resp); err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &model.Identity{
		UserID:      model.UserID(resp.UserID),
		DisplayName: resp.DisplayName,
		AvatarRef:   resp.AvatarRef,
	}, nil
}
