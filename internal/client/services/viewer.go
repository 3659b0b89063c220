package services

import (
	"context"

	"github.com/ficomdev/ficomtest/internal/client/client"
	"github.com/ficomdev/ficomtest/internal/client/models"
)

// ViewerService reads the server-side profile of the authenticated user.
type ViewerService interface {
	Current(ctx context.Context) (*models.User, error)
}

const viewerQuery = `query Viewer {
  viewer { id email name createdAt updatedAt }
}`

type viewerService struct {
	api Gateway
}

func NewViewerService(api Gateway) ViewerService {
	return &viewerService{api: api}
}

// Current fetches the viewer. Responses are cacheable per identity; the
// cache is purged whenever auth state is cleared.
func (s *viewerService) Current(ctx context.Context) (*models.User, error) {
	var resp struct {
		Viewer *models.User `json:"viewer"`
	}
	req := &client.Request{Query: viewerQuery, OperationName: "Viewer"}
	if err := s.api.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Viewer, nil
}
