package browser

import (
	"context"

	"github.com/icdts/itemboard/internal/models"
)

// Client is the item endpoint as seen by a browser.
type Client interface {
	List(ctx context.Context) ([]models.Item, error)
	Create(ctx context.Context, name string) (models.Item, error)
	Update(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

// Sync performs mutations and re-reads the list afterwards, so callers always
// install what the server holds rather than a locally patched copy.
type Sync struct {
	client Client
}

func NewSync(c Client) *Sync {
	return &Sync{client: c}
}

func (s *Sync) Fetch(ctx context.Context) ([]models.Item, error) {
	return s.client.List(ctx)
}

// Add creates name and returns the fresh list. An empty name sends nothing
// and returns the current list.
func (s *Sync) Add(ctx context.Context, name string) ([]models.Item, error) {
	if name == "" {
		return s.Fetch(ctx)
	}
	if _, err := s.client.Create(ctx, name); err != nil {
		return nil, err
	}
	return s.Fetch(ctx)
}

func (s *Sync) Rename(ctx context.Context, id int64, name string) ([]models.Item, error) {
	if err := s.client.Update(ctx, id, name); err != nil {
		return nil, err
	}
	return s.Fetch(ctx)
}

func (s *Sync) Remove(ctx context.Context, id int64) ([]models.Item, error) {
	if err := s.client.Delete(ctx, id); err != nil {
		return nil, err
	}
	return s.Fetch(ctx)
}
