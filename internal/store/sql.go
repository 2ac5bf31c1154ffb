package store

import (
	"context"
	"fmt"

	"github.com/icdts/itemboard/internal/models"

	"github.com/jmoiron/sqlx"
)

// SQL stores items in a SQLite or Postgres table through sqlx.
type SQL struct {
	db *sqlx.DB
}

// NewSQL wraps an already bootstrapped connection (see package db).
func NewSQL(db *sqlx.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) List(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	if err := s.db.SelectContext(ctx, &items, "SELECT id, name FROM items ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *SQL) Create(ctx context.Context, name string) (models.Item, error) {
	if name == "" {
		return models.Item{}, ErrNameRequired
	}

	item := models.Item{Name: name}
	query := s.db.Rebind("INSERT INTO items (name) VALUES (?) RETURNING id")
	if err := s.db.GetContext(ctx, &item.ID, query, name); err != nil {
		return models.Item{}, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

func (s *SQL) Update(ctx context.Context, id int64, name string) error {
	query := s.db.Rebind("UPDATE items SET name = ? WHERE id = ?")
	res, err := s.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("update item %d: %w", id, err)
	}
	return requireAffected(res.RowsAffected())
}

func (s *SQL) Delete(ctx context.Context, id int64) error {
	query := s.db.Rebind("DELETE FROM items WHERE id = ?")
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	return requireAffected(res.RowsAffected())
}

func requireAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) Close() error {
	return s.db.Close()
}

var _ Store = (*SQL)(nil)
