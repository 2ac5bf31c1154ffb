// Package store holds the item collection behind the HTTP endpoint.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/icdts/itemboard/internal/config"
	"github.com/icdts/itemboard/internal/db"
	"github.com/icdts/itemboard/internal/models"
)

// ErrNotFound is returned by Update and Delete when no item has the id.
var ErrNotFound = errors.New("item not found")

// ErrNameRequired is returned by Create for an empty name.
var ErrNameRequired = &ValidationError{Field: "name", Message: "Name is required"}

// ValidationError is returned when input fails a presence check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// Store is an ordered collection of items. Implementations must be safe for
// concurrent use; List returns items in insertion order.
type Store interface {
	List(ctx context.Context) ([]models.Item, error)
	Create(ctx context.Context, name string) (models.Item, error)
	Update(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		if cfg.Seed {
			return NewSeededMemory(), nil
		}
		return NewMemory(), nil
	case config.DriverSQLite:
		conn, err := db.ConnectSQLite(cfg.SQLitePath, cfg.Seed)
		if err != nil {
			return nil, err
		}
		return NewSQL(conn), nil
	case config.DriverPostgres:
		conn, err := db.ConnectPostgres(cfg.DatabaseURL, cfg.Seed)
		if err != nil {
			return nil, err
		}
		return NewSQL(conn), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
