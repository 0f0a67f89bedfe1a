// Package store provides data storage interfaces and implementations.
package store

import (
	"context"

	"github.com/naughtygopher/errors"

	"github.com/vyrodovalexey/item-api/internal/model"
)

// Messages reported to clients for the two domain error kinds.
const (
	MsgNameRequired = "Name is required"
	MsgNotFound     = "Item not found"
)

// Store errors. Each carries the HTTP class it is reported with.
var (
	ErrNameRequired = errors.InputBody(MsgNameRequired)
	ErrNotFound     = errors.NotFound(MsgNotFound)
)

// Store defines the interface for item storage operations.
type Store interface {
	// List returns all items in insertion order.
	List(ctx context.Context) ([]model.Item, error)

	// Get retrieves an item by its ID.
	Get(ctx context.Context, id int64) (*model.Item, error)

	// Create validates input, assigns the next ID and appends the item.
	Create(ctx context.Context, input *model.CreateItemInput) (*model.Item, error)

	// Update applies the present fields of input to an existing item.
	Update(ctx context.Context, id int64, input *model.UpdateItemInput) (*model.Item, error)

	// Delete removes an item from the store by its ID and returns it.
	Delete(ctx context.Context, id int64) (*model.Item, error)
}
