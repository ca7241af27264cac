package storage

import (
	"context"

	"github.com/mcoot/userdata-go/internal/model"
)

// Storage defines the interface for link persistence
type Storage interface {
	// Link operations, keyed by gcid
	SaveLink(ctx context.Context, link *model.Link) error
	GetLink(ctx context.Context, gcid string) (*model.Link, error)
	DeleteLink(ctx context.Context, gcid string) error
	LinkExists(ctx context.Context, gcid string) (bool, error)

	// UpdateLink applies fn to the stored link as one atomic read-modify-write.
	// An error from fn aborts the update and is returned unchanged.
	UpdateLink(ctx context.Context, gcid string, fn func(*model.Link) error) (*model.Link, error)

	// Lookups by device connection id
	GetLinkByDCID(ctx context.Context, dcid string) (*model.Link, error)
	DCIDExists(ctx context.Context, dcid string) (bool, error)
}
