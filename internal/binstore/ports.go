// Package binstore defines the document store port: one JSON document per
// bin id, load and save, no versioning, last writer wins.
package binstore

import (
	"context"
	"encoding/json"

	"registro/internal/core"
)

// Store is the outbound port to the document service. Load returns
// (nil, nil) when the bin holds no document yet; callers feed the raw bytes
// through core.FromDocument, which tolerates any malformed payload.
type Store interface {
	Load(ctx context.Context, binID string) (json.RawMessage, error)
	Save(ctx context.Context, binID string, doc core.Document) error
}
