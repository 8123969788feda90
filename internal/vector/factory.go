package vector

import (
	"context"
	"fmt"

	"github.com/hyperjump/annai/internal/config"
)

// New creates the similarity index selected by the config backend:
// "memory" (default) or "qdrant".
func New(ctx context.Context, cfg config.VectorConfig, dimensions int) (Index, error) {
	switch cfg.Backend {
	case "memory", "":
		idx, err := NewMemoryIndex(dimensions)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case "qdrant":
		idx, err := NewQdrantIndex(ctx, cfg.QdrantAddr, cfg.QdrantCollection, dimensions)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown vector backend: %q (supported: memory, qdrant)", cfg.Backend)
	}
}
