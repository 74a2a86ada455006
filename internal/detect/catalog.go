package detect

import (
	"context"

	"shotscan/internal/features"
	"shotscan/internal/featurestore"
)

// Catalog resolves the feature streams of a video.
type Catalog interface {
	StreamNames(ctx context.Context, video string) ([]string, error)
	Open(video, stream string, batchSize int) features.Source
}

type storeCatalog struct {
	store *featurestore.Store
}

// StoreCatalog adapts a feature store to Catalog.
func StoreCatalog(store *featurestore.Store) Catalog {
	return storeCatalog{store: store}
}

func (c storeCatalog) StreamNames(ctx context.Context, video string) ([]string, error) {
	infos, err := c.store.Streams(ctx, video)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}

func (c storeCatalog) Open(video, stream string, batchSize int) features.Source {
	return c.store.Source(video, stream, batchSize)
}
