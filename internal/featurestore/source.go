package featurestore

import (
	"context"
	"fmt"
	"io"

	"shotscan/internal/faults"
	"shotscan/internal/features"
)

// Source pages through a stored stream in frame order.
type Source struct {
	store     *Store
	video     string
	stream    string
	batchSize int
	after     int
	pos       int
	done      bool
}

// Source returns a features.Source over video/stream. A batchSize <= 0 uses 256.
func (s *Store) Source(video, stream string, batchSize int) *Source {
	if batchSize <= 0 {
		batchSize = 256
	}
	return &Source{store: s, video: video, stream: stream, batchSize: batchSize, after: -1}
}

// Next returns the following batch or io.EOF. A stream with no records at all
// is reported as a source error.
func (src *Source) Next(ctx context.Context) (features.Batch, error) {
	if err := ctx.Err(); err != nil {
		return features.Batch{}, err
	}
	if src.done {
		return features.Batch{}, io.EOF
	}

	rows, err := src.store.db.QueryContext(ctx,
		`SELECT frame, dim, codec, vector FROM features
         WHERE video = ? AND stream = ? AND frame > ?
         ORDER BY frame LIMIT ?`,
		src.video, src.stream, src.after, src.batchSize)
	if err != nil {
		return features.Batch{}, faults.Wrap(faults.ErrStore, "featurestore", "read", src.video+"/"+src.stream, err)
	}
	defer rows.Close()

	batch := features.Batch{Begin: src.pos, Records: make([]features.Record, 0, src.batchSize)}
	for rows.Next() {
		var (
			frame, dim, codec int
			blob              []byte
		)
		if err := rows.Scan(&frame, &dim, &codec, &blob); err != nil {
			return features.Batch{}, faults.Wrap(faults.ErrStore, "featurestore", "read", "scan", err)
		}
		vec, err := decodeVector(codecID(codec), dim, blob)
		if err != nil {
			return features.Batch{}, faults.Wrap(faults.ErrSource, "featurestore", "read", fmt.Sprintf("frame %d", frame), err)
		}
		batch.Records = append(batch.Records, features.Record{Index: frame, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return features.Batch{}, faults.Wrap(faults.ErrStore, "featurestore", "read", src.video+"/"+src.stream, err)
	}

	if len(batch.Records) == 0 {
		src.done = true
		if src.pos == 0 {
			return features.Batch{}, faults.Wrap(faults.ErrSource, "featurestore", "read",
				fmt.Sprintf("no features stored for %s/%s", src.video, src.stream), nil)
		}
		return features.Batch{}, io.EOF
	}
	if len(batch.Records) < src.batchSize {
		src.done = true
	}
	src.after = batch.Records[len(batch.Records)-1].Index
	src.pos += len(batch.Records)
	return batch, nil
}
