package featurestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"shotscan/internal/faults"
	"shotscan/internal/features"
)

// StreamInfo summarizes one stored feature stream.
type StreamInfo struct {
	Name       string `json:"name"`
	Frames     int    `json:"frames"`
	Dimension  int    `json:"dimension"`
	FirstFrame int    `json:"first_frame"`
	LastFrame  int    `json:"last_frame"`
}

// Stats describes the store as a whole.
type Stats struct {
	Videos       int   `json:"videos"`
	Streams      int   `json:"streams"`
	Records      int   `json:"records"`
	PayloadBytes int64 `json:"payload_bytes"`
	FileBytes    int64 `json:"file_bytes"`
}

func validKey(video, stream string) error {
	if strings.TrimSpace(video) == "" {
		return faults.Wrap(faults.ErrConfiguration, "featurestore", "key", "video name is empty", nil)
	}
	if strings.TrimSpace(stream) == "" {
		return faults.Wrap(faults.ErrConfiguration, "featurestore", "key", "stream name is empty", nil)
	}
	return nil
}

// Put stores records for video/stream, replacing existing frames. All vectors
// must share the dimension already stored for the stream.
func (s *Store) Put(ctx context.Context, video, stream string, records []features.Record) error {
	if err := validKey(video, stream); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	return s.withWriteLock(func() error {
		return s.put(ctx, video, stream, records)
	})
}

// Import drains src into video/stream under a single writer lock and returns
// the number of stored records.
func (s *Store) Import(ctx context.Context, video, stream string, src features.Source) (int, error) {
	if err := validKey(video, stream); err != nil {
		return 0, err
	}
	total := 0
	err := s.withWriteLock(func() error {
		for {
			batch, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := s.put(ctx, video, stream, batch.Records); err != nil {
				return err
			}
			total += batch.Len()
		}
	})
	return total, err
}

func (s *Store) put(ctx context.Context, video, stream string, records []features.Record) error {
	dim, err := s.dimension(ctx, video, stream)
	if err != nil {
		return err
	}
	if _, err := features.CheckDimension(dim, records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrStore, "featurestore", "put", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO features (video, stream, frame, dim, codec, vector) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return faults.Wrap(faults.ErrStore, "featurestore", "put", "prepare", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.Index < 0 {
			return faults.Wrap(faults.ErrOrdering, "featurestore", "put", fmt.Sprintf("negative frame index %d", rec.Index), nil)
		}
		id, blob := encodeVector(rec.Vector, s.compression)
		if _, err := stmt.ExecContext(ctx, video, stream, rec.Index, len(rec.Vector), int(id), blob); err != nil {
			return faults.Wrap(faults.ErrStore, "featurestore", "put", fmt.Sprintf("frame %d", rec.Index), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrStore, "featurestore", "put", "commit", err)
	}
	return nil
}

// dimension returns the stored vector dimension for a stream, or 0 when the
// stream is empty.
func (s *Store) dimension(ctx context.Context, video, stream string) (int, error) {
	var dim int
	err := s.db.QueryRowContext(ctx,
		`SELECT dim FROM features WHERE video = ? AND stream = ? LIMIT 1`, video, stream).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, faults.Wrap(faults.ErrStore, "featurestore", "dimension", video+"/"+stream, err)
	}
	return dim, nil
}

// Videos lists stored video names in lexical order.
func (s *Store) Videos(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT video FROM features ORDER BY video`)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStore, "featurestore", "videos", "", err)
	}
	defer rows.Close()

	var videos []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, faults.Wrap(faults.ErrStore, "featurestore", "videos", "scan", err)
		}
		videos = append(videos, name)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Wrap(faults.ErrStore, "featurestore", "videos", "", err)
	}
	return videos, nil
}

// Streams describes every stream stored for video.
func (s *Store) Streams(ctx context.Context, video string) ([]StreamInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stream, COUNT(1), MAX(dim), MIN(frame), MAX(frame)
         FROM features WHERE video = ? GROUP BY stream ORDER BY stream`, video)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStore, "featurestore", "streams", video, err)
	}
	defer rows.Close()

	var infos []StreamInfo
	for rows.Next() {
		var info StreamInfo
		if err := rows.Scan(&info.Name, &info.Frames, &info.Dimension, &info.FirstFrame, &info.LastFrame); err != nil {
			return nil, faults.Wrap(faults.ErrStore, "featurestore", "streams", "scan", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Wrap(faults.ErrStore, "featurestore", "streams", video, err)
	}
	return infos, nil
}

// Count returns the number of records stored for video/stream.
func (s *Store) Count(ctx context.Context, video, stream string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM features WHERE video = ? AND stream = ?`, video, stream).Scan(&n)
	if err != nil {
		return 0, faults.Wrap(faults.ErrStore, "featurestore", "count", video+"/"+stream, err)
	}
	return n, nil
}

// Delete removes a video's records. An empty stream removes every stream.
func (s *Store) Delete(ctx context.Context, video, stream string) (int64, error) {
	var removed int64
	err := s.withWriteLock(func() error {
		var (
			res sql.Result
			err error
		)
		if stream == "" {
			res, err = s.db.ExecContext(ctx, `DELETE FROM features WHERE video = ?`, video)
		} else {
			res, err = s.db.ExecContext(ctx, `DELETE FROM features WHERE video = ? AND stream = ?`, video, stream)
		}
		if err != nil {
			return faults.Wrap(faults.ErrStore, "featurestore", "delete", video, err)
		}
		removed, err = res.RowsAffected()
		if err != nil {
			return faults.Wrap(faults.ErrStore, "featurestore", "delete", "rows affected", err)
		}
		return nil
	})
	return removed, err
}

// Stats reports record counts and on-disk size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var payload sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT video),
                (SELECT COUNT(1) FROM (SELECT DISTINCT video, stream FROM features)),
                COUNT(1), SUM(LENGTH(vector))
         FROM features`).Scan(&st.Videos, &st.Streams, &st.Records, &payload)
	if err != nil {
		return Stats{}, faults.Wrap(faults.ErrStore, "featurestore", "stats", "", err)
	}
	st.PayloadBytes = payload.Int64
	for _, suffix := range []string{"", "-wal"} {
		if info, err := os.Stat(s.path + suffix); err == nil {
			st.FileBytes += info.Size()
		}
	}
	return st, nil
}
