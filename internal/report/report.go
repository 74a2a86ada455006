package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"shotscan/internal/engine"
	"shotscan/internal/fileutil"
)

// DistancesName returns the file name used for one rate's distance dump.
func DistancesName(video, stream string, rate int) string {
	return fmt.Sprintf("%s_distance%s_%d", fileSafe(video), fileSafe(stream), rate)
}

// CandidatesName returns the file name used for a stream's boundary list.
func CandidatesName(video, stream string) string {
	return fmt.Sprintf("%s_%s_candidates.txt", fileSafe(video), fileSafe(stream))
}

// SummaryName returns the file name of a run's JSON summary.
func SummaryName(runID string) string {
	return fmt.Sprintf("run_%s.json", fileSafe(runID))
}

// WriteDistances writes seq to dir, one "%010d <distance>" line per point,
// and returns the file path.
func WriteDistances(dir, video, stream string, rate int, seq engine.Sequence) (string, error) {
	path := filepath.Join(dir, DistancesName(video, stream, rate))
	return path, writeLines(path, func(w *bufio.Writer) error {
		for _, p := range seq {
			if _, err := fmt.Fprintf(w, "%010d %s\n", p.Frame, strconv.FormatFloat(p.Distance, 'g', -1, 64)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCandidates writes one frame index per line and returns the file path.
func WriteCandidates(dir, video, stream string, frames []int) (string, error) {
	path := filepath.Join(dir, CandidatesName(video, stream))
	return path, writeLines(path, func(w *bufio.Writer) error {
		for _, f := range frames {
			if _, err := w.WriteString(strconv.Itoa(f) + "\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteJSONFile writes v as indented JSON to path.
func WriteJSONFile(path string, v any) error {
	return writeLines(path, func(w *bufio.Writer) error {
		return WriteJSON(w, v)
	})
}

func writeLines(path string, fill func(*bufio.Writer) error) error {
	return fileutil.WriteAtomic(path, 0o644, fill)
}

// fileSafe flattens a video or stream name into one path element. The whole
// cleaned name is kept so videos sharing a base name stay apart.
func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, filepath.Clean(name))
}
