package features

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shotscan/internal/faults"
)

// Feature dumps hold one frame per line:
//
//	0000000012: [0.25, 1.5, -3]
//
// The index is written zero-padded to ten digits; the parser accepts any
// width.
const dumpIndexWidth = 10

const maxDumpLine = 64 << 20

// ParseDumpLine decodes a single dump line.
func ParseDumpLine(line string) (Record, error) {
	head, body, ok := strings.Cut(line, ":")
	if !ok {
		return Record{}, fmt.Errorf("missing ':' separator")
	}
	index, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return Record{}, fmt.Errorf("parse frame index %q: %w", strings.TrimSpace(head), err)
	}
	if index < 0 {
		return Record{}, fmt.Errorf("negative frame index %d", index)
	}
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "[") || !strings.HasSuffix(body, "]") {
		return Record{}, fmt.Errorf("frame %d: vector must be enclosed in brackets", index)
	}
	body = strings.TrimSpace(body[1 : len(body)-1])
	if body == "" {
		return Record{}, fmt.Errorf("frame %d: empty vector", index)
	}
	fields := strings.Split(body, ",")
	vec := make(Vector, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return Record{}, fmt.Errorf("frame %d: parse value %q: %w", index, strings.TrimSpace(field), err)
		}
		vec = append(vec, float32(value))
	}
	return Record{Index: index, Vector: vec}, nil
}

// FormatDumpLine encodes rec in dump form, without a trailing newline.
func FormatDumpLine(rec Record) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%0*d: [", dumpIndexWidth, rec.Index))
	for i, v := range rec.Vector {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// WriteDump writes records to w, one line per frame.
func WriteDump(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.WriteString(FormatDumpLine(rec)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DumpSource streams a feature dump as batches without reading it whole.
// Blank lines are skipped; frame indices must be strictly increasing.
type DumpSource struct {
	scanner   *bufio.Scanner
	batchSize int
	pos       int
	line      int
	lastIndex int
	done      bool
}

// NewDumpSource reads dump lines from r in batches of batchSize records.
func NewDumpSource(r io.Reader, batchSize int) *DumpSource {
	if batchSize <= 0 {
		batchSize = 1
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxDumpLine)
	return &DumpSource{scanner: scanner, batchSize: batchSize, lastIndex: -1}
}

// Next returns the following batch or io.EOF.
func (s *DumpSource) Next(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	if s.done {
		return Batch{}, io.EOF
	}
	batch := Batch{Begin: s.pos, Records: make([]Record, 0, s.batchSize)}
	for len(batch.Records) < s.batchSize {
		if !s.scanner.Scan() {
			s.done = true
			if err := s.scanner.Err(); err != nil {
				return Batch{}, faults.Wrap(faults.ErrSource, "dump", "read", fmt.Sprintf("line %d", s.line+1), err)
			}
			break
		}
		s.line++
		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}
		rec, err := ParseDumpLine(text)
		if err != nil {
			return Batch{}, faults.Wrap(faults.ErrSource, "dump", "parse", fmt.Sprintf("line %d", s.line), err)
		}
		if rec.Index <= s.lastIndex {
			return Batch{}, faults.Wrap(faults.ErrOrdering, "dump", "parse",
				fmt.Sprintf("line %d: frame %d does not follow frame %d", s.line, rec.Index, s.lastIndex), nil)
		}
		s.lastIndex = rec.Index
		batch.Records = append(batch.Records, rec)
	}
	if len(batch.Records) == 0 {
		return Batch{}, io.EOF
	}
	s.pos += len(batch.Records)
	return batch, nil
}
