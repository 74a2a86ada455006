package detect

import (
	"bufio"
	"io"
	"strings"

	"shotscan/internal/faults"
)

// ReadList reads one video name per line. Blank lines and lines starting with
// '#' are ignored.
func ReadList(r io.Reader) ([]string, error) {
	var videos []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		videos = append(videos, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, faults.Wrap(faults.ErrSource, "detect", "list", "read video list", err)
	}
	return videos, nil
}
