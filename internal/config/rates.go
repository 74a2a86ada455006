package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"shotscan/internal/faults"
)

// ParseRates parses a comma-separated sample rate list such as "4,1,2".
// Every rate must be a positive integer; the result is sorted and
// deduplicated.
func ParseRates(value string) ([]int, error) {
	var rates []int
	for part := range strings.SplitSeq(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rate, err := strconv.Atoi(part)
		if err != nil {
			return nil, faults.Wrap(faults.ErrConfiguration, "config", "rates", fmt.Sprintf("invalid sample rate %q", part), nil)
		}
		if rate < 1 {
			return nil, faults.Wrap(faults.ErrConfiguration, "config", "rates", fmt.Sprintf("sample rate %d must be at least 1", rate), nil)
		}
		rates = append(rates, rate)
	}
	if len(rates) == 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "config", "rates", "no sample rates given", nil)
	}
	slices.Sort(rates)
	return slices.Compact(rates), nil
}
