package candidate

import (
	"fmt"
	"math"

	"shotscan/internal/faults"
)

const (
	DefaultHalfWidth   = 5
	DefaultSensitivity = 0.7
	DefaultSpikeRatio  = 3.0
	DefaultSpikeFloor  = 0.8
)

// Policy holds the adaptive threshold parameters.
type Policy struct {
	// HalfWidth w sets the window span to 2w-1 points.
	HalfWidth int
	// Sensitivity scales the local deviation term.
	Sensitivity float64
	// SpikeRatio is how many times larger than a direct neighbour a point must
	// be to pass the spike override.
	SpikeRatio float64
	// SpikeFloor is the fraction of the global mean a spike must also exceed.
	SpikeFloor float64
	// Legacy reproduces the prefix-window statistics of the first release.
	Legacy bool
}

// DefaultPolicy returns the reference policy.
func DefaultPolicy() Policy {
	return Policy{
		HalfWidth:   DefaultHalfWidth,
		Sensitivity: DefaultSensitivity,
		SpikeRatio:  DefaultSpikeRatio,
		SpikeFloor:  DefaultSpikeFloor,
	}
}

// Span returns the number of points in one statistics window.
func (p Policy) Span() int {
	return 2*p.HalfWidth - 1
}

// Validate reports configuration errors in the policy.
func (p Policy) Validate() error {
	switch {
	case p.HalfWidth < 2:
		return faults.Wrap(faults.ErrConfiguration, "candidate", "policy", fmt.Sprintf("window half width %d must be at least 2", p.HalfWidth), nil)
	case p.Sensitivity < 0 || math.IsNaN(p.Sensitivity) || math.IsInf(p.Sensitivity, 0):
		return faults.Wrap(faults.ErrConfiguration, "candidate", "policy", fmt.Sprintf("sensitivity %v must be a finite non-negative number", p.Sensitivity), nil)
	case !(p.SpikeRatio > 0) || math.IsInf(p.SpikeRatio, 0):
		return faults.Wrap(faults.ErrConfiguration, "candidate", "policy", fmt.Sprintf("spike ratio %v must be positive", p.SpikeRatio), nil)
	case p.SpikeFloor < 0 || math.IsNaN(p.SpikeFloor) || math.IsInf(p.SpikeFloor, 0):
		return faults.Wrap(faults.ErrConfiguration, "candidate", "policy", fmt.Sprintf("spike floor %v must be a finite non-negative number", p.SpikeFloor), nil)
	}
	return nil
}
