// Package assign implements deterministic, stateless variant assignment.
//
// A user lands in the same variant on every call, on every machine, for the
// lifetime of an experiment. The only "state" is the algorithm itself:
// digest choice, identifier separator, and the configured partition. All
// three are part of the public contract: changing any of them reshuffles
// every running experiment, so they are versioned explicitly.
package assign

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// AlgorithmVersion identifies the hashing scheme. Bump only as a deliberate
// migration: any change to the digest, separator, or bucket mapping moves
// users between variants.
const AlgorithmVersion = "sha256/v1"

// Separator joins the user and experiment identifiers before hashing.
// Part of the assignment contract, same as the digest choice.
const Separator = "_"

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidPartition  = errors.New("invalid partition")
)

// widthTolerance absorbs float accumulation when checking that segment
// widths sum to exactly 1.
const widthTolerance = 1e-9

// Segment is one labeled interval of the unit range.
type Segment struct {
	Label string  `yaml:"label"`
	Width float64 `yaml:"width"`
}

// Partition is an ordered covering of [0,1) by contiguous half-open
// intervals. Segment i occupies [sum(widths[:i]), sum(widths[:i+1])).
type Partition []Segment

// Validate checks that the partition covers [0,1) with no gaps or overlaps:
// at least two labeled segments, every width positive, widths summing to 1.
func (p Partition) Validate() error {
	if len(p) < 2 {
		return fmt.Errorf("%w: need at least 2 segments, got %d", ErrInvalidPartition, len(p))
	}
	seen := make(map[string]bool, len(p))
	total := 0.0
	for i, s := range p {
		if s.Label == "" {
			return fmt.Errorf("%w: segment %d has empty label", ErrInvalidPartition, i)
		}
		if seen[s.Label] {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidPartition, s.Label)
		}
		seen[s.Label] = true
		if s.Width <= 0 {
			return fmt.Errorf("%w: segment %q has non-positive width %v", ErrInvalidPartition, s.Label, s.Width)
		}
		total += s.Width
	}
	if math.Abs(total-1.0) > widthTolerance {
		return fmt.Errorf("%w: widths sum to %v, want 1", ErrInvalidPartition, total)
	}
	return nil
}

// Labels returns the segment labels in partition order.
func (p Partition) Labels() []string {
	labels := make([]string, len(p))
	for i, s := range p {
		labels[i] = s.Label
	}
	return labels
}

// Assign maps a (user, experiment) pair to the label of the partition
// segment containing its hash bucket.
//
// The pair is joined with Separator, hashed with SHA-256, and the first
// 8 bytes of the digest are read as a big-endian uint64 and scaled to
// [0,1). For a large population of distinct identifiers the fraction
// landing in each segment converges to that segment's width.
func Assign(userID, experimentID string, p Partition) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", ErrInvalidIdentifier)
	}
	if experimentID == "" {
		return "", fmt.Errorf("%w: empty experiment id", ErrInvalidIdentifier)
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	bucket := Bucket(userID, experimentID)

	upper := 0.0
	for i, s := range p {
		upper += s.Width
		if bucket < upper {
			return s.Label, nil
		}
		// Guard against float accumulation on the last segment: the
		// bucket is always < 1, so it belongs to the final interval.
		if i == len(p)-1 {
			return s.Label, nil
		}
	}
	return p[len(p)-1].Label, nil
}

// Bucket returns the deterministic hash position of the pair in [0,1).
// Exposed so callers can inspect bucketing without choosing a partition.
func Bucket(userID, experimentID string) float64 {
	sum := sha256.Sum256([]byte(userID + Separator + experimentID))
	n := binary.BigEndian.Uint64(sum[:8])
	return float64(n) / float64(1<<32) / float64(1<<32) // n / 2^64, exact in float64
}
