// Package analysis implements the topology and policy analyzers. Every
// analyzer is a pure function over an immutable graph: same graph in, same
// result out, no shared state. Long scans check the context between record
// groups.
package analysis

import (
	"context"
	"math"
)

// Severity levels shared by analyzer findings.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Complexity levels for scored results.
const (
	ComplexityHigh   = "high"
	ComplexityMedium = "medium"
	ComplexityLow    = "low"
)

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}

func complexityLevel(score int) string {
	switch {
	case score >= 70:
		return ComplexityHigh
	case score >= 40:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}
