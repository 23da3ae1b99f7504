// Package translate converts fabric policy and overlay constructs into
// target-architecture equivalents: contracts into ACL rule sets, routing
// contexts and bridge domains into VNI/VLAN overlay ids, aggregation-domain
// pairs into ethernet-segment identifiers, and external connectivity into a
// routing migration map. Translators are pure functions over an immutable
// graph and only fail on context cancellation.
package translate

import "context"

// Complexity levels for scored results.
const (
	ComplexityHigh   = "high"
	ComplexityMedium = "medium"
	ComplexityLow    = "low"
)

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// complexityLevel buckets a migration score the same way across translators.
func complexityLevel(score int) string {
	switch {
	case score < 30:
		return ComplexityLow
	case score < 60:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}
