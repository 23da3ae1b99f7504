package translate

import (
	"context"
	"fmt"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/record"
)

// MigrationComplexity scores how hard a fabric is to move off its current
// architecture and names the contributing factors.
type MigrationComplexity struct {
	Score   int      `json:"score"`
	Level   string   `json:"level"`
	Factors []string `json:"factors"`
	Risks   []string `json:"risks"`
}

// AssessMigrationComplexity scores the fabric on the structural factors
// that drive migration effort: tenant count, contract volume, service
// insertion, external connectivity spread, and EPG-to-BD design density.
func AssessMigrationComplexity(ctx context.Context, g *graph.Graph) (MigrationComplexity, error) {
	if err := ctxErr(ctx); err != nil {
		return MigrationComplexity{}, err
	}

	assessment := MigrationComplexity{
		Factors: []string{},
		Risks:   []string{},
	}

	if tenants := len(g.OfType(record.TypeTenant)); tenants > 5 {
		assessment.Factors = append(assessment.Factors, fmt.Sprintf("High tenant count (%d)", tenants))
		assessment.Score += 20
	}

	if contracts := len(g.OfType(record.TypeContract)); contracts > 20 {
		assessment.Factors = append(assessment.Factors, fmt.Sprintf("Complex contract policy (%d contracts)", contracts))
		assessment.Score += 30
		assessment.Risks = append(assessment.Risks, "Contracts must be translated to ACLs or zone-based policies")
	}

	if graphs := len(g.OfType(record.TypeServiceGraph)); graphs > 0 {
		assessment.Factors = append(assessment.Factors, fmt.Sprintf("Service graphs in use (%d)", graphs))
		assessment.Score += 25
		assessment.Risks = append(assessment.Risks, "L4-7 service insertion requires redesign")
	}

	// The count is over external EPGs, but the reported factor names L3Outs.
	if external := len(g.OfType(record.TypeExternalEPG)); external > 5 {
		assessment.Factors = append(assessment.Factors, fmt.Sprintf("Multiple L3Outs (%d)", external))
		assessment.Score += 15
	}

	bds := len(g.OfType(record.TypeBridgeDomain))
	epgs := len(g.OfType(record.TypeEPG))
	if bds > 0 {
		if ratio := float64(epgs) / float64(bds); ratio > 3 {
			assessment.Factors = append(assessment.Factors, fmt.Sprintf("High EPG-to-BD ratio (%.1f:1)", ratio))
			assessment.Score += 10
		}
	}

	assessment.Level = complexityLevel(assessment.Score)
	return assessment, nil
}
