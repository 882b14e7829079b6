package artifacts

import (
	"context"
	"fmt"

	"github.com/matzehuels/reqtrace/pkg/schema"
)

// Database supplies the schema and sample rows that give the design prompt
// its data context. *schema.Introspector implements it.
type Database interface {
	Schema(ctx context.Context) (schema.Snapshot, error)
	Sample(ctx context.Context, table string, n int) (*schema.Rows, error)
}

// AttachDatabase fills the schema and sample fields of req from db. The
// sampled table is req.SampleTable, or else the first "table <name>"
// mention in the requirements. Database failures do not fail generation;
// they are returned as warnings.
func AttachDatabase(ctx context.Context, req *Request, db Database, sampleSize int) []string {
	if db == nil {
		return nil
	}
	var warnings []string
	if req.Schema == nil {
		snap, err := db.Schema(ctx)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("database schema unavailable: %v", err))
		} else {
			req.Schema = snap
		}
	}

	if req.SampleTable == "" {
		req.SampleTable = schema.DetectTableName(req.Requirements)
	}
	if req.SampleTable == "" || req.Sample != nil {
		return warnings
	}
	rows, err := db.Sample(ctx, req.SampleTable, sampleSize)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("sample rows of %s unavailable: %v", req.SampleTable, err))
		return warnings
	}
	req.Sample = rows
	return warnings
}
