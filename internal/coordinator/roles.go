package coordinator

import (
	"context"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/audit"
	"github.com/tuannvm/fileaudit/internal/types"
)

// Role identifies a pipeline step. The set is closed.
type Role string

const (
	RoleFileAnalysis     Role = "fileAnalysis"
	RoleBatchProcessing  Role = "batchProcessing"
	RoleAggregation      Role = "aggregation"
	RoleSecurityAnalysis Role = "security"
)

// Roles lists every role in plan order.
var Roles = []Role{RoleFileAnalysis, RoleBatchProcessing, RoleAggregation, RoleSecurityAnalysis}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFileAnalysis, RoleBatchProcessing, RoleAggregation, RoleSecurityAnalysis:
		return true
	}
	return false
}

var descriptions = map[Role]string{
	RoleFileAnalysis:     "Extracts per-file metadata: extension, type and formatted size",
	RoleBatchProcessing:  "Partitions the files into fixed-size batches and validates each",
	RoleAggregation:      "Computes totals, averages, the type histogram and size buckets",
	RoleSecurityAnalysis: "Flags executable extensions and very large files, then rates risk",
}

// Description returns a one-line summary of what the role does.
func (r Role) Description() string { return descriptions[r] }

// Runner is the capability a coordinator needs from an agent filling a role.
// *agent.Agent satisfies it for any In and Out.
type Runner[In, Out any] interface {
	Name() string
	Role() string
	Run(ctx context.Context, in In) (Out, error)
	Subscribe(fn agent.Subscriber) func()
	Status() agent.Snapshot
	LastRecord() (agent.Record, bool)
}

// Typed capabilities per role.
type (
	FileAnalyzer     = Runner[[]types.FileDescriptor, audit.FileAnalysis]
	BatchProcessor   = Runner[[]types.FileMetadata, audit.BatchReport]
	Aggregator       = Runner[[]types.FileMetadata, audit.Aggregation]
	SecurityAnalyzer = Runner[[]types.FileMetadata, audit.SecurityReport]
)

// member is the role-independent view of a registered runner.
type member interface {
	Name() string
	Subscribe(fn agent.Subscriber) func()
	Status() agent.Snapshot
}
