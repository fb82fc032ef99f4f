package types

import (
	internaltypes "github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

// GoalSyncRequest carries the goal fields the pipeline reads (public alias)
type GoalSyncRequest = internaltypes.GoalSyncRequest

// CandidateActionRequest names the candidate a user acts on (public alias)
type CandidateActionRequest = internaltypes.CandidateActionRequest

// JobCreateRequest asks for a scrape job for a goal (public alias)
type JobCreateRequest = internaltypes.JobCreateRequest

// CompileRequest asks the compiler for every retailer's filters (public alias)
type CompileRequest = internaltypes.CompileRequest
