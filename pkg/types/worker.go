package types

import (
	internaltypes "github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

// WorkerTokenHeader carries the shared secret on worker protocol requests
const WorkerTokenHeader = internaltypes.WorkerTokenHeader

// CallbackStatus is the outcome a worker reports for a job (public alias)
type CallbackStatus = internaltypes.CallbackStatus

// Callback statuses (public aliases)
const (
	CallbackSuccess = internaltypes.CallbackSuccess
	CallbackError   = internaltypes.CallbackError
)

// PollRequest is the optional body of a poll call (public alias)
type PollRequest = internaltypes.PollRequest

// PollJob is the work handed to a polling worker (public alias)
type PollJob = internaltypes.PollJob

// PollResponse is the response of a poll call (public alias)
type PollResponse = internaltypes.PollResponse

// DispatchRequest is pushed to a worker in push mode (public alias)
type DispatchRequest = internaltypes.DispatchRequest

// CallbackRequest reports the outcome of a job (public alias)
type CallbackRequest = internaltypes.CallbackRequest

// CallbackResponse acknowledges a callback (public alias)
type CallbackResponse = internaltypes.CallbackResponse
