// Package mediawiki implements the asynchronous query unit and HTTP
// client for the MediaWiki action API.
package mediawiki

import (
	"context"
	"sync"
)

// Action is the API action a query performs
type Action string

const (
	ActionQuery    Action = "query"
	ActionRollback Action = "rollback"
	ActionEdit     Action = "edit"
)

// Status is the lifecycle state of a query
type Status int32

const (
	StatusUnprocessed Status = iota
	StatusProcessing
	StatusDone
	StatusFailed
)

// Request describes one API call: an action, an opaque parameter bag,
// and a POST-vs-GET hint. Target is a human-readable label for logs.
type Request struct {
	Action Action
	Params map[string]string
	POST   bool
	Target string
}

// Issuer executes requests asynchronously. The production implementation
// is *Client; tests substitute a fake.
type Issuer interface {
	Issue(ctx context.Context, req Request) *Query
}

// Query is a single in-flight API call. The issuing side drives it to
// Done or Failed; consumers poll IsProcessed.
type Query struct {
	mu            sync.Mutex
	req           Request
	status        Status
	failureReason string
	result        *Result
	cancel        context.CancelFunc
}

// NewQuery creates an unprocessed query for a request.
// Production code obtains queries from an Issuer; this constructor also
// lets tests drive the lifecycle directly.
func NewQuery(req Request) *Query {
	return &Query{req: req}
}

// Request returns the request this query executes
func (q *Query) Request() Request {
	return q.req
}

// Status returns the current lifecycle state
func (q *Query) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

// IsProcessed reports whether the query reached a terminal state
func (q *Query) IsProcessed() bool {
	s := q.Status()
	return s == StatusDone || s == StatusFailed
}

// IsFailed reports whether the query terminated in failure
func (q *Query) IsFailed() bool {
	return q.Status() == StatusFailed
}

// FailureReason returns the failure text, empty unless failed
func (q *Query) FailureReason() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.failureReason
}

// Result returns the parsed result, nil until Done
func (q *Query) Result() *Result {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.result
}

// Complete marks the query Done with a result. No-op once terminal.
func (q *Query) Complete(res *Result) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status == StatusDone || q.status == StatusFailed {
		return
	}
	q.status = StatusDone
	q.result = res
}

// Fail marks the query Failed with a reason. No-op once terminal.
func (q *Query) Fail(reason string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status == StatusDone || q.status == StatusFailed {
		return
	}
	q.status = StatusFailed
	q.failureReason = reason
}

// Kill cancels the underlying transport call and fails the query if it
// has not completed. Safe to call at any point, any number of times.
func (q *Query) Kill() {
	q.mu.Lock()
	cancel := q.cancel
	if q.status != StatusDone && q.status != StatusFailed {
		q.status = StatusFailed
		q.failureReason = "killed"
	}
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// markProcessing transitions Unprocessed -> Processing
func (q *Query) markProcessing(cancel context.CancelFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status == StatusUnprocessed {
		q.status = StatusProcessing
		q.cancel = cancel
	}
}
