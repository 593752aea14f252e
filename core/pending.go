package core

// Pending is a tool invocation whose result has not arrived yet.
type Pending struct {
	ID   string
	Name string
	Args string

	// Input holds the parsed invocation arguments, kept so the resolved
	// outcome can fold file paths into the stats sets.
	Input map[string]any
}

// PendingCalls maps call IDs to pending tool invocations for one session.
// It is not safe for concurrent use; each adapter instance owns exactly one.
type PendingCalls struct {
	calls map[string]Pending
}

// NewPendingCalls creates an empty correlation store.
func NewPendingCalls() *PendingCalls {
	return &PendingCalls{calls: make(map[string]Pending)}
}

// Record inserts a pending invocation. A duplicate ID overwrites the stale
// entry silently; source logs are assumed well-formed here.
func (p *PendingCalls) Record(id, name, args string, input map[string]any) {
	p.calls[id] = Pending{ID: id, Name: name, Args: args, Input: input}
}

// Resolve removes and returns the pending invocation for id. The second
// return value is false when no entry exists; results referencing truncated
// or previously processed log segments are expected and must be ignored by
// the caller.
func (p *PendingCalls) Resolve(id string) (Pending, bool) {
	pending, ok := p.calls[id]
	if !ok {
		return Pending{}, false
	}
	delete(p.calls, id)
	return pending, true
}

// Len returns the number of unresolved invocations.
func (p *PendingCalls) Len() int {
	return len(p.calls)
}
