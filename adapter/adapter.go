// Package adapter defines the contract for converting agent-specific session
// logs into canonical events, plus helpers shared by the per-source adapters.
package adapter

import "github.com/sonnes/lekhak/core"

// Adapter converts one session's records into canonical events. Each instance
// owns one session's correlation store and statistics accumulator; instances
// are not safe for concurrent use, but separate sessions may be converted
// concurrently because no state is shared between instances.
type Adapter interface {
	// Consume processes one raw record and returns zero or more canonical
	// events. Malformed records yield no events and are never fatal.
	Consume(line []byte) []core.Event

	// Finalize ends the session and returns the summary event, or nil when
	// no user or assistant turns were observed. Unresolved tool invocations
	// are discarded.
	Finalize() *core.Event
}
