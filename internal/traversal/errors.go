package traversal

import "errors"

// ErrStartNotFound is returned when a request's start_node_id does not
// resolve via the Adapter. Terminal: no partial results are returned.
var ErrStartNotFound = errors.New("start node not found")

// ErrInvalidRequest is returned for malformed request fields: an empty
// axis set, an unknown axis, a negative max_depth, or max_z_hops beyond
// MaxZHopsCap. Checked before any Adapter call.
var ErrInvalidRequest = errors.New("invalid traversal request")

// ErrCancelled is returned when the caller's context is cancelled between
// frontier iterations or at the top of an Adapter call. No partial
// results are returned.
var ErrCancelled = errors.New("traversal cancelled")

// ErrAdapterError wraps a failure from the Adapter's Neighbors or Node
// call. The traversal aborts without partial results.
var ErrAdapterError = errors.New("adapter error")
