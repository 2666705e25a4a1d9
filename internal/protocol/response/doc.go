// Package response classifies inbound worker messages.
//
// Ownership boundary:
// - fragment completeness (truncated vs malformed)
// - feedback / outcome classification
// - error info extraction for failed calls
//
// The worker writes sibling elements with no enclosing document. Parse always
// looks at the whole accumulated buffer: it either returns every message in it
// or ErrNeedMoreData when the tail is still arriving.
package response
