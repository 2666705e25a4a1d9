// Package protocol owns the wire value contract of the IDE protocol.
//
// Ownership boundary:
// - the closed Value model
// - value <-> element encoding
// - codec errors
//
// Every message on the wire is a markup element; the values embedded in calls and
// outcomes are encoded by this package only. Call wrapping lives in protocol/call,
// inbound message classification in protocol/response.
package protocol
