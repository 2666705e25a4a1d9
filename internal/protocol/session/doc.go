// Package session owns the call/response state machine over one worker.
//
// Ownership boundary:
// - worker startup with bounded retries
// - the session state id and its transitions
// - call issue / outcome interpretation
//
// States: uninitialized -> awaiting-first-feedback -> ready, then per call
// ready -> awaiting-outcome -> ready | faulted. A failed call (CallFailure)
// leaves the session ready; transport and decode errors fault it for good.
// A Client is not safe for concurrent use and allows one call in flight.
package session
