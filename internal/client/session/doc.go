// Package session holds the process-wide session state: whether the
// identity provider has finished initializing and which identity, if any,
// is signed in.
//
// The Store has exactly one writer (Run, fed by the provider's identity
// stream) and any number of readers. Readers either take a snapshot, wait
// once for initialization (WaitInitialized) or subscribe to every change.
// Initialized flips from false to true once and never back.
package session
