// Package client contains the identity-provider side of the client.
//
// # Overview
//
// The package provides:
//  1. The Provider contract consumed by the session and credential
//     services: account creation, password and social sign-in, sign-out,
//     password reset, and a stream of identity changes (Watch).
//  2. GRPCProvider, a gRPC implementation talking to a remote
//     identity.v1.IdentityProvider service. It keeps the current id token,
//     injects it into outbound calls, and persists it in a local SQLite
//     cache so the next start can restore the session.
//  3. MemoryProvider, an in-process implementation for offline use and tests.
//  4. Local cache bootstrap (InitDatabase, RunMigrations).
//
// # Error Handling
//
// Provider rejections are returned as *ProviderError carrying the provider
// code (e.g. "user-not-found"). Transport problems wrap ErrUnavailable or
// ErrUnauthorized and can be matched with errors.Is.
//
// # Identity stream
//
// Watch delivers at least one event once the provider has restored its
// persisted state (possibly with a nil identity), then one event per
// sign-in or sign-out, in order. A slow reader may miss intermediate events
// but always ends up with the latest one.
package client
