// Package common contains small helpers and constants shared by the client
// packages.
package common

// IDTokenHeaderName is the gRPC metadata key carrying the current identity
// token on outbound provider calls.
const IDTokenHeaderName = "id_token"

// RequestIDHeaderName is the gRPC metadata key carrying a per-call request id.
const RequestIDHeaderName = "x-request-id"
