package common

import "github.com/google/uuid"

// WipeByteArray zeroes b in place. Used for passwords read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NewRequestID returns a random id used to correlate a provider call in logs.
func NewRequestID() string {
	return uuid.NewString()
}
