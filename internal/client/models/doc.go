// Package models defines the client-side data types shared by the session,
// provider and form packages.
package models
