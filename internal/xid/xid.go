// Package xid mints opaque identifiers for tokens and log correlation.
package xid

import "github.com/google/uuid"

// New returns prefix-<uuid v4>.
func New(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}
