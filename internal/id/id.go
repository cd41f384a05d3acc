// Package id mints run identifiers.
package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string (time-sortable identifier).
//
// Run IDs sort by creation time, which keeps journal queries and SQLite
// indexes cheap. ulid.Make's shared monotonic entropy keeps IDs minted
// within the same millisecond in order.
func New() string {
	return ulid.Make().String()
}
