// Package idgen generates local record identifiers.
//
// Identifiers are positive random 52-bit integers drawn from crypto/rand,
// which keeps the collision probability negligible across concurrent
// creations without any coordination between callers. The 52-bit cap keeps
// every id exactly representable as an IEEE double, so values survive JSON
// round trips through stores that decode numbers as float64.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// NextID returns a new positive random identifier.
func NextID() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to generate id: %w", err)
	}
	id := int64(binary.BigEndian.Uint64(b[:]) & (1<<52 - 1))
	if id == 0 {
		// A zero id is reserved for "unset"; draw again.
		return NextID()
	}
	return id, nil
}

// MustNextID is NextID for call sites where the only failure mode is an
// exhausted system entropy source.
func MustNextID() int64 {
	id, err := NextID()
	if err != nil {
		panic(err)
	}
	return id
}
