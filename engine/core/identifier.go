package core

import "sync/atomic"

var lastID atomic.Uint32

// IdentifierAcquireNewID hands out process-unique ids. Ids grow
// monotonically so an object created later always has a larger id.
func IdentifierAcquireNewID() uint32 {
	return lastID.Add(1)
}
