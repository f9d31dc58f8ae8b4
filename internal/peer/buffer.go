package peer

// BufferLease is a scoped bulk-buffer registration. spec.md §5 requires
// "scoped acquisition/release of buffers, bulk handles, RPC objects, and
// rendezvous handles... on every exit path (success, early error, offload
// failure)"; callers acquire a lease and defer Release so it holds under
// panics recovered upstream as well as ordinary returns.
type BufferLease struct {
	buf      []byte
	released bool
}

// AcquireBuffer registers a bulk buffer of n bytes for RDMA-equivalent
// transfer. The real DAOS bulk-handle registration is out of scope (see
// spec.md §1); this type preserves the acquire/release contract so the
// reconciler and peer client code reads the same way regardless of the
// transport underneath.
func AcquireBuffer(n int) *BufferLease {
	return &BufferLease{buf: make([]byte, n)}
}

// Bytes returns the lease's backing buffer. It panics if called after
// Release, since that would indicate a use-after-release bug in the
// caller, not a recoverable runtime condition.
func (l *BufferLease) Bytes() []byte {
	if l.released {
		panic("peer: BufferLease used after Release")
	}
	return l.buf
}

// Release returns the lease. It is safe to call more than once.
func (l *BufferLease) Release() {
	l.buf = nil
	l.released = true
}
