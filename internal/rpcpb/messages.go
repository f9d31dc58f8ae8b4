// Package rpcpb defines the wire payloads for the two peer RPCs
// aggregation issues, EC_AGGREGATE (parity-write) and EC_REPLICATE
// (hole-fill), per spec.md §6. Message encoding uses the gob codec
// registered in codec.go rather than protoc-generated bindings, so the
// field shapes below are the source of truth for the wire format (see
// DESIGN.md for why protoc-generated bindings are not used).
package rpcpb

// AggregateRequest is the EC_AGGREGATE (parity-write) request. Field names
// track spec.md §6 exactly, including the pool/container/handle UUIDs
// (populated as plain byte slices here rather than a vendored uuid wire
// type). The container-handle UUID (coh_uuid) has a single field,
// ContHdlUUID, which the sender sets once.
type AggregateRequest struct {
	PoolUUID    []byte
	ContHdlUUID []byte // coh_uuid
	ContUUID    []byte

	OID ObjectID

	Dkey  string
	Akey  string
	RSize uint64

	Epoch     uint64 // = hi_epoch
	StripeNum uint64
	MapVer    uint32

	PriorLen uint32 // = prefix_ext
	AfterLen uint32 // = suffix_ext

	Bulk []byte // one parity cell, cell_bytes long
}

// AggregateReply is the EC_AGGREGATE response.
type AggregateReply struct {
	Status int32
}

// ReplicateRequest is the EC_REPLICATE (hole-fill) request.
type ReplicateRequest struct {
	PoolUUID    []byte
	ContHdlUUID []byte
	ContUUID    []byte

	OID ObjectID

	Dkey  string
	Akey  string
	RSize uint64

	IOD IOD

	StripeNum uint64
	Epoch     uint64
	MapVer    uint32

	Bulk []byte // concatenated gap bytes
}

// ReplicateReply is the EC_REPLICATE response.
type ReplicateReply struct {
	Status int32
}

// ObjectID mirrors store.ObjectID without importing internal/store, to
// keep the wire package dependency-free of the VOS-facing types.
type ObjectID struct {
	PubID    uint64
	ShardIdx uint32
}

// Recx mirrors store.Recx on the wire.
type Recx struct {
	Idx uint64
	Nr  uint64
}

// IOD mirrors store.IOD restricted to what EC_REPLICATE's iod needs:
// name=akey, type=ARRAY, size=rsize, recxs[].
type IOD struct {
	Akey  string
	RSize uint64
	Recxs []Recx
}
