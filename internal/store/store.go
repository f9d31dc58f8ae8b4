// Package store describes the versioned array store ("VOS") surface that
// the aggregation core consumes. The store itself is an external
// collaborator; this package only types the interface and the record
// vocabulary (recx, extent, epoch range) used across the core.
package store

import (
	"context"
	"fmt"
)

// ParityIndicator is OR-ed into a record index to mark it as belonging to a
// parity extent rather than a data extent. Never set on data extents.
const ParityIndicator uint64 = 1 << 63

// Recx is a record-index range: Idx is the first record offset, Nr the
// record count.
type Recx struct {
	Idx uint64
	Nr  uint64
}

func (r Recx) End() uint64 { return r.Idx + r.Nr }

func (r Recx) String() string {
	return fmt.Sprintf("[%d,%d)", r.Idx, r.Idx+r.Nr)
}

// IsParity reports whether this recx addresses the reserved parity range.
func (r Recx) IsParity() bool { return r.Idx&ParityIndicator != 0 }

// EpochRange bounds a closed epoch window, [Lo, Hi]: both ends inclusive.
type EpochRange struct {
	Lo uint64
	Hi uint64
}

// ObjectID identifies one shard of an EC object. ShardIdx >= K marks a
// parity shard; the last parity shard (K+P-1) is the leader.
type ObjectID struct {
	PubID    uint64
	ShardIdx uint32
}

func (o ObjectID) String() string {
	return fmt.Sprintf("oid(%d.%d)", o.PubID, o.ShardIdx)
}

// WithShard returns a copy of the id addressing a different shard, used to
// compute peer identities (e.g. shard-1 for the EC_AGGREGATE target).
func (o ObjectID) WithShard(shard uint32) ObjectID {
	o.ShardIdx = shard
	return o
}

// Extent is a single replica or parity record range as returned by the
// visible-extent iterator.
type Extent struct {
	Recx   Recx
	Epoch  uint64
	IsHole bool
}

// ParityExtent is what the parity prober returns for a reserved parity
// range: just the epoch/recx, no hole tracking (parity extents aren't
// holes).
type ParityExtent struct {
	Recx  Recx
	Epoch uint64
}

// IOD names one array key's records touched by a fetch/update, mirroring
// daos_iod_t restricted to the ARRAY type this core uses.
type IOD struct {
	Akey  string
	RSize uint64
	Recxs []Recx
}

// SGL is the scatter/gather buffer list paired 1:1 with an IOD's Recxs.
type SGL struct {
	Buffers [][]byte
}

// Store is the subset of the VOS surface aggregation consumes.
type Store interface {
	// Iterate walks dkey -> akey -> recx for one object over an epoch
	// range, delivering a pull-style cursor (see Cursor).
	Iterate(ctx context.Context, oid ObjectID, epr EpochRange) (Cursor, error)

	// ObjFetch reads visible records at epoch.
	ObjFetch(ctx context.Context, oid ObjectID, epoch uint64, dkey string, iods []IOD) ([]SGL, error)

	// ObjUpdate writes records at epoch.
	ObjUpdate(ctx context.Context, oid ObjectID, epoch uint64, dkey string, iods []IOD, sgls []SGL) error

	// ObjArrayRemove deletes records in an epoch range.
	ObjArrayRemove(ctx context.Context, oid ObjectID, epr EpochRange, dkey, akey string, recx Recx) error

	// ProbeParity queries the reserved parity range for one stripe. It
	// must not mutate store state.
	ProbeParity(ctx context.Context, oid ObjectID, dkey, akey string, stripenum, cellLen uint64) (*ParityExtent, error)
}

// ItemKind discriminates the events a Cursor produces.
type ItemKind int

const (
	ItemDkeyEnter ItemKind = iota
	ItemDkeyExit
	ItemAkeyEnter
	ItemAkeyExit
	ItemRecx
)

func (k ItemKind) String() string {
	switch k {
	case ItemDkeyEnter:
		return "dkey-enter"
	case ItemDkeyExit:
		return "dkey-exit"
	case ItemAkeyEnter:
		return "akey-enter"
	case ItemAkeyExit:
		return "akey-exit"
	case ItemRecx:
		return "recx"
	default:
		return "unknown"
	}
}

// Item is one event produced by a Cursor's pull-style traversal.
type Item struct {
	Kind   ItemKind
	Dkey   string
	Akey   string
	Extent Extent
}

// Cursor is a pull iterator over one object's dkey/akey/recx levels,
// visibility-filtered and delivered in reverse-recency order within an
// akey, the shape spec.md's driver needs without requiring a callback
// dispatch.
type Cursor interface {
	Next(ctx context.Context) (Item, bool, error)
	Close() error
}
