// Package oclass resolves an object to its erasure-coding class
// descriptor: k data cells, p parity cells, and the per-cell geometry.
// Resolution is meant to be cheap and cacheable; the codec package layers
// its own Reed-Solomon table cache keyed on the Class returned here.
package oclass

import (
	"fmt"

	"github.com/Anthya1104/ecagg/internal/store"
)

// Class is the immutable per-object descriptor from spec.md's "oca":
// k data cells, p parity cells (1 <= p <= 2), len records per cell, and
// rsize bytes per record.
type Class struct {
	K     int
	P     int
	Len   uint64
	RSize uint64
}

// New validates and builds a Class.
func New(k, p int, length, rsize uint64) (Class, error) {
	if k < 1 {
		return Class{}, fmt.Errorf("oclass: k must be >= 1, got %d", k)
	}
	if p < 1 || p > 2 {
		return Class{}, fmt.Errorf("oclass: p must be 1 or 2, got %d", p)
	}
	if length == 0 {
		return Class{}, fmt.Errorf("oclass: len must be > 0")
	}
	if rsize == 0 {
		return Class{}, fmt.Errorf("oclass: rsize must be > 0")
	}
	return Class{K: k, P: p, Len: length, RSize: rsize}, nil
}

// CellBytes is the size in bytes of one cell buffer (len * rsize).
func (c Class) CellBytes() uint64 { return c.Len * c.RSize }

// StripeRecords is the number of record indices a stripe spans on the data
// shards (k * len).
func (c Class) StripeRecords() uint64 { return uint64(c.K) * c.Len }

// LeaderShard is the shard index that drives aggregation (k+p-1).
func (c Class) LeaderShard() uint32 { return uint32(c.K + c.P - 1) }

// IsParityShard reports whether shard belongs to the parity group.
func (c Class) IsParityShard(shard uint32) bool { return int(shard) >= c.K }

// IsLeader reports whether oid addresses the leader shard of its object.
func (c Class) IsLeader(oid store.ObjectID) bool { return oid.ShardIdx == c.LeaderShard() }

// StripeNum returns the stripe number containing record index idx.
func (c Class) StripeNum(idx uint64) uint64 { return idx / c.StripeRecords() }

// Resolver maps an object id to its class. A single EC object's k+p shards
// all resolve to the same Class.
type Resolver interface {
	Resolve(oid store.ObjectID) (Class, bool)
}

// StaticResolver is an in-memory Resolver keyed by the object's public id,
// used by tests and the demo CLI in place of the real object-class
// metadata service.
type StaticResolver struct {
	classes map[uint64]Class
}

// NewStaticResolver builds a resolver from a pub-id -> Class map.
func NewStaticResolver(classes map[uint64]Class) *StaticResolver {
	cp := make(map[uint64]Class, len(classes))
	for k, v := range classes {
		cp[k] = v
	}
	return &StaticResolver{classes: cp}
}

func (r *StaticResolver) Resolve(oid store.ObjectID) (Class, bool) {
	c, ok := r.classes[oid.PubID]
	return c, ok
}
