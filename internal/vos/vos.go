// Package vos is an in-memory store.Store, the reference implementation
// used by tests and the demo CLI in place of a real DAOS deployment. It
// generalizes the raid simulator's flat []byte "Disk" into a versioned
// dkey -> akey -> recx map, keyed per (object, shard), the shape spec.md's
// store interface assumes.
package vos

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Anthya1104/ecagg/internal/store"
)

type extentRecord struct {
	recx   store.Recx
	epoch  uint64
	isHole bool
	data   []byte
}

type parityRecord struct {
	epoch uint64
	data  []byte
}

type akeyData struct {
	extents []extentRecord
	parity  map[uint64]parityRecord
}

type objData struct {
	dkeys map[string]map[string]*akeyData
}

// Store is the in-memory reference VOS. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	shards map[uint32]map[uint64]*objData
}

// New builds an empty Store.
func New() *Store {
	return &Store{shards: map[uint32]map[uint64]*objData{}}
}

func (s *Store) objFor(oid store.ObjectID) *objData {
	m, ok := s.shards[oid.ShardIdx]
	if !ok {
		m = map[uint64]*objData{}
		s.shards[oid.ShardIdx] = m
	}
	o, ok := m[oid.PubID]
	if !ok {
		o = &objData{dkeys: map[string]map[string]*akeyData{}}
		m[oid.PubID] = o
	}
	return o
}

func (s *Store) akeyFor(oid store.ObjectID, dkey, akey string) *akeyData {
	o := s.objFor(oid)
	am, ok := o.dkeys[dkey]
	if !ok {
		am = map[string]*akeyData{}
		o.dkeys[dkey] = am
	}
	a, ok := am[akey]
	if !ok {
		a = &akeyData{parity: map[uint64]parityRecord{}}
		am[akey] = a
	}
	return a
}

// lookupAkey is the read-only counterpart to akeyFor: it never creates
// intermediate maps, so it is safe to call while holding only a read lock.
func (s *Store) lookupAkey(oid store.ObjectID, dkey, akey string) (*akeyData, bool) {
	shardMap, ok := s.shards[oid.ShardIdx]
	if !ok {
		return nil, false
	}
	o, ok := shardMap[oid.PubID]
	if !ok {
		return nil, false
	}
	am, ok := o.dkeys[dkey]
	if !ok {
		return nil, false
	}
	a, ok := am[akey]
	return a, ok
}

// Put seeds a replica extent directly, bypassing the usual ObjUpdate path;
// tests and the demo CLI use it to build up fixture state.
func (s *Store) Put(oid store.ObjectID, dkey, akey string, recx store.Recx, epoch uint64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.akeyFor(oid, dkey, akey)
	a.extents = append(a.extents, extentRecord{recx: recx, epoch: epoch, data: append([]byte(nil), data...)})
}

// PutHole seeds a hole (intentional-absence) extent.
func (s *Store) PutHole(oid store.ObjectID, dkey, akey string, recx store.Recx, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.akeyFor(oid, dkey, akey)
	a.extents = append(a.extents, extentRecord{recx: recx, epoch: epoch, isHole: true})
}

// Iterate returns a pull-style Cursor over dkey -> akey -> recx, sorted by
// key and, within an akey, by descending epoch (spec.md's "reverse-recency
// order"). Parity recxs are never surfaced here; callers reach them via
// ProbeParity.
func (s *Store) Iterate(ctx context.Context, oid store.ObjectID, epr store.EpochRange) (store.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shardMap, ok := s.shards[oid.ShardIdx]
	if !ok {
		return &sliceCursor{}, nil
	}
	o, ok := shardMap[oid.PubID]
	if !ok {
		return &sliceCursor{}, nil
	}

	dkeys := make([]string, 0, len(o.dkeys))
	for dk := range o.dkeys {
		dkeys = append(dkeys, dk)
	}
	sort.Strings(dkeys)

	var items []store.Item
	for _, dk := range dkeys {
		items = append(items, store.Item{Kind: store.ItemDkeyEnter, Dkey: dk})

		akeys := make([]string, 0, len(o.dkeys[dk]))
		for ak := range o.dkeys[dk] {
			akeys = append(akeys, ak)
		}
		sort.Strings(akeys)

		for _, ak := range akeys {
			items = append(items, store.Item{Kind: store.ItemAkeyEnter, Dkey: dk, Akey: ak})

			a := o.dkeys[dk][ak]
			visible := make([]extentRecord, 0, len(a.extents))
			for _, e := range a.extents {
				if e.recx.IsParity() {
					continue
				}
				if e.epoch < epr.Lo || e.epoch > epr.Hi {
					continue
				}
				visible = append(visible, e)
			}
			sort.SliceStable(visible, func(i, j int) bool { return visible[i].epoch > visible[j].epoch })

			for _, e := range visible {
				items = append(items, store.Item{
					Kind: store.ItemRecx, Dkey: dk, Akey: ak,
					Extent: store.Extent{Recx: e.recx, Epoch: e.epoch, IsHole: e.isHole},
				})
			}

			items = append(items, store.Item{Kind: store.ItemAkeyExit, Dkey: dk, Akey: ak})
		}

		items = append(items, store.Item{Kind: store.ItemDkeyExit, Dkey: dk})
	}

	return &sliceCursor{items: items}, nil
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// ObjFetch assembles the bytes visible at epoch for each requested recx,
// taking the most recent non-hole extent covering each byte. A parity
// recx is served from the per-stripe parity record directly.
func (s *Store) ObjFetch(ctx context.Context, oid store.ObjectID, epoch uint64, dkey string, iods []store.IOD) ([]store.SGL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.SGL
	for _, iod := range iods {
		a, ok := s.lookupAkey(oid, dkey, iod.Akey)
		if !ok {
			return nil, fmt.Errorf("vos: dkey %q akey %q not found", dkey, iod.Akey)
		}
		// Copy oldest first so the most recent visible extent wins.
		ordered := append([]extentRecord(nil), a.extents...)
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].epoch < ordered[j].epoch })

		var bufs [][]byte
		for _, recx := range iod.Recxs {
			if recx.IsParity() {
				stripenum := (recx.Idx &^ store.ParityIndicator) / recx.Nr
				pr, ok := a.parity[stripenum]
				if !ok || pr.epoch > epoch {
					return nil, fmt.Errorf("vos: no visible parity for stripe %d at epoch %d", stripenum, epoch)
				}
				bufs = append(bufs, append([]byte(nil), pr.data...))
				continue
			}

			buf := make([]byte, recx.Nr*iod.RSize)
			filled := false
			for _, e := range ordered {
				if e.epoch > epoch || e.isHole {
					continue
				}
				lo := maxU64(e.recx.Idx, recx.Idx)
				hi := minU64(e.recx.End(), recx.End())
				if hi <= lo {
					continue
				}
				srcOff := (lo - e.recx.Idx) * iod.RSize
				dstOff := (lo - recx.Idx) * iod.RSize
				n := (hi - lo) * iod.RSize
				copy(buf[dstOff:dstOff+n], e.data[srcOff:srcOff+n])
				filled = true
			}
			if !filled {
				return nil, fmt.Errorf("vos: no visible data for recx %s at epoch %d", recx, epoch)
			}
			bufs = append(bufs, buf)
		}
		out = append(out, store.SGL{Buffers: bufs})
	}
	return out, nil
}

// ObjUpdate writes records at epoch: a parity recx replaces that stripe's
// parity record, a data recx appends a new extent version.
func (s *Store) ObjUpdate(ctx context.Context, oid store.ObjectID, epoch uint64, dkey string, iods []store.IOD, sgls []store.SGL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, iod := range iods {
		a := s.akeyFor(oid, dkey, iod.Akey)
		for j, recx := range iod.Recxs {
			data := sgls[i].Buffers[j]
			if recx.IsParity() {
				stripenum := (recx.Idx &^ store.ParityIndicator) / recx.Nr
				a.parity[stripenum] = parityRecord{epoch: epoch, data: append([]byte(nil), data...)}
				continue
			}
			a.extents = append(a.extents, extentRecord{recx: recx, epoch: epoch, data: append([]byte(nil), data...)})
		}
	}
	return nil
}

// ObjArrayRemove deletes extents fully contained in recx whose epoch falls
// within epr, the range-remove half of the reconciler's commit protocol.
func (s *Store) ObjArrayRemove(ctx context.Context, oid store.ObjectID, epr store.EpochRange, dkey, akey string, recx store.Recx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.lookupAkey(oid, dkey, akey)
	if !ok {
		return nil
	}
	kept := a.extents[:0]
	for _, e := range a.extents {
		if e.epoch >= epr.Lo && e.epoch <= epr.Hi && e.recx.Idx >= recx.Idx && e.recx.End() <= recx.End() {
			continue
		}
		kept = append(kept, e)
	}
	a.extents = kept
	return nil
}

// ProbeParity reports the current parity record for one stripe, or nil if
// none has been written yet.
func (s *Store) ProbeParity(ctx context.Context, oid store.ObjectID, dkey, akey string, stripenum, cellLen uint64) (*store.ParityExtent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.lookupAkey(oid, dkey, akey)
	if !ok {
		return nil, nil
	}
	pr, ok := a.parity[stripenum]
	if !ok {
		return nil, nil
	}
	return &store.ParityExtent{Recx: store.Recx{Idx: (stripenum * cellLen) | store.ParityIndicator, Nr: cellLen}, Epoch: pr.epoch}, nil
}

type sliceCursor struct {
	items []store.Item
	pos   int
}

func (c *sliceCursor) Next(ctx context.Context) (store.Item, bool, error) {
	if c.pos >= len(c.items) {
		return store.Item{}, false, nil
	}
	it := c.items[c.pos]
	c.pos++
	return it, true, nil
}

func (c *sliceCursor) Close() error { return nil }

// RemoteAdapter exposes a Store as a reconcile.RemoteFetcher, the shape
// spec.md's remote object interface needs: in the single-process demo, the
// "remote" shards live in the same Store under different ShardIdx keys.
type RemoteAdapter struct {
	*Store
}

func (r RemoteAdapter) Fetch(ctx context.Context, oid store.ObjectID, epoch uint64, dkey string, iods []store.IOD) ([]store.SGL, error) {
	return r.Store.ObjFetch(ctx, oid, epoch, dkey, iods)
}
