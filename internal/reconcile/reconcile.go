// Package reconcile implements the Stripe Reconciler (C4): given one
// closed stripe's buffered extents and the current parity probe, it picks
// one of the five outcomes spec.md §4.4 names (no-op, absent-no-fill,
// full-encode, hole-fill, partial update/recalc), drives whatever local
// and remote fetches that outcome needs, and commits the result.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/Anthya1104/ecagg/internal/aggerr"
	"github.com/Anthya1104/ecagg/internal/codec"
	"github.com/Anthya1104/ecagg/internal/metrics"
	"github.com/Anthya1104/ecagg/internal/oclass"
	"github.com/Anthya1104/ecagg/internal/peer"
	"github.com/Anthya1104/ecagg/internal/rpcpb"
	"github.com/Anthya1104/ecagg/internal/store"
	"github.com/Anthya1104/ecagg/internal/stripe"
	"github.com/Anthya1104/ecagg/internal/xstream"
)

// Decision is one of the five outcomes the reconciler can choose for a
// closed stripe.
type Decision int

const (
	DecisionNoop Decision = iota
	DecisionAbsentNoFill
	DecisionFullEncode
	DecisionHoleFill
	DecisionPartial
)

func (d Decision) String() string {
	switch d {
	case DecisionNoop:
		return "noop"
	case DecisionAbsentNoFill:
		return "absent_no_fill"
	case DecisionFullEncode:
		return "full_encode"
	case DecisionHoleFill:
		return "hole_fill"
	case DecisionPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// ObjectState is the per-(object, dkey, akey) aggregation context the
// driver (C6) hands to the reconciler at each stripe boundary. It carries
// the identity fields the peer RPCs need alongside the open stripe itself.
type ObjectState struct {
	OID   store.ObjectID
	Class oclass.Class
	Dkey  string
	Akey  string

	Stripe *stripe.Open

	PoolUUID    []byte
	ContUUID    []byte
	ContHdlUUID []byte
	MapVersion  uint32
}

// NewObjectState opens the first stripe (stripenum 0, no carry-over) for
// an (object, dkey, akey). The driver rotates to later stripes by
// replacing Stripe directly with stripe.New(class, next, prefixExt).
func NewObjectState(oid store.ObjectID, class oclass.Class, dkey, akey string) *ObjectState {
	return &ObjectState{
		OID:   oid,
		Class: class,
		Dkey:  dkey,
		Akey:  akey,

		Stripe: stripe.New(class, 0, 0),
	}
}

// RemoteFetcher models the remote object-fetch interface (spec.md §6's
// dsc_obj_fetch, steered to a specific shard via a shard hint) the
// reconciler uses to pull old cell content and peer parity directly from
// other shards, bypassing the local store.
type RemoteFetcher interface {
	Fetch(ctx context.Context, oid store.ObjectID, epoch uint64, dkey string, iods []store.IOD) ([]store.SGL, error)
}

// Reconciler drives the decision table and commit protocol for one
// aggregation run. It is safe for concurrent use across distinct
// ObjectStates; a single ObjectState must not be reconciled concurrently.
type Reconciler struct {
	store  store.Store
	remote RemoteFetcher
	peer   *peer.Client
	pool   *xstream.Pool
	reg    *metrics.Registry
}

// New builds a Reconciler. peerClient may be nil for k+1 (p=1) classes,
// which never issue EC_AGGREGATE or fetch peer parity.
func New(st store.Store, remote RemoteFetcher, peerClient *peer.Client, pool *xstream.Pool, reg *metrics.Registry) *Reconciler {
	return &Reconciler{store: st, remote: remote, peer: peerClient, pool: pool, reg: reg}
}

// Reconcile closes obj's currently open stripe: it probes existing parity,
// picks a decision, executes it, and commits. It returns the prefix-ext
// and seed extent the driver must use to open the next stripe (see
// stripe.Open.CloseAndTrim), exactly as if the caller had called
// CloseAndTrim directly — Reconcile always closes the stripe, on every
// decision, including no-op.
func (r *Reconciler) Reconcile(ctx context.Context, obj *ObjectState) (nextPrefixExt uint64, seed *store.Extent, err error) {
	probe, perr := r.store.ProbeParity(ctx, obj.OID, obj.Dkey, obj.Akey, obj.Stripe.StripeNum, obj.Class.Len)
	if perr != nil {
		return 0, nil, aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: parity probe failed: %w", perr))
	}

	decision := r.decide(obj, probe)

	switch decision {
	case DecisionNoop, DecisionAbsentNoFill:
		r.record(decision, false)

	case DecisionFullEncode:
		r.record(decision, false)
		parity, ferr := r.fullEncode(ctx, obj)
		if ferr != nil {
			return 0, nil, ferr
		}
		if cerr := r.commit(ctx, obj, parity); cerr != nil {
			return 0, nil, cerr
		}

	case DecisionHoleFill:
		r.record(decision, false)
		if herr := r.holeFill(ctx, obj, probe); herr != nil {
			return 0, nil, herr
		}

	case DecisionPartial:
		parity, recalc, perr := r.partialUpdate(ctx, obj, probe)
		r.record(decision, recalc)
		if perr != nil {
			return 0, nil, perr
		}
		if cerr := r.commit(ctx, obj, parity); cerr != nil {
			return 0, nil, cerr
		}
	}

	next, s := obj.Stripe.CloseAndTrim()
	return next, s, nil
}

func (r *Reconciler) record(d Decision, recalc bool) {
	if r.reg == nil {
		return
	}
	switch d {
	case DecisionNoop:
		r.reg.RecordDecision(metrics.DecisionNoop)
	case DecisionAbsentNoFill:
		r.reg.RecordDecision(metrics.DecisionAbsentNoFill)
	case DecisionFullEncode:
		r.reg.RecordDecision(metrics.DecisionFullEncode)
	case DecisionHoleFill:
		r.reg.RecordDecision(metrics.DecisionHoleFill)
	case DecisionPartial:
		if recalc {
			r.reg.RecordDecision(metrics.DecisionPartialRecalc)
		} else {
			r.reg.RecordDecision(metrics.DecisionPartialUpdate)
		}
	}
}

// decide applies the five-branch decision table of spec.md §4.4, in
// order. Decisions 4 and 5 are only reachable once parity is known to
// exist and the stripe is known not to be fully superseded or fully
// filled, which decisions 1-3 have already ruled out.
func (r *Reconciler) decide(obj *ObjectState, probe *store.ParityExtent) Decision {
	hasParity := probe != nil

	if hasParity && probe.Epoch >= obj.Stripe.HiEpoch {
		return DecisionNoop
	}
	if !hasParity && !obj.Stripe.IsFilled(false, 0) {
		return DecisionAbsentNoFill
	}

	var parityEpoch uint64
	if hasParity {
		parityEpoch = probe.Epoch
	}
	if obj.Stripe.IsFilled(hasParity, parityEpoch) {
		return DecisionFullEncode
	}

	if obj.Stripe.HasHoles {
		return DecisionHoleFill
	}
	return DecisionPartial
}

// fullEncode fetches the complete stripe at hi_epoch and runs a full
// Reed-Solomon encode over it.
func (r *Reconciler) fullEncode(ctx context.Context, obj *ObjectState) ([][]byte, error) {
	class := obj.Class
	stripeStart := obj.Stripe.StripeNum * class.StripeRecords()
	iod := store.IOD{Akey: obj.Akey, RSize: class.RSize, Recxs: []store.Recx{{Idx: stripeStart, Nr: class.StripeRecords()}}}

	sgls, err := r.store.ObjFetch(ctx, obj.OID, obj.Stripe.HiEpoch, obj.Dkey, []store.IOD{iod})
	if err != nil {
		return nil, aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: full-stripe fetch failed: %w", err))
	}
	if len(sgls) == 0 || len(sgls[0].Buffers) == 0 {
		return nil, aggerr.New(aggerr.ClassIntegrityViolation, fmt.Errorf("reconcile: full-stripe fetch returned no data for a filled stripe"))
	}

	cells := codec.SplitCells(sgls[0].Buffers[0], class.K, int(class.CellBytes()))

	table, err := codec.Resolve(class)
	if err != nil {
		return nil, aggerr.New(aggerr.ClassCodec, err)
	}

	rv := xstream.Submit(ctx, r.pool, func(ctx context.Context) ([][]byte, error) {
		return table.EncodeFull(cells)
	})
	parity, err := rv.Wait(ctx)
	if err != nil {
		return nil, aggerr.New(aggerr.ClassCodec, err)
	}
	return parity, nil
}

// cellBitmaps scans the open stripe's buffered extents and returns the
// cells fully covered by new data (full) and the cells touched at all
// (touched), both as data-cell indices in [0, k).
func cellBitmaps(open *stripe.Open, class oclass.Class) (full, touched []int) {
	stripeStart := open.StripeNum * class.StripeRecords()
	covered := make([]uint64, class.K)
	isTouched := make([]bool, class.K)

	for _, e := range open.Extents {
		if e.IsHole {
			continue
		}
		for c := 0; c < class.K; c++ {
			cellLo := stripeStart + uint64(c)*class.Len
			cellHi := cellLo + class.Len
			lo, hi := e.Recx.Idx, e.Recx.End()
			if lo < cellLo {
				lo = cellLo
			}
			if hi > cellHi {
				hi = cellHi
			}
			if hi > lo {
				covered[c] += hi - lo
				isTouched[c] = true
			}
		}
	}

	for c := 0; c < class.K; c++ {
		if isTouched[c] {
			touched = append(touched, c)
		}
		if covered[c] >= class.Len {
			full = append(full, c)
		}
	}
	return full, touched
}

// partialUpdate chooses between the incremental-update and recalc
// strategies per spec.md §4.4's full_cells > k/2 threshold, fetches
// whatever each strategy needs, and returns the resulting reversed parity
// buffer.
func (r *Reconciler) partialUpdate(ctx context.Context, obj *ObjectState, probe *store.ParityExtent) ([][]byte, bool, error) {
	class := obj.Class
	fullCells, touchedCells := cellBitmaps(obj.Stripe, class)

	var bitmap []int
	var recalc bool
	if len(fullCells) > class.K/2 {
		bitmap = fullCells
		recalc = true
	} else {
		bitmap = touchedCells
		recalc = false
	}
	if len(bitmap) == 0 {
		return nil, false, aggerr.New(aggerr.ClassIntegrityViolation,
			fmt.Errorf("reconcile: partial update chose an empty cell bitmap"))
	}

	remoteEpoch := probe.Epoch
	if recalc {
		remoteEpoch = obj.Stripe.HiEpoch
	}

	stripeStart := obj.Stripe.StripeNum * class.StripeRecords()
	oldCells := make(map[int][]byte, len(bitmap))
	for _, i := range bitmap {
		recx := store.Recx{Idx: stripeStart + uint64(i)*class.Len, Nr: class.Len}
		iod := store.IOD{Akey: obj.Akey, RSize: class.RSize, Recxs: []store.Recx{recx}}
		sgls, err := r.remote.Fetch(ctx, obj.OID.WithShard(uint32(i)), remoteEpoch, obj.Dkey, []store.IOD{iod})
		if err != nil {
			return nil, recalc, aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: remote fetch of cell %d failed: %w", i, err))
		}
		if len(sgls) == 0 || len(sgls[0].Buffers) == 0 {
			return nil, recalc, aggerr.New(aggerr.ClassIntegrityViolation, fmt.Errorf("reconcile: remote fetch of cell %d returned no data", i))
		}
		oldCells[i] = sgls[0].Buffers[0]
	}

	table, err := codec.Resolve(class)
	if err != nil {
		return nil, recalc, aggerr.New(aggerr.ClassCodec, err)
	}

	if !recalc {
		parityBuf, err := r.assembleParityBuffer(ctx, obj, probe)
		if err != nil {
			return nil, recalc, err
		}
		for _, i := range bitmap {
			newCell, err := r.fetchLocalCell(ctx, obj, i)
			if err != nil {
				return nil, recalc, err
			}
			i, newCell := i, newCell
			rv := xstream.Submit(ctx, r.pool, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, table.EncodeUpdate(oldCells[i], newCell, i, parityBuf)
			})
			if _, err := rv.Wait(ctx); err != nil {
				return nil, recalc, aggerr.New(aggerr.ClassCodec, err)
			}
		}
		return parityBuf, recalc, nil
	}

	bitSet := make(map[int]bool, len(bitmap))
	for _, i := range bitmap {
		bitSet[i] = true
	}
	full := make([][]byte, class.K)
	for i := 0; i < class.K; i++ {
		if bitSet[i] {
			full[i] = oldCells[i]
			continue
		}
		cell, err := r.fetchLocalCell(ctx, obj, i)
		if err != nil {
			return nil, recalc, err
		}
		full[i] = cell
	}

	rv := xstream.Submit(ctx, r.pool, func(ctx context.Context) ([][]byte, error) {
		return table.EncodeFull(full)
	})
	parity, err := rv.Wait(ctx)
	if err != nil {
		return nil, recalc, aggerr.New(aggerr.ClassCodec, err)
	}
	return parity, recalc, nil
}

func (r *Reconciler) fetchLocalCell(ctx context.Context, obj *ObjectState, cell int) ([]byte, error) {
	class := obj.Class
	stripeStart := obj.Stripe.StripeNum * class.StripeRecords()
	recx := store.Recx{Idx: stripeStart + uint64(cell)*class.Len, Nr: class.Len}
	iod := store.IOD{Akey: obj.Akey, RSize: class.RSize, Recxs: []store.Recx{recx}}

	sgls, err := r.store.ObjFetch(ctx, obj.OID, obj.Stripe.HiEpoch, obj.Dkey, []store.IOD{iod})
	if err != nil {
		return nil, aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: local fetch of cell %d failed: %w", cell, err))
	}
	if len(sgls) == 0 || len(sgls[0].Buffers) == 0 {
		return nil, aggerr.New(aggerr.ClassIntegrityViolation, fmt.Errorf("reconcile: local fetch of cell %d returned no data", cell))
	}
	return sgls[0].Buffers[0], nil
}

// assembleParityBuffer reads this shard's own current parity content plus,
// for p=2 classes, the peer's parity content, into the reversed
// (leader-first) buffer EncodeUpdate expects.
func (r *Reconciler) assembleParityBuffer(ctx context.Context, obj *ObjectState, probe *store.ParityExtent) ([][]byte, error) {
	class := obj.Class
	parityRecx := store.Recx{Idx: (obj.Stripe.StripeNum*class.Len) | store.ParityIndicator, Nr: class.Len}
	iod := store.IOD{Akey: obj.Akey, RSize: class.RSize, Recxs: []store.Recx{parityRecx}}

	own, err := r.store.ObjFetch(ctx, obj.OID, probe.Epoch, obj.Dkey, []store.IOD{iod})
	if err != nil {
		return nil, aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: own parity fetch failed: %w", err))
	}
	if len(own) == 0 || len(own[0].Buffers) == 0 {
		return nil, aggerr.New(aggerr.ClassIntegrityViolation, fmt.Errorf("reconcile: own parity fetch returned no data"))
	}

	buf := make([][]byte, class.P)
	buf[0] = own[0].Buffers[0]

	for i := 1; i < class.P; i++ {
		peerShard := class.LeaderShard() - uint32(i)
		peerSgls, err := r.remote.Fetch(ctx, obj.OID.WithShard(peerShard), probe.Epoch, obj.Dkey, []store.IOD{iod})
		if err != nil {
			return nil, aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: peer parity fetch from shard %d failed: %w", peerShard, err))
		}
		if len(peerSgls) == 0 || len(peerSgls[0].Buffers) == 0 {
			return nil, aggerr.New(aggerr.ClassIntegrityViolation, fmt.Errorf("reconcile: peer parity fetch from shard %d returned no data", peerShard))
		}
		buf[i] = peerSgls[0].Buffers[0]
	}
	return buf, nil
}

// uncoveredRanges returns the stripe-relative record ranges not covered by
// any buffered extent, data or hole. These are the "gaps" the hole-fill
// path must re-replicate from data shards; a range covered by a hole
// extent is intentional absence and is left alone.
func uncoveredRanges(open *stripe.Open, class oclass.Class) []store.Recx {
	stripeStart := open.StripeNum * class.StripeRecords()
	stripeEnd := stripeStart + class.StripeRecords()

	type interval struct{ lo, hi uint64 }
	var ivs []interval
	for _, e := range open.Extents {
		lo, hi := e.Recx.Idx, e.Recx.End()
		if lo < stripeStart {
			lo = stripeStart
		}
		if hi > stripeEnd {
			hi = stripeEnd
		}
		if hi > lo {
			ivs = append(ivs, interval{lo, hi})
		}
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].lo < ivs[j].lo })

	var gaps []store.Recx
	cursor := stripeStart
	for _, v := range ivs {
		if v.lo > cursor {
			gaps = append(gaps, store.Recx{Idx: cursor, Nr: v.lo - cursor})
		}
		if v.hi > cursor {
			cursor = v.hi
		}
	}
	if cursor < stripeEnd {
		gaps = append(gaps, store.Recx{Idx: cursor, Nr: stripeEnd - cursor})
	}
	return gaps
}

// cellRange pairs a gap sub-range with the data cell that owns it.
type cellRange struct {
	cell int
	recx store.Recx
}

// splitGapsByCell splits each gap at cell boundaries, since each data cell
// is a distinct shard in the vos.Store/RemoteAdapter model: a gap spanning
// more than one cell (or several disjoint gaps in different cells) must be
// fetched from each owning cell's own shard, not a single hardcoded one.
func splitGapsByCell(gaps []store.Recx, stripeStart uint64, class oclass.Class) []cellRange {
	var out []cellRange
	for _, g := range gaps {
		lo, hi := g.Idx, g.End()
		for c := 0; c < class.K; c++ {
			cellLo := stripeStart + uint64(c)*class.Len
			cellHi := cellLo + class.Len
			l, h := lo, hi
			if l < cellLo {
				l = cellLo
			}
			if h > cellHi {
				h = cellHi
			}
			if h > l {
				out = append(out, cellRange{cell: c, recx: store.Recx{Idx: l, Nr: h - l}})
			}
		}
	}
	return out
}

// holeFill re-replicates the stripe's uncovered ranges from their owning
// data shards and deletes the now-stale local parity, per spec.md §4.4's
// hole path.
func (r *Reconciler) holeFill(ctx context.Context, obj *ObjectState, probe *store.ParityExtent) error {
	class := obj.Class
	gaps := uncoveredRanges(obj.Stripe, class)
	if len(gaps) == 0 {
		return r.deleteLocalParity(ctx, obj, probe.Epoch)
	}

	stripeStart := obj.Stripe.StripeNum * class.StripeRecords()
	cellGaps := splitGapsByCell(gaps, stripeStart, class)

	gapRecxs := make([]store.Recx, len(cellGaps))
	gapBuffers := make([][]byte, len(cellGaps))
	for i, cg := range cellGaps {
		iod := store.IOD{Akey: obj.Akey, RSize: class.RSize, Recxs: []store.Recx{cg.recx}}
		sgls, err := r.remote.Fetch(ctx, obj.OID.WithShard(uint32(cg.cell)), obj.Stripe.HiEpoch, obj.Dkey, []store.IOD{iod})
		if err != nil {
			return aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: hole-fill gap fetch from cell %d failed: %w", cg.cell, err))
		}
		if len(sgls) == 0 || len(sgls[0].Buffers) == 0 {
			return aggerr.New(aggerr.ClassIntegrityViolation, fmt.Errorf("reconcile: hole-fill gap fetch from cell %d returned no data", cg.cell))
		}
		gapRecxs[i] = cg.recx
		gapBuffers[i] = sgls[0].Buffers[0]
	}
	gapBytes := codec.JoinCells(gapBuffers)

	wireRecxs := make([]rpcpb.Recx, len(gapRecxs))
	for i, g := range gapRecxs {
		wireRecxs[i] = rpcpb.Recx{Idx: g.Idx, Nr: g.Nr}
	}
	req := &rpcpb.ReplicateRequest{
		PoolUUID:    obj.PoolUUID,
		ContHdlUUID: obj.ContHdlUUID,
		ContUUID:    obj.ContUUID,
		OID:         rpcpb.ObjectID{PubID: obj.OID.PubID, ShardIdx: class.LeaderShard() - 1},
		Dkey:        obj.Dkey,
		Akey:        obj.Akey,
		RSize:       class.RSize,
		IOD:         rpcpb.IOD{Akey: obj.Akey, RSize: class.RSize, Recxs: wireRecxs},
		StripeNum:   obj.Stripe.StripeNum,
		Epoch:       obj.Stripe.HiEpoch,
		MapVer:      obj.MapVersion,
		Bulk:        gapBytes,
	}

	if r.peer == nil {
		return aggerr.New(aggerr.ClassResourceExhaustion, fmt.Errorf("reconcile: hole-fill requires a peer client"))
	}
	mirror := peer.NewMirror(r.peer)
	if err := mirror.WriteBoth(ctx, r.store, obj.OID, obj.Stripe.HiEpoch, obj.Dkey, gapRecxs, gapBuffers, req); err != nil {
		return err
	}

	return r.deleteLocalParity(ctx, obj, probe.Epoch)
}

func (r *Reconciler) deleteLocalParity(ctx context.Context, obj *ObjectState, parityEpoch uint64) error {
	class := obj.Class
	parityRecx := store.Recx{Idx: (obj.Stripe.StripeNum*class.Len) | store.ParityIndicator, Nr: class.Len}
	if err := r.store.ObjArrayRemove(ctx, obj.OID, store.EpochRange{Lo: 0, Hi: parityEpoch}, obj.Dkey, obj.Akey, parityRecx); err != nil {
		return aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: hole-path parity delete failed: %w", err))
	}
	return nil
}

// commit runs the full-encode/partial-update commit protocol: peer
// parity-write first (p>1 classes only), then a range-remove over the
// replicas the new parity now covers, then the local parity write.
func (r *Reconciler) commit(ctx context.Context, obj *ObjectState, parity [][]byte) error {
	class := obj.Class
	suffixExt := obj.Stripe.CarryUnder()

	if class.P > 1 {
		if r.peer == nil {
			return aggerr.New(aggerr.ClassResourceExhaustion, fmt.Errorf("reconcile: p=%d requires a peer client", class.P))
		}
		req := &rpcpb.AggregateRequest{
			PoolUUID:    obj.PoolUUID,
			ContHdlUUID: obj.ContHdlUUID,
			ContUUID:    obj.ContUUID,
			OID:         rpcpb.ObjectID{PubID: obj.OID.PubID, ShardIdx: class.LeaderShard() - 1},
			Dkey:        obj.Dkey,
			Akey:        obj.Akey,
			RSize:       class.RSize,
			Epoch:       obj.Stripe.HiEpoch,
			StripeNum:   obj.Stripe.StripeNum,
			MapVer:      obj.MapVersion,
			PriorLen:    uint32(obj.Stripe.PrefixExt),
			AfterLen:    uint32(suffixExt),
			Bulk:        parity[1],
		}
		if err := r.peer.ParityWrite(ctx, req); err != nil {
			return err
		}
	}

	stripeStart := obj.Stripe.StripeNum * class.StripeRecords()
	removeRecx := store.Recx{
		Idx: stripeStart - obj.Stripe.PrefixExt,
		Nr:  class.StripeRecords() + obj.Stripe.PrefixExt - suffixExt,
	}
	if err := r.store.ObjArrayRemove(ctx, obj.OID, store.EpochRange{Lo: 0, Hi: obj.Stripe.HiEpoch}, obj.Dkey, obj.Akey, removeRecx); err != nil {
		return aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: range-remove failed: %w", err))
	}

	parityRecx := store.Recx{Idx: (obj.Stripe.StripeNum*class.Len) | store.ParityIndicator, Nr: class.Len}
	piod := store.IOD{Akey: obj.Akey, RSize: class.RSize, Recxs: []store.Recx{parityRecx}}
	psgl := store.SGL{Buffers: [][]byte{parity[0]}}
	if err := r.store.ObjUpdate(ctx, obj.OID, obj.Stripe.HiEpoch, obj.Dkey, []store.IOD{piod}, []store.SGL{psgl}); err != nil {
		return aggerr.New(aggerr.ClassTransient, fmt.Errorf("reconcile: parity write failed: %w", err))
	}
	return nil
}
