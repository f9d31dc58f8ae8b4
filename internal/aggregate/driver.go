// Package aggregate implements the Iteration Driver (C6): the outer
// traversal that walks a container's objects, feeds each object's visible
// extents into the Stripe Assembler, and rotates into the Stripe
// Reconciler at every stripe boundary and at akey exit.
package aggregate

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Anthya1104/ecagg/internal/aggerr"
	"github.com/Anthya1104/ecagg/internal/config"
	"github.com/Anthya1104/ecagg/internal/metrics"
	"github.com/Anthya1104/ecagg/internal/oclass"
	"github.com/Anthya1104/ecagg/internal/peer"
	"github.com/Anthya1104/ecagg/internal/reconcile"
	"github.com/Anthya1104/ecagg/internal/store"
	"github.com/Anthya1104/ecagg/internal/stripe"
	"github.com/Anthya1104/ecagg/internal/xstream"
)

// LeaderChecker answers spec.md §4.6's per-object leadership question: is
// this rank still the shard driving aggregation for oid at mapVersion. A
// false result stops that object without treating it as a failure.
type LeaderChecker interface {
	IsLeader(ctx context.Context, oid store.ObjectID, mapVersion uint32) (bool, error)
}

// AlwaysLeader never loses leadership, for the single-process demo CLI
// where there is no real placement map to consult.
type AlwaysLeader struct{}

func (AlwaysLeader) IsLeader(ctx context.Context, oid store.ObjectID, mapVersion uint32) (bool, error) {
	return true, nil
}

// ObjectRef names one object a Run must visit.
type ObjectRef struct {
	OID   store.ObjectID
	Class oclass.Class
}

// Container is the set of objects one aggregation run scans, standing in
// for the real per-container object catalog spec.md's entrypoint assumes.
type Container struct {
	PoolUUID    []byte
	ContUUID    []byte
	ContHdlUUID []byte
	MapVersion  uint32
	Objects     []ObjectRef
}

// Status summarizes one Run.
type Status struct {
	ObjectsVisited    int
	ObjectsSkipped    int
	ObjectsFailed     int
	StripesReconciled int
	Metrics           metrics.Snapshot
}

// Driver walks a container's objects end to end, turning visible extents
// into reconciled parity.
type Driver struct {
	store      store.Store
	reconciler *reconcile.Reconciler
	leader     LeaderChecker
	tunables   config.Tunables
	reg        *metrics.Registry
}

// New builds a Driver. peerClient may be nil for p=1 classes, which never
// send EC_AGGREGATE; a stripe that takes the hole-fill path still sends
// EC_REPLICATE and fails without a peer client.
func New(st store.Store, remote reconcile.RemoteFetcher, peerClient *peer.Client, leader LeaderChecker, tun config.Tunables) *Driver {
	reg := metrics.NewRegistry()
	pool := xstream.NewPool(tun.WorkerPoolSize)
	return &Driver{
		store:      st,
		reconciler: reconcile.New(st, remote, peerClient, pool, reg),
		leader:     leader,
		tunables:   tun,
		reg:        reg,
	}
}

// Run walks every object in container over epr. A per-object failure that
// spec.md §7 classifies as non-fatal is logged and counted; the run
// continues with the next object. A fatal (data-integrity) error aborts
// the whole run immediately, per spec.md's escalation policy.
func (d *Driver) Run(ctx context.Context, container Container, epr store.EpochRange) (Status, error) {
	var status Status

	for _, ref := range container.Objects {
		if err := ctx.Err(); err != nil {
			return status, fmt.Errorf("aggregate: run cancelled: %w", err)
		}

		status.ObjectsVisited++

		isLeader, err := d.leader.IsLeader(ctx, ref.OID, container.MapVersion)
		if err != nil {
			logrus.WithField("oid", ref.OID.String()).Warnf("aggregation aborted for object: %v",
				aggerr.New(aggerr.ClassTransient, fmt.Errorf("aggregate: leadership check failed for %s: %w", ref.OID, err)))
			status.ObjectsFailed++
			d.reg.RecordAbort()
			continue
		}
		if !isLeader {
			status.ObjectsSkipped++
			continue
		}

		n, err := d.runObject(ctx, container, ref, epr)
		status.StripesReconciled += n
		if err != nil {
			if aggerr.IsFatal(err) {
				return status, err
			}
			logrus.WithField("oid", ref.OID.String()).Warnf("aggregation aborted for object: %v", err)
			status.ObjectsFailed++
			d.reg.RecordAbort()
		}
	}

	status.Metrics = d.reg.Snapshot()
	return status, nil
}

// runObject drives one object's cursor, dispatching dkey/akey/recx events:
// akey-enter opens a fresh per-akey reconciliation context, akey-exit
// reconciles whatever extents are still buffered, and a recx event rotates
// the open stripe (reconciling it) whenever it crosses into a new stripe
// number or the credits cap is about to be exceeded. A non-fatal stripe
// failure is logged and counted as an abort; that stripe is dropped and
// iteration continues with the next one.
func (d *Driver) runObject(ctx context.Context, container Container, ref ObjectRef, epr store.EpochRange) (int, error) {
	cur, err := d.store.Iterate(ctx, ref.OID, epr)
	if err != nil {
		return 0, aggerr.New(aggerr.ClassTransient, fmt.Errorf("aggregate: iterate failed for %s: %w", ref.OID, err))
	}
	defer cur.Close()

	reconciled := 0
	var obj *reconcile.ObjectState

	rotate := func(sn uint64) error {
		next, seed, err := d.reconciler.Reconcile(ctx, obj)
		if err != nil {
			if aggerr.IsFatal(err) {
				return err
			}
			logrus.WithField("oid", ref.OID.String()).Warnf("stripe %d aborted: %v", obj.Stripe.StripeNum, err)
			d.reg.RecordAbort()
			next, seed = obj.Stripe.CloseAndTrim()
		} else {
			reconciled++
		}
		obj.Stripe = stripe.New(ref.Class, sn, next)
		if seed != nil {
			obj.Stripe.Observe(*seed)
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return reconciled, fmt.Errorf("aggregate: run cancelled mid-object: %w", err)
		}

		item, more, err := cur.Next(ctx)
		if err != nil {
			return reconciled, aggerr.New(aggerr.ClassTransient, fmt.Errorf("aggregate: cursor failed for %s: %w", ref.OID, err))
		}
		if !more {
			break
		}

		switch item.Kind {
		case store.ItemAkeyEnter:
			obj = reconcile.NewObjectState(ref.OID, ref.Class, item.Dkey, item.Akey)
			obj.PoolUUID = container.PoolUUID
			obj.ContUUID = container.ContUUID
			obj.ContHdlUUID = container.ContHdlUUID
			obj.MapVersion = container.MapVersion

		case store.ItemAkeyExit:
			if obj != nil && obj.Stripe.ExtentCnt > 0 {
				if err := rotate(obj.Stripe.StripeNum); err != nil {
					return reconciled, err
				}
			}
			obj = nil

		case store.ItemRecx:
			if item.Extent.Recx.IsParity() {
				continue
			}
			sn := ref.Class.StripeNum(item.Extent.Recx.Idx)
			switch {
			case sn != obj.Stripe.StripeNum:
				if err := rotate(sn); err != nil {
					return reconciled, err
				}
			case obj.Stripe.ExtentCnt >= uint32(d.tunables.CreditsCap):
				if err := rotate(sn); err != nil {
					return reconciled, err
				}
			}
			obj.Stripe.Observe(item.Extent)
		}
	}

	return reconciled, nil
}
