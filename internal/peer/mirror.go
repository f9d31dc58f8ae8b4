package peer

import (
	"context"
	"fmt"

	"github.com/Anthya1104/ecagg/internal/aggerr"
	"github.com/Anthya1104/ecagg/internal/rpcpb"
	"github.com/Anthya1104/ecagg/internal/store"
)

// Mirror drives the hole-fill path's dual write: the same gap bytes are
// written to the local store and forwarded to a peer data target, per
// spec.md §4.4's hole path ("forwarding the bytes to a peer data target
// ... writing the same bytes locally"). It is adapted from the raid
// simulator's RAID1Controller, which kept one identical copy of the
// written data on every disk; here there are exactly two copies (local
// and the one peer data shard named by the replicate RPC). Any non-zero
// peer reply status is a failure; a repeated write after a crash relies on
// the receiving target handling it idempotently.
type Mirror struct {
	client *Client
}

// NewMirror builds a Mirror over an already-connected peer Client.
func NewMirror(client *Client) *Mirror {
	return &Mirror{client: client}
}

// WriteBoth writes buffers into the local store at the given
// dkey/akey/recx set and epoch, then forwards the same bytes to the peer
// named in req. buffers must hold exactly one entry per recxs entry, the
// same one-buffer-per-recx pairing store.Store.ObjFetch/ObjUpdate require;
// a stripe with several disjoint hole-fill gaps produces several recxs, so
// the buffers cannot be joined into one flat slice first. The local write
// runs first: if it fails, the peer is never contacted, so a retry after a
// crash only ever re-sends data the peer has not yet necessarily seen,
// which the receiving target must treat idempotently.
func (m *Mirror) WriteBoth(ctx context.Context, local store.Store, oid store.ObjectID, epoch uint64, dkey string, recxs []store.Recx, buffers [][]byte, req *rpcpb.ReplicateRequest) error {
	if len(recxs) == 0 {
		return aggerr.New(aggerr.ClassIntegrityViolation, fmt.Errorf("peer: hole-fill mirror called with no gap ranges"))
	}
	if len(buffers) != len(recxs) {
		return aggerr.New(aggerr.ClassIntegrityViolation,
			fmt.Errorf("peer: hole-fill mirror got %d buffers for %d recxs", len(buffers), len(recxs)))
	}

	iod := store.IOD{Akey: req.Akey, RSize: req.RSize, Recxs: recxs}
	sgl := store.SGL{Buffers: buffers}

	if err := local.ObjUpdate(ctx, oid, epoch, dkey, []store.IOD{iod}, []store.SGL{sgl}); err != nil {
		return aggerr.New(aggerr.ClassTransient, fmt.Errorf("peer: local hole-fill write failed: %w", err))
	}

	if err := m.client.Replicate(ctx, req); err != nil {
		return err // already classified by Client.Replicate
	}
	return nil
}
