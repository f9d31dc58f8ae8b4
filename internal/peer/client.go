// Package peer implements the Peer Coordinator (C5): it issues the two
// peer RPCs aggregation needs (parity-write and hole-fill/replicate) and
// offloads every call through the xstream helper pool so the reconciler's
// own goroutine never blocks on network I/O directly. Request payloads
// travel as plain byte fields; the client does not acquire a BufferLease.
package peer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Anthya1104/ecagg/internal/aggerr"
	"github.com/Anthya1104/ecagg/internal/rpcpb"
	"github.com/Anthya1104/ecagg/internal/xstream"
)

// Target addresses a peer shard by (rank, tag), tag = peer_idx + 1 per
// spec.md §5.
type Target struct {
	Rank uint32
	Tag  uint32
}

// Client is the per-peer RPC handle the reconciler uses for both
// EC_AGGREGATE and EC_REPLICATE calls.
type Client struct {
	rpc     rpcpb.PeerAggregateClient
	pool    *xstream.Pool
	timeout time.Duration
}

// NewClient wraps a connected rpcpb.PeerAggregateClient. pool is the
// shared xstream helper pool; timeout is the per-RPC deadline (spec.md
// §5: "RPCs inherit the host's RPC timeout; expiry surfaces as a
// per-stripe failure").
func NewClient(rpc rpcpb.PeerAggregateClient, pool *xstream.Pool, timeout time.Duration) *Client {
	return &Client{rpc: rpc, pool: pool, timeout: timeout}
}

// ParityWrite issues the EC_AGGREGATE RPC. It is offloaded through the
// helper pool and awaited via a rendezvous; a non-zero reply status or a
// transport failure is classified as a transient per-stripe abort, never
// a fatal error, matching spec.md §4.4's restart tolerance (duplicate
// peer writes at the same epoch must be idempotent on the receiving
// target, not here).
func (c *Client) ParityWrite(ctx context.Context, req *rpcpb.AggregateRequest) error {
	rv := xstream.Submit(ctx, c.pool, func(ctx context.Context) (int32, error) {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		reply, err := c.rpc.Aggregate(cctx, req)
		if err != nil {
			return 0, fmt.Errorf("peer: EC_AGGREGATE rpc failed: %w", err)
		}
		return reply.Status, nil
	})

	status, err := rv.Wait(ctx)
	if err != nil {
		logrus.WithField("stripenum", req.StripeNum).Warnf("peer parity-write failed: %v", err)
		return aggerr.New(aggerr.ClassTransient, err)
	}
	if status != 0 {
		return aggerr.New(aggerr.ClassTransient,
			fmt.Errorf("peer: EC_AGGREGATE rejected for stripe %d with status %d", req.StripeNum, status))
	}
	return nil
}

// Replicate issues the EC_REPLICATE (hole-fill) RPC with the same
// offload/rendezvous and classification treatment as ParityWrite.
func (c *Client) Replicate(ctx context.Context, req *rpcpb.ReplicateRequest) error {
	rv := xstream.Submit(ctx, c.pool, func(ctx context.Context) (int32, error) {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		reply, err := c.rpc.Replicate(cctx, req)
		if err != nil {
			return 0, fmt.Errorf("peer: EC_REPLICATE rpc failed: %w", err)
		}
		return reply.Status, nil
	})

	status, err := rv.Wait(ctx)
	if err != nil {
		logrus.WithField("stripenum", req.StripeNum).Warnf("peer hole-fill failed: %v", err)
		return aggerr.New(aggerr.ClassTransient, err)
	}
	if status != 0 {
		return aggerr.New(aggerr.ClassTransient,
			fmt.Errorf("peer: EC_REPLICATE rejected for stripe %d with status %d", req.StripeNum, status))
	}
	return nil
}
