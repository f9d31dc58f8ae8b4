package peer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"

	"github.com/Anthya1104/ecagg/internal/aggerr"
	"github.com/Anthya1104/ecagg/internal/peer"
	"github.com/Anthya1104/ecagg/internal/rpcpb"
	"github.com/Anthya1104/ecagg/internal/store"
	"github.com/Anthya1104/ecagg/internal/xstream"
)

type fakeRPC struct {
	aggStatus int32
	aggErr    error
	repStatus int32
	repErr    error

	lastAggregate *rpcpb.AggregateRequest
	lastReplicate *rpcpb.ReplicateRequest
}

func (f *fakeRPC) Aggregate(ctx context.Context, in *rpcpb.AggregateRequest, opts ...grpc.CallOption) (*rpcpb.AggregateReply, error) {
	f.lastAggregate = in
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	return &rpcpb.AggregateReply{Status: f.aggStatus}, nil
}

func (f *fakeRPC) Replicate(ctx context.Context, in *rpcpb.ReplicateRequest, opts ...grpc.CallOption) (*rpcpb.ReplicateReply, error) {
	f.lastReplicate = in
	if f.repErr != nil {
		return nil, f.repErr
	}
	return &rpcpb.ReplicateReply{Status: f.repStatus}, nil
}

func TestParityWrite_Success(t *testing.T) {
	fake := &fakeRPC{aggStatus: 0}
	c := peer.NewClient(fake, xstream.NewPool(1), time.Second)

	err := c.ParityWrite(context.Background(), &rpcpb.AggregateRequest{StripeNum: 3})
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), fake.lastAggregate.StripeNum)
}

func TestParityWrite_NonZeroStatusIsTransient(t *testing.T) {
	fake := &fakeRPC{aggStatus: 5}
	c := peer.NewClient(fake, xstream.NewPool(1), time.Second)

	err := c.ParityWrite(context.Background(), &rpcpb.AggregateRequest{StripeNum: 1})
	assert.NotNil(t, err)
	class, ok := aggerr.ClassOf(err)
	assert.True(t, ok)
	assert.Equal(t, aggerr.ClassTransient, class)
	assert.False(t, aggerr.IsFatal(err))
}

func TestParityWrite_TransportErrorIsTransient(t *testing.T) {
	fake := &fakeRPC{aggErr: errors.New("connection refused")}
	c := peer.NewClient(fake, xstream.NewPool(1), time.Second)

	err := c.ParityWrite(context.Background(), &rpcpb.AggregateRequest{})
	assert.NotNil(t, err)
	class, ok := aggerr.ClassOf(err)
	assert.True(t, ok)
	assert.Equal(t, aggerr.ClassTransient, class)
}

// fakeStore is a minimal store.Store for exercising Mirror.WriteBoth
// without the full vos implementation.
type fakeStore struct {
	updateErr error
	updated   bool
}

func (s *fakeStore) Iterate(ctx context.Context, oid store.ObjectID, epr store.EpochRange) (store.Cursor, error) {
	return nil, errors.New("not implemented")
}
func (s *fakeStore) ObjFetch(ctx context.Context, oid store.ObjectID, epoch uint64, dkey string, iods []store.IOD) ([]store.SGL, error) {
	return nil, errors.New("not implemented")
}
func (s *fakeStore) ObjUpdate(ctx context.Context, oid store.ObjectID, epoch uint64, dkey string, iods []store.IOD, sgls []store.SGL) error {
	s.updated = true
	return s.updateErr
}
func (s *fakeStore) ObjArrayRemove(ctx context.Context, oid store.ObjectID, epr store.EpochRange, dkey, akey string, recx store.Recx) error {
	return errors.New("not implemented")
}
func (s *fakeStore) ProbeParity(ctx context.Context, oid store.ObjectID, dkey, akey string, stripenum, cellLen uint64) (*store.ParityExtent, error) {
	return nil, errors.New("not implemented")
}

func TestMirror_WriteBoth_LocalThenPeer(t *testing.T) {
	fakeClient := &fakeRPC{repStatus: 0}
	c := peer.NewClient(fakeClient, xstream.NewPool(1), time.Second)
	m := peer.NewMirror(c)

	fs := &fakeStore{}
	req := &rpcpb.ReplicateRequest{Akey: "a", RSize: 1, StripeNum: 0}
	err := m.WriteBoth(context.Background(), fs, store.ObjectID{PubID: 1, ShardIdx: 0}, 10, "dk",
		[]store.Recx{{Idx: 0, Nr: 4}}, [][]byte{[]byte("data")}, req)

	assert.Nil(t, err)
	assert.True(t, fs.updated)
	assert.NotNil(t, fakeClient.lastReplicate)
}

func TestMirror_WriteBoth_LocalFailureSkipsPeer(t *testing.T) {
	fakeClient := &fakeRPC{repStatus: 0}
	c := peer.NewClient(fakeClient, xstream.NewPool(1), time.Second)
	m := peer.NewMirror(c)

	fs := &fakeStore{updateErr: errors.New("disk full")}
	req := &rpcpb.ReplicateRequest{Akey: "a", RSize: 1}
	err := m.WriteBoth(context.Background(), fs, store.ObjectID{}, 10, "dk",
		[]store.Recx{{Idx: 0, Nr: 4}}, [][]byte{[]byte("data")}, req)

	assert.NotNil(t, err)
	assert.Nil(t, fakeClient.lastReplicate)
}

func TestMirror_WriteBoth_NoGapsIsIntegrityViolation(t *testing.T) {
	fakeClient := &fakeRPC{}
	c := peer.NewClient(fakeClient, xstream.NewPool(1), time.Second)
	m := peer.NewMirror(c)

	err := m.WriteBoth(context.Background(), &fakeStore{}, store.ObjectID{}, 10, "dk", nil, nil, &rpcpb.ReplicateRequest{})
	assert.NotNil(t, err)
	class, ok := aggerr.ClassOf(err)
	assert.True(t, ok)
	assert.Equal(t, aggerr.ClassIntegrityViolation, class)
}

func TestMirror_WriteBoth_MismatchedBufferCountIsIntegrityViolation(t *testing.T) {
	fakeClient := &fakeRPC{}
	c := peer.NewClient(fakeClient, xstream.NewPool(1), time.Second)
	m := peer.NewMirror(c)

	// Two disjoint gap recxs but only one buffer: must be rejected rather
	// than silently written against the wrong recx.
	err := m.WriteBoth(context.Background(), &fakeStore{}, store.ObjectID{}, 10, "dk",
		[]store.Recx{{Idx: 0, Nr: 4}, {Idx: 8, Nr: 4}}, [][]byte{[]byte("data")}, &rpcpb.ReplicateRequest{})
	assert.NotNil(t, err)
	class, ok := aggerr.ClassOf(err)
	assert.True(t, ok)
	assert.Equal(t, aggerr.ClassIntegrityViolation, class)
}
