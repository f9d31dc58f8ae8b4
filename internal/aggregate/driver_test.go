package aggregate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Anthya1104/ecagg/internal/aggregate"
	"github.com/Anthya1104/ecagg/internal/config"
	"github.com/Anthya1104/ecagg/internal/oclass"
	"github.com/Anthya1104/ecagg/internal/store"
	"github.com/Anthya1104/ecagg/internal/vos"
)

func testClass(t *testing.T) oclass.Class {
	t.Helper()
	c, err := oclass.New(2, 1, 4, 1)
	assert.Nil(t, err)
	return c
}

type denyLeader struct{}

func (denyLeader) IsLeader(ctx context.Context, oid store.ObjectID, mapVersion uint32) (bool, error) {
	return false, nil
}

func TestDriver_Run_FullEncode(t *testing.T) {
	class := testClass(t)
	oid := store.ObjectID{PubID: 1, ShardIdx: class.LeaderShard()}

	st := vos.New()
	st.Put(oid, "dk", "ak", store.Recx{Idx: 0, Nr: 8}, 5, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	d := aggregate.New(st, vos.RemoteAdapter{Store: st}, nil, aggregate.AlwaysLeader{}, config.Default())
	container := aggregate.Container{
		MapVersion: 1,
		Objects:    []aggregate.ObjectRef{{OID: oid, Class: class}},
	}

	status, err := d.Run(context.Background(), container, store.EpochRange{Lo: 0, Hi: 100})

	assert.Nil(t, err)
	assert.Equal(t, 1, status.ObjectsVisited)
	assert.Equal(t, 0, status.ObjectsFailed)
	assert.Equal(t, 1, status.StripesReconciled)

	probe, perr := st.ProbeParity(context.Background(), oid, "dk", "ak", 0, class.Len)
	assert.Nil(t, perr)
	assert.NotNil(t, probe)
	assert.Equal(t, uint64(5), probe.Epoch)
}

func TestDriver_Run_SkipsNonLeaderObject(t *testing.T) {
	class := testClass(t)
	oid := store.ObjectID{PubID: 2, ShardIdx: class.LeaderShard()}

	st := vos.New()
	st.Put(oid, "dk", "ak", store.Recx{Idx: 0, Nr: 8}, 5, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	d := aggregate.New(st, vos.RemoteAdapter{Store: st}, nil, denyLeader{}, config.Default())
	container := aggregate.Container{
		Objects: []aggregate.ObjectRef{{OID: oid, Class: class}},
	}

	status, err := d.Run(context.Background(), container, store.EpochRange{Lo: 0, Hi: 100})

	assert.Nil(t, err)
	assert.Equal(t, 1, status.ObjectsSkipped)
	assert.Equal(t, 0, status.StripesReconciled)
}

func TestDriver_Run_CancelledContext(t *testing.T) {
	class := testClass(t)
	oid := store.ObjectID{PubID: 3, ShardIdx: class.LeaderShard()}

	st := vos.New()
	d := aggregate.New(st, vos.RemoteAdapter{Store: st}, nil, aggregate.AlwaysLeader{}, config.Default())
	container := aggregate.Container{
		Objects: []aggregate.ObjectRef{{OID: oid, Class: class}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Run(ctx, container, store.EpochRange{Lo: 0, Hi: 100})
	assert.NotNil(t, err)
}

func TestDriver_Run_MultipleStripesAccumulateAcrossAkey(t *testing.T) {
	class := testClass(t) // k=2, len=4 -> 8 records per stripe
	oid := store.ObjectID{PubID: 4, ShardIdx: class.LeaderShard()}

	st := vos.New()
	st.Put(oid, "dk", "ak", store.Recx{Idx: 0, Nr: 8}, 1, make([]byte, 8))
	st.Put(oid, "dk", "ak", store.Recx{Idx: 8, Nr: 8}, 1, make([]byte, 8))

	d := aggregate.New(st, vos.RemoteAdapter{Store: st}, nil, aggregate.AlwaysLeader{}, config.Default())
	container := aggregate.Container{
		Objects: []aggregate.ObjectRef{{OID: oid, Class: class}},
	}

	status, err := d.Run(context.Background(), container, store.EpochRange{Lo: 0, Hi: 100})

	assert.Nil(t, err)
	assert.Equal(t, 2, status.StripesReconciled)
}
