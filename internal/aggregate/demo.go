package aggregate

import (
	"context"
	"fmt"

	"github.com/Anthya1104/ecagg/internal/config"
	"github.com/Anthya1104/ecagg/internal/oclass"
	"github.com/Anthya1104/ecagg/internal/store"
	"github.com/Anthya1104/ecagg/internal/vos"
)

// RunDemo seeds an in-memory object with one full stripe of sample data
// and runs a single aggregation pass over it, the same end-to-end shape
// the raid simulator's RunRAIDSimulation gave the CLI: no external store
// to stand up, just enough fixture data to exercise the real engine.
func RunDemo(poolID, contID string, lo, hi uint64, k, p int) (Status, error) {
	class, err := oclass.New(k, p, 4, 1)
	if err != nil {
		return Status{}, fmt.Errorf("aggregate: demo class: %w", err)
	}

	oid := store.ObjectID{PubID: 1, ShardIdx: class.LeaderShard()}
	st := vos.New()

	sample := make([]byte, class.StripeRecords())
	copy(sample, []byte("ecagg demo stripe payload"))
	st.Put(oid, "dkey-0", "akey-0", store.Recx{Idx: 0, Nr: class.StripeRecords()}, lo+1, sample)

	d := New(st, vos.RemoteAdapter{Store: st}, nil, AlwaysLeader{}, config.Default())
	container := Container{
		PoolUUID: []byte(poolID),
		ContUUID: []byte(contID),
		Objects:  []ObjectRef{{OID: oid, Class: class}},
	}

	return d.Run(context.Background(), container, store.EpochRange{Lo: lo, Hi: hi})
}
