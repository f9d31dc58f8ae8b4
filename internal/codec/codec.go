// Package codec wraps the Reed-Solomon tables used to encode and
// incrementally update EC parity cells. It generalizes the RAID5/RAID6
// encoder setup from the raid simulator to arbitrary (k, p) object
// classes and to the two entry points the aggregation reconciler needs:
// a full-stripe encode and a single-cell incremental update.
package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/reedsolomon"
	"golang.org/x/sync/singleflight"

	"github.com/Anthya1104/ecagg/internal/oclass"
)

// Table is a resolved Reed-Solomon encoder for one (k, p) object class.
type Table struct {
	class oclass.Class
	enc   reedsolomon.Encoder
	ext   reedsolomon.Extensions
}

var (
	mu    sync.Mutex
	cache = map[oclass.Class]*Table{}
	group singleflight.Group
)

// Resolve returns the cached Table for class, building it on first use.
// Concurrent resolutions for the same class are deduplicated via
// singleflight, so two stripes of the same object class racing through
// Resolve only construct one reedsolomon.Encoder between them.
func Resolve(class oclass.Class) (*Table, error) {
	mu.Lock()
	if t, ok := cache[class]; ok {
		mu.Unlock()
		return t, nil
	}
	mu.Unlock()

	key := fmt.Sprintf("%d:%d:%d:%d", class.K, class.P, class.Len, class.RSize)
	v, err, _ := group.Do(key, func() (interface{}, error) {
		mu.Lock()
		if t, ok := cache[class]; ok {
			mu.Unlock()
			return t, nil
		}
		mu.Unlock()

		enc, err := reedsolomon.New(class.K, class.P)
		if err != nil {
			return nil, fmt.Errorf("codec: failed to create reedsolomon encoder for k=%d p=%d: %w", class.K, class.P, err)
		}
		ext, ok := enc.(reedsolomon.Extensions)
		if !ok {
			return nil, fmt.Errorf("codec: reedsolomon encoder does not implement Extensions")
		}
		t := &Table{class: class, enc: enc, ext: ext}

		mu.Lock()
		cache[class] = t
		mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// AllocAligned returns numShards buffers of cellBytes each, 32-byte aligned
// as spec.md §4.3 requires, using the library's own aligned allocator.
func (t *Table) AllocAligned(cellBytes int) [][]byte {
	return t.ext.AllocAligned(cellBytes)
}

// reverseParity implements the reversed parity-buffer layout of spec.md
// §4.3: the leader's parity (last raw shard, index p-1) occupies buffer
// index 0; lower shard indices follow at 1..p-1. The transform is its own
// inverse.
func reverseParity(raw [][]byte) [][]byte {
	out := make([][]byte, len(raw))
	n := len(raw)
	for i := range raw {
		out[i] = raw[n-1-i]
	}
	return out
}

// EncodeFull computes the parity cells for a complete stripe. data must
// hold exactly class.K cells, each class.CellBytes() long. The returned
// parity slice is in the reversed (leader-first) order.
func (t *Table) EncodeFull(data [][]byte) ([][]byte, error) {
	if len(data) != t.class.K {
		return nil, fmt.Errorf("codec: encode_full: expected %d data cells, got %d", t.class.K, len(data))
	}
	cellBytes := int(t.class.CellBytes())
	shards := make([][]byte, t.class.K+t.class.P)
	copy(shards, data)

	aligned := t.AllocAligned(cellBytes)
	for i := 0; i < t.class.P; i++ {
		shards[t.class.K+i] = aligned[t.class.K+i]
	}

	if err := t.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("codec: encode_full failed: %w", err)
	}
	return reverseParity(shards[t.class.K:]), nil
}

// EncodeUpdate applies an incremental update to parity for a single
// changed cell, equivalent to re-encoding with only cell j changed. old is
// the prior content of cell j, newCell its new content, and parity (in
// reversed/leader-first order) is updated in place.
func (t *Table) EncodeUpdate(old, newCell []byte, cellIndex int, parity [][]byte) error {
	if cellIndex < 0 || cellIndex >= t.class.K {
		return fmt.Errorf("codec: encode_update: cell index %d out of range [0,%d)", cellIndex, t.class.K)
	}
	if len(parity) != t.class.P {
		return fmt.Errorf("codec: encode_update: expected %d parity cells, got %d", t.class.P, len(parity))
	}

	rawParity := reverseParity(parity) // undo leader-first ordering for the library's natural shard order

	shards := make([][]byte, t.class.K+t.class.P)
	shards[cellIndex] = old
	for i, p := range rawParity {
		shards[t.class.K+i] = p
	}

	newData := make([][]byte, t.class.K)
	newData[cellIndex] = newCell

	if err := t.enc.Update(shards, newData); err != nil {
		return fmt.Errorf("codec: encode_update failed: %w", err)
	}
	// Update() writes the new parity bytes into the byte slices referenced
	// by shards[K:] in place; those are the same backing arrays as
	// rawParity/parity, so no copy-back is required.
	return nil
}

// Class returns the object class this table was resolved for.
func (t *Table) Class() oclass.Class { return t.class }

// SplitCells slices a full stripe's bytes into k cell buffers, the layout
// the reconciler's full-stripe fetch needs before handing data to
// EncodeFull. It is the same fixed-stride chunking raid0.go used to split
// a write across disks, generalized from disk stripes to EC cells.
func SplitCells(buf []byte, k int, cellBytes int) [][]byte {
	cells := make([][]byte, k)
	for i := 0; i < k; i++ {
		lo := i * cellBytes
		hi := lo + cellBytes
		if hi > len(buf) {
			hi = len(buf)
		}
		if lo > len(buf) {
			lo = len(buf)
		}
		cells[i] = buf[lo:hi]
	}
	return cells
}

// JoinCells concatenates cell buffers back into one contiguous stripe
// buffer, the inverse of SplitCells.
func JoinCells(cells [][]byte) []byte {
	total := 0
	for _, c := range cells {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range cells {
		out = append(out, c...)
	}
	return out
}
