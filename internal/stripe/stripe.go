// Package stripe implements the Stripe Assembler (C1): it buffers the
// replica extents for the currently-open stripe of one (object, dkey,
// akey) and exposes the fill/hole/carry-over bookkeeping the reconciler
// needs to make its per-stripe decision.
package stripe

import (
	"fmt"

	"github.com/Anthya1104/ecagg/internal/oclass"
	"github.com/Anthya1104/ecagg/internal/store"
)

// Open is the open-stripe state described in spec.md §3. It owns the
// extent records exclusively; they are released on close or discard.
type Open struct {
	Class oclass.Class

	StripeNum uint64 // offset of the stripe, = ex_lo / (k*len)
	HiEpoch   uint64 // max epoch of extents currently in the stripe

	Extents   []store.Extent
	ExtentCnt uint32

	StripeFill uint64 // records contributed, clipped to this stripe
	Offset     uint64 // record offset of first extent within the stripe

	// PrefixExt is inherited from the previous stripe's Close: the number
	// of leading records a prior carry-over extent's trim left behind,
	// which the commit of *this* stripe must delete.
	PrefixExt uint64

	HasHoles bool
}

// New opens a stripe. prefixExt carries forward the trimmed-prefix length
// recorded when the previous stripe closed (zero if there was none).
func New(class oclass.Class, stripenum, prefixExt uint64) *Open {
	return &Open{Class: class, StripeNum: stripenum, PrefixExt: prefixExt}
}

func (s *Open) stripeBounds() (lo, hi uint64) {
	sr := s.Class.StripeRecords()
	return s.StripeNum * sr, (s.StripeNum + 1) * sr
}

func (s *Open) stripenumOf(recx store.Recx) uint64 {
	return s.Class.StripeNum(recx.Idx)
}

func clipped(recx store.Recx, lo, hi uint64) uint64 {
	start := recx.Idx
	if start < lo {
		start = lo
	}
	end := recx.End()
	if end > hi {
		end = hi
	}
	if end <= start {
		return 0
	}
	return end - start
}

// Observe appends ext to the stripe. It panics if ext's stripe number
// differs from this Open's — the driver must rotate (close, then open the
// next stripe) before observing an extent from a different stripe.
func (s *Open) Observe(ext store.Extent) {
	if s.stripenumOf(ext.Recx) != s.StripeNum {
		panic(fmt.Sprintf("stripe: observe called with stripenum %d for open stripe %d; driver must rotate first",
			s.stripenumOf(ext.Recx), s.StripeNum))
	}

	if len(s.Extents) == 0 {
		lo, _ := s.stripeBounds()
		s.Offset = ext.Recx.Idx - lo
	}

	s.Extents = append(s.Extents, ext)
	s.ExtentCnt++

	if ext.Epoch > s.HiEpoch {
		s.HiEpoch = ext.Epoch
	}

	if ext.IsHole {
		s.HasHoles = true
		return
	}

	lo, hi := s.stripeBounds()
	s.StripeFill += clipped(ext.Recx, lo, hi)
}

// CarryUnder scans the currently-buffered extents for one that crosses
// into the next stripe and returns the length of its tail (the
// "suffix_ext" the commit of this stripe must retain). Returns 0 if no
// extent carries over.
func (s *Open) CarryUnder() uint64 {
	_, hi := s.stripeBounds()
	for _, e := range s.Extents {
		if end := e.Recx.End(); end > hi {
			return end - hi
		}
	}
	return 0
}

// CloseAndTrim closes the stripe: the extent (if any) that carries over
// into the next stripe is trimmed to its tail and returned as the seed for
// the next Open; all other extents are released. Per spec.md's invariant,
// at most one extent may carry over — CloseAndTrim panics (a data
// integrity violation, fatal per spec.md §7) if it finds more than one.
//
// It returns the prefix-ext value that must seed the next stripe's Open.
func (s *Open) CloseAndTrim() (nextPrefixExt uint64, seed *store.Extent) {
	_, hi := s.stripeBounds()
	found := false

	for i := range s.Extents {
		e := s.Extents[i]
		end := e.Recx.End()
		if end <= hi {
			continue
		}
		if found {
			panic("stripe: more than one extent carries over into the next stripe")
		}
		found = true

		tail := end - hi
		nextPrefixExt = e.Recx.Nr - tail
		e.Recx.Idx += nextPrefixExt
		e.Recx.Nr = tail
		seed = &e
	}

	s.Extents = nil
	s.ExtentCnt = 0
	return nextPrefixExt, seed
}

// IsFilled reports whether the stripe is completely covered by replica
// data and, when a parity cell already exists, whether every buffered
// extent is at least as new as that parity.
func (s *Open) IsFilled(hasParity bool, parityEpoch uint64) bool {
	if s.StripeFill != s.Class.StripeRecords() {
		return false
	}
	if !hasParity {
		return true
	}
	for _, e := range s.Extents {
		if e.Epoch < parityEpoch {
			return false
		}
	}
	return true
}
