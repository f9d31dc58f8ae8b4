package stripe_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/Anthya1104/ecagg/internal/oclass"
	"github.com/Anthya1104/ecagg/internal/store"
	"github.com/Anthya1104/ecagg/internal/stripe"
)

func init() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func testClass(t *testing.T) oclass.Class {
	c, err := oclass.New(4, 1, 8, 1) // k=4, p=1, len=8 records, rsize=1
	assert.Nil(t, err)
	return c
}

// S1: single full-stripe of 32 contiguous records at one epoch.
func TestObserve_FullStripe(t *testing.T) {
	class := testClass(t)
	open := stripe.New(class, 0, 0)

	open.Observe(store.Extent{Recx: store.Recx{Idx: 0, Nr: 32}, Epoch: 10})

	assert.Equal(t, uint64(32), open.StripeFill)
	assert.True(t, open.IsFilled(false, 0))
}

// S3-shaped: partial coverage never reports filled.
func TestObserve_PartialStripeNotFilled(t *testing.T) {
	class := testClass(t)
	open := stripe.New(class, 0, 0)

	open.Observe(store.Extent{Recx: store.Recx{Idx: 8, Nr: 8}, Epoch: 12})
	open.Observe(store.Extent{Recx: store.Recx{Idx: 24, Nr: 8}, Epoch: 12})

	assert.Equal(t, uint64(16), open.StripeFill)
	assert.False(t, open.IsFilled(true, 5))
}

func TestIsFilled_EqualEpochFillsNewerParityDoesNot(t *testing.T) {
	class := testClass(t)
	open := stripe.New(class, 0, 0)
	open.Observe(store.Extent{Recx: store.Recx{Idx: 0, Nr: 32}, Epoch: 5})

	assert.True(t, open.IsFilled(true, 5))
	assert.False(t, open.IsFilled(true, 6))
}

// S6: extent spans [30,34) across the stripe 0 -> 1 boundary at k*len=32.
func TestCloseAndTrim_CarryOver(t *testing.T) {
	class := testClass(t)
	open := stripe.New(class, 0, 0)
	open.Observe(store.Extent{Recx: store.Recx{Idx: 30, Nr: 4}, Epoch: 7})

	nextPrefix, seed := open.CloseAndTrim()

	assert.Equal(t, uint64(2), nextPrefix, "2 records of the extent lie in stripe 0")
	assert.NotNil(t, seed)
	assert.Equal(t, uint64(32), seed.Recx.Idx)
	assert.Equal(t, uint64(2), seed.Recx.Nr)
	assert.Equal(t, uint64(0), open.ExtentCnt, "extents released on close")
}

func TestCloseAndTrim_NoCarryOverIsNoop(t *testing.T) {
	class := testClass(t)
	open := stripe.New(class, 0, 0)
	open.Observe(store.Extent{Recx: store.Recx{Idx: 0, Nr: 32}, Epoch: 1})

	nextPrefix, seed := open.CloseAndTrim()
	assert.Equal(t, uint64(0), nextPrefix)
	assert.Nil(t, seed)
}

func TestCloseAndTrim_MultipleCarryOversPanics(t *testing.T) {
	class := testClass(t)
	open := stripe.New(class, 0, 0)
	open.Observe(store.Extent{Recx: store.Recx{Idx: 30, Nr: 4}, Epoch: 1})
	open.Observe(store.Extent{Recx: store.Recx{Idx: 31, Nr: 4}, Epoch: 2})

	assert.Panics(t, func() { open.CloseAndTrim() })
}

func TestObserve_WrongStripePanics(t *testing.T) {
	class := testClass(t)
	open := stripe.New(class, 0, 0)

	assert.Panics(t, func() {
		open.Observe(store.Extent{Recx: store.Recx{Idx: 40, Nr: 4}, Epoch: 1})
	})
}

func TestObserve_HolesContributeNoFill(t *testing.T) {
	class := testClass(t)
	open := stripe.New(class, 0, 0)
	open.Observe(store.Extent{Recx: store.Recx{Idx: 0, Nr: 24}, Epoch: 1})
	open.Observe(store.Extent{Recx: store.Recx{Idx: 24, Nr: 8}, Epoch: 1, IsHole: true})

	assert.Equal(t, uint64(24), open.StripeFill)
	assert.True(t, open.HasHoles)
	assert.False(t, open.IsFilled(false, 0))
}

func TestCarryUnder_MatchesCloseAndTrimSuffix(t *testing.T) {
	class := testClass(t)
	open := stripe.New(class, 0, 0)
	open.Observe(store.Extent{Recx: store.Recx{Idx: 30, Nr: 4}, Epoch: 1})

	suffix := open.CarryUnder()
	assert.Equal(t, uint64(2), suffix)
}
