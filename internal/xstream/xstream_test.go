package xstream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Anthya1104/ecagg/internal/xstream"
)

func TestSubmit_SuccessRoundTrip(t *testing.T) {
	pool := xstream.NewPool(2)
	rv := xstream.Submit(context.Background(), pool, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	v, err := rv.Wait(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 42, v)
}

func TestSubmit_PropagatesError(t *testing.T) {
	pool := xstream.NewPool(1)
	boom := errors.New("boom")
	rv := xstream.Submit(context.Background(), pool, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	_, err := rv.Wait(context.Background())
	assert.NotNil(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestWait_RespectsCancellation(t *testing.T) {
	pool := xstream.NewPool(1)
	release := make(chan struct{})
	rv := xstream.Submit(context.Background(), pool, func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := rv.Wait(ctx)
	assert.NotNil(t, err)
	close(release)
}

func TestRunAll_FirstErrorWins(t *testing.T) {
	boom := errors.New("peer unreachable")
	err := xstream.RunAll(context.Background(),
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return boom },
	)
	assert.NotNil(t, err)
	assert.ErrorIs(t, err, boom)
}
