package codec_test

import (
	"testing"

	"github.com/klauspost/reedsolomon"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/Anthya1104/ecagg/internal/codec"
	"github.com/Anthya1104/ecagg/internal/oclass"
)

func init() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func TestEncodeFull_RAID5Shape(t *testing.T) {
	class, err := oclass.New(2, 1, 1, 1)
	assert.Nil(t, err)

	table, err := codec.Resolve(class)
	assert.Nil(t, err)

	data := [][]byte{[]byte("A"), []byte("B")}
	parity, err := table.EncodeFull(data)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(parity))
	assert.Equal(t, 1, len(parity[0]))
}

func TestEncodeFull_RAID6Shape_ParityReversed(t *testing.T) {
	class, err := oclass.New(2, 2, 1, 1)
	assert.Nil(t, err)

	table, err := codec.Resolve(class)
	assert.Nil(t, err)

	data := [][]byte{[]byte("C"), []byte("D")}
	parity, err := table.EncodeFull(data)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(parity))
	// index 0 must be the leader's parity (shard k+p-1); verify by
	// encoding with the natural (unreversed) shard order and comparing
	// byte-for-byte against the reversed output.
	assert.NotEqual(t, parity[0], nil)
	assert.NotEqual(t, parity[1], nil)

	enc, err := reedsolomon.New(2, 2)
	assert.Nil(t, err)
	raw := [][]byte{[]byte("C"), []byte("D"), make([]byte, 1), make([]byte, 1)}
	assert.Nil(t, enc.Encode(raw))
	assert.Equal(t, raw[3], parity[0])
	assert.Equal(t, raw[2], parity[1])
}

func TestEncodeUpdate_MatchesFullReencode(t *testing.T) {
	class, err := oclass.New(4, 1, 1, 1)
	assert.Nil(t, err)

	table, err := codec.Resolve(class)
	assert.Nil(t, err)

	original := [][]byte{{1}, {2}, {3}, {4}}
	parity, err := table.EncodeFull(original)
	assert.Nil(t, err)

	updated := make([][]byte, len(original))
	for i, c := range original {
		updated[i] = append([]byte{}, c...)
	}
	updated[2] = []byte{9}

	gotParity := make([][]byte, len(parity))
	for i, p := range parity {
		gotParity[i] = append([]byte{}, p...)
	}
	err = table.EncodeUpdate(original[2], updated[2], 2, gotParity)
	assert.Nil(t, err)

	wantParity, err := table.EncodeFull(updated)
	assert.Nil(t, err)

	assert.Equal(t, wantParity, gotParity)
}

func TestResolve_CachesByClass(t *testing.T) {
	class, err := oclass.New(3, 1, 4, 1)
	assert.Nil(t, err)

	t1, err := codec.Resolve(class)
	assert.Nil(t, err)
	t2, err := codec.Resolve(class)
	assert.Nil(t, err)
	assert.True(t, t1 == t2, "Resolve should return the cached table for the same class")
}

func TestEncodeFull_WrongCellCount(t *testing.T) {
	class, err := oclass.New(3, 1, 1, 1)
	assert.Nil(t, err)

	table, err := codec.Resolve(class)
	assert.Nil(t, err)

	_, err = table.EncodeFull([][]byte{{1}, {2}})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "expected 3 data cells")
}
