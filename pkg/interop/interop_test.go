package interop

import (
	"crypto/rand"
	"testing"

	"hashvault/pkg/consensus"
	"hashvault/pkg/smt"
	"hashvault/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomHash(t *testing.T) types.Hash {
	t.Helper()
	b := make([]byte, types.Size)
	_, err := rand.Read(b)
	require.NoError(t, err)
	h, err := types.FromBytes(b)
	require.NoError(t, err)
	return h
}

func TestTreeHash_RoundTrip(t *testing.T) {
	for range 50 {
		h := randomHash(t)
		th := ToTreeHash(h)
		assert.Equal(t, h, FromTreeHash(th))
		assert.Equal(t, h.Bytes(), th[:])
	}
}

func TestTreeValue(t *testing.T) {
	h := randomHash(t)
	v := NewTreeValue(h)

	assert.Equal(t, h.Bytes(), v.AsSlice())
	assert.Equal(t, h, v.Hash())
	assert.True(t, v.Zero().Hash().IsZero())
}

func TestTreeValue_AsLeaf(t *testing.T) {
	tree := smt.New[TreeValue]()
	k := ToTreeHash(types.Sum256("path/a"))
	h := types.Sum256("content-a")

	tree.Update(k, NewTreeValue(h))
	assert.Equal(t, h, tree.Get(k).Hash())
	assert.False(t, tree.Root().IsZero())

	// 零哨兵删除叶子
	tree.Update(k, TreeValue{}.Zero())
	assert.True(t, tree.Get(k).Hash().IsZero())
	assert.True(t, tree.Root().IsZero())
}

func TestToConsensusHash(t *testing.T) {
	h := randomHash(t)
	ch := ToConsensusHash(h)

	assert.Equal(t, consensus.AlgorithmSHA256, ch.Algorithm())
	assert.Equal(t, h.Bytes(), ch.Bytes())
	assert.Equal(t, "SHA256:"+h.String(), ch.String())
}

func TestToTxHash(t *testing.T) {
	h := randomHash(t)
	tx := ToTxHash(h)

	assert.Equal(t, h.Bytes(), tx.Bytes())
	assert.Equal(t, h.String(), tx.String())
}
