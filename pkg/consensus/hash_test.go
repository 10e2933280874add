package consensus

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_Variants(t *testing.T) {
	var none Hash
	assert.True(t, none.IsEmpty())
	assert.Equal(t, AlgorithmNone, none.Algorithm())
	assert.Empty(t, none.Bytes())
	assert.Equal(t, "NONE", none.String())

	sum := sha256.Sum256([]byte("block"))
	h := NewSHA256Hash(sum)
	assert.False(t, h.IsEmpty())
	assert.Equal(t, AlgorithmSHA256, h.Algorithm())
	assert.Equal(t, sum[:], h.Bytes())
	assert.True(t, strings.HasPrefix(h.String(), "SHA256:"))
	assert.Len(t, h.String(), len("SHA256:")+64)
}

func TestTxHash(t *testing.T) {
	sum := sha256.Sum256([]byte("tx"))
	tx := NewTxHash(sum)
	assert.Equal(t, sum[:], tx.Bytes())
	assert.Equal(t, strings.ToUpper(tx.String()), tx.String())
}
