package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_Roundtrip(t *testing.T) {
	h := NewHasher()

	encoded, err := h.Hash("pw123")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))
	assert.True(t, h.Verify("pw123", encoded))
}

func TestHasher_WrongPassword(t *testing.T) {
	h := NewHasher()

	encoded, err := h.Hash("correct-horse")
	require.NoError(t, err)

	assert.False(t, h.Verify("battery-staple", encoded))
}

func TestHasher_SaltsDiffer(t *testing.T) {
	h := NewHasher()

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestHasher_MalformedHash(t *testing.T) {
	h := NewHasher()

	assert.False(t, h.Verify("pw", ""))
	assert.False(t, h.Verify("pw", "not-a-hash"))
	assert.False(t, h.Verify("pw", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"))
	assert.False(t, h.Verify("pw", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"))
}
