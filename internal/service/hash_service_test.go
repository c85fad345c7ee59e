package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("matkhau123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := svc.Verify("matkhau123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("saimatkhau", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2HashService_SaltedHashesDiffer(t *testing.T) {
	svc := NewArgon2HashService()

	h1, err := svc.Hash("matkhau123")
	require.NoError(t, err)
	h2, err := svc.Hash("matkhau123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgon2HashService_Verify_MalformedHash(t *testing.T) {
	svc := NewArgon2HashService()

	_, err := svc.Verify("matkhau123", "plaintext")
	assert.Error(t, err)

	_, err = svc.Verify("matkhau123", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")
	assert.Error(t, err)
}
