package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, Verify(hash, "correct horse battery staple"))
	assert.False(t, Verify(hash, "wrong password"))
}

func TestHashFormat(t *testing.T) {
	hash, err := Hash("some password")
	require.NoError(t, err)

	// PHC formatı: $argon2id$v=19$m=...,t=...,p=...$salt$hash
	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, "argon2id", parts[1])
	assert.Equal(t, "v=19", parts[2])
	assert.Equal(t, "m=102400,t=2,p=8", parts[3])
}

func TestHashEmptyPassword(t *testing.T) {
	_, err := Hash("")
	assert.Error(t, err)
}

func TestHashUniqueSalts(t *testing.T) {
	h1, err := Hash("same password")
	require.NoError(t, err)
	h2, err := Hash("same password")
	require.NoError(t, err)

	// Her hash rastgele salt taşır — aynı şifre iki farklı hash üretir
	assert.NotEqual(t, h1, h2)
	assert.True(t, Verify(h1, "same password"))
	assert.True(t, Verify(h2, "same password"))
}

func TestVerifyMalformedHash(t *testing.T) {
	// Bozuk hash asla panic'e yol açmaz, sessizce false döner
	cases := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=102400,t=2,p=8$tooFewParts",
		"$argon2i$v=19$m=102400,t=2,p=8$c2FsdA$aGFzaA",   // yanlış variant
		"$argon2id$v=18$m=102400,t=2,p=8$c2FsdA$aGFzaA",  // yanlış versiyon
		"$argon2id$v=19$m=102400,t=2,p=8$!!invalid$aGFzaA", // bozuk base64
	}

	for _, stored := range cases {
		assert.False(t, Verify(stored, "whatever"), "stored=%q", stored)
	}
}

func TestVerifyUnicodePassword(t *testing.T) {
	hash, err := Hash("p@ssw0rd-密碼-şifre")
	require.NoError(t, err)

	assert.True(t, Verify(hash, "p@ssw0rd-密碼-şifre"))
	assert.False(t, Verify(hash, "p@ssw0rd-密碼-sifre"))
}
