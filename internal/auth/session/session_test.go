package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signedToken(t *testing.T, secret []byte, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func newVerifier() *Verifier {
	return New(func() []byte { return testSecret })
}

func TestActorID(t *testing.T) {
	token := signedToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	actorID, err := newVerifier().ActorID(token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", actorID)
}

func TestActorID_WrongSecret(t *testing.T) {
	token := signedToken(t, []byte("other-secret"), jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-42"})

	_, err := newVerifier().ActorID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorID_Expired(t *testing.T) {
	token := signedToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := newVerifier().ActorID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorID_MissingSubject(t *testing.T) {
	token := signedToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"name": "alice"})

	_, err := newVerifier().ActorID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorID_Garbage(t *testing.T) {
	_, err := newVerifier().ActorID("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
