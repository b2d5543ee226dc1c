package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// SecretProvider supplies the HMAC signing secret.
type SecretProvider func() []byte

// Verifier extracts the signed-in actor from a session token. Token
// issuance belongs to the external auth provider; the engine only needs
// to know who is submitting.
type Verifier struct {
	secretProvider SecretProvider
}

func New(secretProvider SecretProvider) *Verifier {
	return &Verifier{secretProvider: secretProvider}
}

// ActorID validates the token and returns the actor's user id from the
// subject claim.
func (v *Verifier) ActorID(tokenString string) (string, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secretProvider(), nil
		},
	)
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
