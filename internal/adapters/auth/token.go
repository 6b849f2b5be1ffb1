package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventlottery/internal/domain"
)

type responseClaims struct {
	jwt.RegisteredClaims
	Action domain.ResponseAction `json:"action"`
}

// ResponseTokens signs one-click invitation response links as HS256 JWTs.
// The subject is the notification id.
type ResponseTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResponseTokens returns a ResponseTokenIssuer whose tokens expire after ttl.
func NewResponseTokens(secret string, ttl time.Duration) *ResponseTokens {
	return &ResponseTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *ResponseTokens) Issue(notificationID string, action domain.ResponseAction) (string, error) {
	now := t.now()
	claims := responseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   notificationID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Action: action,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry. Every failure is reported as ErrInvalidToken.
func (t *ResponseTokens) Parse(token string) (string, domain.ResponseAction, error) {
	var claims responseClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, errors.New("missing subject"))
	}
	switch claims.Action {
	case domain.ResponseAccept, domain.ResponseDecline:
	default:
		return "", "", fmt.Errorf("%w: unknown action %q", domain.ErrInvalidToken, claims.Action)
	}
	return claims.Subject, claims.Action, nil
}
