package rest

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aliskhannn/safeguard-bot/internal/domain/entities"
)

func TestTokenIssuer(t *testing.T) {
	user := &entities.User{ID: "u1", IsAdmin: true}
	issuer := NewTokenIssuer("secret", time.Hour, fixedClock)

	token, expires, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expires.Equal(fixedNow.Add(time.Hour)) {
		t.Errorf("Expected expiry %v, got %v", fixedNow.Add(time.Hour), expires)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u1" || !claims.Admin {
		t.Errorf("unexpected claims: %+v", claims)
	}

	testCases := []struct {
		name   string
		issuer *TokenIssuer
		token  string
	}{
		{
			name:   "wrong secret",
			issuer: NewTokenIssuer("other", time.Hour, fixedClock),
			token:  token,
		},
		{
			name:   "expired",
			issuer: NewTokenIssuer("secret", time.Hour, func() time.Time { return fixedNow.Add(2 * time.Hour) }),
			token:  token,
		},
		{
			name:   "unsigned",
			issuer: issuer,
			token: func() string {
				s, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"}).
					SignedString(jwt.UnsafeAllowNoneSignatureType)
				return s
			}(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.issuer.Parse(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
