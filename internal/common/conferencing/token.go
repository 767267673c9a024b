// internal/common/conferencing/token.go

// Package conferencing mints short-lived join tokens for the external
// audio/video room provider. The provider itself is a collaborator; only
// the token contract lives here.
package conferencing

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService signs per-participant room grants.
type TokenService struct {
	host      string
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

func NewTokenService(host, apiKey, apiSecret string, ttl time.Duration) (*TokenService, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("conferencing credentials are not configured")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{host: host, apiKey: apiKey, apiSecret: apiSecret, ttl: ttl}, nil
}

// Host returns the provider URL clients connect to with a token.
func (s *TokenService) Host() string {
	return s.host
}

// videoGrant is the room permission claim block the provider expects.
type videoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

type roomClaims struct {
	jwt.RegisteredClaims
	Video videoGrant `json:"video"`
}

// MintToken issues an HS256 join token scoped to one room for one
// identity, with publish and subscribe rights.
func (s *TokenService) MintToken(identity, room string) (string, error) {
	if identity == "" || room == "" {
		return "", fmt.Errorf("identity and room are required")
	}

	now := time.Now()
	claims := roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.apiKey,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Video: videoGrant{
			Room:         room,
			RoomJoin:     true,
			CanPublish:   true,
			CanSubscribe: true,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.apiSecret))
	if err != nil {
		return "", fmt.Errorf("sign room token: %w", err)
	}
	return signed, nil
}
