package oauth2

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hubspot-connector/internal/common/errors"
)

const stateIssuer = "hubspot-connector"

// State is round-tripped through HubSpot's redirect and the cache. Nonce is
// serialized as "state" to match the record layout existing deployments use.
type State struct {
	Nonce  string `json:"state"`
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// StateCodec turns a State into the opaque query parameter sent to HubSpot
// and back.
type StateCodec interface {
	Encode(state State) (string, error)
	Decode(encoded string) (State, error)
}

// newNonce returns 32 random bytes, URL-safe base64 without padding.
func newNonce() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.InternalError("failed to generate state nonce", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func invalidState(cause error) error {
	return &errors.AppError{Type: errors.ErrTypeValidation, Message: "Invalid state parameter", Cause: cause}
}

// Base64StateCodec encodes state as URL-safe base64 JSON. It is not signed:
// integrity comes from comparing the nonce with the cached copy.
type Base64StateCodec struct{}

func (Base64StateCodec) Encode(state State) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", errors.InternalError("failed to encode state", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode accepts padded and unpadded input.
func (Base64StateCodec) Decode(encoded string) (State, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return State{}, invalidState(err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, invalidState(err)
	}
	if err := state.validate(); err != nil {
		return State{}, err
	}
	return state, nil
}

// JWTStateCodec signs state as an HS256 JWT that expires with the cached copy.
type JWTStateCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type stateClaims struct {
	State
	jwt.RegisteredClaims
}

// NewJWTStateCodec creates a codec signing with secret
func NewJWTStateCodec(secret string, ttl time.Duration) *JWTStateCodec {
	return &JWTStateCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (c *JWTStateCodec) Encode(state State) (string, error) {
	now := c.now()
	claims := stateClaims{
		State: state,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.InternalError("failed to sign state", err)
	}
	return signed, nil
}

func (c *JWTStateCodec) Decode(encoded string) (State, error) {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(encoded, &claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return State{}, invalidState(err)
	}

	if err := claims.State.validate(); err != nil {
		return State{}, err
	}
	return claims.State, nil
}

func (s State) validate() error {
	if s.Nonce == "" || s.UserID == "" || s.OrgID == "" {
		return invalidState(fmt.Errorf("state is missing nonce, user_id or org_id"))
	}
	return nil
}
