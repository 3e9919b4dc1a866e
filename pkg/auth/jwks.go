package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSClientInterface is the token-validation port the auth service depends
// on; tests substitute a canned implementation.
type JWKSClientInterface interface {
	// ValidateToken checks a compact JWT and returns its claims. Tokens
	// from issuers outside the configured allow-list are rejected.
	ValidateToken(tokenString string) (*Claims, error)
	// Close releases key-set resources.
	Close()
}

// JWKSConfig configures token validation.
type JWKSConfig struct {
	// EnableVerification toggles signature checking. Local development
	// runs with it off and accepts unsigned tokens (see testhelpers).
	EnableVerification bool
	// JWKSEndpoints maps an allowed issuer to the URL its signing keys
	// are published at. An issuer absent from this map is rejected even
	// with a valid signature.
	JWKSEndpoints map[string]string
}

// JWKSClient validates JWTs issued by the external identity provider. Each
// allowed issuer gets its own keyfunc backed by that issuer's JWKS URL; the
// key set is fetched eagerly at construction so a misconfigured endpoint
// fails startup instead of the first login.
type JWKSClient struct {
	keyfuncs map[string]keyfunc.Keyfunc
	cfg      *JWKSConfig
}

// NewJWKSClient builds a client from the configured issuer map. With
// verification disabled no endpoints are contacted.
func NewJWKSClient(cfg *JWKSConfig) (*JWKSClient, error) {
	c := &JWKSClient{
		keyfuncs: make(map[string]keyfunc.Keyfunc),
		cfg:      cfg,
	}
	if !cfg.EnableVerification {
		return c, nil
	}

	for issuer, jwksURL := range cfg.JWKSEndpoints {
		kf, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
		if err != nil {
			return nil, fmt.Errorf("loading JWKS for issuer %s: %w", issuer, err)
		}
		c.keyfuncs[issuer] = kf
	}
	return c, nil
}

// ValidateToken checks the token and returns its claims. In verification
// mode the signature must be RS256 and resolvable through the issuer's key
// set; in dev mode the token is only parsed.
func (c *JWKSClient) ValidateToken(tokenString string) (*Claims, error) {
	if !c.cfg.EnableVerification {
		return c.parseWithoutVerification(tokenString)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, c.resolveKey)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	return tokenClaims(token)
}

// resolveKey is the jwt.Keyfunc: it pins the signing algorithm to RSA and
// looks the key up in the token issuer's key set.
func (c *JWKSClient) resolveKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	claims, err := tokenClaims(token)
	if err != nil {
		return nil, err
	}

	kf, ok := c.keyfuncs[claims.Issuer]
	if !ok {
		return nil, fmt.Errorf("unauthorized issuer: %s", claims.Issuer)
	}
	return kf.KeyfuncCtx(context.Background())(token)
}

// parseWithoutVerification decodes the token without checking its signature
// or registered-claim validity. Dev mode only.
func (c *JWKSClient) parseWithoutVerification(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return tokenClaims(token)
}

func tokenClaims(token *jwt.Token) (*Claims, error) {
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}

// Close releases key-set resources. keyfunc v3 needs no explicit cleanup,
// so this is currently a no-op kept for the interface.
func (c *JWKSClient) Close() {}

// Ensure JWKSClient implements JWKSClientInterface at compile time.
var _ JWKSClientInterface = (*JWKSClient)(nil)
