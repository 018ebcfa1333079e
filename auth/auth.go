package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/watools/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultIssuer   = "watools"
	defaultTokenTTL = 24 * time.Hour

	// ScopeTools allows listing and calling tools over HTTP
	ScopeTools = "tools"

	claimsLocalsKey = "auth.claims"
)

var Registry = errx.NewRegistry("AUTH")

var (
	ErrMissingToken  = Registry.Register("MISSING_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Missing bearer token")
	ErrInvalidToken  = Registry.Register("INVALID_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid or expired token")
	ErrInsufficient  = Registry.Register("INSUFFICIENT_SCOPE", errx.TypeAuthorization, http.StatusForbidden, "Token does not grant this scope")
	ErrNotConfigured = Registry.Register("NOT_CONFIGURED", errx.TypeConfiguration, http.StatusInternalServerError, "Token signing secret is not configured")
)

// Claims are the JWT claims of an API token
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// HasScope reports whether the space-separated scope list contains scope
func (c *Claims) HasScope(scope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// TokenService issues and validates HS256 API tokens
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, Registry.New(ErrNotConfigured)
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: defaultIssuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// GenerateToken signs a token for subject carrying the given scopes
func (s *TokenService) GenerateToken(subject string, scopes ...string) (string, error) {
	now := s.now()
	claims := &Claims{
		Scope: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errx.Wrap(err, "failed to sign token", errx.TypeInternal)
	}
	return signed, nil
}

// ValidateToken parses tokenString and checks signature, issuer and expiry
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, Registry.NewWithCause(ErrInvalidToken, err)
	}
	return claims, nil
}

// Middleware requires a valid bearer token with scope and stores its
// claims in the request locals.
func (s *TokenService) Middleware(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return Registry.New(ErrMissingToken).ToFiber(c)
		}

		claims, err := s.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			return Registry.New(ErrInvalidToken).ToFiber(c)
		}
		if scope != "" && !claims.HasScope(scope) {
			return Registry.New(ErrInsufficient).WithDetail("scope", scope).ToFiber(c)
		}

		c.Locals(claimsLocalsKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the claims Middleware stored, nil when absent
func ClaimsFrom(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(claimsLocalsKey).(*Claims)
	return claims
}
