package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/crisisline/crisishub/internal/app/system/apierr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Principals                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Kind distinguishes the two account collections a token can refer to.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

// Principal is the authenticated account injected into r.Context().
type Principal struct {
	ID    string
	Kind  Kind
	Name  string
	Email string
}

// Fetcher loads a principal by account ID on every request so that deleted
// or deactivated accounts lose access immediately. It returns (nil, nil)
// when the account does not exist or may not sign in.
type Fetcher interface {
	FetchPrincipal(ctx context.Context, id string) (*Principal, error)
}

type ctxKey string

const currentPrincipalKey ctxKey = "currentPrincipal"

// CurrentPrincipal returns the principal & "found?" flag.
func CurrentPrincipal(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(currentPrincipalKey).(*Principal)
	return p, ok
}

// WithTestPrincipal injects p into the request context, bypassing token checks.
func WithTestPrincipal(r *http.Request, p *Principal) *http.Request {
	return withPrincipal(r, p)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Tokens                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// MinSecretLength is the shortest HMAC secret accepted by NewManager.
const MinSecretLength = 32

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongKind    = errors.New("token was issued for a different account type")
)

// Claims is the JWT payload. The account ID travels as "id".
type Claims struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// Manager issues and verifies bearer tokens and resolves them to principals.
type Manager struct {
	secret []byte
	expiry time.Duration
	users  Fetcher
	admins Fetcher
	logger *zap.Logger
	now    func() time.Time
}

// NewManager builds a Manager. users and admins may be nil in tests that only
// issue or parse tokens.
func NewManager(secret string, expiry time.Duration, users, admins Fetcher, logger *zap.Logger) (*Manager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("jwt expiry must be positive")
	}
	return &Manager{
		secret: []byte(secret),
		expiry: expiry,
		users:  users,
		admins: admins,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the account id of the given kind.
func (m *Manager) Issue(id string, kind Kind) (string, error) {
	now := m.now()
	claims := Claims{
		ID:   id,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the signature and expiry of raw and returns its claims.
func (m *Manager) Parse(raw string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireUser admits requests carrying a valid user token.
func (m *Manager) RequireUser(next http.Handler) http.Handler {
	return m.require(KindUser, m.users, next)
}

// RequireAdmin admits requests carrying a valid admin token.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return m.require(KindAdmin, m.admins, next)
}

func (m *Manager) require(kind Kind, fetch Fetcher, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Already resolved (tests, or nested groups).
		if p, ok := CurrentPrincipal(r); ok {
			if p.Kind != kind {
				apierr.Write(w, m.logger, apierr.Forbidden("Access denied"))
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			apierr.Write(w, m.logger, apierr.Unauthorized("Authorization token is required"))
			return
		}
		claims, err := m.Parse(raw)
		if err != nil {
			apierr.Write(w, m.logger, apierr.Unauthorized("Invalid or expired token"))
			return
		}
		// Tokens issued before kinds existed carry none; treat them by route.
		if claims.Kind != "" && claims.Kind != kind {
			apierr.Write(w, m.logger, apierr.Forbidden("Access denied"))
			return
		}
		if fetch == nil {
			apierr.Write(w, m.logger, apierr.Server("Authentication is not configured", nil))
			return
		}

		p, err := fetch.FetchPrincipal(r.Context(), claims.ID)
		if err != nil {
			apierr.Write(w, m.logger, apierr.Server("Failed to resolve account", err))
			return
		}
		if p == nil {
			apierr.Write(w, m.logger, apierr.Unauthorized("Account not found or inactive"))
			return
		}
		p.Kind = kind
		next.ServeHTTP(w, withPrincipal(r, p))
	})
}

// helpers

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentPrincipalKey, p))
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
