package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crisisline/crisishub/internal/app/system/auth"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-must-be-32-chars-long"

type fakeFetcher struct {
	principals map[string]*auth.Principal
	err        error
}

func (f fakeFetcher) FetchPrincipal(_ context.Context, id string) (*auth.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.principals[id], nil
}

func newTestManager(t *testing.T, users, admins auth.Fetcher) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager(testSecret, 7*24*time.Hour, users, admins, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return m
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.CurrentPrincipal(r)
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(p.ID))
	})
}

func TestNewManager_RejectsShortSecret(t *testing.T) {
	if _, err := auth.NewManager("short", time.Hour, nil, nil, zap.NewNop()); err == nil {
		t.Error("expected error for short secret")
	}
	if _, err := auth.NewManager(testSecret, 0, nil, nil, zap.NewNop()); err == nil {
		t.Error("expected error for zero expiry")
	}
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t, nil, nil)

	tok, err := m.Issue("abc123", auth.KindUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.ID != "abc123" {
		t.Errorf("ID: got %q, want %q", claims.ID, "abc123")
	}
	if claims.Kind != auth.KindUser {
		t.Errorf("Kind: got %q, want %q", claims.Kind, auth.KindUser)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Sub(claims.IssuedAt.Time) != 7*24*time.Hour {
		t.Errorf("expiry should be 7 days after issue")
	}
}

func TestParse_RejectsForeignSignature(t *testing.T) {
	m := newTestManager(t, nil, nil)
	other, err := auth.NewManager("another-secret-that-is-32-chars-long!", time.Hour, nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	tok, _ := other.Issue("abc", auth.KindUser)
	if _, err := m.Parse(tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
	if _, err := m.Parse("not-a-jwt"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("garbage: got %v, want ErrInvalidToken", err)
	}
}

func TestRequireUser(t *testing.T) {
	users := fakeFetcher{principals: map[string]*auth.Principal{
		"u1": {ID: "u1", Name: "Alice"},
	}}
	m := newTestManager(t, users, fakeFetcher{})
	userTok, _ := m.Issue("u1", auth.KindUser)
	ghostTok, _ := m.Issue("ghost", auth.KindUser)
	adminTok, _ := m.Issue("u1", auth.KindAdmin)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + userTok, http.StatusOK},
		{"lowercase scheme", "bearer " + userTok, http.StatusOK},
		{"unknown account", "Bearer " + ghostTok, http.StatusUnauthorized},
		{"admin token", "Bearer " + adminTok, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/user/summary", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.RequireUser(okHandler()).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && rec.Body.String() != "u1" {
				t.Errorf("principal: got %q, want %q", rec.Body.String(), "u1")
			}
		})
	}
}

func TestRequireAdmin_FetcherError(t *testing.T) {
	m := newTestManager(t, nil, fakeFetcher{err: errors.New("db down")})
	tok, _ := m.Issue("a1", auth.KindAdmin)

	req := httptest.NewRequest("GET", "/api/users/management/all-user", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	m.RequireAdmin(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestWithTestPrincipal(t *testing.T) {
	m := newTestManager(t, nil, nil)

	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestPrincipal(req, &auth.Principal{ID: "a9", Kind: auth.KindAdmin})

	rec := httptest.NewRecorder()
	m.RequireAdmin(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin principal: got %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	m.RequireUser(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("admin principal on user route: got %d, want 403", rec.Code)
	}
}
