package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crisisline/crisishub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserPrincipal returns a signed-in field user with a fresh ID.
func UserPrincipal() *auth.Principal {
	return &auth.Principal{
		ID:    primitive.NewObjectID().Hex(),
		Kind:  auth.KindUser,
		Name:  "Test User",
		Email: "user@test.com",
	}
}

// AdminPrincipal returns a signed-in administrator with a fresh ID.
func AdminPrincipal() *auth.Principal {
	return &auth.Principal{
		ID:    primitive.NewObjectID().Hex(),
		Kind:  auth.KindAdmin,
		Name:  "Test Admin",
		Email: "admin@test.com",
	}
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request with body as its JSON payload.
func NewJSONRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates a JSON request with p in context.
func NewAuthenticatedRequest(method, target, body string, p *auth.Principal) *http.Request {
	return auth.WithTestPrincipal(NewJSONRequest(method, target, body), p)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON unmarshals the response body into v.
func (r *ResponseRecorder) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
}
