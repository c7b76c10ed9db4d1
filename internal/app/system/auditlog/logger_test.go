package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/crisisline/crisishub/internal/app/store/audit"
	"github.com/crisisline/crisishub/internal/app/system/auditlog"
	"github.com/crisisline/crisishub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("POST", "/api/users/login", nil)

	// all no-ops
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), audit.AccountUser, "a@example.com")
	logger.UserDeleted(ctx, req, primitive.NewObjectID().Hex(), primitive.NewObjectID())
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		mode    string
		wantDB  int
		wantZap int
	}{
		{auditlog.ModeAll, 1, 1},
		{auditlog.ModeDB, 1, 0},
		{auditlog.ModeLog, 0, 1},
		{auditlog.ModeOff, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			core, logs := observer.New(zap.InfoLevel)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: tt.mode, Admin: tt.mode})
			accountID := primitive.NewObjectID()
			logger.LoginSuccess(ctx, httptest.NewRequest("POST", "/", nil), accountID, audit.AccountUser, "a@example.com")

			events, err := store.GetByAccount(ctx, accountID, 10)
			if err != nil {
				t.Fatalf("GetByAccount: %v", err)
			}
			if len(events) != tt.wantDB {
				t.Errorf("db events: got %d, want %d", len(events), tt.wantDB)
			}
			if n := logs.FilterMessage("audit event").Len(); n != tt.wantZap {
				t.Errorf("zap entries: got %d, want %d", n, tt.wantZap)
			}
		})
	}
}

func TestLogger_CategoryFilteredByConfig(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.ModeOff, Admin: auditlog.ModeDB})
	req := httptest.NewRequest("POST", "/", nil)
	target := primitive.NewObjectID()
	adminID := primitive.NewObjectID()

	logger.LoginSuccess(ctx, req, target, audit.AccountUser, "u@example.com")
	logger.UserStatusChanged(ctx, req, adminID.Hex(), target, "inactive")

	events, err := store.GetByAccount(ctx, target, 10)
	if err != nil {
		t.Fatalf("GetByAccount: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected only the admin event, got %d", len(events))
	}
	e := events[0]
	if e.Category != audit.CategoryAdmin || e.EventType != audit.EventUserStatusChanged {
		t.Errorf("event: got %s/%s", e.Category, e.EventType)
	}
	if e.ActorID == nil || *e.ActorID != adminID {
		t.Errorf("ActorID: got %v, want %v", e.ActorID, adminID)
	}
	if e.Details["status"] != "inactive" {
		t.Errorf("status detail: got %q", e.Details["status"])
	}
}

func TestLogger_FailureEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.ModeDB, Admin: auditlog.ModeDB})
	req := httptest.NewRequest("POST", "/", nil)

	logger.LoginFailedUnknown(ctx, req, audit.AccountUser, "ghost@example.com")
	logger.VerificationCodeFailed(ctx, req, audit.AccountUser, "ghost@example.com", "invalid code")

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.Success {
			t.Errorf("%s: expected failure", e.EventType)
		}
		if e.FailureReason == "" {
			t.Errorf("%s: expected failure reason", e.EventType)
		}
		if e.Details["email"] != "ghost@example.com" {
			t.Errorf("%s: email detail %q", e.EventType, e.Details["email"])
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"forwarded for wins", "203.0.113.195, 10.0.0.1", "192.168.1.1", "127.0.0.1:12345", "203.0.113.195"},
		{"real ip", "", "192.168.1.100", "127.0.0.1:12345", "192.168.1.100"},
		{"remote addr port stripped", "", "", "10.0.0.5:12345", "10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.ModeDB})
			req := httptest.NewRequest("POST", "/", nil)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			req.RemoteAddr = tt.remote

			accountID := primitive.NewObjectID()
			logger.LoginSuccess(ctx, req, accountID, audit.AccountUser, "a@example.com")

			events, _ := store.GetByAccount(ctx, accountID, 10)
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].IP != tt.want {
				t.Errorf("IP: got %q, want %q", events[0].IP, tt.want)
			}
		})
	}
}

func TestValidMode(t *testing.T) {
	for _, m := range []string{"all", "db", "log", "off"} {
		if !auditlog.ValidMode(m) {
			t.Errorf("ValidMode(%q) = false, want true", m)
		}
	}
	if auditlog.ValidMode("everything") {
		t.Error("ValidMode(everything) = true, want false")
	}
}
