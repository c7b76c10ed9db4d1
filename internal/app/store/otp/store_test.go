package otp_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/crisisline/crisishub/internal/app/store/otp"
	"github.com/crisisline/crisishub/internal/testutil"
)

// neverIssued is outside the 100000..999999 range of generated codes.
const neverIssued = "000000"

func TestNew_Expiry(t *testing.T) {
	db := testutil.SetupTestDB(t)

	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"zero uses default", 0, otp.DefaultExpiry},
		{"negative uses default", -time.Minute, otp.DefaultExpiry},
		{"custom", 30 * time.Minute, 30 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := otp.New(db, tt.in).Expiry(); got != tt.want {
				t.Errorf("Expiry: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_Issue_CodeFormat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, otp.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	code, err := store.Issue(ctx, "test@example.com", otp.PurposeSignup, false)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if len(code) != otp.CodeLength {
		t.Fatalf("code length: got %d, want %d", len(code), otp.CodeLength)
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 100000 || n > 999999 {
		t.Errorf("code %q is not a 6-digit number", code)
	}
}

func TestStore_Verify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, otp.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	code, err := store.Issue(ctx, "Test@Example.com", otp.PurposeSignup, false)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := store.Verify(ctx, "test@example.com", otp.PurposeSignup, neverIssued); !errors.Is(err, otp.ErrInvalidCode) {
		t.Errorf("wrong code: got %v, want ErrInvalidCode", err)
	}
	if err := store.Verify(ctx, "test@example.com", otp.PurposePasswordReset, code); !errors.Is(err, otp.ErrNotFound) {
		t.Errorf("other purpose: got %v, want ErrNotFound", err)
	}
	if err := store.Verify(ctx, "TEST@example.com", otp.PurposeSignup, code); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	// Single use.
	if err := store.Verify(ctx, "test@example.com", otp.PurposeSignup, code); !errors.Is(err, otp.ErrNotFound) {
		t.Errorf("reuse: got %v, want ErrNotFound", err)
	}
}

func TestStore_Issue_ReplacesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, otp.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Issue(ctx, "test@example.com", otp.PurposeSignup, false)
	if err != nil {
		t.Fatalf("first Issue failed: %v", err)
	}
	second, err := store.Issue(ctx, "test@example.com", otp.PurposeSignup, false)
	if err != nil {
		t.Fatalf("second Issue failed: %v", err)
	}

	if first != second {
		if err := store.Verify(ctx, "test@example.com", otp.PurposeSignup, first); !errors.Is(err, otp.ErrInvalidCode) {
			t.Errorf("old code: got %v, want ErrInvalidCode", err)
		}
	}
	if err := store.Verify(ctx, "test@example.com", otp.PurposeSignup, second); err != nil {
		t.Errorf("new code: %v", err)
	}
}

func TestStore_Verify_TooManyAttempts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, otp.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	code, err := store.Issue(ctx, "test@example.com", otp.PurposePasswordReset, false)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	for i := 0; i < otp.MaxVerifyAttempts; i++ {
		if err := store.Verify(ctx, "test@example.com", otp.PurposePasswordReset, neverIssued); !errors.Is(err, otp.ErrInvalidCode) {
			t.Fatalf("attempt %d: got %v, want ErrInvalidCode", i+1, err)
		}
	}
	// Even the right code is refused once the limit is reached.
	if err := store.Verify(ctx, "test@example.com", otp.PurposePasswordReset, code); !errors.Is(err, otp.ErrTooManyAttempts) {
		t.Errorf("after limit: got %v, want ErrTooManyAttempts", err)
	}
}

func TestStore_Issue_ResendRateLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, otp.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Issue(ctx, "test@example.com", otp.PurposeSignup, false); err != nil {
		t.Fatalf("first Issue failed: %v", err)
	}
	for i := 0; i < otp.MaxResends; i++ {
		if _, err := store.Issue(ctx, "test@example.com", otp.PurposeSignup, true); err != nil {
			t.Fatalf("resend %d failed: %v", i+1, err)
		}
	}
	if _, err := store.Issue(ctx, "test@example.com", otp.PurposeSignup, true); !errors.Is(err, otp.ErrTooManyResends) {
		t.Errorf("over limit: got %v, want ErrTooManyResends", err)
	}
	// Other purposes have their own window.
	if _, err := store.Issue(ctx, "test@example.com", otp.PurposePasswordReset, true); err != nil {
		t.Errorf("other purpose: %v", err)
	}
}

func TestStore_Verify_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, time.Millisecond)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	code, err := store.Issue(ctx, "test@example.com", otp.PurposeSignup, false)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if err := store.Verify(ctx, "test@example.com", otp.PurposeSignup, code); !errors.Is(err, otp.ErrNotFound) {
		t.Errorf("expired: got %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := otp.New(db, otp.DefaultExpiry)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	code, err := store.Issue(ctx, "test@example.com", otp.PurposeSignup, false)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := store.Delete(ctx, "test@example.com", otp.PurposeSignup); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Verify(ctx, "test@example.com", otp.PurposeSignup, code); !errors.Is(err, otp.ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
	// Deleting nothing is fine.
	if err := store.Delete(ctx, "nobody@example.com", otp.PurposeSignup); err != nil {
		t.Errorf("Delete with no records: %v", err)
	}
}
