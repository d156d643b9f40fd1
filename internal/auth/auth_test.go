package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/yourfuture/platform/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	manager := NewManager("super-secret-signing-key", time.Hour)
	user := &domain.User{ID: 42, Role: domain.RoleAdmin}

	token, err := manager.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	session, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if session.UserID != 42 {
		t.Errorf("UserID = %d, expected 42", session.UserID)
	}
	if session.Role != domain.RoleAdmin || !session.IsAdmin() {
		t.Errorf("Role = %s, expected admin", session.Role)
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("session must not be already expired")
	}
}

func TestVerifyExpired(t *testing.T) {
	manager := NewManager("super-secret-signing-key", -2*time.Hour)
	// NewManager defaults non-positive TTLs, so issue through a second
	// manager with a tiny TTL instead.
	manager = &Manager{secret: manager.secret, ttl: -time.Hour}

	token, err := manager.Issue(&domain.User{ID: 1, Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := manager.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	manager := NewManager("super-secret-signing-key", time.Hour)

	if _, err := manager.Verify("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewManager("secret-number-one-ok", time.Hour)
	verifier := NewManager("secret-number-two-ok", time.Hour)

	token, err := issuer.Issue(&domain.User{ID: 1, Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("matching password must verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("wrong password must not verify")
	}
}
