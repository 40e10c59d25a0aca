package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, exp, err := m.Issue("E1a2b3c4d", "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry should be in the future, got %v", exp)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.EmployeeID != "E1a2b3c4d" || claims.Name != "Alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.JTI == "" {
		t.Fatalf("expected a jti")
	}
}

func TestVerifyRejects(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour)
	other, _ := NewManager("other-secret", time.Hour)

	foreign, _, _ := other.Issue("E1a2b3c4d", "Alice")

	expired, _ := NewManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Issue("E1a2b3c4d", "Alice")

	wrongType, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		EmployeeID: "E1a2b3c4d",
		TokenType:  "access",
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: stale},
		{name: "wrong type", token: wrongType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Verify(tt.token); !errors.Is(err, ErrInvalidSession) {
				t.Fatalf("expected ErrInvalidSession, got %v", err)
			}
		})
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("", time.Hour); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}
