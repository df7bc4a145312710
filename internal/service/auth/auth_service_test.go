package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewService("s3cret")

	token, err := svc.IssueToken("analyst", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "analyst" || claims.Scope != ScopeInsight {
		t.Errorf("got %+v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	svc := NewService("s3cret")

	other, err := NewService("other").IssueToken("analyst", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
		Scope:          ScopeInsight,
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}

	wrongScope, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Scope: "admin"}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Scope: ScopeInsight}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	for name, token := range map[string]string{
		"other secret": other,
		"expired":      expired,
		"wrong scope":  wrongScope,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ParseToken(token); !errors.Is(err, constants.ErrUnauthorized) {
				t.Errorf("got %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	svc := NewService("")
	if svc.Enabled() {
		t.Fatal("service without secret reports enabled")
	}
	if _, err := svc.IssueToken("x", 0); !errors.Is(err, constants.ErrUnauthorized) {
		t.Errorf("got %v", err)
	}
}
