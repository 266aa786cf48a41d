package oauth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	sc "github.com/isaidso/auth/internal/server/config"
)

func testProvider() *GoogleProvider {
	return NewGoogleProvider(&sc.Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleRedirectURL:  "http://localhost:8080/auth/google/callback",
	})
}

func signedIDToken(t *testing.T, claims idTokenClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("signing id token: %v", err)
	}
	return raw
}

func TestAuthCodeURL(t *testing.T) {
	u := testProvider().AuthCodeURL("state-123")
	if !strings.Contains(u, "client_id=client-id") {
		t.Fatalf("client id missing: %q", u)
	}
	if !strings.Contains(u, "state=state-123") {
		t.Fatalf("state missing: %q", u)
	}
	if !strings.Contains(u, "scope=openid+email+profile") {
		t.Fatalf("scopes missing: %q", u)
	}
}

func TestFetchIdentity_Success(t *testing.T) {
	orig := exchange
	t.Cleanup(func() { exchange = orig })

	raw := signedIDToken(t, idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "google-sub-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:   "a@b.c",
		Name:    "Alice",
		Picture: "http://pic",
	})
	exchange = func(cfg *oauth2.Config, ctx context.Context, code string) (*oauth2.Token, error) {
		if code != "good-code" {
			t.Fatalf("unexpected code %q", code)
		}
		return (&oauth2.Token{AccessToken: "x"}).WithExtra(map[string]any{"id_token": raw}), nil
	}

	id, err := testProvider().FetchIdentity(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("FetchIdentity error: %v", err)
	}
	if id.ExternalID != "google-sub-1" || id.Email != "a@b.c" || id.Name != "Alice" || id.AvatarURL != "http://pic" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestFetchIdentity_Errors(t *testing.T) {
	orig := exchange
	t.Cleanup(func() { exchange = orig })

	t.Run("exchange fails", func(t *testing.T) {
		exchange = func(cfg *oauth2.Config, ctx context.Context, code string) (*oauth2.Token, error) {
			return nil, errors.New("consent revoked")
		}
		_, err := testProvider().FetchIdentity(context.Background(), "c")
		if err == nil || !strings.Contains(err.Error(), "consent revoked") {
			t.Fatalf("expected exchange error, got %v", err)
		}
	})

	t.Run("missing id_token", func(t *testing.T) {
		exchange = func(cfg *oauth2.Config, ctx context.Context, code string) (*oauth2.Token, error) {
			return &oauth2.Token{AccessToken: "x"}, nil
		}
		_, err := testProvider().FetchIdentity(context.Background(), "c")
		if err == nil || !strings.Contains(err.Error(), "id_token") {
			t.Fatalf("expected id_token error, got %v", err)
		}
	})

	t.Run("missing subject", func(t *testing.T) {
		raw := signedIDToken(t, idTokenClaims{Email: "a@b.c"})
		exchange = func(cfg *oauth2.Config, ctx context.Context, code string) (*oauth2.Token, error) {
			return (&oauth2.Token{}).WithExtra(map[string]any{"id_token": raw}), nil
		}
		_, err := testProvider().FetchIdentity(context.Background(), "c")
		if err == nil {
			t.Fatalf("expected error for empty subject")
		}
	})
}
