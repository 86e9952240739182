package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-32-bytes-long!!!")

func makeToken(subject, role, issuer string, exp time.Time) string {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := tok.SignedString(testSecret)
	return signed
}

func newVerifier() JWTVerifier { return JWTVerifier{Secret: testSecret} }

// ─── JWTVerifier tests ──────────────────────────────────────────────────────

func TestJWTVerifier_ValidToken(t *testing.T) {
	tok := makeToken("10001", "player", "", time.Now().Add(time.Hour))
	claims, err := newVerifier().Parse(tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "10001" {
		t.Fatalf("expected subject '10001', got %q", claims.Subject)
	}
	if claims.Role != "player" {
		t.Fatalf("expected role 'player', got %q", claims.Role)
	}
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	tok := makeToken("10001", "player", "", time.Now().Add(-time.Hour))
	if _, err := newVerifier().Parse(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	tok := makeToken("10001", "player", "", time.Now().Add(time.Hour))
	if _, err := (JWTVerifier{Secret: []byte("wrong-secret")}).Parse(tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestJWTVerifier_EmptySecret(t *testing.T) {
	tok := makeToken("10001", "player", "", time.Now().Add(time.Hour))
	if _, err := (JWTVerifier{}).Parse(tok); err == nil {
		t.Fatal("expected error when verifier has no secret")
	}
}

func TestJWTVerifier_IssuerEnforced(t *testing.T) {
	v := JWTVerifier{Secret: testSecret, Issuer: "login"}
	if _, err := v.Parse(makeToken("10001", "", "login", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("expected matching issuer to pass, got %v", err)
	}
	if _, err := v.Parse(makeToken("10001", "", "elsewhere", time.Now().Add(time.Hour))); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestJWTVerifier_TamperedPayload(t *testing.T) {
	tok := makeToken("10001", "admin", "", time.Now().Add(time.Hour))
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatal("expected 3 JWT parts")
	}
	tampered := parts[0] + ".dGFtcGVyZWQ." + parts[2]
	if _, err := newVerifier().Parse(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

// ─── RequireUser middleware tests ────────────────────────────────────────────

func callRequireUser(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	RequireUser(newVerifier())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pid, _ := PlayerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(pid))
	})).ServeHTTP(rr, req)
	return rr
}

func TestRequireUser_ValidBearer(t *testing.T) {
	tok := makeToken("10042", "player", "", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	rr := callRequireUser(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "10042" {
		t.Fatalf("expected '10042' in body, got %q", rr.Body.String())
	}
}

func TestRequireUser_Rejections(t *testing.T) {
	cases := map[string]string{
		"missing":   "",
		"basic":     "Basic dXNlcjpwYXNz",
		"garbage":   "Bearer invalid.token.here",
		"expired":   "Bearer " + makeToken("10001", "", "", time.Now().Add(-time.Hour)),
		"nosubject": "Bearer " + makeToken("", "", "", time.Now().Add(time.Hour)),
		"empty":     "Bearer   ",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if rr := callRequireUser(req); rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rr.Code)
		}
	}
}

// ─── RequireAdmin middleware tests ───────────────────────────────────────────

func callRequireAdmin(ctx context.Context) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)
	return rr
}

func TestRequireAdmin_WithAdminRole(t *testing.T) {
	rr := callRequireAdmin(WithRole(context.Background(), "admin"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d", rr.Code)
	}
}

func TestRequireAdmin_WithPlayerRole(t *testing.T) {
	rr := callRequireAdmin(WithRole(context.Background(), "player"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for player role, got %d", rr.Code)
	}
}

func TestRequireAdmin_NoRole(t *testing.T) {
	rr := callRequireAdmin(context.Background())
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with no role, got %d", rr.Code)
	}
}

func TestRequireAdmin_CaseInsensitive(t *testing.T) {
	rr := callRequireAdmin(WithRole(context.Background(), "ADMIN"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for ADMIN (case insensitive), got %d", rr.Code)
	}
}
