package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func okHandler(t *testing.T, wantUser bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := CurrentUser(r)
		if ok != wantUser {
			t.Errorf("CurrentUser ok: got %v, want %v", ok, wantUser)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", 0, nil)
	tok, err := m.Issue("abc123", "ngo")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	c, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.UserID != "abc123" || c.Role != "ngo" {
		t.Errorf("claims: got %+v", c)
	}
	ttl := c.ExpiresAt.Sub(c.IssuedAt.Time)
	if ttl != DefaultTTL {
		t.Errorf("ttl: got %v, want %v", ttl, DefaultTTL)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	tok, _ := NewManager("one", time.Hour, nil).Issue("u", "user")
	if _, err := NewManager("two", time.Hour, nil).Parse(tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParse_Expired(t *testing.T) {
	m := NewManager("secret", time.Hour, nil)
	claims := Claims{
		UserID: "u",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if _, err := m.Parse(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestRequireAuth(t *testing.T) {
	m := NewManager("secret", time.Hour, nil)
	tok, _ := m.Issue("u1", "user")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + tok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.RequireAuth(okHandler(t, tt.want == http.StatusOK)).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireAuth_InjectsClaims(t *testing.T) {
	m := NewManager("secret", time.Hour, nil)
	tok, _ := m.Issue("u42", "govt_official")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := CurrentUser(r)
		if u.ID != "u42" || u.Role != "govt_official" {
			t.Errorf("user: got %+v", u)
		}
	})).ServeHTTP(rec, req)
}

func TestOptionalAuth(t *testing.T) {
	m := NewManager("secret", time.Hour, nil)
	tok, _ := m.Issue("u1", "user")

	// anonymous passes through
	rec := httptest.NewRecorder()
	m.OptionalAuth(okHandler(t, false)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous: got %d", rec.Code)
	}

	// invalid token is ignored
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rec = httptest.NewRecorder()
	m.OptionalAuth(okHandler(t, false)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("invalid token: got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	m.OptionalAuth(okHandler(t, true)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole("govt_official", "ngo")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name string
		user *User
		want int
		msg  string
	}{
		{"no user", nil, http.StatusUnauthorized, "Access token required"},
		{"citizen", &User{ID: "1", Role: "user"}, http.StatusForbidden, "Insufficient permissions"},
		{"official", &User{ID: "2", Role: "govt_official"}, http.StatusOK, ""},
		{"ngo mixed case", &User{ID: "3", Role: "NGO"}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.user != nil {
				req = WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			mw(next).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
			if tt.msg != "" {
				var body map[string]string
				_ = json.Unmarshal(rec.Body.Bytes(), &body)
				if body["message"] != tt.msg {
					t.Errorf("message: got %q, want %q", body["message"], tt.msg)
				}
			}
		})
	}
}
