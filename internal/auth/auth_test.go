package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator("test-secret", time.Hour)
}

func TestIssueAndVerify(t *testing.T) {
	a := newTestAuthenticator()

	token, err := a.Issue(Session{UserID: "user-1", HouseholdID: "hh-1"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	session, err := a.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if session.UserID != "user-1" || session.HouseholdID != "hh-1" {
		t.Errorf("got session %+v", session)
	}
}

func TestVerifyRejections(t *testing.T) {
	a := newTestAuthenticator()

	t.Run("garbage token", func(t *testing.T) {
		if _, err := a.Verify("not.a.token"); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthenticator("other-secret", time.Hour)
		token, err := other.Issue(Session{UserID: "user-1", HouseholdID: "hh-1"})
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if _, err := a.Verify(token); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewAuthenticator("test-secret", -time.Minute)
		token, err := expired.Issue(Session{UserID: "user-1", HouseholdID: "hh-1"})
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if _, err := a.Verify(token); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("missing household claim", func(t *testing.T) {
		token, err := a.Issue(Session{UserID: "user-1"})
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if _, err := a.Verify(token); err != ErrInvalidToken {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})
}

func TestMiddleware(t *testing.T) {
	a := newTestAuthenticator()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := FromContext(r.Context())
		if !ok {
			t.Error("session missing from context")
		}
		if session.UserID != "user-1" {
			t.Errorf("got user %q", session.UserID)
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := a.Middleware(next)

	t.Run("valid bearer token passes", func(t *testing.T) {
		token, err := a.Issue(Session{UserID: "user-1", HouseholdID: "hh-1"})
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("got status %d", rec.Code)
		}
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("got status %d", rec.Code)
		}
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("got status %d", rec.Code)
		}
	})
}
