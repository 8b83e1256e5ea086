package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
)

// AuthMiddleware extracts the opaque user identifier that the external auth
// provider stored in the session cookie. It does not implement any login
// flow; a request either carries a validated identity or gets a 401.
type AuthMiddleware struct {
	store *sessions.CookieStore
}

func NewAuthMiddleware(store *sessions.CookieStore) *AuthMiddleware {
	return &AuthMiddleware{
		store: store,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.GetUserID(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) GetUserID(r *http.Request) (string, bool) {
	session, err := m.store.Get(r, "session")
	if err != nil {
		return "", false
	}

	userID, ok := session.Values["user_id"].(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// SetUserSession records an already-validated identity in the session. The
// auth provider calls this after it has done its job; nothing here checks
// credentials.
func (m *AuthMiddleware) SetUserSession(w http.ResponseWriter, r *http.Request, userID string) error {
	session, err := m.store.Get(r, "session")
	if err != nil {
		return err
	}

	session.Values["user_id"] = userID

	return session.Save(r, w)
}

func (m *AuthMiddleware) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, err := m.store.Get(r, "session")
	if err != nil {
		return err
	}

	delete(session.Values, "user_id")

	return session.Save(r, w)
}
