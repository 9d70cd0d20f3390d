package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

// Context keys for storing viewer information
type contextKey string

const ViewerHandleKey contextKey = "viewer_handle"

const (
	sessionName      = "vigora_session"
	sessionHandleKey = "handle"
)

// SessionManager binds the viewer identity to a cookie session. Auth flows
// live outside this service; all the gateway needs is "who is the viewer",
// set at login and dropped at logout.
type SessionManager struct {
	store sessions.Store
}

// NewSessionManager creates a cookie-backed session manager.
func NewSessionManager(secret []byte, secure bool) *SessionManager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// SetViewer stores the viewer handle in the session cookie.
func (m *SessionManager) SetViewer(w http.ResponseWriter, r *http.Request, handle string) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[sessionHandleKey] = handle
	return session.Save(r, w)
}

// ClearViewer expires the session cookie.
func (m *SessionManager) ClearViewer(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, sessionHandleKey)
	return session.Save(r, w)
}

// ViewerHandle reads the handle from the session cookie, or "".
func (m *SessionManager) ViewerHandle(r *http.Request) string {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	handle, _ := session.Values[sessionHandleKey].(string)
	return handle
}

// RequireViewer rejects requests without a logged-in viewer and injects the
// handle into the request context for handlers.
func (m *SessionManager) RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle := m.ViewerHandle(r)
		if handle == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ViewerHandleKey, handle)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetViewerHandle extracts the viewer handle injected by RequireViewer.
func GetViewerHandle(r *http.Request) string {
	handle, _ := r.Context().Value(ViewerHandleKey).(string)
	return handle
}
