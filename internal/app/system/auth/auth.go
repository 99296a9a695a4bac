package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/strataenergy/internal/app/system/network"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session error classification for logging and monitoring.
type sessionErrorType int

const (
	sessionErrUnknown   sessionErrorType = iota
	sessionErrExpired                    // timestamp expired - normal
	sessionErrTampered                   // MAC invalid - potential attack
	sessionErrCorrupted                  // decode/decrypt failed - corruption or key rotation
	sessionErrBackend                    // store/backend failure
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	viewerIDKey  = "viewer_id"
	createdAtKey = "created_at"
)

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager - anonymous viewer cookies                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager issues a signed cookie that identifies each browser as a
// viewer. The dashboard keeps one state per viewer, so two tabs in the same
// browser share a slider while two browsers do not.
type SessionManager struct {
	store  *sessions.CookieStore
	logger *zap.Logger
	name   string
	newID  func() string
}

// NewSessionManager creates a new SessionManager with the provided configuration.
//
// Parameters:
//   - sessionKey: signing key for cookies (must be ≥32 chars in production)
//   - name: session cookie name (defaults to "strataenergy-viewer" if empty)
//   - domain: cookie domain (empty means current host)
//   - maxAge: cookie lifetime (e.g., 24*time.Hour)
//   - secure: if true, cookies are Secure (for HTTPS production)
//   - logger: zap logger for session error logging
//
// Returns an error if sessionKey is empty or too weak for production mode.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, &SessionConfigError{Message: "session key is empty; provide ≥32 random chars"}
	}

	isWeak := len(sessionKey) < 32 || isDefaultKey(sessionKey)

	if secure {
		if isWeak {
			return nil, &SessionConfigError{
				Message: "session key is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(sessionKey)),
			zap.Bool("is_default", isDefaultKey(sessionKey)))
	}

	if name == "" {
		name = "strataenergy-viewer"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("name", name),
		zap.String("domain", domain))

	return &SessionManager{
		store:  store,
		logger: logger,
		name:   name,
		newID:  uuid.NewString,
	}, nil
}

// SessionConfigError is returned when session configuration is invalid.
type SessionConfigError struct {
	Message string
}

func (e *SessionConfigError) Error() string {
	return e.Message
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-viewer helper                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Viewer identifies one browser looking at the dashboard.
type Viewer struct {
	ID        string
	CreatedAt time.Time
	// New is true on the request that issued the cookie.
	New bool
}

type ctxKey string

const currentViewerKey ctxKey = "currentViewer"

// CurrentViewer returns the viewer & "found?" flag from the request context.
func CurrentViewer(r *http.Request) (*Viewer, bool) {
	v, ok := r.Context().Value(currentViewerKey).(*Viewer)
	return v, ok
}

// ViewerID returns the current viewer's ID or "" when there is none.
func ViewerID(r *http.Request) string {
	if v, ok := CurrentViewer(r); ok {
		return v.ID
	}
	return ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadViewer returns middleware that puts the viewer into the request
// context, issuing a new viewer cookie when the request has none or the
// cookie cannot be read.
func (sm *SessionManager) LoadViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.logSessionError(r, err)
		}

		id, _ := sess.Values[viewerIDKey].(string)
		if _, perr := uuid.Parse(id); perr == nil {
			created, _ := sess.Values[createdAtKey].(int64)
			r = withViewer(r, &Viewer{ID: id, CreatedAt: time.Unix(created, 0).UTC()})
			next.ServeHTTP(w, r)
			return
		}

		v := &Viewer{ID: sm.newID(), CreatedAt: time.Now().UTC(), New: true}
		sess.Values[viewerIDKey] = v.ID
		sess.Values[createdAtKey] = v.CreatedAt.Unix()
		if err := sess.Save(r, w); err != nil {
			sm.logger.Error("failed to save viewer cookie",
				zap.Error(err),
				zap.String("path", r.URL.Path))
		} else {
			sm.logger.Debug("issued viewer cookie",
				zap.String("viewer", v.ID),
				zap.String("path", r.URL.Path))
		}
		next.ServeHTTP(w, withViewer(r, v))
	})
}

func (sm *SessionManager) logSessionError(r *http.Request, err error) {
	errType, errCategory := classifySessionError(err)
	switch errType {
	case sessionErrExpired:
		sm.logger.Debug("viewer cookie expired, issuing a new one",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	case sessionErrTampered:
		sm.logger.Warn("viewer cookie MAC validation failed (possible tampering)",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", network.GetClientIP(r)),
			zap.String("user_agent", r.UserAgent()))
	case sessionErrCorrupted:
		sm.logger.Info("viewer cookie decode failed, issuing a new one",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	case sessionErrBackend:
		sm.logger.Error("session store error, issuing a new viewer cookie",
			zap.Error(err),
			zap.String("path", r.URL.Path))
	default:
		sm.logger.Warn("session error, issuing a new viewer cookie",
			zap.Error(err),
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	}
}

// RequireViewer rejects requests that did not pass through LoadViewer.
func RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentViewer(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func withViewer(r *http.Request, v *Viewer) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentViewerKey, v))
}

// WithTestViewer injects a Viewer into the request context for testing.
func WithTestViewer(r *http.Request, v *Viewer) *http.Request {
	return withViewer(r, v)
}

// isDefaultKey checks if the session key appears to be a default/placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classifySessionError categorizes a session/cookie error for appropriate logging.
func classifySessionError(err error) (sessionErrorType, string) {
	if err == nil {
		return sessionErrUnknown, "none"
	}

	errStr := strings.ToLower(err.Error())

	if scErr, ok := err.(securecookie.Error); ok {
		if !scErr.IsDecode() {
			return sessionErrBackend, "backend"
		}

		switch {
		case strings.Contains(errStr, "expired timestamp"):
			return sessionErrExpired, "expired"
		case strings.Contains(errStr, "mac") || strings.Contains(errStr, "hash"):
			return sessionErrTampered, "mac_invalid"
		case strings.Contains(errStr, "decrypt"):
			return sessionErrCorrupted, "decrypt_failed"
		case strings.Contains(errStr, "base64") || strings.Contains(errStr, "decode"):
			return sessionErrCorrupted, "decode_failed"
		default:
			return sessionErrCorrupted, "decode_other"
		}
	}

	return sessionErrBackend, "unknown"
}
