package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseforge/caseforge/internal/auth"
)

type stubVerifier struct {
	identity *auth.Identity
	err      error
}

func (v *stubVerifier) Verify(string) (*auth.Identity, error) {
	return v.identity, v.err
}

func newSessionAuth(verifier SessionVerifier) *SessionAuth {
	return NewSessionAuth(SessionAuthConfig{
		Sessions:   verifier,
		Classifier: NewDefaultClassifier(),
		LoginPath:  "/api/auth/login",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSessionAuth_Handler(t *testing.T) {
	identity := &auth.Identity{UserID: uuid.New(), Email: "customer@caseforge.dev"}

	testCases := map[string]struct {
		path             string
		verifier         *stubVerifier
		token            string
		expectedStatus   int
		expectedLocation string
		expectedIdentity bool
	}{

		"should pass public paths without a session": {
			path:           "/configure/design",
			verifier:       &stubVerifier{err: http.ErrNoCookie},
			expectedStatus: http.StatusOK,
		},

		"should pass protected paths with a valid session": {
			path:             "/account",
			verifier:         &stubVerifier{identity: identity},
			token:            "valid-token",
			expectedStatus:   http.StatusOK,
			expectedIdentity: true,
		},

		"should redirect protected paths without a session": {
			path:             "/account",
			verifier:         &stubVerifier{err: http.ErrNoCookie},
			expectedStatus:   http.StatusTemporaryRedirect,
			expectedLocation: "/api/auth/login?post_login_redirect_url=%2Faccount",
		},

		"should treat a failing session check as unauthenticated": {
			path:             "/account",
			verifier:         &stubVerifier{err: assert.AnError},
			token:            "broken-token",
			expectedStatus:   http.StatusTemporaryRedirect,
			expectedLocation: "/api/auth/login?post_login_redirect_url=%2Faccount",
		},

		"should attach the identity on public paths too": {
			path:             "/configure/preview",
			verifier:         &stubVerifier{identity: identity},
			token:            "valid-token",
			expectedStatus:   http.StatusOK,
			expectedIdentity: true,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var sawIdentity bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, sawIdentity = GetIdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tc.token})
			}

			rec := httptest.NewRecorder()
			newSessionAuth(tc.verifier).Handler(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedLocation != "" {
				assert.Equal(t, tc.expectedLocation, rec.Header().Get("Location"))
			}
			if tc.expectedStatus == http.StatusOK {
				assert.Equal(t, tc.expectedIdentity, sawIdentity)
			}
		})
	}
}

func TestSessionAuth_BearerToken(t *testing.T) {
	identity := &auth.Identity{UserID: uuid.New(), Email: "customer@caseforge.dev"}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := GetIdentityFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, identity, got)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.Header.Set("Authorization", "Bearer some-token")

	rec := httptest.NewRecorder()
	newSessionAuth(&stubVerifier{identity: identity}).Handler(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
