package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/turfworks/turf-platform/internal/identity"
	"github.com/turfworks/turf-platform/internal/models"
)

type fakeOrgs struct {
	org        *models.Organization
	scope      int
	authorized bool
	calls      int
}

func (f *fakeOrgs) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	return f.org, nil
}

func (f *fakeOrgs) AuthorizeOrgAdmin(ctx context.Context, orgID, userID int) (int, bool, error) {
	f.calls++
	return f.scope, f.authorized, nil
}

func newTestRouter(p *Proxy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Any("/partners/:slug/turf/*rest", p.Handle)
	return r
}

func sessionToken(t *testing.T, secret string, userID int, username string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign session token: %v", err)
	}
	return signed
}

func TestRewritePath(t *testing.T) {
	cases := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "/partners/acme/turf/api/edit", want: "/api/edit"},
		{path: "/partners/acme/turf/api/suggestions/3", want: "/api/suggestions/3"},
		{path: "/partners/acme/turf/", want: "/"},
		{path: "/partners/acme/dashboard/api", wantErr: true},
		{path: "/", wantErr: true},
	}
	for _, tc := range cases {
		got, err := RewritePath(tc.path)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("RewritePath(%q): expected error, got %q", tc.path, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("RewritePath(%q): unexpected error %v", tc.path, err)
		}
		if got != tc.want {
			t.Fatalf("RewritePath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestProxy_GuestNeverForwardsClientIdentityHeaders(t *testing.T) {
	var seen http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	p := NewProxy(upstream.URL, &fakeOrgs{}, NewSessionResolver("test-secret"), 0)
	r := newTestRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/partners/acme/turf/api/edit", nil)
	req.Header.Set(identity.HeaderUser, "admin")
	req.Header.Set(identity.HeaderUserID, "1")
	req.Header.Set(identity.HeaderOrgID, "99")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	for _, name := range identity.Headers {
		if v := seen.Get(name); v != "" {
			t.Fatalf("expected %s stripped for guest, upstream saw %q", name, v)
		}
	}
}

func TestProxy_AuthenticatedInjectsIdentityHeaders(t *testing.T) {
	var seen http.Header
	var seenPath, seenQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		seenPath = r.URL.Path
		seenQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	orgs := &fakeOrgs{
		org:        &models.Organization{ID: 5, Name: "Acme Civic", Slug: "acme"},
		scope:      5,
		authorized: true,
	}
	p := NewProxy(upstream.URL, orgs, NewSessionResolver("test-secret"), 0)
	r := newTestRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/partners/acme/turf/api/edit?id=3", nil)
	req.Header.Set(identity.HeaderUser, "impersonator")
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionToken(t, "test-secret", 7, "alice")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if seenPath != "/api/edit" || seenQuery != "id=3" {
		t.Fatalf("expected rewritten path /api/edit?id=3, upstream saw %s?%s", seenPath, seenQuery)
	}
	if got := seen.Get(identity.HeaderUser); got != "alice" {
		t.Fatalf("expected server-derived username, upstream saw %q", got)
	}
	if got := seen.Get(identity.HeaderUserID); got != "7" {
		t.Fatalf("expected user id 7, upstream saw %q", got)
	}
	if got := seen.Get(identity.HeaderOrgID); got != "5" {
		t.Fatalf("expected org id 5, upstream saw %q", got)
	}
	if got := seen.Get(identity.HeaderOrgSlug); got != "acme" {
		t.Fatalf("expected org slug acme, upstream saw %q", got)
	}
}

func TestProxy_NonAdminDeniedWithoutForwarding(t *testing.T) {
	forwarded := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded = true
	}))
	defer upstream.Close()

	orgs := &fakeOrgs{
		org:        &models.Organization{ID: 5, Name: "Acme Civic", Slug: "acme"},
		authorized: false,
	}
	p := NewProxy(upstream.URL, orgs, NewSessionResolver("test-secret"), 0)
	r := newTestRouter(p)

	req := httptest.NewRequest(http.MethodDelete, "/partners/acme/turf/api/edit?id=3", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionToken(t, "test-secret", 7, "alice")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if forwarded {
		t.Fatalf("request must not be forwarded when membership check fails")
	}
}

func TestProxy_UnknownOrganization(t *testing.T) {
	p := NewProxy("http://localhost:1", &fakeOrgs{org: nil}, NewSessionResolver("test-secret"), 0)
	r := newTestRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/partners/nope/turf/api/edit", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionToken(t, "test-secret", 7, "alice")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown slug, got %d", w.Code)
	}
}

func TestProxy_InvalidSessionIsGuestNotError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	orgs := &fakeOrgs{}
	p := NewProxy(upstream.URL, orgs, NewSessionResolver("test-secret"), 0)
	r := newTestRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/partners/acme/turf/api/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected invalid session to forward as guest, got %d", w.Code)
	}
	if orgs.calls != 0 {
		t.Fatalf("guest requests must not hit the membership store")
	}
}

func TestProxy_RelaysOnlyAllowListedHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Internal-Debug", "secret")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	defer upstream.Close()

	p := NewProxy(upstream.URL, &fakeOrgs{}, NewSessionResolver("test-secret"), 0)
	r := newTestRouter(p)

	req := httptest.NewRequest(http.MethodPost, "/partners/acme/turf/api/edit", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected relayed 201, got %d", w.Code)
	}
	if w.Body.String() != `{"id":1}` {
		t.Fatalf("expected relayed body, got %q", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected Content-Type relayed, got %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("expected Cache-Control relayed, got %q", got)
	}
	if got := w.Header().Get("X-Internal-Debug"); got != "" {
		t.Fatalf("expected X-Internal-Debug dropped, got %q", got)
	}
}

func TestProxy_UpstreamDownReturns502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused from here on

	p := NewProxy(upstream.URL, &fakeOrgs{}, NewSessionResolver("test-secret"), 0)
	r := newTestRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/partners/acme/turf/api/edit", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for refused connection, got %d", w.Code)
	}
}

func TestProxy_UpstreamTimeoutReturns504NoBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("too late"))
	}))
	defer upstream.Close()

	p := NewProxy(upstream.URL, &fakeOrgs{}, NewSessionResolver("test-secret"), 50*time.Millisecond)
	r := newTestRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/partners/acme/turf/api/edit", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 on timeout, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body on timeout, got %q", w.Body.String())
	}
}
