// Package gateway terminates user-facing requests, resolves the
// caller's identity, and forwards them to the turf service with trusted
// identity headers injected. It is the only component allowed to set
// those headers; everything it cannot vouch for is forwarded empty.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/turfworks/turf-platform/internal/identity"
	"github.com/turfworks/turf-platform/internal/models"
)

// PathMarker is the fixed segment separating the routing prefix from
// the downstream path: /partners/{slug}/turf/api/... -> /api/...
const PathMarker = "turf"

// DefaultUpstreamTimeout bounds gateway-to-backend calls.
const DefaultUpstreamTimeout = 30 * time.Second

// hopHeaders are transport-hop headers never forwarded upstream.
var hopHeaders = []string{"Host", "Connection", "Content-Length"}

// relayHeaders is the allow-list of upstream response headers passed
// back to the caller; everything else is dropped.
var relayHeaders = []string{
	"Content-Type",
	"Cache-Control",
	"Set-Cookie",
	"Access-Control-Allow-Origin",
	"Access-Control-Allow-Methods",
	"Access-Control-Allow-Headers",
	"Access-Control-Allow-Credentials",
}

// OrgDirectory resolves organizations and admin memberships for the
// gateway's fast-fail authorization check.
type OrgDirectory interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error)
	AuthorizeOrgAdmin(ctx context.Context, orgID, userID int) (scope int, authorized bool, err error)
}

// Proxy forwards partner requests to the turf service.
type Proxy struct {
	upstream string
	client   *http.Client
	orgs     OrgDirectory
	sessions *SessionResolver
	timeout  time.Duration
}

// NewProxy creates a proxy for the given upstream base URL.
func NewProxy(upstream string, orgs OrgDirectory, sessions *SessionResolver, timeout time.Duration) *Proxy {
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}
	return &Proxy{
		upstream: strings.TrimRight(upstream, "/"),
		client:   &http.Client{},
		orgs:     orgs,
		sessions: sessions,
		timeout:  timeout,
	}
}

// RewritePath strips the routing prefix up to and including the marker
// segment, returning the downstream path with its leading slash. Paths
// without the marker are a client error.
func RewritePath(path string) (string, error) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, segment := range segments {
		if segment == PathMarker {
			return "/" + strings.Join(segments[i+1:], "/"), nil
		}
	}
	return "", fmt.Errorf("path %q does not contain marker segment %q", path, PathMarker)
}

// Handle terminates an inbound partner request: resolve identity,
// fast-fail authorization, forward, relay.
func (p *Proxy) Handle(c *gin.Context) {
	downstreamPath, err := RewritePath(c.Request.URL.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed partner path"})
		return
	}

	ic, status, errMsg := p.resolveIdentity(c)
	if status != 0 {
		c.JSON(status, gin.H{"error": errMsg})
		return
	}

	p.forward(c, downstreamPath, ic)
}

// resolveIdentity builds the identity context for the request. An
// anonymous session is guest scope with every field empty. An
// authenticated session must match an existing organization slug and an
// admin membership; failing either stops the request here without
// forwarding. The backend re-checks membership independently either way.
func (p *Proxy) resolveIdentity(c *gin.Context) (ic identity.Context, status int, errMsg string) {
	userID, username := p.sessions.Resolve(c.Request)
	if userID == 0 {
		return identity.Context{}, 0, ""
	}

	ic = identity.Context{UserID: userID, Username: username}

	slug := c.Param("slug")
	org, err := p.orgs.GetOrganizationBySlug(c.Request.Context(), slug)
	if err != nil {
		log.Printf("[GATEWAY] organization lookup failed for %q: %v", slug, err)
		return ic, http.StatusInternalServerError, "Failed to resolve organization"
	}
	if org == nil {
		return ic, http.StatusNotFound, "Organization not found"
	}

	scope, authorized, err := p.orgs.AuthorizeOrgAdmin(c.Request.Context(), org.ID, userID)
	if err != nil {
		log.Printf("[GATEWAY] membership check failed for org %d user %d: %v", org.ID, userID, err)
		return ic, http.StatusInternalServerError, "Failed to verify authorization"
	}
	if !authorized {
		return ic, http.StatusForbidden, "Not authorized for this organization"
	}

	if scope != models.GuestOrgID {
		ic.OrgID = org.ID
		ic.OrgName = org.Name
		ic.OrgSlug = org.Slug
	}
	return ic, 0, ""
}

// forward sends the rewritten request upstream and relays the response.
// Method, query, and body pass through verbatim; identity headers are
// overwritten with server-derived values so client-supplied ones never
// reach the backend.
func (p *Proxy) forward(c *gin.Context, downstreamPath string, ic identity.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), p.timeout)
	defer cancel()

	upstreamURL := p.upstream + downstreamPath
	if raw := c.Request.URL.RawQuery; raw != "" {
		upstreamURL += "?" + raw
	}

	req, err := http.NewRequestWithContext(ctx, c.Request.Method, upstreamURL, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error connecting: " + err.Error()})
		return
	}

	req.Header = c.Request.Header.Clone()
	for _, name := range hopHeaders {
		req.Header.Del(name)
	}
	ic.SetHeader(req.Header)

	resp, err := p.client.Do(req)
	if err != nil {
		p.writeTransportError(c, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.writeTransportError(c, err)
		return
	}

	header := c.Writer.Header()
	for _, name := range relayHeaders {
		for _, v := range resp.Header.Values(name) {
			header.Add(name, v)
		}
	}
	c.Status(resp.StatusCode)
	c.Writer.Write(body)
}

// writeTransportError maps transport failures to the user-facing
// status: 504 on timeout with no partial body, 502 otherwise.
func (p *Proxy) writeTransportError(c *gin.Context, err error) {
	var netErr interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.Status(http.StatusGatewayTimeout)
	case errors.As(err, &netErr) && netErr.Timeout():
		c.Status(http.StatusGatewayTimeout)
	case errors.Is(err, syscall.ECONNREFUSED):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Turf service unavailable"})
	default:
		log.Printf("[GATEWAY] upstream transport error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error connecting: " + err.Error()})
	}
}
