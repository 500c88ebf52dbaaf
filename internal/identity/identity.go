// Package identity defines the typed identity context carried from the
// gateway to the turf service, and the header contract between the two
// tiers. The gateway is the only writer of these headers; the turf
// service rebuilds a Context from them once per request and re-verifies
// authorization against the membership store before acting on it.
package identity

import (
	"net/http"
	"strconv"
)

// Header names set by the gateway. Empty or absent values denote guest
// scope. Any value a client supplies under these names is overwritten
// before forwarding.
const (
	HeaderUser    = "X-Authenticated-User"
	HeaderUserID  = "X-Authenticated-User-Id"
	HeaderOrgName = "X-Org-Name"
	HeaderOrgID   = "X-Org-Id"
	HeaderOrgSlug = "X-Org-Slug"
)

// Headers lists every identity header in the contract.
var Headers = []string{HeaderUser, HeaderUserID, HeaderOrgName, HeaderOrgID, HeaderOrgSlug}

// Context is the per-request identity assertion. Zero values mean guest
// scope. It is built once at the trust boundary and passed explicitly;
// business code never re-reads raw headers.
type Context struct {
	UserID   int
	Username string
	OrgID    int
	OrgName  string
	OrgSlug  string
}

// IsGuest reports whether the caller carries no authenticated user.
func (c Context) IsGuest() bool {
	return c.UserID == 0
}

// FromHeader rebuilds a Context from forwarded identity headers.
// Malformed numeric values are treated as absent, collapsing the caller
// to guest scope rather than failing the request.
func FromHeader(h http.Header) Context {
	ctx := Context{
		Username: h.Get(HeaderUser),
		OrgName:  h.Get(HeaderOrgName),
		OrgSlug:  h.Get(HeaderOrgSlug),
	}
	if v := h.Get(HeaderUserID); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			ctx.UserID = id
		}
	}
	if v := h.Get(HeaderOrgID); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			ctx.OrgID = id
		}
	}
	return ctx
}

// SetHeader writes the context into h, overwriting all identity headers.
// Guest scope writes empty strings so client-supplied values can never
// survive the trust boundary.
func (c Context) SetHeader(h http.Header) {
	h.Set(HeaderUser, c.Username)
	h.Set(HeaderOrgName, c.OrgName)
	h.Set(HeaderOrgSlug, c.OrgSlug)
	if c.UserID != 0 {
		h.Set(HeaderUserID, strconv.Itoa(c.UserID))
	} else {
		h.Set(HeaderUserID, "")
	}
	if c.OrgID != 0 {
		h.Set(HeaderOrgID, strconv.Itoa(c.OrgID))
	} else {
		h.Set(HeaderOrgID, "")
	}
}
