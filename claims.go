package notes

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-notes/middleware/jwtware"
)

// PrincipalRef is the value stored under a role key in the token payload
type PrincipalRef struct {
	ID string `json:"id"`
}

// Claims is the token payload. Exactly one of Admin or User is set; the
// registered claims carry jti, iat and, when a TTL is configured, exp.
type Claims struct {
	Admin *PrincipalRef `json:"admin,omitempty"`
	User  *PrincipalRef `json:"user,omitempty"`
	jwt.RegisteredClaims
}

var _ jwtware.Claims = (*Claims)(nil)

func newClaims(role Role, id string) *Claims {
	c := &Claims{}
	ref := &PrincipalRef{ID: id}
	switch role {
	case RoleAdmin:
		c.Admin = ref
	case RoleUser:
		c.User = ref
	}
	return c
}

// PrincipalID returns the id nested under role
func (c *Claims) PrincipalID(role string) (string, bool) {
	var ref *PrincipalRef
	switch Role(role) {
	case RoleAdmin:
		ref = c.Admin
	case RoleUser:
		ref = c.User
	}
	if ref == nil || ref.ID == "" {
		return "", false
	}
	return ref.ID, true
}

// Role returns the role the payload was issued for
func (c *Claims) Role() (Role, bool) {
	switch {
	case c.Admin != nil && c.User != nil:
		return "", false
	case c.Admin != nil && c.Admin.ID != "":
		return RoleAdmin, true
	case c.User != nil && c.User.ID != "":
		return RoleUser, true
	default:
		return "", false
	}
}

// TokenID returns the jti claim
func (c *Claims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Expires returns the expiration time, zero when the token never expires
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
