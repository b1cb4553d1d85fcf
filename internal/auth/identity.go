// Package auth issues session tokens and resolves the caller's identity.
package auth

import "github.com/gin-gonic/gin"

// Identity is the authenticated caller. A nil *Identity means anonymous.
type Identity struct {
	UserID   string
	Username string
	TokenID  string
}

const identityKey = "storefront.identity"

// SetIdentity attaches id to the request context.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(identityKey, id)
}

// FromContext returns the identity attached by Middleware, or nil.
func FromContext(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}
