package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Sessions ties token signing, revocation and the session cookie together.
type Sessions struct {
	tokens     *Tokens
	revoker    Revoker
	cookieName string
	secure     bool
}

func NewSessions(tokens *Tokens, revoker Revoker, cookieName string, secure bool) *Sessions {
	return &Sessions{tokens: tokens, revoker: revoker, cookieName: cookieName, secure: secure}
}

// Middleware attaches the caller's identity when a valid session token is
// present in the cookie or an Authorization: Bearer header. It never
// rejects a request; handlers decide what anonymous callers may do.
func (s *Sessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := s.rawToken(c)
		if raw == "" {
			c.Next()
			return
		}

		claims, err := s.tokens.Parse(raw)
		if err != nil {
			c.Next()
			return
		}

		revoked, err := s.revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			slog.Error("Failed to check token revocation", "err", err)
			c.Next()
			return
		}
		if !revoked {
			SetIdentity(c, &Identity{UserID: claims.Subject, Username: claims.Username, TokenID: claims.ID})
		}
		c.Next()
	}
}

func (s *Sessions) rawToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	v, err := c.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return v
}

// Login issues a token for the user and sets it as the session cookie.
func (s *Sessions) Login(c *gin.Context, userID, username string) error {
	token, claims, err := s.tokens.Issue(userID, username)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, token, int(s.tokens.TTL()/time.Second), "/", "", s.secure, true)
	SetIdentity(c, &Identity{UserID: userID, Username: username, TokenID: claims.ID})
	return nil
}

// Logout revokes the current token, if any, and clears the cookie.
func (s *Sessions) Logout(c *gin.Context) error {
	var err error
	if id := FromContext(c); id != nil {
		if claims, perr := s.tokens.Parse(s.rawToken(c)); perr == nil {
			err = s.revoker.Revoke(c.Request.Context(), id.TokenID, claims.ExpiresAt.Time)
		}
	}
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
	SetIdentity(c, nil)
	return err
}
