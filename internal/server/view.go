package server

import (
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/shopspring/decimal"
)

const flashCookie = "flash"

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"media": mediaPath,
}

func mediaPath(image string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return "/media/" + strings.TrimPrefix(image, "/")
}

// baseURL is the scheme and host the client used to reach us.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

func hostOnly(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return hostport
}

// render executes a page template with the data every page needs.
func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Identity"] = auth.FromContext(c)
	data["Flash"] = popFlash(c)
	data["StripePublicKey"] = s.cfg.Payment.PublicKey
	c.HTML(status, name, data)
}

func (s *Server) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

func (s *Server) setFlash(c *gin.Context, msg string) {
	c.SetCookie(flashCookie, msg, 60, "/", "", !s.cfg.Server.Debug, true)
}

// popFlash returns the pending message and clears it. gin escapes cookie
// values on the way out and unescapes them on the way in.
func popFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return raw
}

// safeNext keeps post-login redirects on this site. Browsers read a
// backslash as a slash, so "/\\host" is as dangerous as "//host".
func safeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.ContainsAny(next, "\\") {
		return fallback
	}
	for _, r := range next {
		if r < 0x20 || r == 0x7f {
			return fallback
		}
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	return next
}
