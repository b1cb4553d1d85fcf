package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/account"
	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/checkout"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Catalog pages
// ---------------------------------------------------------------------------

func (s *Server) landingPage(c *gin.Context) {
	s.render(c, http.StatusOK, "landing.html", nil)
}

func (s *Server) indexPage(c *gin.Context) {
	products, err := s.catalog.ListProducts(c.Request.Context(), s.cfg.Storefront.ListingLimit)
	if err != nil {
		s.abortPage(c, err)
		return
	}
	s.render(c, http.StatusOK, "index.html", gin.H{"Products": products})
}

func (s *Server) productPage(c *gin.Context) {
	p, err := s.catalog.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.abortPage(c, err)
		return
	}
	s.render(c, http.StatusOK, "product.html", gin.H{"Product": p})
}

type cartRow struct {
	Product  *models.Product
	Quantity int
	Subtotal decimal.Decimal
}

// parseCartQuery reads "id:qty,id:qty". A missing or bad quantity counts
// as one; duplicate ids are merged.
func parseCartQuery(raw string) ([]string, map[string]int) {
	var order []string
	qty := make(map[string]int)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, n := part, 1
		if i := strings.LastIndex(part, ":"); i >= 0 {
			id = part[:i]
			if v, err := strconv.Atoi(part[i+1:]); err == nil && v > 0 {
				n = v
			}
		}
		if id == "" {
			continue
		}
		if _, seen := qty[id]; !seen {
			order = append(order, id)
		}
		qty[id] += n
	}
	return order, qty
}

func (s *Server) cartPage(c *gin.Context) {
	ids, qty := parseCartQuery(c.Query("items"))

	rows := make([]cartRow, 0, len(ids))
	total := decimal.Zero
	for _, id := range ids {
		p, err := s.catalog.ProductByID(c.Request.Context(), id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			s.abortPage(c, err)
			return
		}
		sub := p.Price.Mul(decimal.NewFromInt(int64(qty[id])))
		rows = append(rows, cartRow{Product: p, Quantity: qty[id], Subtotal: sub})
		total = total.Add(sub)
	}

	s.render(c, http.StatusOK, "cart.html", gin.H{"Rows": rows, "Total": total})
}

// ---------------------------------------------------------------------------
// Single product checkout
// ---------------------------------------------------------------------------

// requireLogin redirects anonymous visitors to the login page and reports
// whether the handler may continue.
func (s *Server) requireLogin(c *gin.Context) (*auth.Identity, bool) {
	id := auth.FromContext(c)
	if id == nil {
		s.redirect(c, "/login/?next="+url.QueryEscape(c.Request.URL.Path))
		return nil, false
	}
	return id, true
}

func (s *Server) checkoutPage(c *gin.Context) {
	if _, ok := s.requireLogin(c); !ok {
		return
	}
	p, err := s.catalog.ProductByID(c.Request.Context(), c.Param("pk"))
	if err != nil {
		s.abortPage(c, err)
		return
	}
	s.render(c, http.StatusOK, "checkout.html", gin.H{"Product": p})
}

func (s *Server) checkoutSubmit(c *gin.Context) {
	id, ok := s.requireLogin(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ship := checkout.Shipping{
		FullName: strings.TrimSpace(c.PostForm("full_name")),
		Phone:    strings.TrimSpace(c.PostForm("phone")),
		Address:  strings.TrimSpace(c.PostForm("address")),
		Pincode:  strings.TrimSpace(c.PostForm("pincode")),
	}

	if c.PostForm("payment_method") == models.PaymentMethodCOD {
		if _, err := s.checkout.BuyNowCOD(ctx, id, c.Param("pk"), ship); err != nil {
			s.abortPage(c, err)
			return
		}
		s.redirect(c, "/checkout/success/")
		return
	}

	p, err := s.catalog.ProductByID(ctx, c.Param("pk"))
	if err != nil {
		s.abortPage(c, err)
		return
	}
	s.render(c, http.StatusOK, "checkout_payment.html", gin.H{
		"Product":  p,
		"Shipping": ship,
	})
}

func (s *Server) successPage(c *gin.Context) {
	s.render(c, http.StatusOK, "success.html", nil)
}

func (s *Server) cancelPage(c *gin.Context) {
	s.render(c, http.StatusOK, "cancel.html", nil)
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

func (s *Server) signupPage(c *gin.Context) {
	s.render(c, http.StatusOK, "signup.html", nil)
}

func (s *Server) signupSubmit(c *gin.Context) {
	country := c.PostForm("country")
	if strings.TrimSpace(country) == "" {
		country = models.DefaultCountry
	}
	user, err := s.accounts.Signup(c.Request.Context(), account.SignupInput{
		FullName:   c.PostForm("full_name"),
		Email:      c.PostForm("email"),
		Password:   c.PostForm("password"),
		Phone:      c.PostForm("phone"),
		Address:    c.PostForm("address"),
		City:       c.PostForm("city"),
		State:      c.PostForm("state"),
		PostalCode: c.PostForm("postal_code"),
		Country:    country,
		Gender:     c.PostForm("gender"),
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.abortPage(c, err)
			return
		}
		s.setFlash(c, publicMessage(err, status))
		s.redirect(c, "/signup/")
		return
	}

	if err := s.sessions.Login(c, user.ID, user.Username); err != nil {
		s.abortPage(c, err)
		return
	}
	s.redirect(c, "/profile/")
}

func (s *Server) loginPage(c *gin.Context) {
	if auth.FromContext(c) != nil {
		s.redirect(c, "/profile/")
		return
	}
	s.render(c, http.StatusOK, "login.html", gin.H{"Next": c.Query("next")})
}

func (s *Server) loginSubmit(c *gin.Context) {
	user, err := s.accounts.Authenticate(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if errors.Is(err, models.ErrUnauthorized) {
		s.setFlash(c, "Invalid username or password")
		s.redirect(c, "/login/")
		return
	}
	if err != nil {
		s.abortPage(c, err)
		return
	}

	if err := s.sessions.Login(c, user.ID, user.Username); err != nil {
		s.abortPage(c, err)
		return
	}
	s.redirect(c, safeNext(c.PostForm("next"), "/home/"))
}

func (s *Server) logout(c *gin.Context) {
	fullName := ""
	if id := auth.FromContext(c); id != nil {
		if p, err := s.accounts.LoadProfile(c.Request.Context(), id.UserID); err == nil {
			fullName = p.DisplayName()
		}
	}

	if err := s.sessions.Logout(c); err != nil {
		slog.Error("Failed to revoke session", "err", err)
	}
	s.render(c, http.StatusOK, "logout.html", gin.H{"FullName": fullName})
}

func (s *Server) profilePage(c *gin.Context) {
	id := auth.FromContext(c)
	if id == nil {
		s.redirect(c, "/login/")
		return
	}

	p, err := s.accounts.LoadProfile(c.Request.Context(), id.UserID)
	if errors.Is(err, models.ErrNotFound) {
		_ = s.sessions.Logout(c)
		s.redirect(c, "/login/")
		return
	}
	if err != nil {
		s.abortPage(c, err)
		return
	}
	s.render(c, http.StatusOK, "profile.html", gin.H{"Profile": p})
}

// profileSubmit edits the caller's own profile. Nothing in the form can name
// another user.
func (s *Server) profileSubmit(c *gin.Context) {
	id := auth.FromContext(c)
	if id == nil {
		s.redirect(c, "/login/")
		return
	}

	_, err := s.accounts.UpdateProfile(c.Request.Context(), id.UserID, account.ProfileInput{
		FullName:   c.PostForm("full_name"),
		Gender:     c.PostForm("gender"),
		Phone:      c.PostForm("phone"),
		Address:    c.PostForm("address"),
		City:       c.PostForm("city"),
		State:      c.PostForm("state"),
		PostalCode: c.PostForm("postal_code"),
		Country:    c.PostForm("country"),
	})
	if errors.Is(err, models.ErrNotFound) {
		_ = s.sessions.Logout(c)
		s.redirect(c, "/login/")
		return
	}
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.abortPage(c, err)
			return
		}
		s.setFlash(c, publicMessage(err, status))
		s.redirect(c, "/profile/")
		return
	}

	s.setFlash(c, "Profile updated")
	s.redirect(c, "/profile/")
}
