package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/checkout"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/shopspring/decimal"
)

type productResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Image       *string   `json:"image"`
	Category    *string   `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Server) productJSON(c *gin.Context, p models.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Category:    p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Image != "" {
		img := baseURL(c) + mediaPath(p.Image)
		resp.Image = &img
	}
	return resp
}

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.catalog.ListProducts(c.Request.Context(), 0)
	if err != nil {
		abortJSON(c, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, s.productJSON(c, p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.catalog.Lookup(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, s.productJSON(c, *p))
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.catalog.ListCategories(c.Request.Context())
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

type sessionRequest struct {
	Items []struct {
		Title    string          `json:"title"`
		Price    decimal.Decimal `json:"price"`
		Quantity int             `json:"quantity"`
		Image    string          `json:"image"`
	} `json:"items"`
}

func (s *Server) createCheckoutSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	lines := make([]checkout.OnlineLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, checkout.OnlineLine{Title: it.Title, Price: it.Price, Quantity: it.Quantity, Image: it.Image})
	}

	session, err := s.checkout.Online(c.Request.Context(), auth.FromContext(c), lines, baseURL(c))
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": session.ID, "url": session.URL})
}

type codRequest struct {
	Items []struct {
		ID       string          `json:"id"`
		Quantity int             `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
	} `json:"items"`
	Customer struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Address string `json:"address"`
		City    string `json:"city"`
		State   string `json:"state"`
		Pincode string `json:"pincode"`
	} `json:"customer"`
}

func (s *Server) checkoutCOD(c *gin.Context) {
	id := auth.FromContext(c)
	if id == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Login required"})
		return
	}

	var req codRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	lines := make([]checkout.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, checkout.CartLine{ProductID: it.ID, Quantity: it.Quantity, Price: it.Price})
	}
	cust := req.Customer
	result, err := s.checkout.COD(c.Request.Context(), id, lines, checkout.Customer{
		Name:    strings.TrimSpace(cust.Name),
		Phone:   strings.TrimSpace(cust.Phone),
		Email:   strings.TrimSpace(cust.Email),
		Address: strings.TrimSpace(cust.Address),
		City:    strings.TrimSpace(cust.City),
		State:   strings.TrimSpace(cust.State),
		Pincode: strings.TrimSpace(cust.Pincode),
	})
	if err != nil {
		abortJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": result.OrderID,
		"total":    result.Total.StringFixed(2),
	})
}
