package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/account"
	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/catalog"
	"github.com/matthieukhl/storefront/internal/checkout"
	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/events"
	"github.com/matthieukhl/storefront/internal/payment"
	"github.com/matthieukhl/storefront/internal/repository"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	router   *gin.Engine
	cfg      *config.Config
	store    repository.Store
	catalog  *catalog.Service
	checkout *checkout.Service
	accounts *account.Service
	sessions *auth.Sessions
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, store repository.Store, gateway payment.Gateway, publisher events.Publisher, sessions *auth.Sessions) (*Server, error) {
	checkoutSvc, err := checkout.NewService(store, gateway, publisher, cfg)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	router := gin.Default()
	router.SetHTMLTemplate(tmpl)

	server := &Server{
		router:   router,
		cfg:      cfg,
		store:    store,
		catalog:  catalog.NewService(store),
		checkout: checkoutSvc,
		accounts: account.NewService(store, store),
		sessions: sessions,
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures the JSON API and the storefront pages
func (s *Server) setupRoutes() {
	s.router.Use(allowedHosts(s.cfg.Server.AllowedHosts), s.sessions.Middleware())

	s.router.GET("/healthz", s.healthCheck)
	s.router.Static("/static", s.cfg.Storefront.StaticRoot)
	s.router.Static("/media", s.cfg.Storefront.MediaRoot)

	api := s.router.Group("/api")
	{
		api.GET("/products/", s.listProducts)
		api.GET("/products/:slug/", s.getProduct)
		api.GET("/categories/", s.listCategories)
		api.POST("/create-checkout-session/", s.createCheckoutSession)
		api.POST("/checkout-cod/", s.checkoutCOD)
	}
	s.router.POST("/checkout-cod/", s.checkoutCOD)

	s.router.GET("/", s.landingPage)
	s.router.GET("/home/", s.indexPage)
	s.router.GET("/product/:slug/", s.productPage)
	s.router.GET("/cart/", s.cartPage)
	s.router.GET("/checkout/success/", s.successPage)
	s.router.GET("/checkout/cancel/", s.cancelPage)
	s.router.GET("/checkout/:pk/", s.checkoutPage)
	s.router.POST("/checkout/:pk/", s.checkoutSubmit)
	s.router.GET("/signup/", s.signupPage)
	s.router.POST("/signup/", s.signupSubmit)
	s.router.GET("/login/", s.loginPage)
	s.router.POST("/login/", s.loginSubmit)
	s.router.GET("/logout/", s.logout)
	s.router.GET("/profile/", s.profilePage)
	s.router.POST("/profile/", s.profileSubmit)

	s.router.NoRoute(s.notFound)
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.store.HealthCheck(c.Request.Context()); err != nil {
		slog.Error("Health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "storefront",
	})
}

// allowedHosts rejects requests whose Host is not listed. An empty list
// accepts every host.
func allowedHosts(hosts []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		allowed[h] = true
	}
	return func(c *gin.Context) {
		if len(allowed) == 0 || allowed["*"] || allowed[hostOnly(c.Request.Host)] {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid host header"})
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
