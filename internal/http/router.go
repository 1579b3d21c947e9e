// Package httpapi wires the HTTP transport (Gin) to the proposal and order
// services, middleware and route handlers. It centralizes cross-cutting
// concerns: tracing, correlation IDs, scrubbed access logs, panic recovery,
// metrics, compression, idempotency, rate limiting, CORS and security headers.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/docs"
	"github.com/tbourn/go-groupbuy-backend/internal/config"
	"github.com/tbourn/go-groupbuy-backend/internal/domain"
	"github.com/tbourn/go-groupbuy-backend/internal/http/handlers"
	"github.com/tbourn/go-groupbuy-backend/internal/http/middleware"
	"github.com/tbourn/go-groupbuy-backend/internal/repo"
	"github.com/tbourn/go-groupbuy-backend/internal/services"
)

// maxBodyBytes caps request bodies; proposals and orders are tiny.
const maxBodyBytes = 1 << 20

// proposalRepoShim adapts the repo free functions to services.ProposalRepo.
type proposalRepoShim struct{}

func (proposalRepoShim) CreateProposal(ctx context.Context, db *gorm.DB, p *domain.Proposal) error {
	return repo.CreateProposal(ctx, db, p)
}

func (proposalRepoShim) ListProposals(ctx context.Context, db *gorm.DB) ([]domain.Proposal, error) {
	return repo.ListProposals(ctx, db)
}

func (proposalRepoShim) GetProposal(ctx context.Context, db *gorm.DB, id int64) (*domain.Proposal, error) {
	return repo.GetProposal(ctx, db, id)
}

func (proposalRepoShim) SetProposalStatus(ctx context.Context, db *gorm.DB, id int64, st domain.ProposalStatus) error {
	return repo.SetProposalStatus(ctx, db, id, st)
}

func (proposalRepoShim) AggregateOrders(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]domain.Aggregate, error) {
	return repo.AggregateOrders(ctx, db, ids)
}

func (proposalRepoShim) AggregateOrdersFor(ctx context.Context, db *gorm.DB, id int64) (domain.Aggregate, error) {
	return repo.AggregateOrdersFor(ctx, db, id)
}

// RegisterRoutes attaches all middleware and endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: scrubbed access log + request-scoped logger
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics, then gzip for responses
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per client IP, writes only)
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	sweeper := services.NewRetentionSweeper(db, cfg.RetentionGrace)
	proposals := services.NewProposalService(db, proposalRepoShim{}, sweeper)
	orders := &services.OrderService{DB: db}
	idem := &services.IdempotencyService{DB: db, TTL: cfg.IdempotencyTTL}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(middleware.RedactOptions{MaskHeaders: []string{"X-API-Key"}}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(middleware.Metrics("/metrics", "/health"))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger"})))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.Exists))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP(), middleware.RateLimitOptions{
		ExemptMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	})
	r.Use(rl.Handler())
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(proposals, orders, sweeper, idem)

	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api"
	{
		// Proposals
		api.GET("/proposals", h.ListProposals)
		api.POST("/proposals", h.CreateProposal)
		api.GET("/proposals/:id", h.GetProposal)
		api.PUT("/proposals/:id/close", h.CloseProposal)

		// Orders
		api.GET("/orders/:proposal_id", h.ListOrders)
		api.POST("/orders", h.CreateOrder)
		api.PUT("/orders/:id", h.UpdateOrder)
		api.DELETE("/orders/:id", h.DeleteOrder)

		// Maintenance
		api.POST("/maintenance/sweep", h.Sweep)
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "ETag", "Idempotency-Replayed", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// health reports 200 when the database answers a ping, 503 otherwise.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// limitBody caps the request body at maxBytes via http.MaxBytesReader.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
