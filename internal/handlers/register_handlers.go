package handlers

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/SscSPs/koperasi_ledger/cmd/docs"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/middleware"
	"github.com/SscSPs/koperasi_ledger/internal/platform/config"
	"github.com/SscSPs/koperasi_ledger/internal/utils"
)

// SnapshotEnqueuer hands snapshot work to the background worker.
type SnapshotEnqueuer interface {
	EnqueueSnapshotPeriod(ctx context.Context, period domain.Period) (string, error)
	EnqueueCloseYear(ctx context.Context, year int) (string, error)
}

// Options carries the optional collaborators of the router.
type Options struct {
	Posthog *utils.PosthogClientWrapper
	// Enqueuer is nil when Redis is not configured; async snapshot requests
	// are then rejected.
	Enqueuer SnapshotEnqueuer
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts Options,
) error {
	useWireFieldNames()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if err := setupAPIRoutes(r, cfg, services, opts); err != nil {
		return err
	}

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIRoutes configures the /api group and delegates to specific entity route registrations
func setupAPIRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts Options,
) error {
	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	api := r.Group("/api", middleware.SecureHeaders(cfg.IsProduction))
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
		corsCfg.AddAllowHeaders("Authorization", "X-Request-ID")
		corsCfg.AddExposeHeaders("X-Request-ID", "Content-Disposition")
		api.Use(cors.New(corsCfg))
	}
	api.Use(middleware.RateLimit(rateLimiter), middleware.PosthogMiddleware(opts.Posthog))

	// The dashboard loads its config before the user signs in.
	registerClientConfigRoutes(api, cfg)

	protected := api.Group("")
	if cfg.AuthEnabled {
		protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	}

	registerLaporanRoutes(protected, services.Rollup, services.Snapshot, services.OpeningBalance, opts.Enqueuer)
	registerJurnalRoutes(protected, services.Journal)
	registerAkunRoutes(protected, services.Account, services.Journal, services.OpeningBalance)
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
