package http

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/cache"
	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/geocoder89/recipehub/internal/http/middlewares"
	"github.com/geocoder89/recipehub/internal/observability"
	"github.com/geocoder89/recipehub/internal/repo/postgres"
	"github.com/geocoder89/recipehub/internal/uploads"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxUploadBytes = 8 << 20 // images plus form fields

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, lists cache.Store, prom *observability.Prom, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(maxUploadBytes))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	}

	if cfg.OTELEndpoint != "" {
		r.Use(otelgin.Middleware("recipehub"))
	}

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// identity runs on every request; guards are attached per-route
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL())
	ident := middlewares.NewIdentityMiddleware(jwtManager, cfg.CookieName)
	r.Use(ident.Identify())

	// pages + static assets
	r.LoadHTMLGlob(cfg.TemplatesGlob)
	r.Static("/uploads", filepath.Join(cfg.PublicDir, "uploads"))
	r.Static("/images", filepath.Join(cfg.PublicDir, "images"))
	r.Static("/css", filepath.Join(cfg.PublicDir, "css"))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if prom != nil {
			return prom.ObserveDB("ping", func() error { return pool.Ping(ctx) })
		}

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool)
	recipesRepo := postgres.NewRecipesRepo(pool)
	commentsRepo := postgres.NewCommentsRepo(pool)

	saver := uploads.NewSaver(cfg.UploadDir)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, cfg)
	recipesHandler := handlers.NewRecipesHandler(recipesRepo, saver, lists)
	commentsHandler := handlers.NewCommentsHandler(commentsRepo, recipesRepo)
	viewsHandler := handlers.NewViewsHandler(recipesRepo, commentsRepo)

	// view routes
	r.GET("/", viewsHandler.Home)
	r.GET("/recipes/add", ident.RedirectAnonymous("/login"), recipesHandler.ShowCreateForm)
	r.GET("/recipes/:id", viewsHandler.ShowRecipe)
	r.GET("/my-recipes", ident.RequireAuth(), viewsHandler.MyRecipes)
	r.GET("/login", authHandler.ShowLogin)
	r.GET("/register", authHandler.ShowRegister)

	// auth routes, rate limited by client IP
	limiter := middlewares.NewRateLimiter(10, time.Minute)

	authGroup := r.Group("/auth")
	authGroup.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.GET("/register", authHandler.ShowRegister)
		authGroup.POST("/register", authHandler.Register)
		authGroup.GET("/login", authHandler.ShowLogin)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/logout", authHandler.Logout)
	}

	// recipe API (form/JSON hybrid, mirrors the view flows). Writes are rate
	// limited per user, falling back to IP for the 401 path.
	writeLimiter := middlewares.NewRateLimiter(30, time.Minute)
	write := writeLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP)

	api := r.Group("/api")
	{
		api.GET("/recipes", recipesHandler.ListJSON)
		api.GET("/recipes/add", ident.RequireAuth(), recipesHandler.ShowCreateForm)
		api.POST("/recipes/add", ident.RequireAuth(), write, recipesHandler.Create)
		api.GET("/recipes/:id", recipesHandler.GetJSON)
		api.GET("/recipes/edit/:id", ident.RequireAuth(), recipesHandler.ShowEditForm)
		api.POST("/recipes/edit/:id", ident.RequireAuth(), write, recipesHandler.Update)
		api.POST("/recipes/delete/:id", ident.RequireAuth(), write, recipesHandler.Delete)

		api.POST("/comments/add", ident.RequireAuth(), write, commentsHandler.Create)
		api.GET("/comments/recipe/:id", commentsHandler.ListByRecipe)
		api.POST("/comments/delete/:id", ident.RequireAuth(), write, commentsHandler.Delete)
	}

	// API docs
	r.GET("/docs", handlers.SwaggerUI)
	r.StaticFile("/docs/openapi.yaml", "docs/openapi.yaml")

	return r
}
