package http

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/geocoder89/punchclock/internal/auth"
	"github.com/geocoder89/punchclock/internal/cache"
	"github.com/geocoder89/punchclock/internal/config"
	"github.com/geocoder89/punchclock/internal/directory"
	"github.com/geocoder89/punchclock/internal/http/flash"
	"github.com/geocoder89/punchclock/internal/http/handlers"
	"github.com/geocoder89/punchclock/internal/http/middlewares"
	"github.com/geocoder89/punchclock/internal/http/web"
	"github.com/geocoder89/punchclock/internal/lock"
	"github.com/geocoder89/punchclock/internal/observability"
	"github.com/geocoder89/punchclock/internal/storage"
	"github.com/geocoder89/punchclock/internal/timeclock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const tooManyAttempts = "Too many attempts. Please try again shortly."

// Deps is everything the router wires handlers from.
type Deps struct {
	Log      *slog.Logger
	Config   config.Config
	Store    *storage.Backend
	Locker   lock.Locker
	Sessions *auth.Manager
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// extra readiness checks, e.g. redis
	Checks map[string]handlers.Check
}

func NewRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config

	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Store == nil || deps.Sessions == nil {
		return nil, errors.New("router needs a store and a session manager")
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewLocal()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	secure := cfg.Env != "dev" && cfg.Env != "test"
	calc := cfg.Calculator()

	dir := directory.New(deps.Store.Employees, deps.Store.Events, deps.Locker, cfg.UniqueEmails)
	tc := timeclock.New(deps.Store.Events, deps.Locker, calc, loc)
	earningsCache := cache.New[float64](time.Hour)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	sessionMW := middlewares.NewSessionMiddleware(deps.Sessions, secure)
	r.Use(sessionMW.LoadSession())
	r.Use(middlewares.RequestLogger(deps.Log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	checks := map[string]handlers.Check{"storage": deps.Store.Ping}
	for name, check := range deps.Checks {
		checks[name] = check
	}
	health := handlers.NewHealthHandler(checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// handlers
	account := handlers.NewAccountHandler(dir, secure)
	session := handlers.NewSessionHandler(dir, deps.Sessions, cfg.Fence(), deps.Prom, secure)
	clockH := handlers.NewClockHandler(tc, earningsCache, calc, deps.Prom)
	api := handlers.NewAPIHandler(tc, dir, calc, loc)

	limiter := middlewares.NewRateLimiter(cfg.LoginRateRPS, cfg.LoginRateBurst)
	limitTo := func(location string) gin.HandlerFunc {
		return limiter.RateLimiterMiddleware(middlewares.KeyByIP, func(ctx *gin.Context) {
			flash.Add(ctx, tooManyAttempts)
			ctx.Redirect(nethttp.StatusFound, location)
		})
	}

	// pages
	r.GET("/", clockH.Home)
	r.GET("/create_account", account.CreateAccountPage)
	r.POST("/create_account", limitTo("/create_account"), account.CreateAccount)
	r.GET("/login", session.LoginPage)
	r.POST("/login", limitTo("/login"), session.Login)
	r.GET("/logout", session.Logout)

	pages := r.Group("/")
	pages.Use(sessionMW.RequireSessionPage())
	{
		pages.GET("/dashboard", clockH.Dashboard)
		pages.POST("/calculate_earnings", clockH.CalculateEarnings)
		pages.GET("/timesheet.xlsx", clockH.Timesheet)
	}

	actions := r.Group("/")
	actions.Use(sessionMW.RequireSessionJSON())
	{
		actions.POST("/clock_in", clockH.ClockIn)
		actions.POST("/clock_out", clockH.ClockOut)
		actions.POST("/delete_account", account.DeleteAccount)
	}

	apiGroup := r.Group("/api")
	apiGroup.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	apiGroup.Use(sessionMW.RequireSessionAPI())
	{
		apiGroup.GET("/me", api.Me)
		apiGroup.GET("/events", api.ListEvents)
		apiGroup.GET("/earnings", api.Earnings)
		apiGroup.POST("/earnings/preview", api.PreviewEarnings)
		// preflight; answered by the CORS middleware
		apiGroup.OPTIONS("/*path", func(*gin.Context) {})
	}

	deps.Log.Info("routes registered", "storage", deps.Store.Driver, "unique_emails", cfg.UniqueEmails)

	return r, nil
}

// PingCheck adapts anything with a Ping method to a readiness check.
func PingCheck(p interface{ Ping(context.Context) error }) handlers.Check {
	return p.Ping
}
