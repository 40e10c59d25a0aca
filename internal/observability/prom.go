package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// storage backends
	StoreOpDuration  *prometheus.HistogramVec
	StoreErrorsTotal *prometheus.CounterVec

	// domain
	ClockActions  *prometheus.CounterVec
	LoginAttempts *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "punchclock",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "punchclock",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "punchclock",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		StoreOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "punchclock",
				Subsystem: "store",
				Name:      "op_duration_seconds",
				Help:      "Storage operation latency by logical op.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2},
			},
			[]string{"op", "status"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "punchclock",
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Storage errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		ClockActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "punchclock",
				Subsystem: "clock",
				Name:      "actions_total",
				Help:      "Clock-in and clock-out attempts by result.",
			},
			[]string{"action", "result"}, // result=ok|no_open_session|error
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "punchclock",
				Subsystem: "auth",
				Name:      "login_attempts_total",
				Help:      "Login attempts by result.",
			},
			[]string{"result"}, // result=success|invalid_form|no_location|outside_fence|unknown_email|invalid_password|error
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.StoreOpDuration, p.StoreErrorsTotal, p.ClockActions, p.LoginAttempts)

	return p
}

func (p *Prom) IncClockAction(action, result string) {
	if p == nil {
		return
	}
	p.ClockActions.WithLabelValues(action, result).Inc()
}

func (p *Prom) IncLogin(result string) {
	if p == nil {
		return
	}
	p.LoginAttempts.WithLabelValues(result).Inc()
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
