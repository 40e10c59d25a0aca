package observability

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/jackc/pgx/v5/pgconn"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/geocoder89/punchclock/store"

// ObserveStore runs fn inside a span and records latency and error class.
// p may be nil.
func ObserveStore(ctx context.Context, p *Prom, op string, fn func(ctx context.Context) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "store."+op)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := "ok"

	if err != nil {
		status = "error"
		class := classifyStoreErr(err)

		span.RecordError(err)
		span.SetStatus(codes.Error, class)
		span.SetAttributes(attribute.String("store.error_class", class))

		if p != nil {
			p.StoreErrorsTotal.WithLabelValues(op, class).Inc()
		}
	}

	if p != nil {
		p.StoreOpDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	}
	return err
}

func classifyStoreErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "unique_violation"
		case "40001":
			return "serialization_failure"
		case "40P01":
			return "deadlock"
		case "57014":
			return "query_canceled"
		default:
			return "pg_" + pgErr.Code
		}
	}

	switch {
	case errors.Is(err, clock.ErrNoOpenSession):
		return "no_open_session"
	case errors.Is(err, clock.ErrStorageRead), errors.Is(err, employee.ErrNotFound):
		return "not_found"
	case errors.Is(err, fs.ErrNotExist):
		return "not_found"
	case errors.Is(err, fs.ErrPermission):
		return "permission"
	case errors.Is(err, bolt.ErrDatabaseNotOpen), errors.Is(err, bolt.ErrTimeout):
		return "bolt_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
