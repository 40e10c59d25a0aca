package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/geocoder89/punchclock/internal/actorctx"
	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLoggerAddsEmployeeID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev")

	ctx := actorctx.WithEmployeeID(context.Background(), "E1234abcd")
	log.InfoContext(ctx, "clocked in")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}

	if rec["employee_id"] != "E1234abcd" {
		t.Fatalf("employee_id = %v, want E1234abcd", rec["employee_id"])
	}
}

func TestObserveStoreCountsErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = ObserveStore(context.Background(), p, "events.close", func(ctx context.Context) error {
		return clock.ErrNoOpenSession
	})
	_ = ObserveStore(context.Background(), p, "events.list", func(ctx context.Context) error {
		return fmt.Errorf("open clock file: %w", os.ErrNotExist)
	})
	if err := ObserveStore(context.Background(), p, "events.list", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(p.StoreErrorsTotal.WithLabelValues("events.close", "no_open_session")); got != 1 {
		t.Fatalf("no_open_session count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.StoreErrorsTotal.WithLabelValues("events.list", "not_found")); got != 1 {
		t.Fatalf("not_found count = %v, want 1", got)
	}
}

func TestObserveStoreNilProm(t *testing.T) {
	want := errors.New("boom")

	got := ObserveStore(context.Background(), nil, "employees.create", func(ctx context.Context) error { return want })
	if !errors.Is(got, want) {
		t.Fatalf("err = %v, want %v", got, want)
	}
}
