// Package storage opens the backend named by STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/punchclock/internal/config"
	"github.com/geocoder89/punchclock/internal/db"
	"github.com/geocoder89/punchclock/internal/directory"
	"github.com/geocoder89/punchclock/internal/observability"
	"github.com/geocoder89/punchclock/internal/repo/bolt"
	"github.com/geocoder89/punchclock/internal/repo/csvfile"
	"github.com/geocoder89/punchclock/internal/repo/memory"
	"github.com/geocoder89/punchclock/internal/repo/postgres"
	"github.com/geocoder89/punchclock/internal/timeclock"
)

type ClockEvents interface {
	directory.EventLog
	timeclock.EventStore
}

// Backend is one storage driver's employee directory and clock event log.
type Backend struct {
	Driver    string
	Employees directory.EmployeeStore
	Events    ClockEvents

	ping  func(ctx context.Context) error
	close func() error
}

func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func Open(ctx context.Context, cfg config.Config, loc *time.Location, log *slog.Logger, prom *observability.Prom) (*Backend, error) {
	switch cfg.StorageDriver {
	case config.DriverCSV:
		employees, err := csvfile.NewEmployeesRepo(cfg.DataDir, log, prom)
		if err != nil {
			return nil, err
		}
		events, err := csvfile.NewClockEventsRepo(cfg.DataDir, loc, log, prom)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver:    cfg.StorageDriver,
			Employees: employees,
			Events:    events,
			ping: func(ctx context.Context) error {
				if err := employees.Ping(ctx); err != nil {
					return err
				}
				return events.Ping(ctx)
			},
		}, nil

	case config.DriverBolt:
		bdb, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver:    cfg.StorageDriver,
			Employees: bolt.NewEmployeesRepo(bdb, prom),
			Events:    bolt.NewClockEventsRepo(bdb, loc, log, prom),
			ping:      bdb.Ping,
			close:     bdb.Close,
		}, nil

	case config.DriverPostgres:
		if err := db.Migrate(ctx, cfg.DBURL); err != nil {
			return nil, err
		}
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Backend{
			Driver:    cfg.StorageDriver,
			Employees: postgres.NewEmployeesRepo(pool, prom),
			Events:    postgres.NewClockEventsRepo(pool, loc, prom),
			ping:      pool.Ping,
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// Memory is an in-process backend for tests and throwaway runs.
func Memory(loc *time.Location) *Backend {
	return &Backend{
		Driver:    "memory",
		Employees: memory.NewEmployeesRepo(),
		Events:    memory.NewClockEventsRepo(loc),
	}
}
