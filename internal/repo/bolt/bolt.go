// Package bolt stores employees and clock events in a single bbolt file.
//
// Employees live in one bucket keyed by insertion sequence. Each employee's
// clock events live in a nested bucket under clock_events, also keyed by
// sequence, so iteration order is storage order.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
)

var (
	employeesBucket = []byte("employees")
	eventsBucket    = []byte("clock_events")
)

type DB struct {
	bolt *bbolt.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt file: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{employeesBucket, eventsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &DB{bolt: db}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.bolt.View(func(tx *bbolt.Tx) error { return nil })
}

func (d *DB) Close() error {
	return d.bolt.Close()
}

func seqKey(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
