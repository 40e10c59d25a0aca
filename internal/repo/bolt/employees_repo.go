package bolt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/geocoder89/punchclock/internal/observability"
	bbolt "go.etcd.io/bbolt"
)

// employeeRecord is the stored form; employee.Employee hides the hash from JSON.
type employeeRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	DOB          string    `json:"dob"`
	CreatedAt    time.Time `json:"created_at"`
}

func toRecord(e employee.Employee) employeeRecord {
	return employeeRecord{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		DOB:          e.DOB,
		CreatedAt:    e.CreatedAt,
	}
}

func (r employeeRecord) employee() employee.Employee {
	return employee.Employee{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		DOB:          r.DOB,
		CreatedAt:    r.CreatedAt,
	}
}

type EmployeesRepo struct {
	db   *DB
	prom *observability.Prom
}

func NewEmployeesRepo(db *DB, prom *observability.Prom) *EmployeesRepo {
	return &EmployeesRepo{db: db, prom: prom}
}

func (r *EmployeesRepo) Create(ctx context.Context, e employee.Employee) error {
	return observability.ObserveStore(ctx, r.prom, "employees.create", func(ctx context.Context) error {
		val, err := json.Marshal(toRecord(e))
		if err != nil {
			return err
		}

		return r.db.bolt.Update(func(tx *bbolt.Tx) error {
			b := tx.Bucket(employeesBucket)
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			return b.Put(seqKey(seq), val)
		})
	})
}

func (r *EmployeesRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return r.find(ctx, "employees.get_by_email", func(rec employeeRecord) bool {
		return rec.Email == email
	})
}

func (r *EmployeesRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.find(ctx, "employees.get_by_id", func(rec employeeRecord) bool {
		return rec.ID == id
	})
}

func (r *EmployeesRepo) find(ctx context.Context, op string, match func(employeeRecord) bool) (found employee.Employee, err error) {
	err = observability.ObserveStore(ctx, r.prom, op, func(ctx context.Context) error {
		return r.db.bolt.View(func(tx *bbolt.Tx) error {
			c := tx.Bucket(employeesBucket).Cursor()

			for k, v := c.First(); k != nil; k, v = c.Next() {
				var rec employeeRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					continue
				}
				if match(rec) {
					found = rec.employee()
					return nil
				}
			}
			return employee.ErrNotFound
		})
	})
	return
}

func (r *EmployeesRepo) Delete(ctx context.Context, id string) error {
	return observability.ObserveStore(ctx, r.prom, "employees.delete", func(ctx context.Context) error {
		return r.db.bolt.Update(func(tx *bbolt.Tx) error {
			b := tx.Bucket(employeesBucket)

			var doomed [][]byte
			err := b.ForEach(func(k, v []byte) error {
				var rec employeeRecord
				if json.Unmarshal(v, &rec) == nil && rec.ID == id {
					doomed = append(doomed, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}

			for _, k := range doomed {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
