package employee

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID           string    `json:"employeeId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	DOB          string    `json:"dob"`
	CreatedAt    time.Time `json:"createdAt"`
}

var (
	ErrUnknownEmail    = errors.New("unknown email")
	ErrInvalidPassword = errors.New("invalid password")
	ErrDuplicateEmail  = errors.New("email is already in use")
	ErrNotFound        = errors.New("employee not found")
)

// Header is the column order of the flat directory file.
var Header = []string{"name", "email", "password", "dob", "employee_id"}

func (e Employee) Record() []string {
	return []string{e.Name, e.Email, e.PasswordHash, e.DOB, e.ID}
}

func FromRecord(rec []string) (Employee, bool) {
	if len(rec) < len(Header) {
		return Employee{}, false
	}
	return Employee{
		Name:         rec[0],
		Email:        rec[1],
		PasswordHash: rec[2],
		DOB:          rec[3],
		ID:           rec[4],
	}, true
}

type CreateRequest struct {
	Name     string `form:"name" json:"name" binding:"required,max=120"`
	Email    string `form:"email" json:"email" binding:"required,email,max=254"`
	Password string `form:"password" json:"password" binding:"required,maxbytes=72"`
	DOB      string `form:"dob" json:"dob" binding:"required,datetime=2006-01-02"`
}

// Latitude and longitude arrive as hidden form inputs filled by the browser.
type LoginRequest struct {
	Email     string `form:"email" json:"email" binding:"required"`
	Password  string `form:"password" json:"password" binding:"required"`
	Latitude  string `form:"latitude" json:"latitude" binding:"required,latitude"`
	Longitude string `form:"longitude" json:"longitude" binding:"required,longitude"`
}

// NewID returns an opaque employee token: "E" followed by 8 hex characters.
func NewID() string {
	return "E" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewFromCreateRequest builds the stored record. Runs of whitespace in the
// name, newlines included, collapse to one space so every record stays on a
// single line.
func NewFromCreateRequest(req CreateRequest, passwordHash string) Employee {
	return Employee{
		ID:           NewID(),
		Name:         strings.Join(strings.Fields(req.Name), " "),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
		DOB:          strings.TrimSpace(req.DOB),
		CreatedAt:    time.Now().UTC(),
	}
}
