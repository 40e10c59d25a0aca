// Package csvfile stores the employee directory and per-employee clock events
// as flat CSV record files with a header row.
//
// Appends are plain O_APPEND writes. Rewrites go through a temp file and a
// rename in the same directory; there is no fsync and no cross-process
// locking, so durability is best-effort.
package csvfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	directoryFile = "employee_data.csv"
	eventsDir     = "data"
	eventsSuffix  = "_clock.csv"

	maxLineBytes = 1 << 20
)

var errBadID = errors.New("invalid employee id")

// Paths resolves record file locations under a data root.
type Paths struct {
	Root string
}

func (p Paths) Directory() string {
	return filepath.Join(p.Root, directoryFile)
}

func (p Paths) EventsDir() string {
	return filepath.Join(p.Root, eventsDir)
}

func (p Paths) Events(employeeID string) (string, error) {
	if !validID(employeeID) {
		return "", fmt.Errorf("%w: %q", errBadID, employeeID)
	}
	return filepath.Join(p.EventsDir(), employeeID+eventsSuffix), nil
}

func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && filepath.Base(id) == id
}

// line is one physical line of a record file. err is set when the line is
// not well-formed CSV; rec then holds a lenient reading of it.
type line struct {
	num int
	raw string
	rec []string
	err error
}

// readLines parses each line of the file on its own, so a stray quote on one
// line cannot swallow or fail the lines after it. Blank lines are dropped.
func readLines(path string) ([]line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []line

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for n := 1; sc.Scan(); n++ {
		raw := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		rec, err := parseLine(raw, false)
		if err != nil {
			rec, _ = parseLine(raw, true)
		}
		lines = append(lines, line{num: n, raw: raw, rec: rec, err: err})
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseLine(raw string, lazy bool) ([]string, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = lazy

	return r.Read()
}

// encodeLine renders rec as a single CSV line without the trailing newline.
func encodeLine(rec []string) (string, error) {
	var b strings.Builder

	w := csv.NewWriter(&b)
	if err := w.Write(rec); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

// appendRecord appends rec, writing header first when the file is new or empty.
func appendRecord(path string, header, rec []string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return err
		}
	}

	if err := w.Write(rec); err != nil {
		f.Close()
		return err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// rewrite replaces the file with header followed by lines, which are
// written as given.
func rewrite(path string, header []string, lines []string) error {
	head, err := encodeLine(header)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, l := range append([]string{head}, lines...) {
		if _, err = w.WriteString(l + "\n"); err != nil {
			break
		}
	}
	if err == nil {
		err = w.Flush()
	}

	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func isHeader(rec, header []string) bool {
	return len(rec) >= len(header) && slices.Equal(rec[:len(header)], header)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	return nil
}
