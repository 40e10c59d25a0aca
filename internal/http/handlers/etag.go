package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/geocoder89/punchclock/internal/domain/clock"
	"github.com/geocoder89/punchclock/internal/domain/employee"
	"github.com/gin-gonic/gin"
)

// respondVersioned writes payload under a weak ETag, or 304 when the client
// already holds that version.
func respondVersioned(ctx *gin.Context, etag string, payload any) {
	ctx.Header("ETag", etag)

	if clientHasVersion(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

// eventsETag versions a clock log by its shape. A clock-in changes the row
// count and a clock-out lowers the open count; the last row's timestamps are
// folded in as well.
func eventsETag(employeeID string, events []clock.Event) string {
	open := 0
	for _, e := range events {
		if e.Open() {
			open++
		}
	}

	var lastIn, lastOut int64
	if n := len(events); n > 0 {
		last := events[n-1]
		lastIn = last.ClockIn.Unix()
		if last.ClockOut != nil {
			lastOut = last.ClockOut.Unix()
		}
	}

	return fmt.Sprintf(`W/"%s.%d.%d.%d.%d"`, employeeID, len(events), open, lastIn, lastOut)
}

// profileETag digests the fields /api/me exposes.
func profileETag(e employee.Employee) string {
	sum := sha256.Sum256([]byte(e.ID + "\x00" + e.Name + "\x00" + e.Email + "\x00" + e.DOB))
	return `W/"` + e.ID + "." + hex.EncodeToString(sum[:8]) + `"`
}

func clientHasVersion(ifNoneMatch, etag string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}

	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}
