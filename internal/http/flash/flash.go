// Package flash carries one-shot notices across a redirect in a cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CookieName = "flash"
	pendingKey = "flash.pending"
	maxAge     = 300
	maxPending = 10
)

// Add queues a notice for the next page render.
func Add(ctx *gin.Context, msg string) {
	msgs := pending(ctx)
	if len(msgs) >= maxPending {
		msgs = msgs[1:]
	}
	msgs = append(msgs, msg)
	ctx.Set(pendingKey, msgs)

	write(ctx, msgs, maxAge)
}

// Now shows a notice on the page this request renders, without a cookie.
func Now(ctx *gin.Context, msg string) {
	ctx.Set(pendingKey, append(pending(ctx), msg))
}

// Pop returns the queued notices and clears them.
func Pop(ctx *gin.Context) []string {
	msgs := pending(ctx)
	ctx.Set(pendingKey, []string(nil))

	if len(msgs) > 0 {
		write(ctx, nil, -1)
	}
	return msgs
}

// pending is what the request carried plus what this request added so far.
func pending(ctx *gin.Context) []string {
	if v, ok := ctx.Get(pendingKey); ok {
		msgs, _ := v.([]string)
		return msgs
	}

	msgs := decode(ctx)
	ctx.Set(pendingKey, msgs)
	return msgs
}

func decode(ctx *gin.Context) []string {
	raw, err := ctx.Cookie(CookieName)
	if err != nil || raw == "" {
		return nil
	}

	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}

	var msgs []string
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil
	}
	return msgs
}

func write(ctx *gin.Context, msgs []string, age int) {
	value := ""
	if len(msgs) > 0 {
		b, err := json.Marshal(msgs)
		if err != nil {
			return
		}
		value = base64.RawURLEncoding.EncodeToString(b)
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   age,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
