package response

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "flash"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is the outcome of a form submission, shown once on the page the
// browser is redirected to.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

func Success(message string) Flash {
	return Flash{Kind: FlashSuccess, Message: message}
}

func Failure(message string) Flash {
	return Flash{Kind: FlashError, Message: message}
}

func Info(message string) Flash {
	return Flash{Kind: FlashInfo, Message: message}
}

// Redirect stores f in a short-lived cookie and answers 303 See Other.
func Redirect(ctx *gin.Context, location string, f Flash) {
	SetFlash(ctx, f)
	ctx.Redirect(http.StatusSeeOther, location)
	ctx.Abort()
}

func SetFlash(ctx *gin.Context, f Flash) {
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", false, true)
}

// PopFlash returns the pending flash, if any, and clears it.
func PopFlash(ctx *gin.Context) *Flash {
	value, err := ctx.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(flashCookie, "", -1, "/", "", false, true)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}

	var f Flash
	if err = json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}

	return &f
}
