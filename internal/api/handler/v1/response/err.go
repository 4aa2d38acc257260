package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	Err        error  `json:"-"`
	StatusCode int    `json:"-"`
	StatusText string `json:"status"`
	ErrorMsg   string `json:"error,omitempty"`
}

func (e *Err) Error() string {
	return e.Err.Error()
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusBadRequest,
		StatusText: http.StatusText(http.StatusBadRequest),
		ErrorMsg:   err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	err := fmt.Errorf("%s with %s %v not found", resource, key, value)

	return &Err{
		Err:        err,
		StatusCode: http.StatusNotFound,
		StatusText: http.StatusText(http.StatusNotFound),
		ErrorMsg:   err.Error(),
	}
}

// ErrInternalServerError hides the cause from the client. The cause is
// logged by RenderErr.
func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusInternalServerError,
		StatusText: http.StatusText(http.StatusInternalServerError),
	}
}

// RenderErr renders the error page for browser routes.
func RenderErr(ctx *gin.Context, e *Err) {
	logErr(ctx, e)

	ctx.HTML(e.StatusCode, "error.html", gin.H{
		"Title":   e.StatusText,
		"Status":  e.StatusCode,
		"Message": e.ErrorMsg,
	})
	ctx.Abort()
}

// RenderJSONErr is RenderErr for JSON endpoints.
func RenderJSONErr(ctx *gin.Context, e *Err) {
	logErr(ctx, e)

	ctx.AbortWithStatusJSON(e.StatusCode, e)
}

func logErr(ctx *gin.Context, e *Err) {
	if e.StatusCode < http.StatusInternalServerError {
		return
	}

	zap.L().Error("request failed",
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.Request.URL.Path),
		zap.Int("status", e.StatusCode),
		zap.Error(e.Err),
	)
}
