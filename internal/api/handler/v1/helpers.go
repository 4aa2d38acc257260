package v1

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/response"
	"github.com/trinitydb/impossible-trinity/internal/api/middleware"
	"github.com/trinitydb/impossible-trinity/internal/domain"
)

// render adds the current user and the pending flash to data. A "Flash" key
// already present in data wins over the cookie.
func render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = currentActor(ctx)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = response.PopFlash(ctx)
	}

	ctx.HTML(status, name, data)
}

func currentActor(ctx *gin.Context) domain.Actor {
	return middleware.Actor(ctx)
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

// queryInt returns def when key is absent or not a number.
func queryInt(ctx *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return def
	}

	return v
}

// safeNext only accepts local absolute paths as post-login targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}

	return next
}

func detailURL(id uint) string {
	return "/detail/" + strconv.FormatUint(uint64(id), 10)
}
