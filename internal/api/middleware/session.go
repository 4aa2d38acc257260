package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/response"
	"github.com/trinitydb/impossible-trinity/internal/config"
	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/pkg/jwthelper"
)

const (
	SessionCookie = "session"
	actorKey      = "actor"
)

type SessionUserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type Authenticator struct {
	conf *config.APIConfig
	svc  SessionUserService
}

func NewAuthenticator(conf *config.APIConfig, svc SessionUserService) *Authenticator {
	return &Authenticator{
		conf: conf,
		svc:  svc,
	}
}

// LoadSession resolves the session cookie into an Actor. A missing or
// invalid session leaves the anonymous actor in place; it never aborts.
func (a *Authenticator) LoadSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		SetActor(ctx, domain.Actor{})

		token, err := ctx.Cookie(SessionCookie)
		if err != nil || token == "" {
			ctx.Next()
			return
		}

		user, err := a.resolve(ctx, token)
		if err != nil {
			zap.L().Debug("dropping session", zap.Error(err))
			ClearSessionCookie(ctx, a.conf)
			ctx.Next()
			return
		}

		SetActor(ctx, domain.NewActor(user))
		ctx.Next()
	}
}

func (a *Authenticator) resolve(ctx *gin.Context, token string) (domain.User, error) {
	claims, err := jwthelper.ParseToken([]byte(a.conf.SessionSigningKey), token)
	if err != nil {
		return domain.User{}, err
	}
	if claims.UserAgent != ctx.Request.UserAgent() {
		return domain.User{}, jwthelper.ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return domain.User{}, err
	}

	return a.svc.GetUser(ctx.Request.Context(), userID)
}

// RequireLogin sends anonymous visitors to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !Actor(ctx).Authenticated() {
			redirectToLogin(ctx)
			return
		}

		ctx.Next()
	}
}

// RequireLoginJSON answers 401 to anonymous callers of JSON endpoints.
func RequireLoginJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !Actor(ctx).Authenticated() {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   response.MsgLoginRequired,
			})
			return
		}

		ctx.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor := Actor(ctx)
		if !actor.Authenticated() {
			redirectToLogin(ctx)
			return
		}
		if !actor.IsAdmin {
			response.Redirect(ctx, "/", response.Failure(response.MsgAdminRequired))
			return
		}

		ctx.Next()
	}
}

func Actor(ctx *gin.Context) domain.Actor {
	if v, ok := ctx.Get(actorKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}

	return domain.Actor{}
}

func SetActor(ctx *gin.Context, actor domain.Actor) {
	ctx.Set(actorKey, actor)
}

func SetSessionCookie(ctx *gin.Context, conf *config.APIConfig, token string) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, token, int(conf.SessionTTL.Seconds()), "/", "", conf.SecureCookies, true)
}

func ClearSessionCookie(ctx *gin.Context, conf *config.APIConfig) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, "", -1, "/", "", conf.SecureCookies, true)
}

// redirectToLogin keeps the current page as the post-login target for GET
// requests.
func redirectToLogin(ctx *gin.Context) {
	location := "/login"
	if ctx.Request.Method == http.MethodGet {
		location += "?next=" + url.QueryEscape(ctx.Request.URL.RequestURI())
	}

	response.Redirect(ctx, location, response.Info(response.MsgLoginRequired))
}
