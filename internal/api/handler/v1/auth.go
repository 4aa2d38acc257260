package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/request"
	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/response"
	"github.com/trinitydb/impossible-trinity/internal/api/middleware"
	"github.com/trinitydb/impossible-trinity/internal/config"
	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/pkg/jwthelper"
	"github.com/trinitydb/impossible-trinity/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (domain.User, error)
	Login(ctx context.Context, username, password string) (domain.User, error)
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

func (h *AuthHandler) HandleRegisterPage(ctx *gin.Context) {
	render(ctx, http.StatusOK, "register.html", gin.H{"Title": "注册"})
}

func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	var req request.RegisterRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		render(ctx, http.StatusBadRequest, "register.html", gin.H{
			"Title":    "注册",
			"Username": req.Username,
			"Error":    err.Error(),
		})
		return
	}

	user, err := h.svc.Register(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			render(ctx, http.StatusConflict, "register.html", gin.H{
				"Title":    "注册",
				"Username": req.Username,
				"Flash":    &response.Flash{Kind: response.FlashError, Message: response.MsgDuplicateUsername},
			})
			return
		}

		err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	zap.L().Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	response.Redirect(ctx, "/login", response.Success(response.MsgRegistered))
}

func (h *AuthHandler) HandleLoginPage(ctx *gin.Context) {
	if currentActor(ctx).Authenticated() {
		ctx.Redirect(http.StatusSeeOther, "/")
		return
	}

	render(ctx, http.StatusOK, "login.html", gin.H{
		"Title": "登录",
		"Next":  safeNext(ctx.Query("next")),
	})
}

func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	next := safeNext(ctx.Query("next"))

	var req request.LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	failed := func(status int) {
		render(ctx, status, "login.html", gin.H{
			"Title":    "登录",
			"Next":     next,
			"Username": req.Username,
			"Flash":    &response.Flash{Kind: response.FlashError, Message: response.MsgInvalidCredentials},
		})
	}

	if err := req.Validate(); err != nil {
		failed(http.StatusBadRequest)
		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			failed(http.StatusUnauthorized)
			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.SessionSigningKey), user.ID, ctx.Request.UserAgent(), h.conf.SessionTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}
	middleware.SetSessionCookie(ctx, h.conf, token)

	if next == "" {
		next = "/"
	}
	response.Redirect(ctx, next, response.Success(response.MsgLoggedIn))
}

func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	middleware.ClearSessionCookie(ctx, h.conf)
	response.Redirect(ctx, "/", response.Info(response.MsgLoggedOut))
}
