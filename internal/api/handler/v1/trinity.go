package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/request"
	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/response"
	"github.com/trinitydb/impossible-trinity/internal/config"
	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/service"
)

const (
	viewCard  = "card"
	viewTable = "table"
)

type TrinityService interface {
	List(ctx context.Context, filter domain.TrinityFilter, page, perPage int) (domain.TrinityPage, error)
	Get(ctx context.Context, id uint) (domain.Trinity, error)
	Create(ctx context.Context, trinity domain.Trinity, actor domain.Actor) (domain.Trinity, error)
	Update(ctx context.Context, id uint, trinity domain.Trinity, actor domain.Actor) (domain.Trinity, error)
	Delete(ctx context.Context, id uint, actor domain.Actor) error
	Agree(ctx context.Context, id uint, actor domain.Actor) (int, error)
	ListByCreator(ctx context.Context, actor domain.Actor) ([]domain.Trinity, error)
	ListAll(ctx context.Context, actor domain.Actor) ([]domain.Trinity, error)
	Fields(ctx context.Context) ([]string, error)
}

type TrinityHandler struct {
	conf *config.PaginationConfig
	svc  TrinityService
}

func NewTrinityHandler(conf *config.PaginationConfig, svc TrinityService) *TrinityHandler {
	return &TrinityHandler{
		conf: conf,
		svc:  svc,
	}
}

func (h *TrinityHandler) HandleIndex(ctx *gin.Context) {
	view := ctx.DefaultQuery("view", viewCard)
	perPage := h.conf.CardPerPage
	if view == viewTable {
		perPage = h.conf.TablePerPage
	} else {
		view = viewCard
	}

	filter := domain.TrinityFilter{
		Field:  strings.TrimSpace(ctx.Query("field")),
		Search: strings.TrimSpace(ctx.Query("q")),
	}

	page, err := h.svc.List(ctx.Request.Context(), filter, queryInt(ctx, "page", 1), perPage)
	if err != nil {
		err = fmt.Errorf("v1.HandleIndex -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	fields, err := h.svc.Fields(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleIndex -> h.svc.Fields -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	render(ctx, http.StatusOK, "index.html", gin.H{
		"View":     view,
		"Field":    filter.Field,
		"Query":    filter.Search,
		"Fields":   fields,
		"Page":     page,
		"PrevPage": page.Page - 1,
	})
}

// HandleListAPI godoc
// @Summary      List impossible trinities
// @Description  Newest first. per_page is clamped to the configured maximum.
// @Tags         trinities
// @Produce      json
// @Param        page      query     int     false  "page number, starting at 1"
// @Param        per_page  query     int     false  "items per page"
// @Param        field     query     string  false  "exact field filter"
// @Param        q         query     string  false  "case-insensitive search text"
// @Success      200      {object}   response.TrinityListResponse
// @Failure      500      {object}   response.Err
// @Router       /api/its [get]
func (h *TrinityHandler) HandleListAPI(ctx *gin.Context) {
	perPage := queryInt(ctx, "per_page", h.conf.APIPerPage)
	if perPage < 1 {
		perPage = 1
	}
	if perPage > h.conf.APIMaxPerPage {
		perPage = h.conf.APIMaxPerPage
	}

	filter := domain.TrinityFilter{
		Field:  strings.TrimSpace(ctx.Query("field")),
		Search: strings.TrimSpace(ctx.Query("q")),
	}

	page, err := h.svc.List(ctx.Request.Context(), filter, queryInt(ctx, "page", 1), perPage)
	if err != nil {
		err = fmt.Errorf("v1.HandleListAPI -> h.svc.List -> %w", err)
		response.RenderJSONErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewTrinityListResponse(page))
}

// HandleFieldsAPI godoc
// @Summary      List fields
// @Description  Distinct non-empty fields in ascending order.
// @Tags         trinities
// @Produce      json
// @Success      200      {array}    string
// @Failure      500      {object}   response.Err
// @Router       /api/fields [get]
func (h *TrinityHandler) HandleFieldsAPI(ctx *gin.Context) {
	fields, err := h.svc.Fields(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleFieldsAPI -> h.svc.Fields -> %w", err)
		response.RenderJSONErr(ctx, response.ErrInternalServerError(err))
		return
	}
	if fields == nil {
		fields = []string{}
	}

	ctx.JSON(http.StatusOK, fields)
}

func (h *TrinityHandler) HandleDetail(ctx *gin.Context) {
	trinity, ok := h.load(ctx)
	if !ok {
		return
	}

	render(ctx, http.StatusOK, "detail.html", gin.H{
		"Title":     trinity.Name,
		"Trinity":   trinity,
		"CanModify": currentActor(ctx).CanModify(trinity),
	})
}

func (h *TrinityHandler) HandleAddPage(ctx *gin.Context) {
	nameEn := domain.DefaultNameEn

	renderForm(ctx, http.StatusOK, "添加不可能三角", "/add", request.TrinityRequest{NameEn: &nameEn}, "")
}

func (h *TrinityHandler) HandleAdd(ctx *gin.Context) {
	var req request.TrinityRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		renderForm(ctx, http.StatusBadRequest, "添加不可能三角", "/add", req, err.Error())
		return
	}

	if _, err := h.svc.Create(ctx.Request.Context(), req.ToDomain(), currentActor(ctx)); err != nil {
		err = fmt.Errorf("v1.HandleAdd -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Redirect(ctx, "/", response.Success(response.MsgTrinityCreated))
}

func (h *TrinityHandler) HandleEditPage(ctx *gin.Context) {
	trinity, ok := h.load(ctx)
	if !ok {
		return
	}

	if !currentActor(ctx).CanModify(trinity) {
		response.Redirect(ctx, "/", response.Failure(response.MsgNoEditRight))
		return
	}

	renderForm(ctx, http.StatusOK, "编辑不可能三角", ctx.Request.URL.Path, request.NewTrinityRequestFromDomain(trinity), "")
}

func (h *TrinityHandler) HandleEdit(ctx *gin.Context) {
	trinity, ok := h.load(ctx)
	if !ok {
		return
	}
	id := trinity.ID

	if !currentActor(ctx).CanModify(trinity) {
		response.Redirect(ctx, "/", response.Failure(response.MsgNoEditRight))
		return
	}

	var req request.TrinityRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		renderForm(ctx, http.StatusBadRequest, "编辑不可能三角", ctx.Request.URL.Path, req, err.Error())
		return
	}

	if _, err := h.svc.Update(ctx.Request.Context(), id, req.ToDomain(), currentActor(ctx)); err != nil {
		switch {
		case errors.Is(err, service.ErrTrinityNotFound):
			response.RenderErr(ctx, response.ErrNotFound("impossible trinity", "ID", id))
		case errors.Is(err, service.ErrPermissionDenied):
			response.Redirect(ctx, "/", response.Failure(response.MsgNoEditRight))
		default:
			err = fmt.Errorf("v1.HandleEdit -> h.svc.Update -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Redirect(ctx, detailURL(id), response.Success(response.MsgTrinityUpdated))
}

func (h *TrinityHandler) HandleDelete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		response.RenderErr(ctx, response.ErrNotFound("impossible trinity", "ID", ctx.Param("id")))
		return
	}

	actor := currentActor(ctx)
	if err := h.svc.Delete(ctx.Request.Context(), id, actor); err != nil {
		switch {
		case errors.Is(err, service.ErrTrinityNotFound):
			response.RenderErr(ctx, response.ErrNotFound("impossible trinity", "ID", id))
		case errors.Is(err, service.ErrPermissionDenied):
			response.Redirect(ctx, "/", response.Failure(response.MsgNoDeleteRight))
		default:
			err = fmt.Errorf("v1.HandleDelete -> h.svc.Delete -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	location := "/dashboard"
	if actor.IsAdmin {
		location = "/admin"
	}
	response.Redirect(ctx, location, response.Success(response.MsgTrinityDeleted))
}

// HandleAgree godoc
// @Summary      Agree with an impossible trinity
// @Description  Adds one to the agree counter and returns the new value.
// @Tags         trinities
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      int  true  "impossible trinity ID"
// @Success      200      {object}   response.AgreeResponse
// @Failure      401      {object}   response.AgreeResponse
// @Failure      404      {object}   response.AgreeResponse
// @Failure      500      {object}   response.Err
// @Router       /agree/{id} [post]
func (h *TrinityHandler) HandleAgree(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		ctx.JSON(http.StatusNotFound, response.AgreeResponse{Error: response.MsgTrinityNotFound})
		return
	}

	count, err := h.svc.Agree(ctx.Request.Context(), id, currentActor(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrinityNotFound):
			ctx.JSON(http.StatusNotFound, response.AgreeResponse{Error: response.MsgTrinityNotFound})
		case errors.Is(err, service.ErrPermissionDenied):
			ctx.JSON(http.StatusUnauthorized, response.AgreeResponse{Error: response.MsgLoginRequired})
		default:
			err = fmt.Errorf("v1.HandleAgree -> h.svc.Agree -> %w", err)
			response.RenderJSONErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.AgreeResponse{Success: true, Count: count})
}

func (h *TrinityHandler) HandleDashboard(ctx *gin.Context) {
	actor := currentActor(ctx)
	if actor.IsAdmin {
		ctx.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	trinities, err := h.svc.ListByCreator(ctx.Request.Context(), actor)
	if err != nil {
		err = fmt.Errorf("v1.HandleDashboard -> h.svc.ListByCreator -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	render(ctx, http.StatusOK, "dashboard.html", gin.H{
		"Title":     "我的",
		"Trinities": trinities,
	})
}

func (h *TrinityHandler) HandleAdmin(ctx *gin.Context) {
	trinities, err := h.svc.ListAll(ctx.Request.Context(), currentActor(ctx))
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			response.Redirect(ctx, "/", response.Failure(response.MsgAdminRequired))
			return
		}

		err = fmt.Errorf("v1.HandleAdmin -> h.svc.ListAll -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	render(ctx, http.StatusOK, "admin.html", gin.H{
		"Title":     "管理",
		"Trinities": trinities,
	})
}

// load fetches the entry named by the :id parameter and renders the 404 page
// when it does not exist.
func (h *TrinityHandler) load(ctx *gin.Context) (domain.Trinity, bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		response.RenderErr(ctx, response.ErrNotFound("impossible trinity", "ID", ctx.Param("id")))
		return domain.Trinity{}, false
	}

	trinity, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTrinityNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("impossible trinity", "ID", id))
			return domain.Trinity{}, false
		}

		err = fmt.Errorf("v1.load -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return domain.Trinity{}, false
	}

	return trinity, true
}

func renderForm(ctx *gin.Context, status int, title, action string, form request.TrinityRequest, errMsg string) {
	render(ctx, status, "form.html", gin.H{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Error":  errMsg,
	})
}
