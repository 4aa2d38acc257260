package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/request"
	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/response"
	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/service"
)

type CommentService interface {
	AddComment(ctx context.Context, trinityID uint, content string, actor domain.Actor) (domain.Comment, error)
	DeleteComment(ctx context.Context, commentID uint, actor domain.Actor) (domain.Comment, error)
}

type CommentHandler struct {
	svc CommentService
}

func NewCommentHandler(svc CommentService) *CommentHandler {
	return &CommentHandler{
		svc: svc,
	}
}

func (h *CommentHandler) HandleAddComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		response.RenderErr(ctx, response.ErrNotFound("impossible trinity", "ID", ctx.Param("id")))
		return
	}

	var req request.CommentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if _, err := h.svc.AddComment(ctx.Request.Context(), id, req.Content, currentActor(ctx)); err != nil {
		switch {
		case errors.Is(err, service.ErrTrinityNotFound):
			response.RenderErr(ctx, response.ErrNotFound("impossible trinity", "ID", id))
		case errors.Is(err, service.ErrEmptyContent):
			response.Redirect(ctx, detailURL(id), response.Failure(response.MsgEmptyComment))
		case errors.Is(err, service.ErrPermissionDenied):
			response.Redirect(ctx, "/login", response.Info(response.MsgLoginRequired))
		default:
			err = fmt.Errorf("v1.HandleAddComment -> h.svc.AddComment -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Redirect(ctx, detailURL(id), response.Success(response.MsgCommentAdded))
}

func (h *CommentHandler) HandleDeleteComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		response.RenderErr(ctx, response.ErrNotFound("comment", "ID", ctx.Param("id")))
		return
	}

	comment, err := h.svc.DeleteComment(ctx.Request.Context(), id, currentActor(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("comment", "ID", id))
		case errors.Is(err, service.ErrPermissionDenied):
			response.Redirect(ctx, detailURL(comment.TrinityID), response.Failure(response.MsgAdminRequired))
		default:
			err = fmt.Errorf("v1.HandleDeleteComment -> h.svc.DeleteComment -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Redirect(ctx, detailURL(comment.TrinityID), response.Success(response.MsgCommentDeleted))
}
