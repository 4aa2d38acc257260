package v1

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/response"
	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/service"
)

const exportFileLayout = "impossible_trinities_2006-01-02_15-04-05.csv"

type CSVService interface {
	Export(ctx context.Context, w io.Writer, actor domain.Actor) error
	Import(ctx context.Context, r io.Reader, actor domain.Actor) (domain.ImportReport, error)
}

type CSVHandler struct {
	svc CSVService
}

func NewCSVHandler(svc CSVService) *CSVHandler {
	return &CSVHandler{
		svc: svc,
	}
}

// HandleExport godoc
// @Summary      Export all impossible trinities as CSV
// @Tags         admin
// @Produce      text/csv
// @Security     SessionCookie
// @Success      200
// @Failure      500      {object}   response.Err
// @Router       /admin/export [get]
func (h *CSVHandler) HandleExport(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export(ctx.Request.Context(), &buf, currentActor(ctx)); err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			response.Redirect(ctx, "/", response.Failure(response.MsgAdminRequired))
			return
		}

		err = fmt.Errorf("v1.HandleExport -> h.svc.Export -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	filename := time.Now().Format(exportFileLayout)
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// HandleImport reads the multipart "file" field. Any failure other than a
// rejected row ends the import with a generic message.
func (h *CSVHandler) HandleImport(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil || file.Filename == "" {
		response.Redirect(ctx, "/admin", response.Failure(response.MsgNoFileSelected))
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
		response.Redirect(ctx, "/admin", response.Failure(response.MsgNotCSV))
		return
	}

	f, err := file.Open()
	if err != nil {
		zap.L().Error("opening uploaded csv", zap.Error(err))
		response.Redirect(ctx, "/admin", response.Failure(response.MsgImportFailed))
		return
	}
	defer f.Close()

	report, err := h.svc.Import(ctx.Request.Context(), f, currentActor(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.Redirect(ctx, "/", response.Failure(response.MsgAdminRequired))
		case errors.Is(err, service.ErrMalformedCSV):
			zap.L().Warn("rejecting malformed csv", zap.String("filename", file.Filename), zap.Error(err))
			response.Redirect(ctx, "/admin", response.Failure(response.MsgImportFailed))
		default:
			zap.L().Error("csv import failed", zap.String("filename", file.Filename), zap.Error(err))
			response.Redirect(ctx, "/admin", response.Failure(response.MsgImportFailed))
		}
		return
	}

	response.Redirect(ctx, "/admin", response.Success(fmt.Sprintf(response.MsgImportDone, report.Imported, report.Skipped)))
}
