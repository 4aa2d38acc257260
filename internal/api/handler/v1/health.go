package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/response"
)

// HandleHealthcheck godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200      {object}   response.HealthResponse
// @Router       /healthz [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}
