package httpapi

import (
	"browser-automator/internal/entity"
	"browser-automator/internal/usecase/adapters"
	"browser-automator/pkg/apperr"
	"browser-automator/pkg/logg"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	logger     *zap.Logger
	automation adapters.AutomationService
}

func NewHandler(logger *zap.Logger, automation adapters.AutomationService) *Handler {
	return &Handler{
		logger:     logger.With(zap.String(logg.Layer, "HTTPHandler")),
		automation: automation,
	}
}

// Automate runs one prompt and answers with the result envelope. Per-action failures stay
// inside a 200 response; only request-level failures change the status.
func (h *Handler) Automate(c *gin.Context) {
	const op = "Automate"

	var req entity.AutomateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Rejected request body", zap.String(logg.Operation, op), zap.Error(err))
		c.JSON(http.StatusBadRequest, failureEnvelope("invalid request body: "+err.Error()))

		return
	}

	env := h.automation.Automate(c.Request.Context(), req)

	c.JSON(statusFor(env), env)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func statusFor(env *entity.ResultEnvelope) int {
	if env.Success {
		return http.StatusOK
	}

	if env.Code == apperr.CodeInvalidArgument {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
