package voice

import (
	"github.com/gin-gonic/gin"

	"github.com/arogyacare/platform-api/internal/middleware"
	"github.com/arogyacare/platform-api/internal/service/voice"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/httputil"
)

type Handler struct {
	svc *voice.Service
}

func NewHandler(svc *voice.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateSession handles POST /voice/session (authenticated patient).
func (h *Handler) CreateSession(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.InvalidCredentials())
		return
	}

	session, err := h.svc.CreateSession(c.Request.Context(), userID, middleware.CallerRole(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, session)
}
