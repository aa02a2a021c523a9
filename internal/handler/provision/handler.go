package provision

import (
	"github.com/gin-gonic/gin"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/service/provision"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/httputil"
)

type Handler struct {
	svc *provision.Service
}

func NewHandler(svc *provision.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateHospital handles POST /provision/hospitals.
func (h *Handler) CreateHospital(c *gin.Context) {
	var req model.CreateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err))
		return
	}

	account, err := h.svc.CreateHospital(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, account)
}

// CreateDoctor handles POST /provision/doctors.
func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err))
		return
	}

	account, err := h.svc.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, account)
}
