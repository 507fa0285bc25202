package handler

import (
	"clientdesk_backend/internal/catalog/service"
	"clientdesk_backend/internal/catalog/transport"
	"clientdesk_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stages", h.ListStages)
	rg.GET("/services", h.ListServiceTypes)
	rg.GET("/channels", h.ListChannels)
}

func (h *Handler) ListStages(c *gin.Context) {
	stages, err := h.svc.Stages(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToStageResponses(stages))
}

func (h *Handler) ListServiceTypes(c *gin.Context) {
	services, err := h.svc.ServiceTypes(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToServiceTypeResponses(services))
}

func (h *Handler) ListChannels(c *gin.Context) {
	channels, err := h.svc.Channels(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToChannelResponses(channels))
}
