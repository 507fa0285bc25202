// Package handler exposes the opportunities HTTP API.
package handler

import (
	"net/http"

	"clientdesk_backend/internal/opportunities/domain"
	"clientdesk_backend/internal/opportunities/service"
	"clientdesk_backend/internal/opportunities/transport"
	"clientdesk_backend/platform/httpkit"
	"clientdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.POST("/:id/transition", h.Transition)
	rg.POST("/:id/comments", h.AddComment)
	rg.POST("/:id/duplicate", h.Duplicate)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToOpportunityResponses(items))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	opp, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToOpportunityResponse(opp))
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	in := domain.Opportunity{
		Title: req.Title,
		Value: req.Value,
		Contact: domain.Contact{
			Name:   req.Contact.Name,
			Phone:  req.Contact.Phone,
			Email:  req.Contact.Email,
			Social: req.Contact.Social,
		},
		TargetCloseAt: req.TargetCloseAt,
		ChannelID:     req.ChannelID,
		ServiceTypeID: req.ServiceTypeID,
	}
	if req.Priority != nil {
		in.Priority = domain.Priority(*req.Priority)
	}
	if req.StageKey != nil {
		in.StageKey = *req.StageKey
	}
	if req.Probability != nil {
		in.Probability = *req.Probability
	}

	opp, err := h.svc.Create(c.Request.Context(), in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToOpportunityResponse(opp))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	opp, err := h.svc.Update(c.Request.Context(), id, func(o *domain.Opportunity) {
		if req.Title != nil {
			o.Title = *req.Title
		}
		if req.Value != nil {
			o.Value = *req.Value
		}
		if req.Priority != nil {
			o.Priority = domain.Priority(*req.Priority)
		}
		if req.Probability != nil {
			o.Probability = *req.Probability
		}
		if req.TargetCloseAt != nil {
			o.TargetCloseAt = req.TargetCloseAt
		}
		if req.Contact != nil {
			o.Contact = domain.Contact{
				Name:   req.Contact.Name,
				Phone:  req.Contact.Phone,
				Email:  req.Contact.Email,
				Social: req.Contact.Social,
			}
		}
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToOpportunityResponse(opp))
}

func (h *Handler) Transition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.StageKey == "" && req.Direction != "next" {
		httpkit.Error(c, http.StatusBadRequest, "either stageKey or direction=next is required", nil)
		return
	}

	target := domain.TransitionTarget{StageKey: req.StageKey, Next: req.Direction == "next"}
	result, err := h.svc.Transition(c.Request.Context(), id, target)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.TransitionResponse{
		Opportunity:       transport.ToOpportunityResponse(result.Opportunity),
		Changed:           result.Changed,
		EngagementID:      result.EngagementID,
		AutomationWarning: result.AutomationWarning,
	})
}

func (h *Handler) AddComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	opp, err := h.svc.AddComment(c.Request.Context(), id, identity.UserID(), req.Text)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToOpportunityResponse(opp))
}

func (h *Handler) Duplicate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	opp, err := h.svc.Duplicate(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToOpportunityResponse(opp))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid opportunity id", nil)
		return uuid.Nil, false
	}
	return id, true
}
