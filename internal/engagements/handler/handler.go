// Package handler exposes the engagements HTTP API.
package handler

import (
	"net/http"

	"clientdesk_backend/internal/engagements/domain"
	"clientdesk_backend/internal/engagements/service"
	"clientdesk_backend/internal/engagements/transport"
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

	rg.POST("/:id/complete-onboarding", h.CompleteOnboarding)
	rg.POST("/:id/terminate", h.Terminate)
	rg.POST("/:id/reactivate", h.Reactivate)
	rg.PUT("/:id/relationship", h.SetRelationship)
	rg.PUT("/:id/status", h.SetInternalStatus)

	rg.POST("/:id/cycles/close", h.CloseCycle)
	rg.PUT("/:id/recurring", h.UpdateRecurringSettings)
	rg.POST("/:id/cycles/items/:itemId/toggle", h.ToggleCycleItem)

	rg.POST("/:id/onboarding-items", h.AddOnboardingItem)
	rg.POST("/:id/onboarding-items/:itemId/toggle", h.ToggleOnboardingItem)
	rg.DELETE("/:id/onboarding-items/:itemId", h.RemoveOnboardingItem)

	rg.POST("/:id/projects", h.AddProject)
	rg.PUT("/:id/projects/:projectId/status", h.SetProjectStatus)
	rg.POST("/:id/projects/:projectId/billed", h.MarkProjectBilled)
	rg.POST("/:id/projects/:projectId/items", h.AddProjectItem)
	rg.POST("/:id/projects/:projectId/items/:itemId/toggle", h.ToggleProjectItem)

	rg.POST("/:id/deliverables", h.AddDeliverable)
	rg.POST("/:id/deliverables/:deliverableId/increment", h.IncrementDeliverable)
	rg.DELETE("/:id/deliverables/:deliverableId", h.RemoveDeliverable)

	rg.POST("/:id/renegotiate", h.Renegotiate)
	rg.POST("/:id/transactions", h.RecordTransaction)
	rg.PATCH("/:id/financials", h.SetFinancials)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponses(items))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	eng, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateEngagementRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.CreateOnboarding(c.Request.Context(), req.Name, domain.Contact{
		Name:   req.Contact.Name,
		Phone:  req.Contact.Phone,
		Email:  req.Contact.Email,
		Social: req.Contact.Social,
	}, req.Checklist)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToEngagementResponse(eng))
}

func (h *Handler) CompleteOnboarding(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.CompleteOnboardingRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.CompleteOnboarding(c.Request.Context(), id, domain.RelationshipType(req.RelationshipType), req.Force)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) Terminate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.TerminateRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.Terminate(c.Request.Context(), id, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) Reactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	eng, err := h.svc.Reactivate(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) SetRelationship(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.SetRelationshipRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.SetRelationshipType(c.Request.Context(), id, domain.RelationshipType(req.RelationshipType))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) SetInternalStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.SetInternalStatusRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.SetInternalStatus(c.Request.Context(), id, domain.InternalStatus(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) CloseCycle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.CloseCycle(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.CloseCycleResponse{
		Engagement: transport.ToEngagementResponse(result.Engagement),
		Closed:     transport.ToCycleResponse(result.Closed),
		Opened:     transport.ToCycleResponse(result.Opened),
	})
}

func (h *Handler) UpdateRecurringSettings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.RecurringSettingsRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.UpdateRecurringSettings(c.Request.Context(), id, domain.RecurringSettings{
		ServiceType:      req.ServiceType,
		Scope:            req.Scope,
		BillingDay:       req.BillingDay,
		DefaultChecklist: req.DefaultChecklist,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) AddOnboardingItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.ChecklistItemRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.AddOnboardingItem(c.Request.Context(), id, req.Text)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToEngagementResponse(eng))
}

func (h *Handler) ToggleOnboardingItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	var req transport.ToggleItemRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.ToggleOnboardingItem(c.Request.Context(), id, itemID, req.Done)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) RemoveOnboardingItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	eng, err := h.svc.RemoveOnboardingItem(c.Request.Context(), id, itemID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) ToggleCycleItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	var req transport.ToggleItemRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.ToggleCycleItem(c.Request.Context(), id, itemID, req.Done)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) AddProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.AddProjectRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.AddProject(c.Request.Context(), id, req.Title, req.Value, req.DueAt)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToEngagementResponse(eng))
}

func (h *Handler) SetProjectStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}
	var req transport.SetProjectStatusRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.SetProjectStatus(c.Request.Context(), id, projectID, domain.ProjectStatus(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) MarkProjectBilled(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}
	eng, err := h.svc.MarkProjectBilled(c.Request.Context(), id, projectID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) AddProjectItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}
	var req transport.ChecklistItemRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.AddProjectItem(c.Request.Context(), id, projectID, req.Text)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToEngagementResponse(eng))
}

func (h *Handler) ToggleProjectItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	var req transport.ToggleItemRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.ToggleProjectItem(c.Request.Context(), id, projectID, itemID, req.Done)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) AddDeliverable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.AddDeliverableRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.AddDeliverable(c.Request.Context(), id, req.ContainerID, req.Name, req.Category, req.Goal)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToEngagementResponse(eng))
}

func (h *Handler) IncrementDeliverable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	deliverableID, ok := pathID(c, "deliverableId")
	if !ok {
		return
	}
	var req transport.IncrementDeliverableRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.IncrementDeliverable(c.Request.Context(), id, req.ContainerID, deliverableID, req.Delta)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) RemoveDeliverable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	deliverableID, ok := pathID(c, "deliverableId")
	if !ok {
		return
	}
	containerID, err := uuid.Parse(c.Query("containerId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "containerId query parameter is required", nil)
		return
	}

	eng, err := h.svc.RemoveDeliverable(c.Request.Context(), id, containerID, deliverableID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) Renegotiate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.RenegotiateRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.Renegotiate(c.Request.Context(), id, req.Value, req.StartAt, req.EndAt, req.Note)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

func (h *Handler) RecordTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.RecordTransactionRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.RecordTransaction(c.Request.Context(), id, req.Amount, req.Note)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToEngagementResponse(eng))
}

func (h *Handler) SetFinancials(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transport.FinancialsRequest
	if !h.bind(c, &req) {
		return
	}

	eng, err := h.svc.SetFinancials(c.Request.Context(), id, service.FinancialsInput{
		CAC:        req.CAC,
		LTVManual:  req.LTVManual,
		LTVDerived: req.LTVDerived,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToEngagementResponse(eng))
}

// bind decodes and validates the JSON body, writing the error response itself.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
