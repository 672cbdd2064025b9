package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plantline/opsconsole/internal/application/service"
	"github.com/plantline/opsconsole/internal/domain/shift"
	"github.com/plantline/opsconsole/internal/domain/wizard"
	"github.com/plantline/opsconsole/internal/domain/workflow"
	"github.com/plantline/opsconsole/pkg/utils"
)

// HealthFunc reports overall component health for the health endpoint.
// The detail value is serialized into the response as-is.
type HealthFunc func() (healthy bool, detail interface{})

// Handlers contains all HTTP request handlers
type Handlers struct {
	workflowService service.WorkflowConfigService
	shiftService    service.ShiftService
	health          HealthFunc
	logger          Logger
}

// NewHandlers creates a new Handlers instance. health may be nil, in which
// case the health endpoint reports only liveness.
func NewHandlers(
	workflowService service.WorkflowConfigService,
	shiftService service.ShiftService,
	health HealthFunc,
	logger Logger,
) *Handlers {
	return &Handlers{
		workflowService: workflowService,
		shiftService:    shiftService,
		health:          health,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// ConfigResponse represents a workflow config in API responses, with the
// graph fields flattened to the wire names the designer UI expects
type ConfigResponse struct {
	ClientID         string                   `json:"client_id"`
	Statuses         []workflow.Status        `json:"workflow_statuses"`
	OptionalStatuses []workflow.Status        `json:"workflow_optional_statuses"`
	Transitions      workflow.TransitionTable `json:"workflow_transitions"`
	ClosureTrigger   workflow.ClosureTrigger  `json:"workflow_closure_trigger"`
	Version          int64                    `json:"workflow_version"`
	IsDefault        bool                     `json:"is_default"`
	UpdatedAt        string                   `json:"updated_at,omitempty"`
}

func newConfigResponse(config *workflow.WorkflowConfig) ConfigResponse {
	resp := ConfigResponse{
		ClientID:         config.ClientID,
		Statuses:         config.Graph.Statuses,
		OptionalStatuses: config.Graph.OptionalStatuses,
		Transitions:      config.Graph.Transitions,
		ClosureTrigger:   config.Graph.ClosureTrigger,
		Version:          config.Version,
		IsDefault:        config.IsDefault,
	}
	if !config.UpdatedAt.IsZero() {
		resp.UpdatedAt = config.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// SaveConfigRequest is the full-replace save body. The caller must submit
// the complete graph every time; there are no merge/patch semantics.
// ExpectedVersion, when set, requests a compare-and-swap save.
type SaveConfigRequest struct {
	workflow.Graph
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// StartShiftRequest is the start-shift body
type StartShiftRequest struct {
	ShiftNumber int    `json:"shift_number"`
	Supervisor  string `json:"supervisor"`
}

// HealthCheck handles GET /health. With a HealthFunc wired in, an
// unhealthy component turns the response into a 503.
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}
	status := http.StatusOK

	if h.health != nil {
		healthy, detail := h.health()
		response.Components = detail
		if !healthy {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// GetWorkflowConfig handles GET /client-config/workflow/:clientId
func (h *Handlers) GetWorkflowConfig(c *gin.Context) {
	clientID := c.Param("clientId")
	if err := utils.ValidateClientID(clientID); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	config, err := h.workflowService.LoadConfig(c.Request.Context(), clientID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: newConfigResponse(config)})
}

// SaveWorkflowConfig handles PUT /client-config/workflow/:clientId
func (h *Handlers) SaveWorkflowConfig(c *gin.Context) {
	clientID := c.Param("clientId")
	if err := utils.ValidateClientID(clientID); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	var req SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid save config body", "error", err, "client_id", clientID)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	// universe membership and closure policy are boundary checks; graph
	// consistency is validated inside the save
	if err := validateUniverse(req.Graph); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	config, err := h.workflowService.SaveConfig(c.Request.Context(), clientID, req.Graph, req.ExpectedVersion)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: newConfigResponse(config)})
}

// ResetWorkflowConfig handles DELETE /client-config/workflow/:clientId
func (h *Handlers) ResetWorkflowConfig(c *gin.Context) {
	clientID := c.Param("clientId")
	if err := utils.ValidateClientID(clientID); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.workflowService.ResetToDefault(c.Request.Context(), clientID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ApplyWorkflowTemplate handles POST /client-config/workflow/:clientId/apply-template/:templateId
func (h *Handlers) ApplyWorkflowTemplate(c *gin.Context) {
	clientID := c.Param("clientId")
	if err := utils.ValidateClientID(clientID); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	templateID := c.Param("templateId")

	config, err := h.workflowService.ApplyTemplate(c.Request.Context(), clientID, templateID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: newConfigResponse(config)})
}

// ListWorkflowTemplates handles GET /workflow/templates
func (h *Handlers) ListWorkflowTemplates(c *gin.Context) {
	templates, err := h.workflowService.ListTemplates(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: templates})
}

// StartShift handles POST /shift/start
func (h *Handlers) StartShift(c *gin.Context) {
	var req StartShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	if err := utils.ValidateShiftNumber(req.ShiftNumber); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	if req.Supervisor == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "supervisor is required"})
		return
	}

	started, err := h.shiftService.StartShift(c.Request.Context(), req.ShiftNumber, req.Supervisor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: started})
}

// GetCurrentShift handles GET /shift
func (h *Handlers) GetCurrentShift(c *gin.Context) {
	status, err := h.shiftService.CurrentShift(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: status})
}

// GetWizardSteps handles GET /shift/wizard
func (h *Handlers) GetWizardSteps(c *gin.Context) {
	steps, err := h.shiftService.WizardSteps(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: steps})
}

// ConfirmWizardStep handles POST /shift/steps/:key/confirm
func (h *Handlers) ConfirmWizardStep(c *gin.Context) {
	key := c.Param("key")

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	// a rejected confirm is a gating outcome, not an error: the result is
	// returned with 200 and accepted=false
	result, err := h.shiftService.ConfirmStep(c.Request.Context(), key, payload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ReopenWizardStep handles POST /shift/steps/:key/reopen
func (h *Handlers) ReopenWizardStep(c *gin.Context) {
	key := c.Param("key")

	cascaded, err := h.shiftService.ReopenStep(c.Request.Context(), key)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"cascaded": cascaded}})
}

// GetAccumulator handles GET /shift/accumulator
func (h *Handlers) GetAccumulator(c *gin.Context) {
	snapshot, err := h.shiftService.Accumulator(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: snapshot})
}

// GetShiftHistory handles GET /shift/history
func (h *Handlers) GetShiftHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.shiftService.History(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// EndShift handles POST /shift/end
func (h *Handlers) EndShift(c *gin.Context) {
	closed, err := h.shiftService.EndShift(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: closed})
}

// respondError maps service errors to HTTP responses
func (h *Handlers) respondError(c *gin.Context, err error) {
	if ige, ok := workflow.IsInvalidGraph(err); ok {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid workflow graph",
			Data:    gin.H{"violations": ige.Violations},
		})
		return
	}

	var notReady *service.ShiftNotReadyError
	if errors.As(err, &notReady) {
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error:   notReady.Error(),
			Data:    gin.H{"unmet_keys": notReady.UnmetKeys},
		})
		return
	}

	switch {
	case errors.Is(err, workflow.ErrVersionConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrTemplateNotFound),
		errors.Is(err, wizard.ErrUnknownStep):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, shift.ErrNoActiveShift):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, shift.ErrShiftAlreadyActive),
		errors.Is(err, wizard.ErrStepAlreadyCompleted):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

// validateUniverse rejects graphs referencing statuses outside the catalog
// or an unknown closure policy before they reach the engine
func validateUniverse(g workflow.Graph) error {
	for _, status := range g.Statuses {
		if !status.IsValid() {
			return fmt.Errorf("unknown status %s", status)
		}
	}
	for _, status := range g.OptionalStatuses {
		if !status.IsValid() {
			return fmt.Errorf("unknown optional status %s", status)
		}
	}
	for target, sources := range g.Transitions {
		if !target.IsValid() {
			return fmt.Errorf("unknown transition target %s", target)
		}
		for source := range sources {
			if !source.IsValid() {
				return fmt.Errorf("unknown transition source %s", source)
			}
		}
	}
	if !g.ClosureTrigger.IsValid() {
		return fmt.Errorf("unknown closure trigger %q", g.ClosureTrigger)
	}
	return nil
}
