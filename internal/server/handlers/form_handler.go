package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/wastage/internal/domain/models"
	"github.com/mamadbah2/wastage/internal/service/wastage"
)

// FormService describes the form events the HTTP layer can trigger.
type FormService interface {
	Snapshot() wastage.Snapshot
	Subscribe() (<-chan wastage.Snapshot, func())
	SetStore(code string) (wastage.Snapshot, error)
	SetEmployee(name string) (wastage.Snapshot, error)
	SetComment(comment string) (wastage.Snapshot, error)
	SetQuantity(item, raw string) (wastage.Snapshot, error)
	QuickReset(item string) (wastage.Snapshot, error)
	AddCustomItem(name string, remaining int) (wastage.Snapshot, error)
	RemoveCustomItem(name string) (wastage.Snapshot, error)
	StartEdit(name string) (wastage.Snapshot, error)
	SaveEdit(name string, remaining int) (wastage.Snapshot, error)
	CancelEdit() (wastage.Snapshot, error)
	StartReset() (wastage.Snapshot, error)
	CancelReset() (wastage.Snapshot, error)
	ConfirmReset() (wastage.Snapshot, error)
	Submit(ctx context.Context) (wastage.Snapshot, error)
}

// FormHandler adapts form events to HTTP endpoints.
type FormHandler struct {
	svc    FormService
	logger *zap.Logger
}

// NewFormHandler constructs the HTTP handler adapter.
func NewFormHandler(svc FormService, logger *zap.Logger) *FormHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormHandler{svc: svc, logger: logger}
}

type valueRequest struct {
	Value json.RawMessage `json:"value"`
}

type customItemRequest struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

type editRequest struct {
	Name string `json:"name"`
}

// Catalog lists the stores, employees and standard items offered by the form.
func (h *FormHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, models.DefaultCatalog())
}

// Get returns the current form snapshot.
func (h *FormHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"form": h.svc.Snapshot()})
}

// Events streams form snapshots as server-sent events until the client disconnects.
func (h *FormHandler) Events(c *gin.Context) {
	updates, cancel := h.svc.Subscribe()
	defer cancel()

	c.SSEvent("snapshot", h.svc.Snapshot())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		}
	})
}

// SetStore handles PUT /form/store.
func (h *FormHandler) SetStore(c *gin.Context) {
	value, ok := h.bindValue(c)
	if !ok {
		return
	}
	snap, err := h.svc.SetStore(value)
	h.respond(c, snap, err)
}

// SetEmployee handles PUT /form/employee.
func (h *FormHandler) SetEmployee(c *gin.Context) {
	value, ok := h.bindValue(c)
	if !ok {
		return
	}
	snap, err := h.svc.SetEmployee(value)
	h.respond(c, snap, err)
}

// SetComment handles PUT /form/comment.
func (h *FormHandler) SetComment(c *gin.Context) {
	value, ok := h.bindValue(c)
	if !ok {
		return
	}
	snap, err := h.svc.SetComment(value)
	h.respond(c, snap, err)
}

// SetQuantity handles PUT /form/quantities/*item.
func (h *FormHandler) SetQuantity(c *gin.Context) {
	value, ok := h.bindValue(c)
	if !ok {
		return
	}
	snap, err := h.svc.SetQuantity(wildcardParam(c, "item"), value)
	h.respond(c, snap, err)
}

// QuickReset handles DELETE /form/quantities/*item.
func (h *FormHandler) QuickReset(c *gin.Context) {
	snap, err := h.svc.QuickReset(wildcardParam(c, "item"))
	h.respond(c, snap, err)
}

// AddCustomItem handles POST /form/custom-items.
func (h *FormHandler) AddCustomItem(c *gin.Context) {
	var req customItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	snap, err := h.svc.AddCustomItem(req.Name, req.Remaining)
	h.respond(c, snap, err)
}

// RemoveCustomItem handles DELETE /form/custom-items/*name.
func (h *FormHandler) RemoveCustomItem(c *gin.Context) {
	snap, err := h.svc.RemoveCustomItem(wildcardParam(c, "name"))
	h.respond(c, snap, err)
}

// StartEdit handles POST /form/edit.
func (h *FormHandler) StartEdit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	snap, err := h.svc.StartEdit(req.Name)
	h.respond(c, snap, err)
}

// SaveEdit handles PUT /form/edit.
func (h *FormHandler) SaveEdit(c *gin.Context) {
	var req customItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	snap, err := h.svc.SaveEdit(req.Name, req.Remaining)
	h.respond(c, snap, err)
}

// CancelEdit handles DELETE /form/edit.
func (h *FormHandler) CancelEdit(c *gin.Context) {
	snap, err := h.svc.CancelEdit()
	h.respond(c, snap, err)
}

// StartReset handles POST /form/reset.
func (h *FormHandler) StartReset(c *gin.Context) {
	snap, err := h.svc.StartReset()
	h.respond(c, snap, err)
}

// ConfirmReset handles POST /form/reset/confirm.
func (h *FormHandler) ConfirmReset(c *gin.Context) {
	snap, err := h.svc.ConfirmReset()
	h.respond(c, snap, err)
}

// CancelReset handles POST /form/reset/cancel.
func (h *FormHandler) CancelReset(c *gin.Context) {
	snap, err := h.svc.CancelReset()
	h.respond(c, snap, err)
}

// Submit handles POST /form/submit.
func (h *FormHandler) Submit(c *gin.Context) {
	snap, err := h.svc.Submit(c.Request.Context())
	h.respond(c, snap, err)
}

func (h *FormHandler) respond(c *gin.Context, snap wastage.Snapshot, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"form": snap})
		return
	}

	status := http.StatusBadGateway
	switch {
	case wastage.IsValidation(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, wastage.ErrUnknownItem):
		status = http.StatusNotFound
	case errors.Is(err, wastage.ErrInputsLocked),
		errors.Is(err, wastage.ErrSubmissionInFlight),
		errors.Is(err, wastage.ErrNotEditing),
		errors.Is(err, wastage.ErrNoResetPending):
		status = http.StatusConflict
	default:
		h.logger.Warn("form event failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	c.JSON(status, gin.H{"error": err.Error(), "form": snap})
}

func (h *FormHandler) bindValue(c *gin.Context) (string, bool) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return "", false
	}
	return rawValue(req.Value), true
}

func (h *FormHandler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("invalid form request", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// rawValue accepts both JSON strings and bare literals, so {"value": 3} and
// {"value": "3"} reach the form identically.
func rawValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

func wildcardParam(c *gin.Context, name string) string {
	return strings.TrimPrefix(c.Param(name), "/")
}
