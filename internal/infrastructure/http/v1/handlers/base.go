// Package handlers provides HTTP request handlers.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"infinito/internal/core/apperror"
	"infinito/internal/core/id"
	"infinito/internal/domain/filter"
	"infinito/internal/infrastructure/export"
	"infinito/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// FilterSpec parses the filter query parameters of the request.
func (h *BaseHandler) FilterSpec(c *gin.Context) (filter.Spec, bool) {
	spec, err := dto.ParseFilterSpec(c.Request.URL.Query())
	if err != nil {
		h.Error(c, err)
		return filter.Spec{}, false
	}
	return spec, true
}

// ParseID reads the :id path parameter.
func (h *BaseHandler) ParseID(c *gin.Context) (id.ID, bool) {
	raw := c.Param("id")
	v, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("id", raw))
		return id.ID{}, false
	}
	return v, true
}

// Error registers err on the gin context and aborts the request.
// The JSON body is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Created sends 201 with the created resource.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Attachment sends an export file as a download.
func (h *BaseHandler) Attachment(c *gin.Context, f export.File) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

// isCode reports whether a path parameter looks like a human code rather than a UUID.
func isCode(raw string) bool {
	_, err := id.Parse(raw)
	return err != nil && strings.Contains(raw, "-") && len(raw) < 36
}
