package handlers

import (
	"github.com/gin-gonic/gin"

	"infinito/internal/domain/contribution"
	"infinito/internal/infrastructure/export"
	"infinito/internal/infrastructure/http/v1/dto"
)

// ContributionHandler serves /api/v1/contributions.
type ContributionHandler struct {
	*BaseHandler
	service  *contribution.Service
	exporter *export.Exporter
}

// NewContributionHandler creates a contribution handler.
func NewContributionHandler(base *BaseHandler, service *contribution.Service, exporter *export.Exporter) *ContributionHandler {
	return &ContributionHandler{BaseHandler: base, service: service, exporter: exporter}
}

// List runs the filter engine over all contributions.
// GET /api/v1/contributions
func (h *ContributionHandler) List(c *gin.Context) {
	spec, ok := h.FilterSpec(c)
	if !ok {
		return
	}
	res, err := h.service.List(c.Request.Context(), spec)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Get returns one contribution by id or tracking code.
// GET /api/v1/contributions/:id
func (h *ContributionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Param("id"); isCode(raw) {
		rec, err := h.service.GetByCode(ctx, raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, rec)
		return
	}

	recID, ok := h.ParseID(c)
	if !ok {
		return
	}
	rec, err := h.service.GetByID(ctx, recID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Create registers a new contribution.
// POST /api/v1/contributions
func (h *ContributionHandler) Create(c *gin.Context) {
	var req dto.CreateContributionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), rec); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// Classify sets classification, destination and decision.
// POST /api/v1/contributions/:id/classify
func (h *ContributionHandler) Classify(c *gin.Context) {
	recID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.ClassifyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec, err := h.service.Classify(c.Request.Context(), recID,
		contribution.Classification(req.Classification),
		contribution.Destination(req.Destination),
		contribution.Decision(req.Decision),
	)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Transition moves a contribution to another tracking state.
// POST /api/v1/contributions/:id/transition
func (h *ContributionHandler) Transition(c *gin.Context) {
	recID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec, err := h.service.Transition(c.Request.Context(), recID, contribution.State(req.To), req.CertificateID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Export downloads the filtered contributions.
// GET /api/v1/contributions/export?format=csv|pdf|csv.zst
func (h *ContributionHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.Error(c, err)
		return
	}
	spec, ok := h.FilterSpec(c)
	if !ok {
		return
	}
	res, err := h.service.List(c.Request.Context(), spec)
	if err != nil {
		h.Error(c, err)
		return
	}
	file, err := h.exporter.Render(format, export.ContributionTable(res.Kept), "INFINITO contributions")
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Attachment(c, file)
}
