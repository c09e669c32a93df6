package handlers

import (
	"github.com/gin-gonic/gin"

	"infinito/internal/domain/product"
	"infinito/internal/infrastructure/export"
	"infinito/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves /api/v1/products.
type ProductHandler struct {
	*BaseHandler
	service  *product.Service
	exporter *export.Exporter
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service, exporter *export.Exporter) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service, exporter: exporter}
}

// List runs the filter engine over all products.
// GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
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

// Get returns one product by id or SKU.
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
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

// Create adds a standalone listing.
// POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
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

// Publish lists a verified contribution destined for sale.
// POST /api/v1/products/publish
func (h *ProductHandler) Publish(c *gin.Context) {
	var req dto.PublishRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rec, err := h.service.PublishFromContribution(c.Request.Context(), req.ContributionID, req.ToDraft())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// Export downloads the filtered products.
// GET /api/v1/products/export?format=csv|pdf|csv.zst
func (h *ProductHandler) Export(c *gin.Context) {
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
	file, err := h.exporter.Render(format, export.ProductTable(res.Kept), "INFINITO marketplace")
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Attachment(c, file)
}
