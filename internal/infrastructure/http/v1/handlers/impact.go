package handlers

import (
	"github.com/gin-gonic/gin"

	"infinito/internal/domain/impact"
	"infinito/internal/infrastructure/http/v1/dto"
)

// ImpactHandler exposes the environmental impact calculator.
type ImpactHandler struct {
	*BaseHandler
	calc *impact.Calculator
}

// NewImpactHandler creates an impact handler.
func NewImpactHandler(base *BaseHandler, calc *impact.Calculator) *ImpactHandler {
	return &ImpactHandler{BaseHandler: base, calc: calc}
}

// Calculate estimates CO2 and water saved.
// POST /api/v1/impact/calculate
func (h *ImpactHandler) Calculate(c *gin.Context) {
	var req dto.ImpactRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.calc.Calculate(req.Material, req.WeightKg)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Factors lists the per-material factor table.
// GET /api/v1/impact/factors
func (h *ImpactHandler) Factors(c *gin.Context) {
	out := make(map[string]impact.Factor)
	for _, m := range h.calc.Materials() {
		_, f := h.calc.FactorFor(m)
		out[m] = f
	}
	h.OK(c, out)
}
