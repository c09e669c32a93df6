// Package impact estimates the environmental savings of reusing garments.
package impact

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"infinito/internal/core/apperror"
)

// MaterialMixed is the fallback for materials without a dedicated factor.
const MaterialMixed = "mixed"

// Factor is the saving per kilogram of reused material.
type Factor struct {
	CO2Kg       decimal.Decimal `json:"co2Kg"`
	WaterLitres decimal.Decimal `json:"waterLitres"`
}

// Impact is the estimated saving for a batch.
type Impact struct {
	Material    string          `json:"material"`
	WeightKg    decimal.Decimal `json:"weightKg"`
	CO2Kg       decimal.Decimal `json:"co2Kg"`
	WaterLitres decimal.Decimal `json:"waterLitres"`
}

func f(co2, water string) Factor {
	return Factor{CO2Kg: decimal.RequireFromString(co2), WaterLitres: decimal.RequireFromString(water)}
}

// factors per kg of material kept out of landfill.
var factors = map[string]Factor{
	"cotton":    f("8.0", "10000"),
	"polyester": f("5.5", "70"),
	"wool":      f("13.9", "500"),
	"denim":     f("10.2", "7500"),
	"linen":     f("4.5", "2500"),
	"silk":      f("14.3", "3000"),
	"nylon":     f("7.3", "60"),
	"leather":   f("17.0", "17000"),
	"acrylic":   f("6.8", "90"),
	"mixed":     f("6.0", "5000"),
}

// matchOrder is the order materials are probed in free text. Sorted for determinism.
var matchOrder = func() []string {
	keys := make([]string, 0, len(factors))
	for k := range factors {
		if k != MaterialMixed {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}()

// Calculator applies the fixed factor table.
type Calculator struct {
	factors map[string]Factor
}

// NewCalculator returns a calculator over the built-in factor table.
func NewCalculator() *Calculator {
	return &Calculator{factors: factors}
}

// Materials lists the materials with a dedicated factor, sorted.
func (c *Calculator) Materials() []string {
	out := make([]string, 0, len(c.factors))
	for m := range c.factors {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// FactorFor returns the factor used for material and the key it resolved to.
func (c *Calculator) FactorFor(material string) (string, Factor) {
	key := normalizeMaterial(material)
	if fac, ok := c.factors[key]; ok {
		return key, fac
	}
	return MaterialMixed, c.factors[MaterialMixed]
}

// Calculate returns weight x factor rounded to 2 decimal places.
// Unknown materials use the mixed factor.
func (c *Calculator) Calculate(material string, weightKg decimal.Decimal) (Impact, error) {
	if weightKg.IsNegative() {
		return Impact{}, apperror.NewValidation("weight must not be negative").
			WithDetail("field", "weightKg").
			WithDetail("value", weightKg.String())
	}

	key, fac := c.FactorFor(material)
	return Impact{
		Material:    key,
		WeightKg:    weightKg,
		CO2Kg:       weightKg.Mul(fac.CO2Kg).Round(2),
		WaterLitres: weightKg.Mul(fac.WaterLitres).Round(2),
	}, nil
}

// normalizeMaterial maps free text such as "Cotton T-Shirt" onto a table key.
func normalizeMaterial(material string) string {
	m := strings.ToLower(strings.TrimSpace(material))
	if _, ok := factors[m]; ok {
		return m
	}
	for _, key := range matchOrder {
		if strings.Contains(m, key) {
			return key
		}
	}
	if strings.Contains(m, "algod") {
		return "cotton"
	}
	if strings.Contains(m, "lana") {
		return "wool"
	}
	return m
}
