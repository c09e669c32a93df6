package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldByName(t *testing.T, def EntityDef, name string) FieldDef {
	t.Helper()
	for _, f := range def.Fields {
		if f.Name == name {
			return f
		}
	}
	require.Failf(t, "field not found", "%s has no field %q", def.Name, name)
	return FieldDef{}
}

func TestDefaultRegistry(t *testing.T) {
	reg := NewDefaultRegistry()

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "contribution", list[0].Name)
	assert.Equal(t, "product", list[1].Name)

	_, ok := reg.Get("order")
	assert.False(t, ok)
}

func TestInspect_Contribution(t *testing.T) {
	def := ContributionDef()

	tests := []struct {
		name     string
		wantType FieldType
	}{
		{"id", TypeString},
		{"trackingCode", TypeString},
		{"status", TypeEnum},
		{"classification", TypeEnum},
		{"totalItems", TypeInteger},
		{"co2", TypeNumber},
		{"verified", TypeBoolean},
		{"eventDate", TypeDate},
		{"certificateId", TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, fieldByName(t, def, tt.name).Type)
		})
	}

	assert.True(t, fieldByName(t, def, "trackingCode").ReadOnly)
	assert.Contains(t, fieldByName(t, def, "status").Options, "certificate_available")
}

func TestInspect_Product(t *testing.T) {
	def := ProductDef()

	price := fieldByName(t, def, "price")
	assert.Equal(t, TypeMoney, price.Type)
	assert.Equal(t, 2, price.Scale)

	ref := fieldByName(t, def, "contributionId")
	assert.Equal(t, TypeReference, ref.Type)
	assert.Equal(t, "contribution", ref.ReferenceType)
	assert.Equal(t, "Contribution ID", ref.Label)
}

func TestFilters_FollowKindGating(t *testing.T) {
	names := func(def EntityDef) []string {
		out := make([]string, 0, len(def.Filters))
		for _, f := range def.Filters {
			out = append(out, f.Name)
		}
		return out
	}

	contrib := names(ContributionDef())
	assert.Contains(t, contrib, "co2")
	assert.NotContains(t, contrib, "price")

	prod := names(ProductDef())
	assert.Contains(t, prod, "price")
	assert.Contains(t, prod, "seller")
	assert.NotContains(t, prod, "totalItems")
}

func TestGuessLabel(t *testing.T) {
	assert.Equal(t, "Donor name", guessLabel("DonorName"))
	assert.Equal(t, "SKU", guessLabel("SKU"))
	assert.Equal(t, "Certificate ID", guessLabel("CertificateID"))
}
