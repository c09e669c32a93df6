package metadata

import (
	"infinito/internal/domain/contribution"
	"infinito/internal/domain/filter"
	"infinito/internal/domain/product"
)

// sharedFilters apply to both record kinds.
func sharedFilters(typeOptions, statusOptions []string) []FilterDef {
	return []FilterDef{
		{Name: "search", Label: "Search", Type: TypeString, Match: MatchSubstring, Params: []string{"search"}},
		{Name: "type", Label: "Type", Type: TypeEnum, Match: MatchExact, Params: []string{"type"}, Options: typeOptions},
		{Name: "status", Label: "Status", Type: TypeEnum, Match: MatchExact, Params: []string{"status"}, Options: statusOptions},
		{Name: "verified", Label: "Verified", Type: TypeBoolean, Match: MatchExact, Params: []string{"verified"}},
		{Name: "hasCertificate", Label: "Has certificate", Type: TypeBoolean, Match: MatchExact, Params: []string{"hasCertificate"}},
		{Name: "date", Label: "Date", Type: TypeDate, Match: MatchRange, Params: []string{"dateFrom", "dateTo"}},
	}
}

var expressionFilter = FilterDef{
	Name:   "expression",
	Label:  "Expression",
	Type:   TypeExpression,
	Match:  MatchCEL,
	Params: []string{"expr"},
}

// ContributionDef describes contributions.
func ContributionDef() EntityDef {
	enums := map[string][]string{
		"type":           contribution.Types(),
		"status":         contribution.States(),
		"classification": contribution.Classifications(),
		"destination":    contribution.Destinations(),
		"decision":       contribution.Decisions(),
	}

	filters := sharedFilters(contribution.Types(), contribution.States())
	filters = append(filters,
		FilterDef{Name: "classification", Label: "Classification", Type: TypeEnum, Match: MatchExact, Params: []string{"classification"}, Options: contribution.Classifications()},
		FilterDef{Name: "destination", Label: "Destination", Type: TypeEnum, Match: MatchExact, Params: []string{"destination"}, Options: contribution.Destinations()},
		FilterDef{Name: "decision", Label: "Decision", Type: TypeEnum, Match: MatchExact, Params: []string{"decision"}, Options: contribution.Decisions()},
		FilterDef{Name: "totalItems", Label: "Items", Type: TypeInteger, Match: MatchRange, Params: []string{"itemsMin", "itemsMax"}},
		FilterDef{Name: "co2", Label: "CO2 saved (kg)", Type: TypeNumber, Match: MatchRange, Params: []string{"co2Min", "co2Max"}},
		FilterDef{Name: "water", Label: "Water saved (l)", Type: TypeNumber, Match: MatchRange, Params: []string{"waterMin", "waterMax"}},
		expressionFilter,
	)

	return EntityDef{
		Name:    string(filter.KindContribution),
		Label:   "Contributions",
		Fields:  Inspect(contribution.Contribution{}, enums),
		Filters: filters,
	}
}

// ProductDef describes products.
func ProductDef() EntityDef {
	enums := map[string][]string{
		"status":    product.Statuses(),
		"condition": product.Conditions(),
	}

	filters := sharedFilters(contribution.Types(), product.Statuses())
	filters = append(filters,
		FilterDef{Name: "seller", Label: "Seller", Type: TypeString, Match: MatchSubstring, Params: []string{"seller"}},
		FilterDef{Name: "material", Label: "Material", Type: TypeString, Match: MatchExact, Params: []string{"material"}},
		FilterDef{Name: "color", Label: "Color", Type: TypeString, Match: MatchExact, Params: []string{"color"}},
		FilterDef{Name: "size", Label: "Size", Type: TypeString, Match: MatchExact, Params: []string{"size"}},
		FilterDef{Name: "condition", Label: "Condition", Type: TypeEnum, Match: MatchExact, Params: []string{"condition"}, Options: product.Conditions()},
		FilterDef{Name: "country", Label: "Country", Type: TypeString, Match: MatchExact, Params: []string{"country"}},
		FilterDef{Name: "price", Label: "Price", Type: TypeMoney, Match: MatchRange, Params: []string{"priceMin", "priceMax"}},
		expressionFilter,
	)

	return EntityDef{
		Name:    string(filter.KindProduct),
		Label:   "Products",
		Fields:  Inspect(product.Product{}, enums),
		Filters: filters,
	}
}

// NewDefaultRegistry returns a registry with every record kind registered.
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(ContributionDef())
	reg.Register(ProductDef())
	return reg
}
