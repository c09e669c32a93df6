package record_repo

import (
	"infinito/internal/domain/product"
	"infinito/internal/infrastructure/storage/postgres"
)

var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo stores products in the products table.
type ProductRepo struct {
	*BaseRecordRepo[*product.Product]
}

// uniqueContributionIndex allows one listing per contribution.
const uniqueContributionIndex = "uq_products_contribution"

// NewProductRepo creates a product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	base := NewBaseRecordRepo(
		txm,
		"products",
		"product",
		"sku",
		postgres.ExtractDBColumns[product.Product](),
		func() *product.Product { return &product.Product{} },
	).WithUniqueIndex(uniqueContributionIndex, "contribution_id")
	return &ProductRepo{BaseRecordRepo: base}
}
