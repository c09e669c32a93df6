package record_repo

import (
	"infinito/internal/domain/contribution"
	"infinito/internal/infrastructure/storage/postgres"
)

var _ contribution.Repository = (*ContributionRepo)(nil)

// ContributionRepo stores contributions in the contributions table.
type ContributionRepo struct {
	*BaseRecordRepo[*contribution.Contribution]
}

// NewContributionRepo creates a contribution repository.
func NewContributionRepo(txm *postgres.TxManager) *ContributionRepo {
	return &ContributionRepo{
		BaseRecordRepo: NewBaseRecordRepo(
			txm,
			"contributions",
			"contribution",
			"tracking_code",
			postgres.ExtractDBColumns[contribution.Contribution](),
			func() *contribution.Contribution { return &contribution.Contribution{} },
		),
	}
}
