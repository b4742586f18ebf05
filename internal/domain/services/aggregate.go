package services

import (
	"go.uber.org/zap"

	"github.com/ersonp/etov/internal/domain/entities"
)

// Aggregator builds the perfume catalog from keyword rows.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

// Aggregate creates one perfume per distinct code. Rows repeating a code
// append their keyword; the brand and name of the first row are kept.
func (a *Aggregator) Aggregate(rows []KeywordRow) *entities.Catalog {
	catalog := entities.NewCatalog()

	for i := range rows {
		row := &rows[i]
		perfume, ok := catalog.Get(row.Code)
		if !ok {
			catalog.Put(entities.NewPerfume(row.Code, row.BrandName, row.Name, row.Keyword))
			continue
		}

		if perfume.BrandName != row.BrandName || perfume.Name != row.Name {
			a.logger.Debug("conflicting brand or name for code, keeping first",
				zap.String("code", row.Code),
				zap.Int("row", row.Row),
				zap.String("kept_name", perfume.Name),
				zap.String("ignored_name", row.Name),
			)
		}
		perfume.AddKeyword(row.Keyword)
	}

	return catalog
}
