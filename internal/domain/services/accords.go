package services

import "github.com/ersonp/etov/internal/domain/entities"

// CollectAccords returns every distinct accord referenced by the catalog.
func CollectAccords(catalog *entities.Catalog) *entities.AccordSet {
	set := entities.NewAccordSet()
	for _, p := range catalog.Perfumes() {
		for _, accord := range p.Accords {
			set.Add(accord)
		}
	}
	return set
}
