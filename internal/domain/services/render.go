package services

import (
	"strings"

	"github.com/ersonp/etov/internal/domain/entities"
)

// Labels are the headings used in perfume notes.
type Labels struct {
	Title   string
	Brand   string
	Keyword string
	Accord  string
}

// DefaultLabels returns the stock note labels.
func DefaultLabels() Labels {
	return Labels{
		Title:   "향수명",
		Brand:   "브랜드",
		Keyword: "키워드",
		Accord:  "어코드",
	}
}

// RenderPerfume formats the note for a perfume. Keywords become hashtags,
// one per line; accords become backlinks after the accord label.
func RenderPerfume(p *entities.Perfume, labels Labels, withAccords bool) string {
	var b strings.Builder

	b.WriteString("# " + labels.Title + ": " + p.Name + "\n\n")
	b.WriteString("- " + labels.Brand + ": [[" + p.BrandName + "]]\n")
	b.WriteString("- " + labels.Keyword + ": ")
	for i, kw := range p.Keywords {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("#" + kw)
	}

	if withAccords {
		b.WriteString("\n- " + labels.Accord + ":")
		for _, accord := range p.Accords {
			b.WriteString("\n[[" + accord + "]]")
		}
	}

	return b.String()
}
