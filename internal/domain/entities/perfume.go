// Package entities contains core domain data structures.
package entities

// Perfume is the record aggregated from every keyword-sheet row sharing a code.
// Brand and name come from the first row seen for the code; later rows only
// contribute keywords.
type Perfume struct {
	Code      string   `json:"code"`
	BrandName string   `json:"brand_name"`
	Name      string   `json:"name"`
	Keywords  []string `json:"keywords"`
	Accords   []string `json:"accords"`
}

// NewPerfume creates a perfume holding a single keyword.
func NewPerfume(code, brandName, name, keyword string) *Perfume {
	return &Perfume{
		Code:      code,
		BrandName: brandName,
		Name:      name,
		Keywords:  []string{keyword},
	}
}

// AddKeyword appends a keyword. Duplicates are kept.
func (p *Perfume) AddKeyword(keyword string) {
	p.Keywords = append(p.Keywords, keyword)
}

// AddAccords appends accords in order. Duplicates are kept.
func (p *Perfume) AddAccords(accords ...string) {
	p.Accords = append(p.Accords, accords...)
}

// Catalog is an insertion-ordered mapping of code to perfume.
// It lives for the duration of one run.
type Catalog struct {
	order  []string
	byCode map[string]*Perfume
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byCode: make(map[string]*Perfume),
	}
}

// Get returns the perfume for a code.
func (c *Catalog) Get(code string) (*Perfume, bool) {
	p, ok := c.byCode[code]
	return p, ok
}

// Put stores a perfume under its code. A code that is already present keeps
// its original position.
func (c *Catalog) Put(p *Perfume) {
	if _, ok := c.byCode[p.Code]; !ok {
		c.order = append(c.order, p.Code)
	}
	c.byCode[p.Code] = p
}

// Len returns the number of perfumes.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Perfumes returns perfumes in first-seen order.
func (c *Catalog) Perfumes() []*Perfume {
	out := make([]*Perfume, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.byCode[code])
	}
	return out
}
