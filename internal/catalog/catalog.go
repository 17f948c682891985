// Package catalog holds the VietCharm product and region catalog.
//
// The catalog is configuration data, not logic: the unlock resolver and
// the collection engine take a *Catalog so the product line can change
// without touching either.
package catalog

import (
	"errors"
	"sort"
)

var ErrProductNotFound = errors.New("catalog: product not found")

// Region identifies one of the three Vietnamese regions.
type Region string

const (
	RegionBac   Region = "bac"   // Miền Bắc
	RegionTrung Region = "trung" // Miền Trung
	RegionNam   Region = "nam"   // Miền Nam
	RegionCombo Region = "combo" // gift combos, not collectible
)

// Product is a single catalog entry. Prices are VND in major units.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NameEn   string `json:"nameEn"`
	Price    int64  `json:"price"`
	Weight   string `json:"weight,omitempty"`
	Region   Region `json:"region"`
	Story    string `json:"story,omitempty"`
	IsCombo  bool   `json:"isCombo,omitempty"`
}

// Catalog is an immutable product set with region groupings.
type Catalog struct {
	products map[string]Product
	order    []string          // stable listing order
	regions  map[Region][]string // collectible product IDs per region
}

// New builds a catalog from a product list. Collectible regions are
// derived from the products themselves; combos are listed but never
// collectible.
func New(products []Product) *Catalog {
	c := &Catalog{
		products: make(map[string]Product, len(products)),
		regions:  make(map[Region][]string),
	}
	for _, p := range products {
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
		if p.IsCombo || p.Region == RegionCombo {
			continue
		}
		c.regions[p.Region] = append(c.regions[p.Region], p.ID)
	}
	return c
}

// Default returns the current VietCharm product line: two specialties
// per region plus the six-flavor gift combo.
func Default() *Catalog {
	return New([]Product{
		{ID: "bac-man", Name: "Mứt Mận Mộc Châu", NameEn: "Moc Chau Plum Jam", Price: 49000, Weight: "250g", Region: RegionBac},
		{ID: "bac-mo", Name: "Mứt Mơ Ba Vì", NameEn: "Ba Vi Apricot Jam", Price: 49000, Weight: "250g", Region: RegionBac},
		{ID: "trung-sen", Name: "Mứt Hạt Sen Huế", NameEn: "Hue Lotus Seed Jam", Price: 49000, Weight: "250g", Region: RegionTrung},
		{ID: "trung-dau", Name: "Mứt Dâu Tây Đà Lạt", NameEn: "Da Lat Strawberry Jam", Price: 49000, Weight: "250g", Region: RegionTrung},
		{ID: "nam-dua", Name: "Mứt Dừa Bến Tre", NameEn: "Ben Tre Coconut Jam", Price: 49000, Weight: "250g", Region: RegionNam},
		{ID: "nam-mangcau", Name: "Mứt Mãng Cầu Tiền Giang", NameEn: "Tien Giang Soursop Jam", Price: 49000, Weight: "250g", Region: RegionNam},
		{ID: "combo-6-vi", Name: "Combo 6 Vị Di Sản", NameEn: "Heritage 6-Flavor Combo", Price: 169000, Weight: "6 hũ x 150g", Region: RegionCombo, IsCombo: true},
	})
}

// Product returns a catalog entry by ID.
func (c *Catalog) Product(id string) (Product, error) {
	p, ok := c.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

// Has reports whether the catalog contains the given product ID.
func (c *Catalog) Has(id string) bool {
	_, ok := c.products[id]
	return ok
}

// List returns all products in catalog order.
func (c *Catalog) List() []Product {
	result := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.products[id])
	}
	return result
}

// Collectibles returns the IDs of every collectible (non-combo) product,
// sorted for deterministic expansion of the unlock-all code.
func (c *Catalog) Collectibles() []string {
	var ids []string
	for _, members := range c.regions {
		ids = append(ids, members...)
	}
	sort.Strings(ids)
	return ids
}

// Regions returns the collectible regions in fixed order.
func (c *Catalog) Regions() []Region {
	all := []Region{RegionBac, RegionTrung, RegionNam}
	var present []Region
	for _, r := range all {
		if len(c.regions[r]) > 0 {
			present = append(present, r)
		}
	}
	return present
}

// RegionProducts returns the collectible product IDs for a region.
func (c *Catalog) RegionProducts(r Region) []string {
	out := make([]string, len(c.regions[r]))
	copy(out, c.regions[r])
	return out
}
