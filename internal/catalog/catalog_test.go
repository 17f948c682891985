package catalog

import (
	"errors"
	"testing"
)

func TestDefault_ProductCount(t *testing.T) {
	c := Default()
	if got := len(c.List()); got != 7 {
		t.Errorf("expected 7 products, got %d", got)
	}
	if got := len(c.Collectibles()); got != 6 {
		t.Errorf("expected 6 collectibles, got %d", got)
	}
}

func TestDefault_ComboNotCollectible(t *testing.T) {
	c := Default()
	for _, id := range c.Collectibles() {
		if id == "combo-6-vi" {
			t.Error("combo must not be collectible")
		}
	}
	if !c.Has("combo-6-vi") {
		t.Error("combo should still be purchasable")
	}
}

func TestProduct_Lookup(t *testing.T) {
	c := Default()

	p, err := c.Product("bac-man")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Region != RegionBac {
		t.Errorf("expected region bac, got %s", p.Region)
	}
	if p.Price != 49000 {
		t.Errorf("expected price 49000, got %d", p.Price)
	}

	_, err = c.Product("bac-khong-ton-tai")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestRegions_TwoProductsEach(t *testing.T) {
	c := Default()
	regions := c.Regions()
	if len(regions) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(regions))
	}
	for _, r := range regions {
		if got := len(c.RegionProducts(r)); got != 2 {
			t.Errorf("region %s: expected 2 products, got %d", r, got)
		}
	}
}

func TestRegionProducts_CopyIsolated(t *testing.T) {
	c := Default()
	first := c.RegionProducts(RegionBac)
	first[0] = "mutated"
	second := c.RegionProducts(RegionBac)
	if second[0] == "mutated" {
		t.Error("RegionProducts must return a copy")
	}
}
