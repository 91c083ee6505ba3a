package plans

import "sort"

// Catalog is the static Stripe price id -> plan tier mapping.
type Catalog struct {
	byPrice map[string]PlanType
}

type Entry struct {
	PriceID  string   `json:"priceId"`
	PlanType PlanType `json:"planType"`
}

func NewCatalog(basicPriceID, proPriceID, enterprisePriceID string) *Catalog {
	c := &Catalog{byPrice: map[string]PlanType{}}
	c.add(basicPriceID, PlanBasic)
	c.add(proPriceID, PlanPro)
	c.add(enterprisePriceID, PlanEnterprise)
	return c
}

func (c *Catalog) add(priceID string, p PlanType) {
	if priceID != "" {
		c.byPrice[priceID] = p
	}
}

// PlanFor is total: empty or unmapped price ids resolve to free.
func (c *Catalog) PlanFor(priceID string) PlanType {
	if c == nil || priceID == "" {
		return PlanFree
	}
	if p, ok := c.byPrice[priceID]; ok {
		return p
	}
	return PlanFree
}

// Knows reports whether priceID is one of the paid prices.
func (c *Catalog) Knows(priceID string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byPrice[priceID]
	return ok
}

// Entries lists the catalog ordered from cheapest to most expensive tier.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.byPrice))
	for priceID, p := range c.byPrice {
		out = append(out, Entry{PriceID: priceID, PlanType: p})
	}
	sort.Slice(out, func(i, j int) bool {
		return Rank(out[i].PlanType) < Rank(out[j].PlanType)
	})
	return out
}
