package types

import "time"

// Status is the terminal classification of one (store, SKU) check.
type Status string

const (
	StatusOK         Status = "ok"
	StatusOutOfStock Status = "out_of_stock"
	StatusNotFound   Status = "not_found"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every status in reporting order.
var Statuses = []Status{StatusOK, StatusOutOfStock, StatusNotFound, StatusBlocked}

// ProductFacts holds the resolved, normalized fields for one product.
// Title is always non-empty: a node with no resolvable title yields no facts
// at all rather than facts with an empty title.
type ProductFacts struct {
	SKU              string   `json:"sku" bson:"sku"`
	Title            string   `json:"title" bson:"title"`
	PriceCurrent     *float64 `json:"price_current,omitempty" bson:"price_current,omitempty"`
	PriceRegular     *float64 `json:"price_regular,omitempty" bson:"price_regular,omitempty"`
	InStock          *bool    `json:"in_stock,omitempty" bson:"in_stock,omitempty"`
	AvailabilityText string   `json:"availability_text,omitempty" bson:"availability_text,omitempty"`
}

// FetchOutcome records the result of checking one SKU at one store.
// Every (store, SKU) pair in a run yields exactly one FetchOutcome.
type FetchOutcome struct {
	SKU       string        `json:"sku" bson:"sku"`
	StoreID   string        `json:"store_id" bson:"store_id"`
	StoreSlug string        `json:"store_slug" bson:"store_slug"`
	Status    Status        `json:"status" bson:"status"`
	CheckedAt time.Time     `json:"checked_at" bson:"checked_at"`
	Facts     *ProductFacts `json:"facts,omitempty" bson:"facts,omitempty"`
}

// Snapshot is the complete output of one store's SKU sweep in one run.
// Written once, never mutated.
type Snapshot struct {
	StoreID   string         `json:"store_id" bson:"store_id"`
	StoreSlug string         `json:"store_slug" bson:"store_slug"`
	Results   []FetchOutcome `json:"results" bson:"results"`
}

// Counts tallies outcomes per status.
func (s *Snapshot) Counts() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, r := range s.Results {
		counts[r.Status]++
	}
	return counts
}
