package models

import "github.com/gocql/gocql"

// ShippingRule is admin-managed reference data: a flat price for a
// weight range inside a zone. Ranges are inclusive on both ends.
type ShippingRule struct {
	ID        gocql.UUID `json:"id" db:"rule_id"`
	Zone      string     `json:"zone" db:"zone"`
	MinWeight float64    `json:"min_weight" db:"min_weight"`
	MaxWeight float64    `json:"max_weight" db:"max_weight"`
	Price     float64    `json:"price" db:"price"`
	Carrier   string     `json:"carrier" db:"carrier"`
}

type ShippingQuote struct {
	Zone   string  `json:"zone"`
	Weight float64 `json:"weight"`
	Price  float64 `json:"price"`
}
