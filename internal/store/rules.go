package store

import (
	"context"

	"github.com/RainersCode/honey-sub001/internal/database"
	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/gocql/gocql"
)

// ScyllaRules stores shipping rules partitioned by zone in the catalog
// keyspace.
type ScyllaRules struct{}

func NewRules() *ScyllaRules {
	return &ScyllaRules{}
}

// FindCheapestRule returns the cheapest rule of the zone whose
// inclusive weight range contains the weight, or nil when none does.
// Range filtering happens client side: a zone holds a handful of rows
// at most.
func (s *ScyllaRules) FindCheapestRule(ctx context.Context, zone string, weight float64) (*models.ShippingRule, error) {
	session, err := database.GetCatalogSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT rule_id, zone, min_weight, max_weight, price, carrier
		FROM shipping_rules WHERE zone = ?`, zone).WithContext(ctx).Iter()

	var best *models.ShippingRule
	var r models.ShippingRule
	for iter.Scan(&r.ID, &r.Zone, &r.MinWeight, &r.MaxWeight, &r.Price, &r.Carrier) {
		if weight < r.MinWeight || weight > r.MaxWeight {
			continue
		}
		if best == nil || r.Price < best.Price {
			rule := r
			best = &rule
		}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return best, nil
}

func (s *ScyllaRules) ListByZone(ctx context.Context, zone string) ([]models.ShippingRule, error) {
	session, err := database.GetCatalogSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT rule_id, zone, min_weight, max_weight, price, carrier
		FROM shipping_rules WHERE zone = ?`, zone).WithContext(ctx).Iter()
	return scanRules(iter)
}

func (s *ScyllaRules) ListAll(ctx context.Context) ([]models.ShippingRule, error) {
	session, err := database.GetCatalogSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT rule_id, zone, min_weight, max_weight, price, carrier
		FROM shipping_rules`).WithContext(ctx).Iter()
	return scanRules(iter)
}

func scanRules(iter *gocql.Iter) ([]models.ShippingRule, error) {
	var rules []models.ShippingRule
	var r models.ShippingRule
	for iter.Scan(&r.ID, &r.Zone, &r.MinWeight, &r.MaxWeight, &r.Price, &r.Carrier) {
		rules = append(rules, r)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return rules, nil
}

func (s *ScyllaRules) Create(ctx context.Context, r *models.ShippingRule) error {
	session, err := database.GetCatalogSession()
	if err != nil {
		return err
	}

	return session.Query(`INSERT INTO shipping_rules (rule_id, zone, min_weight, max_weight, price, carrier)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Zone, r.MinWeight, r.MaxWeight, r.Price, r.Carrier,
	).WithContext(ctx).Exec()
}

func (s *ScyllaRules) Delete(ctx context.Context, zone string, ruleID gocql.UUID) error {
	session, err := database.GetCatalogSession()
	if err != nil {
		return err
	}

	return session.Query("DELETE FROM shipping_rules WHERE zone = ? AND rule_id = ?", zone, ruleID).
		WithContext(ctx).Exec()
}
