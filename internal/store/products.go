package store

import (
	"context"
	"time"

	"github.com/RainersCode/honey-sub001/internal/database"
	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/gocql/gocql"
)

// ScyllaProducts persists the honey catalog in the catalog keyspace.
type ScyllaProducts struct{}

func NewProducts() *ScyllaProducts {
	return &ScyllaProducts{}
}

const productColumns = `product_id, name, description, price, stock, sku, weight, category, image_urls, tags, is_active, created_at, updated_at`

func (s *ScyllaProducts) Get(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	session, err := database.GetCatalogSession()
	if err != nil {
		return nil, err
	}

	var p models.Product
	err = session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).
		WithContext(ctx).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.SKU, &p.Weight,
		&p.Category, &p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ScyllaProducts) List(ctx context.Context) ([]models.Product, error) {
	session, err := database.GetCatalogSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.SKU, &p.Weight,
		&p.Category, &p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		products = append(products, p)
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ScyllaProducts) Save(ctx context.Context, p *models.Product) error {
	session, err := database.GetCatalogSession()
	if err != nil {
		return err
	}

	return session.Query(`INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.SKU, p.Weight,
		p.Category, p.ImageURLs, p.Tags, p.IsActive, p.CreatedAt, p.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (s *ScyllaProducts) Delete(ctx context.Context, id gocql.UUID) error {
	session, err := database.GetCatalogSession()
	if err != nil {
		return err
	}

	return session.Query("DELETE FROM products WHERE product_id = ?", id).WithContext(ctx).Exec()
}

// DecrementStock reserves sold units. Conditional so two checkouts
// cannot both take the last jar.
func (s *ScyllaProducts) DecrementStock(ctx context.Context, id gocql.UUID, current, quantity int) (bool, error) {
	session, err := database.GetCatalogSession()
	if err != nil {
		return false, err
	}

	prev := map[string]interface{}{}
	applied, err := session.Query(
		"UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ? IF stock = ?",
		current-quantity, time.Now().UTC(), id, current,
	).WithContext(ctx).MapScanCAS(prev)
	if err != nil {
		return false, err
	}
	return applied, nil
}
