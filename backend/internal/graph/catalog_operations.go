package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "fitgraph/backend/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================================
// Catalog Operations
// ============================================================================

// ResetAndSeed deletes every node and relationship in the database, then
// recreates the schema and the given catalog. Irreversible; meant for demo
// initialization and the explicit reset command only.
func (r *Repository) ResetAndSeed(ctx context.Context, catalog []Product) error {
	r.logger.Warn("Deleting all nodes and relationships")

	session := r.writeSession(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	session.Close(ctx)
	if err != nil {
		return apperrors.NewGraphQueryFailed("reset", err)
	}

	r.EnsureSchema(ctx)

	if err := r.UpsertProducts(ctx, catalog); err != nil {
		return err
	}

	r.logger.Info("Initialized catalog", zap.Int("products", len(catalog)))
	return nil
}

// UpsertProducts merges products by id and overwrites their properties
func (r *Repository) UpsertProducts(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}

	rows := make([]map[string]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, p.properties())
	}

	session := r.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			UNWIND $rows AS row
			MERGE (p:Product {id: row.id})
			SET p += row
		`, map[string]interface{}{"rows": rows})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed("upsert products", err)
	}
	return nil
}

// GetProduct returns a product by id, or nil if it does not exist
func (r *Repository) GetProduct(ctx context.Context, productID string) (*Product, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MATCH (p:Product {id: $productID})
			RETURN p.id AS id, p.name AS name, p.category AS category,
			       p.fit AS fit, p.brand AS brand, p.size AS size
		`, map[string]interface{}{"productID": productID})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("get product", err)
	}

	records := result.([]*neo4j.Record)
	if len(records) == 0 {
		return nil, nil
	}
	return productFromRecord(records[0]), nil
}

// ListProducts returns the catalog ordered by id
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MATCH (p:Product)
			RETURN p.id AS id, p.name AS name, p.category AS category,
			       p.fit AS fit, p.brand AS brand, p.size AS size
			ORDER BY p.id
		`, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("list products", err)
	}

	records := result.([]*neo4j.Record)
	products := make([]Product, 0, len(records))
	for _, rec := range records {
		products = append(products, *productFromRecord(rec))
	}
	return products, nil
}
