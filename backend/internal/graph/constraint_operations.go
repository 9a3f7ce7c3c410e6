package graph

import (
	"context"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"fitgraph/backend/internal/constants"
	apperrors "fitgraph/backend/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================================
// Constraint Operations
// ============================================================================

// RecordConstraint upserts the user, product and body attribute, then the
// RETURNED and HAS_CONSTRAINT edges. The RETURNED edge is merged per
// (user, product) and keeps each distinct reason once, so repeating a call
// leaves the graph unchanged.
func (r *Repository) RecordConstraint(ctx context.Context, userID, productID, constraint, reason string) error {
	if reason == "" {
		reason = constants.DefaultReturnReason
	}

	session := r.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MERGE (u:User {id: $userID})
			ON CREATE SET u.created_at = datetime()
			MERGE (p:Product {id: $productID})
			MERGE (a:BodyAttribute {name: $constraint})
			MERGE (u)-[ret:RETURNED]->(p)
			ON CREATE SET
				ret.reasons = [$reason],
				ret.first_recorded_at = datetime()
			ON MATCH SET
				ret.reasons = CASE
					WHEN $reason IN coalesce(ret.reasons, []) THEN ret.reasons
					ELSE coalesce(ret.reasons, []) + $reason
				END
			MERGE (u)-[:HAS_CONSTRAINT]->(a)
		`, map[string]interface{}{
			"userID":     userID,
			"productID":  productID,
			"constraint": constraint,
			"reason":     reason,
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed("record constraint", err)
	}

	r.logger.Info("Saved constraint",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.String("constraint", constraint),
	)
	return nil
}

// GetUserConstraints returns the names of a user's constraints, sorted
func (r *Repository) GetUserConstraints(ctx context.Context, userID string) ([]string, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MATCH (:User {id: $userID})-[:HAS_CONSTRAINT]->(a:BodyAttribute)
			RETURN a.name AS name
			ORDER BY name
		`, map[string]interface{}{"userID": userID})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("get user constraints", err)
	}

	records := result.([]*neo4j.Record)
	names := make([]string, 0, len(records))
	for _, rec := range records {
		if name := getStringFromRecord(rec, "name"); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// GetReturnReasons returns the reasons stored on a user's RETURNED edge to a product
func (r *Repository) GetReturnReasons(ctx context.Context, userID, productID string) ([]string, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			MATCH (:User {id: $userID})-[ret:RETURNED]->(:Product {id: $productID})
			RETURN ret.reasons AS reasons
		`, map[string]interface{}{"userID": userID, "productID": productID})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("get return reasons", err)
	}

	records := result.([]*neo4j.Record)
	var reasons []string
	for _, rec := range records {
		reasons = append(reasons, getStringSliceFromRecord(rec, "reasons")...)
	}
	sort.Strings(reasons)
	return reasons, nil
}

// GraphStats counts the nodes and relationships the fit model uses
type GraphStats struct {
	Users          int64 `json:"users"`
	Products       int64 `json:"products"`
	BodyAttributes int64 `json:"body_attributes"`
	Returned       int64 `json:"returned"`
	HasConstraint  int64 `json:"has_constraint"`
}

// Stats returns node and relationship counts
func (r *Repository) Stats(ctx context.Context) (*GraphStats, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			CALL { MATCH (u:User) RETURN count(u) AS users }
			CALL { MATCH (p:Product) RETURN count(p) AS products }
			CALL { MATCH (a:BodyAttribute) RETURN count(a) AS attributes }
			CALL { MATCH (:User)-[ret:RETURNED]->(:Product) RETURN count(ret) AS returned }
			CALL { MATCH (:User)-[hc:HAS_CONSTRAINT]->(:BodyAttribute) RETURN count(hc) AS has_constraint }
			RETURN users, products, attributes, returned, has_constraint
		`, nil)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("stats", err)
	}

	rec := result.(*neo4j.Record)
	return &GraphStats{
		Users:          getInt64FromRecord(rec, "users"),
		Products:       getInt64FromRecord(rec, "products"),
		BodyAttributes: getInt64FromRecord(rec, "attributes"),
		Returned:       getInt64FromRecord(rec, "returned"),
		HasConstraint:  getInt64FromRecord(rec, "has_constraint"),
	}, nil
}
