package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "fitgraph/backend/pkg/errors"
	"go.uber.org/zap"
)

// EvaluateConflict checks a candidate product against the user's stored
// constraints. Product and constraints are read in one query and the rule
// itself is applied by Evaluate.
func (r *Repository) EvaluateConflict(ctx context.Context, userID, productID string) (*Verdict, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, `
			OPTIONAL MATCH (p:Product {id: $productID})
			OPTIONAL MATCH (:User {id: $userID})-[:HAS_CONSTRAINT]->(attr:BodyAttribute)
			RETURN p.id AS id, p.name AS name, p.category AS category,
			       p.fit AS fit, p.brand AS brand, p.size AS size,
			       collect(DISTINCT attr.name) AS constraints
		`, map[string]interface{}{
			"userID":    userID,
			"productID": productID,
		})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("evaluate conflict", err)
	}

	rec := result.(*neo4j.Record)
	var product *Product
	if getStringFromRecord(rec, "id") != "" {
		product = productFromRecord(rec)
	} else {
		r.logger.Warn("Candidate product not in catalog", zap.String("product_id", productID))
	}

	verdict := Evaluate(userID, productID, product, getStringSliceFromRecord(rec, "constraints"))

	r.logger.Info("Fit risk evaluated",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Bool("blocked", verdict.Blocked),
		zap.String("conflict", verdict.Conflict),
	)
	return verdict, nil
}
