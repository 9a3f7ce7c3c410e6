package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"fitgraph/backend/pkg/config"
	apperrors "fitgraph/backend/pkg/errors"
	"fitgraph/backend/pkg/logger"
	"go.uber.org/zap"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewRepository wraps an existing driver
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Get(),
	}
}

// Connect creates the driver and verifies connectivity. It fails fast:
// the returned error is an ErrGraphConnectionFailed and no driver is left open.
func Connect(ctx context.Context, cfg *config.Config) (*Repository, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		func(c *neo4j.Config) {
			c.SocketConnectTimeout = cfg.Neo4jTimeout
		},
	)
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.Neo4jTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(context.Background())
		return nil, apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}

	return NewRepository(driver, cfg.Neo4jDatabase), nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.driver.Close(closeCtx)
}

func (r *Repository) readSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: r.database,
	})
}

func (r *Repository) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: r.database,
	})
}

// EnsureSchema creates the uniqueness constraints that back the merge keys.
// Failures are logged and skipped.
func (r *Repository) EnsureSchema(ctx context.Context) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT product_id_unique IF NOT EXISTS FOR (p:Product) REQUIRE p.id IS UNIQUE",
		"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
		"CREATE CONSTRAINT body_attribute_name_unique IF NOT EXISTS FOR (a:BodyAttribute) REQUIRE a.name IS UNIQUE",
	}

	for _, constraint := range constraints {
		res, err := session.Run(ctx, constraint, nil)
		if err == nil {
			_, err = res.Consume(ctx)
		}
		if err != nil {
			r.logger.Warn("Failed to create constraint (may already exist)", zap.String("constraint", constraint), zap.Error(err))
		}
	}
}
