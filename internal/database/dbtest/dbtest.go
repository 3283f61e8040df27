// Package dbtest provides a database.ConnectionProvider backed by pgxmock,
// plus row builders for the recipe table.
package dbtest

import (
	"context"
	"sync"
	"testing"

	"github.com/deppfellow/recipe-service/internal/database"
	"github.com/deppfellow/recipe-service/internal/model"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

// RecipeColumns is the column list every recipe select returns.
var RecipeColumns = []string{
	"id", "name", "ingredients", "description", "created", "updated",
	"preparation_time", "preparation", "admin_id",
}

// Provider hands out a single pgxmock connection and counts acquire/release.
type Provider struct {
	Mock pgxmock.PgxConnIface

	// AcquireErr, when set, is returned by every Acquire.
	AcquireErr error

	mu       sync.Mutex
	acquired int
	released int
}

var _ database.ConnectionProvider = (*Provider)(nil)

// NewProvider creates a provider over a fresh pgxmock connection. The mock is
// closed when the test ends.
func NewProvider(t *testing.T) *Provider {
	t.Helper()

	mock, err := pgxmock.NewConn()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = mock.Close(context.Background())
	})

	return &Provider{Mock: mock}
}

// Acquire returns AcquireErr when set, otherwise the mock connection.
func (p *Provider) Acquire(ctx context.Context) (database.Conn, error) {
	if p.AcquireErr != nil {
		return nil, p.AcquireErr
	}

	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()

	return &conn{PgxConnIface: p.Mock, provider: p}, nil
}

// Acquired reports how many connections were handed out.
func (p *Provider) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

// Released reports how many connections were given back.
func (p *Provider) Released() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// AssertBalanced fails the test unless every acquired connection was
// released and all mock expectations were met.
func (p *Provider) AssertBalanced(t *testing.T) {
	t.Helper()

	require.Equal(t, p.Acquired(), p.Released(), "connections acquired vs released")
	require.NoError(t, p.Mock.ExpectationsWereMet())
}

type conn struct {
	pgxmock.PgxConnIface
	provider *Provider
}

func (c *conn) Release() {
	c.provider.mu.Lock()
	c.provider.released++
	c.provider.mu.Unlock()
}

// RecipeRows builds mock rows in RecipeColumns order.
func RecipeRows(recipes ...model.Recipe) *pgxmock.Rows {
	rows := pgxmock.NewRows(RecipeColumns)
	for _, r := range recipes {
		rows.AddRow(r.ID, r.Name, r.Ingredients, r.Description, r.Created, r.Updated,
			r.PreparationTime, r.Preparation, r.AdminID)
	}
	return rows
}
