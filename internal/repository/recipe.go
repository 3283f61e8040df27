package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/recipe-service/internal/database"
	"github.com/deppfellow/recipe-service/internal/model"
	"github.com/deppfellow/recipe-service/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const recipeTable = "recipe"

// recipeColumns must stay in sync with the db tags on model.Recipe.
const recipeColumns = "id, name, ingredients, description, created, updated, preparation_time, preparation, admin_id"

const (
	readRecipeQuery = `SELECT ` + recipeColumns + ` FROM recipe WHERE id = $1`

	findAllRecipesQuery = `SELECT ` + recipeColumns + ` FROM recipe`

	findRecipesByAdminQuery = `SELECT ` + recipeColumns + ` FROM recipe WHERE admin_id = $1`

	createRecipeQuery = `INSERT INTO recipe (name, ingredients, description, created, updated, preparation_time, preparation, admin_id) ` +
		`VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	// Placeholder order is the bind order in Update.
	updateRecipeQuery = `UPDATE recipe SET name = $1, ingredients = $2, description = $3, updated = $4, ` +
		`preparation_time = $5, preparation = $6, admin_id = $7 WHERE id = $8`

	deleteRecipeQuery = `DELETE FROM recipe WHERE id = $1`

	countRecipesByAdminQuery = `SELECT COUNT(*) FROM recipe WHERE admin_id = $1`
)

// RecipeRepository maps model.Recipe to the recipe table.
//
// It holds nothing but the provider; every method acquires its own
// connection and releases it before returning.
type RecipeRepository struct {
	provider database.ConnectionProvider
}

// NewRecipeRepository creates a RecipeRepository that draws connections from provider.
func NewRecipeRepository(provider database.ConnectionProvider) *RecipeRepository {
	return &RecipeRepository{provider: provider}
}

// Read returns the recipe with the given id.
//
// Zero rows is sqlerr.ErrNotFound. More than one row is a data-integrity
// failure (sqlerr.ErrQueryExecutionFailed wrapping pgx.ErrTooManyRows).
func (r *RecipeRepository) Read(ctx context.Context, id int64) (*model.Recipe, error) {
	const op = "recipe.read"

	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, sqlerr.Unavailable(op, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, readRecipeQuery, id)
	if err != nil {
		return nil, sqlerr.Wrap(op, recipeTable, err)
	}
	defer rows.Close()

	recipe, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Recipe])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.Newf(sqlerr.KindNotFound, op, recipeTable, "recipe %d does not exist", id)
		}
		return nil, sqlerr.Wrap(op, recipeTable, err)
	}

	return &recipe, nil
}

// FindAll returns every recipe in store-defined order.
func (r *RecipeRepository) FindAll(ctx context.Context) ([]model.Recipe, error) {
	return r.list(ctx, "recipe.find_all", findAllRecipesQuery)
}

// FindAllByAdmin returns the recipes owned by adminID in store-defined order.
func (r *RecipeRepository) FindAllByAdmin(ctx context.Context, adminID int64) ([]model.Recipe, error) {
	return r.list(ctx, "recipe.find_all_by_admin", findRecipesByAdminQuery, adminID)
}

// list never returns a nil slice on success.
func (r *RecipeRepository) list(ctx context.Context, op, query string, args ...any) ([]model.Recipe, error) {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, sqlerr.Unavailable(op, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, sqlerr.Wrap(op, recipeTable, err)
	}
	defer rows.Close()

	recipes, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Recipe])
	if err != nil {
		return nil, sqlerr.Wrap(op, recipeTable, err)
	}

	return recipes, nil
}

// Create inserts recipe and returns a copy carrying the generated id.
// Any id set by the caller is ignored.
func (r *RecipeRepository) Create(ctx context.Context, recipe model.Recipe) (*model.Recipe, error) {
	const op = "recipe.create"

	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, sqlerr.Unavailable(op, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, createRecipeQuery,
		recipe.Name,
		recipe.Ingredients,
		recipe.Description,
		recipe.Created,
		recipe.Updated,
		recipe.PreparationTime,
		recipe.Preparation,
		recipe.AdminID,
	)
	if err != nil {
		return nil, sqlerr.Wrap(op, recipeTable, err)
	}
	defer rows.Close()

	// RETURNING yields one row per inserted row.
	keys, err := pgx.CollectRows(rows, pgx.RowTo[pgtype.Int8])
	if err != nil {
		return nil, sqlerr.Wrap(op, recipeTable, err)
	}

	if len(keys) != 1 {
		return nil, sqlerr.Newf(sqlerr.KindUnexpectedRowCount, op, recipeTable, "insert affected %d rows, expected 1", len(keys))
	}

	key := keys[0]
	if !key.Valid || key.Int64 <= 0 {
		return nil, sqlerr.New(sqlerr.KindKeyGenerationFailed, op, recipeTable, "insert returned no generated id")
	}

	recipe.ID = key.Int64
	return &recipe, nil
}

// Update overwrites every column except id and created.
//
// recipe.ID must be set. Zero affected rows is sqlerr.ErrNotFound.
func (r *RecipeRepository) Update(ctx context.Context, recipe model.Recipe) error {
	const op = "recipe.update"

	if !recipe.IsPersisted() {
		return sqlerr.New(sqlerr.KindInvalidArgument, op, recipeTable, "recipe has no id")
	}

	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return sqlerr.Unavailable(op, err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, updateRecipeQuery,
		recipe.Name,
		recipe.Ingredients,
		recipe.Description,
		recipe.Updated,
		recipe.PreparationTime,
		recipe.Preparation,
		recipe.AdminID,
		recipe.ID,
	)
	if err != nil {
		return sqlerr.Wrap(op, recipeTable, err)
	}

	if tag.RowsAffected() == 0 {
		return sqlerr.Newf(sqlerr.KindNotFound, op, recipeTable, "recipe %d does not exist", recipe.ID)
	}

	return nil
}

// Delete removes the recipe with the given id.
// Zero affected rows is sqlerr.ErrNotFound.
func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	const op = "recipe.delete"

	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return sqlerr.Unavailable(op, err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, deleteRecipeQuery, id)
	if err != nil {
		return sqlerr.Wrap(op, recipeTable, err)
	}

	if tag.RowsAffected() == 0 {
		return sqlerr.Newf(sqlerr.KindNotFound, op, recipeTable, "recipe %d does not exist", id)
	}

	return nil
}

// CountByAdmin returns the number of recipes owned by adminID.
func (r *RecipeRepository) CountByAdmin(ctx context.Context, adminID int64) (int64, error) {
	const op = "recipe.count_by_admin"

	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return 0, sqlerr.Unavailable(op, err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, countRecipesByAdminQuery, adminID).Scan(&count); err != nil {
		// COUNT(*) always yields a row; a driver that yields none means zero.
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, sqlerr.Wrap(op, recipeTable, err)
	}

	return count, nil
}
