package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecipesRepo struct {
	pool *pgxpool.Pool
}

func NewRecipesRepo(pool *pgxpool.Pool) *RecipesRepo {
	return &RecipesRepo{
		pool: pool,
	}
}

// every read resolves the owner username for display, and carries a comment
// count so lists don't need a second query
const recipeSelect = `
	SELECT r.id,
		r.title,
		r.description,
		r.ingredients,
		r.instructions,
		r.image,
		r.owner_id,
		u.username,
		(SELECT COUNT(*) FROM comments c WHERE c.recipe_id = r.id) AS comment_count,
		r.created_at,
		r.updated_at
	FROM recipes r
	JOIN users u ON u.id = r.owner_id
`

func scanRecipe(row pgx.Row) (recipe.Recipe, error) {
	var rec recipe.Recipe

	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Description,
		&rec.Ingredients,
		&rec.Instructions,
		&rec.Image,
		&rec.OwnerID,
		&rec.OwnerName,
		&rec.CommentCount,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)

	return rec, err
}

func (r *RecipesRepo) Create(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO recipes(id, title, description, ingredients, instructions, image, owner_id, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.Title, rec.Description, rec.Ingredients, rec.Instructions, rec.Image, rec.OwnerID, rec.CreatedAt, rec.UpdatedAt)

	if err != nil {
		return recipe.Recipe{}, err
	}

	return rec, nil
}

// List returns every recipe, newest first.
func (r *RecipesRepo) List(ctx context.Context) ([]recipe.Recipe, error) {
	rows, err := r.pool.Query(ctx, recipeSelect+` ORDER BY r.created_at DESC, r.id DESC`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectRecipes(rows)
}

// ListCursor pages newest-first with a keyset cursor. It fetches limit+1 rows
// to learn whether another page exists.
func (r *RecipesRepo) ListCursor(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error) {
	query := recipeSelect
	args := []interface{}{}

	if afterID != "" {
		query += ` WHERE (r.created_at, r.id) < ($1, $2)`
		args = append(args, afterCreatedAt, afterID)
	}

	query += ` ORDER BY r.created_at DESC, r.id DESC`

	if afterID != "" {
		query += ` LIMIT $3`
	} else {
		query += ` LIMIT $1`
	}
	args = append(args, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, false, err
	}

	defer rows.Close()

	out, err := collectRecipes(rows)

	if err != nil {
		return nil, false, err
	}

	hasMore := len(out) > limit

	if hasMore {
		out = out[:limit]
	}

	return out, hasMore, nil
}

// ListByOwner backs the my-recipes page. Ownership is a query, not a stored
// id list on the user row, so there is no back-reference to keep in sync.
func (r *RecipesRepo) ListByOwner(ctx context.Context, ownerID string) ([]recipe.Recipe, error) {
	rows, err := r.pool.Query(ctx, recipeSelect+` WHERE r.owner_id = $1 ORDER BY r.created_at DESC, r.id DESC`, ownerID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectRecipes(rows)
}

func (r *RecipesRepo) GetByID(ctx context.Context, id string) (recipe.Recipe, error) {
	rec, err := scanRecipe(r.pool.QueryRow(ctx, recipeSelect+` WHERE r.id = $1`, id))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return recipe.Recipe{}, recipe.ErrNotFound
		}

		return recipe.Recipe{}, err
	}

	return rec, nil
}

// Update writes the already-merged recipe back. Partial-field merging happens
// in the handler, against the stored row.
func (r *RecipesRepo) Update(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
	err := r.pool.QueryRow(
		ctx,
		`UPDATE recipes
			SET title = $2,
				description = $3,
				ingredients = $4,
				instructions = $5,
				image = $6,
				updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		rec.ID,
		rec.Title,
		rec.Description,
		rec.Ingredients,
		rec.Instructions,
		rec.Image,
	).Scan(&rec.UpdatedAt)

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return recipe.Recipe{}, recipe.ErrNotFound
		}

		return recipe.Recipe{}, err
	}

	return rec, nil
}

// Delete removes the recipe row. Comments go with it via ON DELETE CASCADE,
// so no second write is needed and there is no partial-failure window.
func (r *RecipesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return recipe.ErrNotFound
	}

	return nil
}

func collectRecipes(rows pgx.Rows) ([]recipe.Recipe, error) {
	out := []recipe.Recipe{}

	for rows.Next() {
		rec, err := scanRecipe(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
