package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/recipehub/internal/domain/comment"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentsRepo struct {
	pool *pgxpool.Pool
}

func NewCommentsRepo(pool *pgxpool.Pool) *CommentsRepo {
	return &CommentsRepo{
		pool: pool,
	}
}

func (r *CommentsRepo) Create(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO comments(id, text, recipe_id, user_id, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6)`,
		c.ID, c.Text, c.RecipeID, c.UserID, c.CreatedAt, c.UpdatedAt)

	if err != nil {
		return comment.Comment{}, err
	}

	return c, nil
}

// ListByRecipe resolves author usernames for display, newest first. The
// parent's comment list is this query, not a stored id array on the recipe.
func (r *CommentsRepo) ListByRecipe(ctx context.Context, recipeID string) ([]comment.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.text, c.recipe_id, c.user_id, u.username, c.created_at, c.updated_at
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.recipe_id = $1
		 ORDER BY c.created_at DESC, c.id DESC`,
		recipeID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := []comment.Comment{}

	for rows.Next() {
		var c comment.Comment

		err = rows.Scan(&c.ID, &c.Text, &c.RecipeID, &c.UserID, &c.Author, &c.CreatedAt, &c.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CommentsRepo) GetByID(ctx context.Context, id string) (comment.Comment, error) {
	var c comment.Comment

	err := r.pool.QueryRow(ctx,
		`SELECT id, text, recipe_id, user_id, created_at, updated_at
		 FROM comments
		 WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Text, &c.RecipeID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}

		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return comment.ErrNotFound
	}

	return nil
}
