package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/recipehub/internal/domain/recipe"
)

// RecipesRepo mirrors the postgres repo contract for tests and for running
// without a database.
type RecipesRepo struct {
	mu    sync.RWMutex
	items map[string]recipe.Recipe

	comments *CommentsRepo // for comment counts on reads, may be nil
	users    *UsersRepo    // for owner username resolution, may be nil
}

func NewRecipesRepo() *RecipesRepo {
	return &RecipesRepo{
		items: make(map[string]recipe.Recipe),
	}
}

// WithResolvers wires the sibling stores used to resolve display fields.
func (r *RecipesRepo) WithResolvers(users *UsersRepo, comments *CommentsRepo) *RecipesRepo {
	r.users = users
	r.comments = comments
	return r
}

func (r *RecipesRepo) Create(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
	r.mu.Lock()
	r.items[rec.ID] = rec
	r.mu.Unlock()

	return rec, nil
}

func (r *RecipesRepo) List(ctx context.Context) ([]recipe.Recipe, error) {
	r.mu.RLock()
	out := make([]recipe.Recipe, 0, len(r.items))

	for _, rec := range r.items {
		out = append(out, r.resolve(rec))
	}
	r.mu.RUnlock()

	sortNewestFirst(out)

	return out, nil
}

func (r *RecipesRepo) ListCursor(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error) {
	all, _ := r.List(ctx)

	if afterID != "" {
		for i, rec := range all {
			if rec.ID == afterID {
				all = all[i+1:]
				break
			}
		}
	}

	hasMore := len(all) > limit

	if hasMore {
		all = all[:limit]
	}

	return all, hasMore, nil
}

func (r *RecipesRepo) ListByOwner(ctx context.Context, ownerID string) ([]recipe.Recipe, error) {
	r.mu.RLock()
	out := []recipe.Recipe{}

	for _, rec := range r.items {
		if rec.OwnerID == ownerID {
			out = append(out, r.resolve(rec))
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(out)

	return out, nil
}

func (r *RecipesRepo) GetByID(ctx context.Context, id string) (recipe.Recipe, error) {
	r.mu.RLock()
	rec, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return recipe.Recipe{}, recipe.ErrNotFound
	}

	return r.resolve(rec), nil
}

func (r *RecipesRepo) Update(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[rec.ID]; !ok {
		return recipe.Recipe{}, recipe.ErrNotFound
	}

	rec.UpdatedAt = time.Now()
	r.items[rec.ID] = rec

	return rec, nil
}

func (r *RecipesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return recipe.ErrNotFound
	}

	delete(r.items, id)

	// same cascade the database FK gives the postgres repo
	if r.comments != nil {
		r.comments.deleteByRecipe(id)
	}

	return nil
}

func (r *RecipesRepo) resolve(rec recipe.Recipe) recipe.Recipe {
	if r.users != nil {
		if u, err := r.users.GetByID(context.Background(), rec.OwnerID); err == nil {
			rec.OwnerName = u.Username
		}
	}
	if r.comments != nil {
		rec.CommentCount = r.comments.countByRecipe(rec.ID)
	}

	return rec
}

func sortNewestFirst(recipes []recipe.Recipe) {
	sort.Slice(recipes, func(i, j int) bool {
		if recipes[i].CreatedAt.Equal(recipes[j].CreatedAt) {
			return recipes[i].ID > recipes[j].ID
		}
		return recipes[i].CreatedAt.After(recipes[j].CreatedAt)
	})
}
