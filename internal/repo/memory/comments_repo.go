package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/recipehub/internal/domain/comment"
)

type CommentsRepo struct {
	mu    sync.RWMutex
	items map[string]comment.Comment

	users *UsersRepo // author username resolution, may be nil
}

func NewCommentsRepo() *CommentsRepo {
	return &CommentsRepo{
		items: make(map[string]comment.Comment),
	}
}

func (r *CommentsRepo) WithUsers(users *UsersRepo) *CommentsRepo {
	r.users = users
	return r
}

func (r *CommentsRepo) Create(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	r.mu.Lock()
	r.items[c.ID] = c
	r.mu.Unlock()

	return c, nil
}

func (r *CommentsRepo) ListByRecipe(ctx context.Context, recipeID string) ([]comment.Comment, error) {
	r.mu.RLock()
	out := []comment.Comment{}

	for _, c := range r.items {
		if c.RecipeID == recipeID {
			if r.users != nil {
				if u, err := r.users.GetByID(ctx, c.UserID); err == nil {
					c.Author = u.Username
				}
			}
			out = append(out, c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *CommentsRepo) GetByID(ctx context.Context, id string) (comment.Comment, error) {
	r.mu.RLock()
	c, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return comment.Comment{}, comment.ErrNotFound
	}

	return c, nil
}

func (r *CommentsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return comment.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *CommentsRepo) deleteByRecipe(recipeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.items {
		if c.RecipeID == recipeID {
			delete(r.items, id)
		}
	}
}

func (r *CommentsRepo) countByRecipe(recipeID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, c := range r.items {
		if c.RecipeID == recipeID {
			n++
		}
	}

	return n
}
