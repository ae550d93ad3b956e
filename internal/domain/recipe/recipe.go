package recipe

import (
	"errors"
	"strings"
	"time"
)

const DefaultImage = "/images/default-recipe.jpg"

type Recipe struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Ingredients  []string  `json:"ingredients"`
	Instructions string    `json:"instructions"`
	Image        string    `json:"image"`
	OwnerID      string    `json:"ownerId"`
	OwnerName    string    `json:"ownerName,omitempty"` // resolved on reads
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("recipe not found")

// forms arrive as urlencoded/multipart posts, not JSON
type CreateRecipeForm struct {
	Title        string `form:"title" binding:"required,min=2,max=160"`
	Description  string `form:"description" binding:"required,max=2000"`
	Ingredients  string `form:"ingredients" binding:"required"`
	Instructions string `form:"instructions" binding:"required"`
}

// UpdateRecipeForm is a partial update: empty fields keep the stored value.
type UpdateRecipeForm struct {
	Title        string `form:"title" binding:"omitempty,min=2,max=160"`
	Description  string `form:"description" binding:"omitempty,max=2000"`
	Ingredients  string `form:"ingredients"`
	Instructions string `form:"instructions"`
}

// SplitIngredients turns the delimited form value "egg, flour, milk" into an
// ordered list of trimmed, non-empty entries.
func SplitIngredients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Merge applies the supplied fields of a partial update onto r. The image is
// replaced only when a new upload produced a path.
func (r Recipe) Merge(form UpdateRecipeForm, newImage string) Recipe {
	if form.Title != "" {
		r.Title = form.Title
	}
	if form.Description != "" {
		r.Description = form.Description
	}
	if form.Instructions != "" {
		r.Instructions = form.Instructions
	}
	if form.Ingredients != "" {
		r.Ingredients = SplitIngredients(form.Ingredients)
	}
	if newImage != "" {
		r.Image = newImage
	}

	return r
}
