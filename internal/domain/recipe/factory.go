package recipe

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateForm(form CreateRecipeForm, ownerID, imagePath string) Recipe {
	now := time.Now()

	if imagePath == "" {
		imagePath = DefaultImage
	}

	return Recipe{
		ID:           uuid.NewString(),
		Title:        form.Title,
		Description:  form.Description,
		Ingredients:  SplitIngredients(form.Ingredients),
		Instructions: form.Instructions,
		Image:        imagePath,
		OwnerID:      ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
