package comment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	RecipeID  string    `json:"recipeId"`
	UserID    string    `json:"userId"`
	Author    string    `json:"author,omitempty"` // resolved on reads
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("comment not found")

type CreateCommentForm struct {
	RecipeID string `form:"recipeId" binding:"required"`
	Text     string `form:"text" binding:"required,max=1000"`
}

func New(form CreateCommentForm, userID string) Comment {
	now := time.Now()

	return Comment{
		ID:        uuid.NewString(),
		Text:      form.Text,
		RecipeID:  form.RecipeID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
