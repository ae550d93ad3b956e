package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/domain/comment"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/http/middlewares"
	"github.com/geocoder89/recipehub/internal/policy"
	"github.com/gin-gonic/gin"
)

type CommentsStore interface {
	Create(ctx context.Context, c comment.Comment) (comment.Comment, error)
	ListByRecipe(ctx context.Context, recipeID string) ([]comment.Comment, error)
	GetByID(ctx context.Context, id string) (comment.Comment, error)
	Delete(ctx context.Context, id string) error
}

type RecipeReader interface {
	GetByID(ctx context.Context, id string) (recipe.Recipe, error)
}

type CommentsHandler struct {
	repo    CommentsStore
	recipes RecipeReader
}

func NewCommentsHandler(repo CommentsStore, recipes RecipeReader) *CommentsHandler {
	return &CommentsHandler{
		repo:    repo,
		recipes: recipes,
	}
}

// Create checks the parent recipe first; a missing parent is a silent
// redirect home, not an error page.
func (h *CommentsHandler) Create(ctx *gin.Context) {
	ident := middlewares.IdentityFromContext(ctx)

	var form comment.CreateCommentForm

	if err := ctx.ShouldBind(&form); err != nil {
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if _, err := h.recipes.GetByID(cctx, form.RecipeID); err != nil {
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	_, err := h.repo.Create(cctx, comment.New(form, ident.UserID))

	if err != nil {
		ctx.String(http.StatusInternalServerError, "Error adding comment: "+err.Error())
		return
	}

	ctx.Redirect(http.StatusFound, "/recipes/"+form.RecipeID+"#comments")
}

func (h *CommentsHandler) ListByRecipe(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	comments, err := h.repo.ListByRecipe(cctx, ctx.Param("id"))

	if err != nil {
		RespondInternal(ctx, "Could not list comments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": comments,
		"count": len(comments),
	})
}

func (h *CommentsHandler) Delete(ctx *gin.Context) {
	ident := middlewares.IdentityFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		// already gone; nothing to delete
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	if !policy.CanModify(ident, c.UserID) {
		ctx.String(http.StatusForbidden, "Not authorized")
		return
	}

	err = h.repo.Delete(cctx, c.ID)

	if err != nil {
		ctx.String(http.StatusInternalServerError, "Error deleting comment: "+err.Error())
		return
	}

	ctx.Redirect(http.StatusFound, "/recipes/"+c.RecipeID+"#comments")
}
