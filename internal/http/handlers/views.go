package handlers

import (
	"net/http"
	"time"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// ViewsHandler renders the server-side pages. The JSON API lives in the
// recipes/comments handlers; these routes only read.
type ViewsHandler struct {
	recipes  RecipesStore
	comments CommentsStore
}

func NewViewsHandler(recipes RecipesStore, comments CommentsStore) *ViewsHandler {
	return &ViewsHandler{
		recipes:  recipes,
		comments: comments,
	}
}

func (h *ViewsHandler) Home(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	recipes, err := h.recipes.List(cctx)

	if err != nil {
		ctx.String(http.StatusInternalServerError, "Error loading recipes: "+err.Error())
		return
	}

	ctx.HTML(http.StatusOK, "recipe_list.html", gin.H{
		"User":    currentUser(ctx),
		"Recipes": recipes,
	})
}

func (h *ViewsHandler) ShowRecipe(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.recipes.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		// unknown id goes home rather than to an error page
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	comments, err := h.comments.ListByRecipe(cctx, rec.ID)

	if err != nil {
		ctx.String(http.StatusInternalServerError, "Error loading recipe: "+err.Error())
		return
	}

	ctx.HTML(http.StatusOK, "recipe_item.html", gin.H{
		"User":     currentUser(ctx),
		"Recipe":   rec,
		"Comments": comments,
	})
}

func (h *ViewsHandler) MyRecipes(ctx *gin.Context) {
	ident := middlewares.IdentityFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	recipes, err := h.recipes.ListByOwner(cctx, ident.UserID)

	if err != nil {
		ctx.String(http.StatusInternalServerError, "Error loading recipes: "+err.Error())
		return
	}

	ctx.HTML(http.StatusOK, "my_recipes.html", gin.H{
		"User":    currentUser(ctx),
		"Recipes": recipes,
	})
}

// currentUser adapts the request identity for templates: nil means anonymous
// so pages can use a plain {{if .User}}.
func currentUser(ctx *gin.Context) *auth.Identity {
	ident := middlewares.IdentityFromContext(ctx)

	if ident.IsAnonymous() {
		return nil
	}

	return &ident
}
