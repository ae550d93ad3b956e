package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/recipehub/internal/cache"
	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/http/middlewares"
	"github.com/geocoder89/recipehub/internal/policy"
	"github.com/geocoder89/recipehub/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type RecipesStore interface {
	Create(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error)
	List(ctx context.Context) ([]recipe.Recipe, error)
	ListCursor(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]recipe.Recipe, error)
	GetByID(ctx context.Context, id string) (recipe.Recipe, error)
	Update(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error)
	Delete(ctx context.Context, id string) error
}

type ImageSaver interface {
	Save(ctx *gin.Context, file *multipart.FileHeader) (string, error)
}

type RecipesHandler struct {
	repo   RecipesStore
	images ImageSaver
	lists  cache.Store
}

func NewRecipesHandler(repo RecipesStore, images ImageSaver, lists cache.Store) *RecipesHandler {
	return &RecipesHandler{
		repo:   repo,
		images: images,
		lists:  lists,
	}
}

// ShowCreateForm backs both GET /recipes/add and GET /api/recipes/add.
func (h *RecipesHandler) ShowCreateForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "recipe_form.html", gin.H{"User": currentUser(ctx)})
}

func (h *RecipesHandler) Create(ctx *gin.Context) {
	ident := middlewares.IdentityFromContext(ctx)

	var form recipe.CreateRecipeForm

	if err := ctx.ShouldBind(&form); err != nil {
		h.renderForm(ctx, nil, formErrorMessage(err))
		return
	}

	imagePath := h.saveImageIfPresent(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.repo.Create(cctx, recipe.NewFromCreateForm(form, ident.UserID, imagePath))

	if err != nil {
		h.renderForm(ctx, nil, "Could not save recipe")
		return
	}

	h.lists.Clear(cctx)

	ctx.Redirect(http.StatusFound, "/recipes/"+rec.ID)
}

// ListJSON serves GET /api/recipes with keyset pagination, an ETag, and a
// short-TTL cache in front of the database.
func (h *RecipesHandler) ListJSON(ctx *gin.Context) {
	limit := parseLimit(ctx.Query("limit"))
	cursor := ctx.Query("cursor")

	cacheKey := utils.BuildRecipesListCacheKey(limit, cursor)

	if cached, ok := h.lists.Get(ctx.Request.Context(), cacheKey); ok {
		// RawMessage re-marshals to the same bytes, so the ETag is stable
		RespondJSONWithETag(ctx, http.StatusOK, json.RawMessage(cached))
		return
	}

	var afterCreatedAt time.Time
	var afterID string

	if cursor != "" {
		c, err := utils.DecodeRecipeCursor(cursor)

		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", nil)
			return
		}

		afterCreatedAt = c.CreatedAt
		afterID = c.ID
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, hasMore, err := h.repo.ListCursor(cctx, limit, afterCreatedAt, afterID)

	if err != nil {
		RespondInternal(ctx, "Could not list recipes")
		return
	}

	var nextCursor *string

	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		encoded, err := utils.EncodeRecipeCursor(last.CreatedAt, last.ID)

		if err == nil {
			nextCursor = &encoded
		}
	}

	payload := gin.H{
		"items":      items,
		"count":      len(items),
		"nextCursor": nextCursor,
		"hasMore":    hasMore,
	}

	if raw, err := json.Marshal(payload); err == nil {
		h.lists.Set(ctx.Request.Context(), cacheKey, raw)
	}

	RespondJSONWithETag(ctx, http.StatusOK, payload)
}

func (h *RecipesHandler) GetJSON(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			RespondNotFound(ctx, "Recipe not found")
			return
		}
		RespondInternal(ctx, "Could not fetch recipe")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, rec)
}

func (h *RecipesHandler) ShowEditForm(ctx *gin.Context) {
	ident := middlewares.IdentityFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		// missing recipe falls back to the list page, matching the views
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	if !policy.CanModify(ident, rec.OwnerID) {
		ctx.String(http.StatusForbidden, "Not authorized")
		return
	}

	ctx.HTML(http.StatusOK, "recipe_form.html", gin.H{"User": currentUser(ctx), "Recipe": rec})
}

func (h *RecipesHandler) Update(ctx *gin.Context) {
	ident := middlewares.IdentityFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	if !policy.CanModify(ident, rec.OwnerID) {
		ctx.String(http.StatusForbidden, "Not authorized")
		return
	}

	var form recipe.UpdateRecipeForm

	if err := ctx.ShouldBind(&form); err != nil {
		h.renderForm(ctx, &rec, formErrorMessage(err))
		return
	}

	newImage := h.saveImageIfPresent(ctx)

	updated, err := h.repo.Update(cctx, rec.Merge(form, newImage))

	if err != nil {
		h.renderForm(ctx, &rec, "Could not save recipe")
		return
	}

	h.lists.Clear(cctx)

	ctx.Redirect(http.StatusFound, "/recipes/"+updated.ID)
}

func (h *RecipesHandler) Delete(ctx *gin.Context) {
	ident := middlewares.IdentityFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		// deleting an already-deleted recipe is not an error
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	if !policy.CanModify(ident, rec.OwnerID) {
		ctx.String(http.StatusForbidden, "Not authorized")
		return
	}

	err = h.repo.Delete(cctx, rec.ID)

	if err != nil && !errors.Is(err, recipe.ErrNotFound) {
		ctx.String(http.StatusInternalServerError, "Error deleting recipe: "+err.Error())
		return
	}

	h.lists.Clear(cctx)

	ctx.Redirect(http.StatusFound, "/my-recipes")
}

// helpers

func (h *RecipesHandler) renderForm(ctx *gin.Context, rec *recipe.Recipe, errMsg string) {
	data := gin.H{"User": currentUser(ctx), "Error": errMsg}
	if rec != nil {
		data["Recipe"] = *rec
	}

	ctx.HTML(http.StatusOK, "recipe_form.html", data)
}

// saveImageIfPresent stores the optional "image" part; absence or a failed
// save both mean "keep the default/previous image", matching the upload
// contract of the form.
func (h *RecipesHandler) saveImageIfPresent(ctx *gin.Context) string {
	file, err := ctx.FormFile("image")

	if err != nil || file == nil {
		return ""
	}

	path, err := h.images.Save(ctx, file)

	if err != nil {
		return ""
	}

	return path
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultListLimit
	}

	n, err := strconv.Atoi(raw)

	if err != nil || n <= 0 {
		return defaultListLimit
	}

	if n > maxListLimit {
		return maxListLimit
	}

	return n
}
