package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/cache"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/geocoder89/recipehub/internal/utils"
	"github.com/gin-gonic/gin"
)

// Fake repository implementation of the handlers.RecipesStore interface

type fakeRecipesRepo struct {
	createFn      func(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error)
	listFn        func(ctx context.Context) ([]recipe.Recipe, error)
	listCursorFn  func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error)
	listByOwnerFn func(ctx context.Context, ownerID string) ([]recipe.Recipe, error)
	getFn         func(ctx context.Context, id string) (recipe.Recipe, error)
	updateFn      func(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error)
	deleteFn      func(ctx context.Context, id string) error
}

func (f *fakeRecipesRepo) Create(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
	if f.createFn != nil {
		return f.createFn(ctx, rec)
	}

	return rec, nil
}

func (f *fakeRecipesRepo) List(ctx context.Context) ([]recipe.Recipe, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}

	return nil, nil
}

func (f *fakeRecipesRepo) ListCursor(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error) {
	if f.listCursorFn != nil {
		return f.listCursorFn(ctx, limit, afterCreatedAt, afterID)
	}

	return []recipe.Recipe{}, false, nil
}

func (f *fakeRecipesRepo) ListByOwner(ctx context.Context, ownerID string) ([]recipe.Recipe, error) {
	if f.listByOwnerFn != nil {
		return f.listByOwnerFn(ctx, ownerID)
	}

	return nil, nil
}

func (f *fakeRecipesRepo) GetByID(ctx context.Context, id string) (recipe.Recipe, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return recipe.Recipe{}, recipe.ErrNotFound
}

func (f *fakeRecipesRepo) Update(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, rec)
	}

	return rec, nil
}

func (f *fakeRecipesRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

type fakeImageSaver struct {
	saveFn func(ctx *gin.Context, file *multipart.FileHeader) (string, error)
}

func (f *fakeImageSaver) Save(ctx *gin.Context, file *multipart.FileHeader) (string, error) {
	if f.saveFn != nil {
		return f.saveFn(ctx, file)
	}

	return "/uploads/fake.jpg", nil
}

// injectIdentity seeds the request identity the way the identity middleware
// would have.
func injectIdentity(ident auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("identity", ident)
		c.Next()
	}
}

func newRecipesHandler(repo *fakeRecipesRepo) *handlers.RecipesHandler {
	return handlers.NewRecipesHandler(repo, &fakeImageSaver{}, cache.New(30*time.Second))
}

func sampleRecipe(id, ownerID string) recipe.Recipe {
	now := time.Now().UTC()

	return recipe.Recipe{
		ID:           id,
		Title:        "Pancakes",
		Description:  "Fluffy",
		Ingredients:  []string{"egg", "flour", "milk"},
		Instructions: "Mix and fry",
		Image:        recipe.DefaultImage,
		OwnerID:      ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateRecipeHandler(t *testing.T) {
	owner := auth.Authenticated("owner-1", auth.RoleUser)

	tests := []struct {
		name           string
		form           url.Values
		repoSetup      func(*fakeRecipesRepo)
		wantStatusCode int
		wantRedirect   string
		wantCreated    bool
	}{
		{
			name: "success_redirects_to_recipe",
			form: url.Values{
				"title":        {"Pancakes"},
				"description":  {"Fluffy"},
				"ingredients":  {"egg, flour, milk"},
				"instructions": {"Mix and fry"},
			},
			wantStatusCode: http.StatusFound,
			wantRedirect:   "/recipes/",
			wantCreated:    true,
		},
		{
			name: "missing_title_rerenders_form",
			form: url.Values{
				"description":  {"Fluffy"},
				"ingredients":  {"egg"},
				"instructions": {"Fry"},
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "repo_error_rerenders_form",
			form: url.Values{
				"title":        {"Pancakes"},
				"description":  {"Fluffy"},
				"ingredients":  {"egg"},
				"instructions": {"Fry"},
			},
			repoSetup: func(f *fakeRecipesRepo) {
				f.createFn = func(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
					return recipe.Recipe{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			created := false

			repo := &fakeRecipesRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			if repo.createFn == nil {
				repo.createFn = func(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
					created = true

					if rec.OwnerID != "owner-1" {
						t.Fatalf("recipe owner %q, want owner-1", rec.OwnerID)
					}

					return rec, nil
				}
			}

			h := newRecipesHandler(repo)

			r := newViewEngine()
			r.POST("/api/recipes/add", injectIdentity(owner), h.Create)

			w := postForm(r, "/api/recipes/add", tt.form)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantRedirect != "" {
				if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, tt.wantRedirect) {
					t.Fatalf("got redirect %q, want prefix %q", loc, tt.wantRedirect)
				}
			}

			if created != tt.wantCreated {
				t.Fatalf("created=%v, want %v", created, tt.wantCreated)
			}
		})
	}
}

func TestListRecipesHandler(t *testing.T) {
	validCursor, err := utils.EncodeRecipeCursor(time.Now().UTC(), "r-1")

	if err != nil {
		t.Fatalf("failed to build cursor: %v", err)
	}

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeRecipesRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "first_page",
			url:  "/api/recipes?limit=20",
			repoSetup: func(f *fakeRecipesRepo) {
				f.listCursorFn = func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error) {
					if !afterCreatedAt.IsZero() || afterID != "" {
						return nil, false, errors.New("first page must not carry a cursor")
					}

					return []recipe.Recipe{sampleRecipe("r-1", "owner-1")}, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "with_valid_cursor",
			url:  "/api/recipes?limit=20&cursor=" + validCursor,
			repoSetup: func(f *fakeRecipesRepo) {
				f.listCursorFn = func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error) {
					if afterID != "r-1" {
						return nil, false, errors.New("cursor not decoded")
					}

					return []recipe.Recipe{sampleRecipe("r-2", "owner-1")}, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name:           "invalid_cursor",
			url:            "/api/recipes?cursor=!!!",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/api/recipes",
			repoSetup: func(f *fakeRecipesRepo) {
				f.listCursorFn = func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error) {
					return nil, false, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRecipesRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := newRecipesHandler(repo)

			r := gin.New()
			r.GET("/api/recipes", h.ListJSON)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					Count int `json:"count"`
				}

				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}

				if resp.Count != tt.wantCount {
					t.Fatalf("got count %d, want %d", resp.Count, tt.wantCount)
				}
			}
		})
	}
}

func TestListRecipesHandler_CacheHit(t *testing.T) {
	repo := &fakeRecipesRepo{}
	calls := 0

	repo.listCursorFn = func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error) {
		calls++

		return []recipe.Recipe{sampleRecipe("r-1", "owner-1")}, false, nil
	}

	h := newRecipesHandler(repo)

	r := gin.New()
	r.GET("/api/recipes", h.ListJSON)

	// First request: cache miss -> repo called
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/api/recipes?limit=20", nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	// Second request: cache hit -> repo should NOT be called again
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/recipes?limit=20", nil))

	if w2.Code != http.StatusOK {
		t.Fatalf("second call got %d body=%s", w2.Code, w2.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected repo calls=1, got %d", calls)
	}
}

func TestListRecipesHandler_ETagNotModified(t *testing.T) {
	repo := &fakeRecipesRepo{}

	repo.listCursorFn = func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]recipe.Recipe, bool, error) {
		return []recipe.Recipe{sampleRecipe("r-1", "owner-1")}, false, nil
	}

	h := newRecipesHandler(repo)

	r := gin.New()
	r.GET("/api/recipes", h.ListJSON)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/api/recipes?limit=20", nil))

	etag := w1.Header().Get("ETag")

	if etag == "" {
		t.Fatalf("expected ETag header in first response")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/recipes?limit=20", nil)
	req2.Header.Set("If-None-Match", etag)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("got %d, want %d, body=%s", w2.Code, http.StatusNotModified, w2.Body.String())
	}

	if w2.Body.Len() != 0 {
		t.Fatalf("expected empty body for 304, got %q", w2.Body.String())
	}
}

func TestGetRecipeHandler(t *testing.T) {
	tests := []struct {
		name           string
		repoSetup      func(*fakeRecipesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			repoSetup: func(f *fakeRecipesRepo) {
				f.getFn = func(ctx context.Context, id string) (recipe.Recipe, error) {
					return sampleRecipe(id, "owner-1"), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "not_found",
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			repoSetup: func(f *fakeRecipesRepo) {
				f.getFn = func(ctx context.Context, id string) (recipe.Recipe, error) {
					return recipe.Recipe{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRecipesRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := newRecipesHandler(repo)

			r := gin.New()
			r.GET("/api/recipes/:id", h.GetJSON)

			req := httptest.NewRequest(http.MethodGet, "/api/recipes/r-1", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateRecipeHandler_Ownership(t *testing.T) {
	stored := sampleRecipe("r-1", "owner-1")

	tests := []struct {
		name           string
		ident          auth.Identity
		wantStatusCode int
		wantUpdated    bool
	}{
		{
			name:           "owner_can_update",
			ident:          auth.Authenticated("owner-1", auth.RoleUser),
			wantStatusCode: http.StatusFound,
			wantUpdated:    true,
		},
		{
			name:           "other_user_forbidden",
			ident:          auth.Authenticated("intruder", auth.RoleUser),
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "admin_can_update",
			ident:          auth.Authenticated("admin-1", auth.RoleAdmin),
			wantStatusCode: http.StatusFound,
			wantUpdated:    true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			updated := false

			repo := &fakeRecipesRepo{
				getFn: func(ctx context.Context, id string) (recipe.Recipe, error) {
					return stored, nil
				},
				updateFn: func(ctx context.Context, rec recipe.Recipe) (recipe.Recipe, error) {
					updated = true

					if rec.Title != "New Title" {
						t.Fatalf("merged title %q, want New Title", rec.Title)
					}

					// untouched fields survive a partial update
					if rec.Description != stored.Description {
						t.Fatalf("description changed: %q", rec.Description)
					}

					return rec, nil
				},
			}

			h := newRecipesHandler(repo)

			r := newViewEngine()
			r.POST("/api/recipes/edit/:id", injectIdentity(tt.ident), h.Update)

			w := postForm(r, "/api/recipes/edit/r-1", url.Values{"title": {"New Title"}})

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if w.Code == http.StatusForbidden && !strings.Contains(w.Body.String(), "Not authorized") {
				t.Fatalf("forbidden body = %q", w.Body.String())
			}

			if updated != tt.wantUpdated {
				t.Fatalf("updated=%v, want %v", updated, tt.wantUpdated)
			}
		})
	}
}

func TestDeleteRecipeHandler(t *testing.T) {
	stored := sampleRecipe("r-1", "owner-1")

	tests := []struct {
		name           string
		ident          auth.Identity
		repoSetup      func(*fakeRecipesRepo)
		wantStatusCode int
		wantLocation   string
		wantDeleted    bool
	}{
		{
			name:  "owner_deletes_and_lands_on_my_recipes",
			ident: auth.Authenticated("owner-1", auth.RoleUser),
			repoSetup: func(f *fakeRecipesRepo) {
				f.getFn = func(ctx context.Context, id string) (recipe.Recipe, error) {
					return stored, nil
				}
			},
			wantStatusCode: http.StatusFound,
			wantLocation:   "/my-recipes",
			wantDeleted:    true,
		},
		{
			name:  "non_owner_forbidden",
			ident: auth.Authenticated("intruder", auth.RoleUser),
			repoSetup: func(f *fakeRecipesRepo) {
				f.getFn = func(ctx context.Context, id string) (recipe.Recipe, error) {
					return stored, nil
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			// repeating a delete is not an error
			name:           "already_gone_redirects_home",
			ident:          auth.Authenticated("owner-1", auth.RoleUser),
			wantStatusCode: http.StatusFound,
			wantLocation:   "/",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			deleted := false

			repo := &fakeRecipesRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			repo.deleteFn = func(ctx context.Context, id string) error {
				deleted = true
				return nil
			}

			h := newRecipesHandler(repo)

			r := gin.New()
			r.POST("/api/recipes/delete/:id", injectIdentity(tt.ident), h.Delete)

			w := postForm(r, "/api/recipes/delete/r-1", url.Values{})

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantLocation != "" {
				if loc := w.Header().Get("Location"); loc != tt.wantLocation {
					t.Fatalf("got redirect %q, want %q", loc, tt.wantLocation)
				}
			}

			if deleted != tt.wantDeleted {
				t.Fatalf("deleted=%v, want %v", deleted, tt.wantDeleted)
			}
		})
	}
}
