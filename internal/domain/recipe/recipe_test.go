package recipe_test

import (
	"reflect"
	"testing"

	"github.com/geocoder89/recipehub/internal/domain/recipe"
)

func TestSplitIngredients(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "basic",
			raw:  "egg, flour, milk",
			want: []string{"egg", "flour", "milk"},
		},
		{
			name: "extra_whitespace",
			raw:  "  egg ,flour ,  milk  ",
			want: []string{"egg", "flour", "milk"},
		},
		{
			name: "empty_entries_dropped",
			raw:  "egg,,, milk,",
			want: []string{"egg", "milk"},
		},
		{
			name: "single",
			raw:  "salt",
			want: []string{"salt"},
		},
		{
			name: "all_empty",
			raw:  " , , ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := recipe.SplitIngredients(tt.raw)

			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFromCreateForm_DefaultImage(t *testing.T) {
	form := recipe.CreateRecipeForm{
		Title:        "Pancakes",
		Description:  "Fluffy",
		Ingredients:  "egg, flour, milk",
		Instructions: "Mix and fry",
	}

	rec := recipe.NewFromCreateForm(form, "owner-1", "")

	if rec.Image != recipe.DefaultImage {
		t.Fatalf("got image %q, want default %q", rec.Image, recipe.DefaultImage)
	}

	if rec.ID == "" {
		t.Fatalf("expected a generated id")
	}

	if rec.OwnerID != "owner-1" {
		t.Fatalf("got owner %q, want owner-1", rec.OwnerID)
	}

	if !reflect.DeepEqual(rec.Ingredients, []string{"egg", "flour", "milk"}) {
		t.Fatalf("ingredients not split: %v", rec.Ingredients)
	}
}

func TestNewFromCreateForm_UploadedImage(t *testing.T) {
	form := recipe.CreateRecipeForm{
		Title:        "Pancakes",
		Description:  "Fluffy",
		Ingredients:  "egg",
		Instructions: "Fry",
	}

	rec := recipe.NewFromCreateForm(form, "owner-1", "/uploads/123-pancakes.jpg")

	if rec.Image != "/uploads/123-pancakes.jpg" {
		t.Fatalf("uploaded image path not kept: %q", rec.Image)
	}
}

func TestMerge_PartialUpdate(t *testing.T) {
	stored := recipe.Recipe{
		ID:           "r-1",
		Title:        "Old Title",
		Description:  "Old description",
		Ingredients:  []string{"egg"},
		Instructions: "Old instructions",
		Image:        "/uploads/old.jpg",
		OwnerID:      "owner-1",
	}

	tests := []struct {
		name     string
		form     recipe.UpdateRecipeForm
		newImage string
		check    func(t *testing.T, got recipe.Recipe)
	}{
		{
			name: "empty_form_keeps_everything",
			form: recipe.UpdateRecipeForm{},
			check: func(t *testing.T, got recipe.Recipe) {
				if !reflect.DeepEqual(got, stored) {
					t.Fatalf("empty update changed the recipe: %+v", got)
				}
			},
		},
		{
			name: "title_only",
			form: recipe.UpdateRecipeForm{Title: "New Title"},
			check: func(t *testing.T, got recipe.Recipe) {
				if got.Title != "New Title" {
					t.Fatalf("title not updated: %q", got.Title)
				}
				if got.Description != stored.Description || got.Image != stored.Image {
					t.Fatalf("unrelated fields changed: %+v", got)
				}
			},
		},
		{
			name: "ingredients_resplit",
			form: recipe.UpdateRecipeForm{Ingredients: "butter, sugar"},
			check: func(t *testing.T, got recipe.Recipe) {
				if !reflect.DeepEqual(got.Ingredients, []string{"butter", "sugar"}) {
					t.Fatalf("ingredients not updated: %v", got.Ingredients)
				}
			},
		},
		{
			name:     "new_image_replaces",
			form:     recipe.UpdateRecipeForm{},
			newImage: "/uploads/new.jpg",
			check: func(t *testing.T, got recipe.Recipe) {
				if got.Image != "/uploads/new.jpg" {
					t.Fatalf("image not replaced: %q", got.Image)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := stored.Merge(tt.form, tt.newImage)

			tt.check(t, got)

			// owner never changes through a merge
			if got.OwnerID != stored.OwnerID {
				t.Fatalf("owner changed: %q", got.OwnerID)
			}
		})
	}
}
