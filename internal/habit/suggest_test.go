package habit

import "testing"

func TestSuggest_BackfillsToTarget(t *testing.T) {
	templates := []Habit{
		{Name: "a", Category: CategoryFitness},
		{Name: "b", Category: CategoryHealth},
		{Name: "c", Category: CategoryLearning},
		{Name: "d", Category: CategoryFinance},
		{Name: "e", Category: CategorySocial},
	}

	got := Suggest([]string{CategoryHealth}, templates, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 suggestions, got %d", len(got))
	}
	if got[0].Name != "b" {
		t.Fatalf("matching entry must come first, got %q", got[0].Name)
	}
	seen := map[string]bool{}
	for _, h := range got {
		if seen[h.Name] {
			t.Fatalf("duplicate suggestion %q", h.Name)
		}
		seen[h.Name] = true
	}
}

func TestSuggest_PreservesCatalogOrder(t *testing.T) {
	templates := []Habit{
		{Name: "a", Category: CategoryHealth},
		{Name: "b", Category: CategoryFitness},
		{Name: "c", Category: CategoryHealth},
	}
	got := Suggest([]string{CategoryHealth}, templates, 2)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Fatalf("expected catalog-ordered matches [a c], got %+v", got)
	}
}

func TestSuggest_TruncatesAndExhausts(t *testing.T) {
	templates := []Habit{
		{Name: "a", Category: CategoryHealth},
		{Name: "b", Category: CategoryHealth},
	}
	if got := Suggest([]string{CategoryHealth}, templates, 1); len(got) != 1 {
		t.Fatalf("expected truncation to 1, got %d", len(got))
	}
	if got := Suggest([]string{CategoryHealth}, templates, 5); len(got) != 2 {
		t.Fatalf("catalog exhausted at 2, got %d", len(got))
	}
}

func TestSuggest_NoInterestsStillFills(t *testing.T) {
	got := Suggest(nil, Catalog(), DefaultSuggestionCount)
	if len(got) != DefaultSuggestionCount {
		t.Fatalf("expected backfill to %d from the catalog, got %d", DefaultSuggestionCount, len(got))
	}
}

func TestSuggest_Deterministic(t *testing.T) {
	a := Suggest([]string{CategoryMindfulness, CategoryFitness}, Catalog(), 5)
	b := Suggest([]string{CategoryMindfulness, CategoryFitness}, Catalog(), 5)
	for i := range a {
		if a[i].Name != b[i].Name {
			t.Fatalf("suggestions must be deterministic, diverged at %d", i)
		}
	}
}
