package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"recipe-admin/internal/event"
	"recipe-admin/internal/model"
	"recipe-admin/internal/store"
	"recipe-admin/internal/util"
)

const (
	DefaultPageLimit      = 20
	DefaultSearchDebounce = 500 * time.Millisecond
)

type RecipeGateway interface {
	Recipes(ctx context.Context, search model.RecipeSearch) ([]model.Recipe, error)
	CreateRecipe(ctx context.Context, input model.RecipeInput) (model.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, input model.RecipeInput) (model.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
}

type RecipeRow struct {
	model.Recipe
	AuthorName string   `json:"authorName"`
	Date       string   `json:"date"`
	StepList   []string `json:"stepList"`
}

type ListState struct {
	SearchText    string      `json:"searchText"`
	Searching     bool        `json:"searching"`
	Loading       bool        `json:"loading"`
	LoadingSearch bool        `json:"loadingSearch"`
	Recipes       []RecipeRow `json:"recipes"`
}

type ListOptions struct {
	PageLimit int
	Debounce  time.Duration
	Location  *time.Location
	// SearchTimeout bounds debounced searches, which run outside any request.
	SearchTimeout time.Duration
}

// RecipeList is the recipes page: the baseline list lives in the store while
// search results are held separately as the displayed rows.
type RecipeList struct {
	mu       sync.Mutex
	gw       RecipeGateway
	store    *store.RecipeStore
	notifier *event.Notifier
	debounce *util.Debouncer
	opts     ListOptions

	searchText    string
	searching     bool
	loadingSearch bool
	displayed     []model.Recipe
	generation    uint64
}

func NewRecipeList(gw RecipeGateway, recipes *store.RecipeStore, notifier *event.Notifier, opts ListOptions) *RecipeList {
	if opts.PageLimit <= 0 {
		opts.PageLimit = DefaultPageLimit
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultSearchDebounce
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 30 * time.Second
	}

	return &RecipeList{
		gw:        gw,
		store:     recipes,
		notifier:  notifier,
		debounce:  util.NewDebouncer(opts.Debounce),
		opts:      opts,
		displayed: []model.Recipe{},
	}
}

// Load fetches the unfiltered first page into the store.
func (l *RecipeList) Load(ctx context.Context) (ListState, error) {
	l.store.SetLoading(true)
	recipes, err := l.gw.Recipes(ctx, model.RecipeSearch{Search: nil, Limit: l.opts.PageLimit, Offset: 0})
	l.store.SetLoading(false)

	if err != nil {
		l.store.SetError(err)
		l.notifier.Error("Failed to load recipes: " + errorMessage(err))
		return l.State(), err
	}

	l.store.SetError(nil)
	l.store.SetRecipes(recipes)

	l.mu.Lock()
	if !l.searching {
		l.displayed = l.store.Recipes()
	}
	l.mu.Unlock()

	return l.State(), nil
}

// SetSearchText records the input and schedules a search once typing settles.
func (l *RecipeList) SetSearchText(text string) ListState {
	l.mu.Lock()
	l.searchText = text
	l.mu.Unlock()

	l.scheduleSearch(text)
	return l.State()
}

func (l *RecipeList) scheduleSearch(text string) {
	l.debounce.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.opts.SearchTimeout)
		defer cancel()
		if _, err := l.Search(ctx, text); err != nil {
			slog.Debug("debounced search failed", "error", err)
		}
	})
}

// Search runs a search immediately. Blank text clears the search instead.
// A response is dropped when a newer search or a clear happened meanwhile.
func (l *RecipeList) Search(ctx context.Context, text string) (ListState, error) {
	term := strings.TrimSpace(text)
	if term == "" {
		return l.ClearSearch(), nil
	}

	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.loadingSearch = true
	l.mu.Unlock()

	results, err := l.gw.Recipes(ctx, model.RecipeSearch{Search: &term, Limit: l.opts.PageLimit, Offset: 0})

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		slog.Debug("dropping stale search response", "term", term)
		return l.State(), nil
	}
	l.loadingSearch = false
	if err == nil {
		l.displayed = append([]model.Recipe{}, results...)
		l.searching = true
	}
	l.mu.Unlock()

	if err != nil {
		l.notifier.Error("Search failed: " + errorMessage(err))
		return l.State(), err
	}
	return l.State(), nil
}

// ClearSearch restores the baseline list.
func (l *RecipeList) ClearSearch() ListState {
	l.debounce.Cancel()

	l.mu.Lock()
	l.generation++
	l.searchText = ""
	l.searching = false
	l.loadingSearch = false
	l.displayed = l.store.Recipes()
	l.mu.Unlock()

	return l.State()
}

func (l *RecipeList) Create(ctx context.Context, input model.RecipeInput) (model.Recipe, error) {
	created, err := l.gw.CreateRecipe(ctx, input)
	if err != nil {
		l.notifier.Error("Failed to create recipe: " + errorMessage(err))
		return model.Recipe{}, err
	}

	l.store.AddRecipe(created)
	l.notifier.Success("Recipe created")

	l.mu.Lock()
	text, active := l.activeSearchLocked()
	if !active {
		l.displayed = append(l.displayed, created)
	}
	l.mu.Unlock()

	if active {
		l.scheduleSearch(text)
	}
	return created, nil
}

func (l *RecipeList) Update(ctx context.Context, id string, input model.RecipeInput) (model.Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return model.Recipe{}, invalidInput("recipe id is required", model.ErrMissingRecipeID)
	}

	updated, err := l.gw.UpdateRecipe(ctx, id, input)
	if err != nil {
		l.notifier.Error("Failed to update recipe: " + errorMessage(err))
		return model.Recipe{}, err
	}
	if updated.ID == "" {
		updated.ID = id
	}

	updated, _ = l.store.ReplaceRecipe(updated.ID, updated)
	l.notifier.Success("Recipe updated")

	l.mu.Lock()
	text, active := l.activeSearchLocked()
	if !active {
		for i := range l.displayed {
			if l.displayed[i].ID == updated.ID {
				l.displayed[i] = updated
			}
		}
	}
	l.mu.Unlock()

	if active {
		l.scheduleSearch(text)
	}
	return updated, nil
}

// Delete removes a recipe after confirmation. The displayed rows are always
// filtered, search or not.
func (l *RecipeList) Delete(ctx context.Context, id string, confirmed bool) (ListState, error) {
	if strings.TrimSpace(id) == "" {
		return l.State(), invalidInput("recipe id is required", model.ErrMissingRecipeID)
	}
	if !confirmed {
		return l.State(), confirmationRequired("Are you sure you want to delete this recipe?")
	}

	if err := l.gw.DeleteRecipe(ctx, id); err != nil {
		l.notifier.Error("Failed to delete recipe: " + errorMessage(err))
		return l.State(), err
	}

	l.store.DeleteRecipe(id)
	l.notifier.Success("Recipe deleted")

	l.mu.Lock()
	kept := make([]model.Recipe, 0, len(l.displayed))
	for _, r := range l.displayed {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	l.displayed = kept
	l.mu.Unlock()

	return l.State(), nil
}

// Submit adapts the list to the editor's submit hook.
func (l *RecipeList) Submit(ctx context.Context, mode EditorMode, recipeID string, input model.RecipeInput) error {
	var err error
	if mode == EditorEdit {
		_, err = l.Update(ctx, recipeID, input)
	} else {
		_, err = l.Create(ctx, input)
	}
	return err
}

// Close cancels a pending debounced search.
func (l *RecipeList) Close() {
	l.debounce.Cancel()
}

func (l *RecipeList) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := make([]RecipeRow, 0, len(l.displayed))
	for _, r := range l.displayed {
		rows = append(rows, RecipeRow{
			Recipe:     r,
			AuthorName: r.Author.DisplayName(),
			Date:       util.FormatDate(r.CreatedAt, l.opts.Location),
			StepList:   r.Steps.Normalize(),
		})
	}

	return ListState{
		SearchText:    l.searchText,
		Searching:     l.searching,
		Loading:       l.store.Loading(),
		LoadingSearch: l.loadingSearch,
		Recipes:       rows,
	}
}

func (l *RecipeList) activeSearchLocked() (string, bool) {
	text := strings.TrimSpace(l.searchText)
	return l.searchText, l.searching && text != ""
}
