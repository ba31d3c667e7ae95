package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"recipe-admin/internal/event"
	"recipe-admin/internal/model"
	"recipe-admin/internal/util"
	"recipe-admin/pkg/apierror"
)

type CommentGateway interface {
	RecipeComments(ctx context.Context, recipeID string) ([]model.Comment, error)
	AddComment(ctx context.Context, recipeID string, content string) (model.Comment, error)
	UpdateComment(ctx context.Context, id string, content string) (model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteMultipleComments(ctx context.Context, ids []string) error
}

// CurrentUser exposes the signed-in operator.
type CurrentUser interface {
	User() *model.SessionUser
}

type PanelStatus string

const (
	PanelClosed  PanelStatus = "closed"
	PanelLoading PanelStatus = "loading"
	PanelError   PanelStatus = "error"
	PanelEmpty   PanelStatus = "empty"
	PanelReady   PanelStatus = "ready"
)

type SelectAllState string

const (
	SelectNone SelectAllState = "none"
	SelectSome SelectAllState = "some"
	SelectAll  SelectAllState = "all"
)

type CommentView struct {
	model.Comment
	AuthorName string `json:"authorName"`
	Date       string `json:"date"`
	Edited     bool   `json:"edited"`
	CanEdit    bool   `json:"canEdit"`
	CanDelete  bool   `json:"canDelete"`
	Selected   bool   `json:"selected"`
}

type PanelState struct {
	RecipeID    string         `json:"recipeId"`
	Status      PanelStatus    `json:"status"`
	Error       string         `json:"error,omitempty"`
	Comments    []CommentView  `json:"comments"`
	Draft       string         `json:"draft"`
	EditingID   string         `json:"editingId,omitempty"`
	EditContent string         `json:"editContent,omitempty"`
	BulkMode    bool           `json:"bulkMode"`
	Selected    []string       `json:"selected"`
	SelectAll   SelectAllState `json:"selectAll"`
	CanModerate bool           `json:"canModerate"`
}

// CommentPanel lists and moderates the comments of one recipe.
type CommentPanel struct {
	mu       sync.Mutex
	gw       CommentGateway
	current  CurrentUser
	notifier *event.Notifier
	loc      *time.Location

	recipeID    string
	status      PanelStatus
	loadErr     error
	comments    []model.Comment
	draft       string
	editingID   string
	editContent string
	bulkMode    bool
	selected    map[string]bool
}

func NewCommentPanel(gw CommentGateway, current CurrentUser, notifier *event.Notifier, loc *time.Location) *CommentPanel {
	if loc == nil {
		loc = time.Local
	}
	p := &CommentPanel{gw: gw, current: current, notifier: notifier, loc: loc}
	p.resetLocked()
	return p
}

func (p *CommentPanel) resetLocked() {
	p.recipeID = ""
	p.status = PanelClosed
	p.loadErr = nil
	p.comments = []model.Comment{}
	p.draft = ""
	p.editingID = ""
	p.editContent = ""
	p.bulkMode = false
	p.selected = map[string]bool{}
}

// Open loads the comments of recipeID. Nothing is fetched while the panel is
// hidden or no recipe is chosen.
func (p *CommentPanel) Open(ctx context.Context, recipeID string, visible bool) (PanelState, error) {
	recipeID = strings.TrimSpace(recipeID)

	p.mu.Lock()
	if !visible || recipeID == "" {
		p.resetLocked()
		state := p.stateLocked()
		p.mu.Unlock()
		return state, nil
	}

	if p.recipeID != recipeID {
		p.resetLocked()
	}
	p.recipeID = recipeID
	p.status = PanelLoading
	p.loadErr = nil
	p.mu.Unlock()

	comments, err := p.gw.RecipeComments(ctx, recipeID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.recipeID != recipeID {
		return p.stateLocked(), nil
	}

	if err != nil {
		slog.Warn("failed to load comments", "recipe_id", recipeID, "error", err)
		p.status = PanelError
		p.loadErr = err
		return p.stateLocked(), err
	}

	p.comments = append([]model.Comment{}, comments...)
	p.selected = map[string]bool{}
	p.refreshStatusLocked()
	return p.stateLocked(), nil
}

// Retry reloads the current recipe after a failed load.
func (p *CommentPanel) Retry(ctx context.Context) (PanelState, error) {
	p.mu.Lock()
	recipeID := p.recipeID
	p.mu.Unlock()

	if recipeID == "" {
		return p.State(), model.ErrPanelClosed
	}
	return p.Open(ctx, recipeID, true)
}

func (p *CommentPanel) Close() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return p.stateLocked()
}

func (p *CommentPanel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *CommentPanel) SetDraft(text string) PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = text
	return p.stateLocked()
}

// Add posts a new comment and puts it at the top of the list.
func (p *CommentPanel) Add(ctx context.Context, text string) (PanelState, error) {
	content := strings.TrimSpace(text)

	p.mu.Lock()
	p.draft = text
	recipeID := p.recipeID
	p.mu.Unlock()

	if content == "" {
		p.notifier.Warning("Please enter a comment")
		return p.State(), invalidInput("comment is empty", model.ErrEmptyContent)
	}
	if recipeID == "" {
		p.notifier.Error("No recipe selected")
		return p.State(), invalidInput("recipe id is required", model.ErrMissingRecipeID)
	}

	comment, err := p.gw.AddComment(ctx, recipeID, content)
	if err != nil {
		p.notifier.Error("Failed to add comment: " + errorMessage(err))
		return p.State(), err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.recipeID == recipeID {
		p.comments = append([]model.Comment{comment}, p.comments...)
		p.draft = ""
		p.refreshStatusLocked()
	}
	p.notifier.Success("Comment added")
	return p.stateLocked(), nil
}

// BeginEdit starts an inline edit. Only the author may edit a comment.
func (p *CommentPanel) BeginEdit(id string) (PanelState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.indexLocked(id)
	if idx < 0 {
		return p.stateLocked(), model.ErrCommentNotFound
	}
	if !p.canEditLocked(p.comments[idx]) {
		return p.stateLocked(), forbidden("only the author can edit this comment")
	}

	p.editingID = id
	p.editContent = p.comments[idx].Content
	return p.stateLocked(), nil
}

func (p *CommentPanel) SetEditContent(text string) (PanelState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.editingID == "" {
		return p.stateLocked(), model.ErrNotEditing
	}
	p.editContent = text
	return p.stateLocked(), nil
}

func (p *CommentPanel) SaveEdit(ctx context.Context) (PanelState, error) {
	p.mu.Lock()
	id := p.editingID
	content := strings.TrimSpace(p.editContent)
	p.mu.Unlock()

	if id == "" {
		return p.State(), model.ErrNotEditing
	}
	if content == "" {
		p.notifier.Warning("Comment cannot be empty")
		return p.State(), invalidInput("comment is empty", model.ErrEmptyContent)
	}

	updated, err := p.gw.UpdateComment(ctx, id, content)
	if err != nil {
		p.notifier.Error("Failed to update comment: " + errorMessage(err))
		return p.State(), err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if idx := p.indexLocked(id); idx >= 0 {
		p.comments[idx] = mergeComment(p.comments[idx], updated)
	}
	if p.editingID == id {
		p.editingID = ""
		p.editContent = ""
	}
	p.notifier.Success("Comment updated")
	return p.stateLocked(), nil
}

// CancelEdit leaves the comment as it was; nothing is sent.
func (p *CommentPanel) CancelEdit() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editingID = ""
	p.editContent = ""
	return p.stateLocked()
}

// Delete removes one comment. The author or an admin may delete it, and the
// first unconfirmed call only returns the prompt.
func (p *CommentPanel) Delete(ctx context.Context, id string, confirmed bool) (PanelState, error) {
	p.mu.Lock()
	idx := p.indexLocked(id)
	if idx < 0 {
		state := p.stateLocked()
		p.mu.Unlock()
		return state, model.ErrCommentNotFound
	}
	allowed := p.canDeleteLocked(p.comments[idx])
	state := p.stateLocked()
	p.mu.Unlock()

	if !allowed {
		return state, forbidden("you cannot delete this comment")
	}
	if !confirmed {
		return state, confirmationRequired("Are you sure you want to delete this comment?")
	}

	if err := p.gw.DeleteComment(ctx, id); err != nil {
		p.notifier.Error("Failed to delete comment: " + errorMessage(err))
		return p.State(), err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeLocked(map[string]bool{id: true})
	if p.editingID == id {
		p.editingID = ""
		p.editContent = ""
	}
	p.notifier.Success("Comment deleted")
	return p.stateLocked(), nil
}

func (p *CommentPanel) ToggleBulkMode() (PanelState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isAdminLocked() {
		return p.stateLocked(), forbidden("bulk moderation requires an admin")
	}

	p.bulkMode = !p.bulkMode
	if !p.bulkMode {
		p.selected = map[string]bool{}
	}
	return p.stateLocked(), nil
}

func (p *CommentPanel) Select(id string, selected bool) (PanelState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireBulkLocked(); err != nil {
		return p.stateLocked(), err
	}
	if p.indexLocked(id) < 0 {
		return p.stateLocked(), model.ErrCommentNotFound
	}

	if selected {
		p.selected[id] = true
	} else {
		delete(p.selected, id)
	}
	return p.stateLocked(), nil
}

func (p *CommentPanel) SelectAll(selected bool) (PanelState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireBulkLocked(); err != nil {
		return p.stateLocked(), err
	}

	p.selected = map[string]bool{}
	if selected {
		for _, c := range p.comments {
			p.selected[c.ID] = true
		}
	}
	return p.stateLocked(), nil
}

func (p *CommentPanel) SelectAllState() SelectAllState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectAllLocked()
}

// BulkDelete removes every selected comment, then leaves bulk mode.
func (p *CommentPanel) BulkDelete(ctx context.Context, confirmed bool) (PanelState, error) {
	p.mu.Lock()
	if err := p.requireBulkLocked(); err != nil {
		state := p.stateLocked()
		p.mu.Unlock()
		return state, err
	}
	ids := p.selectedIDsLocked()
	state := p.stateLocked()
	p.mu.Unlock()

	if len(ids) == 0 {
		p.notifier.Warning("Select at least one comment to delete")
		return state, invalidInput("no comments selected", model.ErrNothingSelected)
	}
	if !confirmed {
		return state, confirmationRequired(fmt.Sprintf("Delete %d selected comments?", len(ids)))
	}

	if err := p.gw.DeleteMultipleComments(ctx, ids); err != nil {
		p.notifier.Error("Failed to delete comments: " + errorMessage(err))
		return p.State(), err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	removed := make(map[string]bool, len(ids))
	for _, id := range ids {
		removed[id] = true
	}
	p.removeLocked(removed)
	p.selected = map[string]bool{}
	p.bulkMode = false
	p.notifier.Success(fmt.Sprintf("Deleted %d comments", len(ids)))
	return p.stateLocked(), nil
}

func (p *CommentPanel) requireBulkLocked() error {
	if !p.isAdminLocked() {
		return forbidden("bulk moderation requires an admin")
	}
	if !p.bulkMode {
		return apierror.New("BULK_MODE_OFF", "enable bulk mode first", "", http.StatusConflict).WithKind(apierror.KindValidation)
	}
	return nil
}

func (p *CommentPanel) removeLocked(ids map[string]bool) {
	kept := make([]model.Comment, 0, len(p.comments))
	for _, c := range p.comments {
		if !ids[c.ID] {
			kept = append(kept, c)
		}
	}
	p.comments = kept
	for id := range ids {
		delete(p.selected, id)
	}
	p.refreshStatusLocked()
}

func (p *CommentPanel) refreshStatusLocked() {
	if p.status == PanelClosed && p.recipeID == "" {
		return
	}
	if len(p.comments) == 0 {
		p.status = PanelEmpty
	} else {
		p.status = PanelReady
	}
}

func (p *CommentPanel) indexLocked(id string) int {
	for i, c := range p.comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (p *CommentPanel) userLocked() *model.SessionUser {
	if p.current == nil {
		return nil
	}
	return p.current.User()
}

func (p *CommentPanel) isAdminLocked() bool {
	return p.userLocked().IsAdmin()
}

func (p *CommentPanel) canEditLocked(c model.Comment) bool {
	user := p.userLocked()
	return user != nil && user.ID != "" && c.Author.ID == user.ID
}

func (p *CommentPanel) canDeleteLocked(c model.Comment) bool {
	return p.isAdminLocked() || p.canEditLocked(c)
}

func (p *CommentPanel) selectedIDsLocked() []string {
	ids := make([]string, 0, len(p.selected))
	for _, c := range p.comments {
		if p.selected[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func (p *CommentPanel) selectAllLocked() SelectAllState {
	count := len(p.selectedIDsLocked())
	switch {
	case count == 0:
		return SelectNone
	case count == len(p.comments):
		return SelectAll
	default:
		return SelectSome
	}
}

func (p *CommentPanel) stateLocked() PanelState {
	views := make([]CommentView, 0, len(p.comments))
	for _, c := range p.comments {
		views = append(views, CommentView{
			Comment:    c,
			AuthorName: c.Author.DisplayName(),
			Date:       util.FormatDate(c.CreatedAt, p.loc),
			Edited:     c.Edited(),
			CanEdit:    p.canEditLocked(c),
			CanDelete:  p.canDeleteLocked(c),
			Selected:   p.selected[c.ID],
		})
	}

	state := PanelState{
		RecipeID:    p.recipeID,
		Status:      p.status,
		Comments:    views,
		Draft:       p.draft,
		EditingID:   p.editingID,
		EditContent: p.editContent,
		BulkMode:    p.bulkMode,
		Selected:    p.selectedIDsLocked(),
		SelectAll:   p.selectAllLocked(),
		CanModerate: p.isAdminLocked(),
	}
	if p.loadErr != nil {
		state.Error = errorMessage(p.loadErr)
	}
	return state
}

func mergeComment(base model.Comment, updated model.Comment) model.Comment {
	out := base
	if updated.Content != "" {
		out.Content = updated.Content
	}
	if updated.Author != (model.Author{}) {
		out.Author = updated.Author
	}
	if updated.CreatedAt != "" {
		out.CreatedAt = updated.CreatedAt
	}
	if updated.UpdatedAt != "" {
		out.UpdatedAt = updated.UpdatedAt
	}
	return out
}

func errorMessage(err error) string {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
