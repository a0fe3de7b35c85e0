// ABOUTME: Post lifecycle controller: load, edit, save, delete, and redirect for one post view.
// ABOUTME: Event-loop driven; I/O is handed out as tasks whose events are fed back through Handle.
package blog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/2389-research/quill/internal/api"
	"github.com/2389-research/quill/internal/models"
)

// Prompts shown before a mutation.
const (
	SavePrompt   = "Do you want to Create/Update"
	DeletePrompt = "Are you sure you want to delete this post?"
)

// User-visible alert texts.
const (
	AlertSaved        = "Success!"
	AlertSaveFailed   = "Failed to create/update post"
	AlertSaveError    = "Post Error"
	AlertDeleted      = "Delete successfully!"
	AlertDeleteFailed = "Failed to delete post"
	AlertDeleteError  = "Delete Error"
)

// NotFoundMessage is rendered in place of a post that could not be loaded.
const NotFoundMessage = "Post not found."

var (
	// ErrBusy is returned when a save or delete is already confirming or in flight.
	ErrBusy = errors.New("another save or delete is in progress")

	// ErrInvalidState is returned when an intent does not apply to the current state.
	ErrInvalidState = errors.New("action not available in current state")

	// ErrDeclined is returned when the user answers no to a confirmation.
	ErrDeclined = errors.New("confirmation declined")
)

// State is the controller's position in the post-view state machine.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateNotFound
	StateViewing
	StateEditing
	StateSaveConfirm
	StateSaving
	StateDeleteConfirm
	StateDeleting
	StateRedirected
)

var stateNames = [...]string{
	StateIdle:          "idle",
	StateLoading:       "loading",
	StateNotFound:      "not_found",
	StateViewing:       "viewing",
	StateEditing:       "editing",
	StateSaveConfirm:   "save_confirm",
	StateSaving:        "saving",
	StateDeleteConfirm: "delete_confirm",
	StateDeleting:      "deleting",
	StateRedirected:    "redirected",
}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is the result of a Task, applied with Controller.Handle.
type Event interface {
	generation() uint64
}

// Task performs I/O off the event loop. It must not touch the controller.
type Task func(ctx context.Context) Event

// PostLoaded carries the result of fetching the post in view.
type PostLoaded struct {
	gen  uint64
	ID   string
	Post *models.Post
	Err  error
}

// OwnershipResolved carries the ownership decision for the post in view.
type OwnershipResolved struct {
	gen       uint64
	Ownership Ownership
}

// SaveFinished carries the result of a create or update.
type SaveFinished struct {
	gen     uint64
	ID      string
	Created bool
	Draft   models.Draft
	Err     error
}

// DeleteFinished carries the result of a delete.
type DeleteFinished struct {
	gen uint64
	ID  string
	Err error
}

func (e PostLoaded) generation() uint64        { return e.gen }
func (e OwnershipResolved) generation() uint64 { return e.gen }
func (e SaveFinished) generation() uint64      { return e.gen }
func (e DeleteFinished) generation() uint64    { return e.gen }

// Controller orchestrates a single post view. All methods must be called from
// the same goroutine.
type Controller struct {
	gw       Gateway
	tokens   TokenStore
	verifier *Verifier
	nav      Navigator
	notify   Notifier
	logger   *zap.Logger

	gen       uint64
	route     Route
	state     State
	resume    State
	post      *models.Post
	draft     models.Draft
	ownership Ownership
	lastErr   error
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller in StateIdle.
func NewController(gw Gateway, tokens TokenStore, nav Navigator, notify Notifier, opts ...ControllerOption) *Controller {
	c := &Controller{
		gw:     gw,
		tokens: tokens,
		nav:    nav,
		notify: notify,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.verifier = NewVerifier(gw, tokens, c.logger)
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Route returns the route in view.
func (c *Controller) Route() Route { return c.route }

// Post returns the loaded post, or nil while loading or when not found.
func (c *Controller) Post() *models.Post { return c.post }

// Draft returns the editor contents.
func (c *Controller) Draft() models.Draft { return c.draft }

// Ownership returns the ownership decision for the post in view.
func (c *Controller) Ownership() Ownership { return c.ownership }

// Err returns the failure of the last save or delete, or nil.
func (c *Controller) Err() error { return c.lastErr }

// Busy returns true while a save or delete is confirming or in flight.
func (c *Controller) Busy() bool {
	switch c.state {
	case StateSaveConfirm, StateSaving, StateDeleteConfirm, StateDeleting:
		return true
	}
	return false
}

// CanEdit returns true when the read view may offer edit and delete.
// It stays false until the server confirms ownership.
func (c *Controller) CanEdit() bool {
	return c.post != nil && !c.post.IsDraft() && c.ownership.Allowed()
}

// CanMutate returns true when the editor may offer save. The editor is
// optimistic: controls stay available while the check is pending, and a
// negative answer redirects away instead.
func (c *Controller) CanMutate() bool {
	if c.route.Kind != RouteEdit || c.post == nil {
		return false
	}
	if c.post.IsDraft() {
		return true
	}
	return !c.ownership.Checked() || c.ownership.Allowed()
}

// CanDelete returns true when a delete intent would be accepted.
func (c *Controller) CanDelete() bool {
	if c.post == nil || c.post.IsDraft() {
		return false
	}
	return c.state == StateViewing || c.state == StateEditing
}

// Open starts a new view of route and returns the loads to run.
// Results from any earlier view are ignored from here on.
func (c *Controller) Open(route Route) []Task {
	c.gen++
	c.route = route
	c.post = nil
	c.draft = models.Draft{}
	c.ownership = Ownership{}
	c.lastErr = nil

	switch route.Kind {
	case RouteRead, RouteEdit:
	default:
		c.setState(StateIdle)
		return nil
	}

	if route.IsNew() {
		c.post = models.NewDraft()
		c.setState(StateEditing)
		return nil
	}

	c.setState(StateLoading)
	gen, id := c.gen, route.ID
	cred, _ := c.tokens.Get()
	return []Task{
		func(ctx context.Context) Event {
			post, err := c.gw.FetchByID(ctx, id)
			return PostLoaded{gen: gen, ID: id, Post: post, Err: err}
		},
		func(ctx context.Context) Event {
			return OwnershipResolved{gen: gen, Ownership: c.verifier.check(ctx, id, cred)}
		},
	}
}

// Handle applies a task result.
func (c *Controller) Handle(ev Event) {
	switch ev := ev.(type) {
	case PostLoaded:
		c.handlePost(ev)
	case OwnershipResolved:
		c.handleOwnership(ev)
	case SaveFinished:
		c.handleSave(ev)
	case DeleteFinished:
		c.handleDelete(ev)
	}
}

// current reports whether an event belongs to the view in scope.
func (c *Controller) current(gen uint64, id string) bool {
	return gen == c.gen && id == c.route.ID
}

func (c *Controller) handlePost(ev PostLoaded) {
	if !c.current(ev.gen, ev.ID) {
		c.logger.Debug("dropping stale post", zap.String("post_id", ev.ID))
		return
	}
	if c.state != StateLoading {
		return
	}
	if ev.Err != nil {
		c.logger.Warn("post load failed", zap.String("post_id", ev.ID), zap.Error(ev.Err))
	}
	if ev.Post == nil || ev.Post.ID != ev.ID {
		c.setState(StateNotFound)
		return
	}

	c.post = ev.Post
	c.draft = ev.Post.Draft()
	if c.route.Kind == RouteEdit {
		c.setState(StateEditing)
	} else {
		c.setState(StateViewing)
	}
}

func (c *Controller) handleOwnership(ev OwnershipResolved) {
	if !c.current(ev.gen, ev.Ownership.PostID()) {
		c.logger.Debug("dropping stale ownership", zap.String("post_id", ev.Ownership.PostID()))
		return
	}
	c.ownership = ev.Ownership
	if cred, _ := c.tokens.Get(); cred != ev.Ownership.cred {
		c.logger.Debug("ownership computed for a replaced credential", zap.String("post_id", ev.Ownership.PostID()))
		c.ownership = Ownership{postID: ev.Ownership.PostID(), cred: cred, checked: true}
	}
	if c.route.Kind != RouteEdit || c.ownership.Allowed() || c.state == StateRedirected {
		return
	}

	c.logger.Info("not the owner, leaving editor", zap.String("post_id", c.route.ID))
	c.setState(StateRedirected)
	c.nav.Navigate(ReadPath(c.route.ID))
}

// SetDraft replaces the editor contents.
func (c *Controller) SetDraft(title, content string) error {
	if c.state != StateEditing {
		return ErrInvalidState
	}
	c.draft = models.Draft{Title: title, Content: content}
	return nil
}

// RequestSave records a save intent. Nothing is sent until ResolveSave(true).
func (c *Controller) RequestSave() error {
	if c.Busy() {
		return ErrBusy
	}
	if c.state != StateEditing || !c.CanMutate() {
		return ErrInvalidState
	}
	c.lastErr = nil
	c.setState(StateSaveConfirm)
	return nil
}

// ResolveSave answers the save confirmation. A declined save returns to the
// editor with no tasks.
func (c *Controller) ResolveSave(accepted bool) []Task {
	if c.state != StateSaveConfirm {
		return nil
	}
	if !accepted {
		c.setState(StateEditing)
		return nil
	}

	c.setState(StateSaving)
	cred, _ := c.tokens.Get()
	gen, draft := c.gen, c.draft

	if c.post.IsDraft() {
		return []Task{func(ctx context.Context) Event {
			err := c.gw.Create(ctx, draft, cred)
			return SaveFinished{gen: gen, Created: true, Draft: draft, Err: err}
		}}
	}

	id := c.post.ID
	return []Task{func(ctx context.Context) Event {
		err := c.gw.Update(ctx, id, draft, cred)
		return SaveFinished{gen: gen, ID: id, Draft: draft, Err: err}
	}}
}

func (c *Controller) handleSave(ev SaveFinished) {
	if ev.gen != c.gen || c.state != StateSaving {
		// The view moved on while the request was in flight; still report it.
		c.alertSave(ev.Err)
		return
	}

	if ev.Err != nil {
		c.logger.Warn("save failed", zap.String("post_id", ev.ID), zap.Bool("create", ev.Created), zap.Error(ev.Err))
		c.lastErr = ev.Err
		c.setState(StateEditing)
		c.alertSave(ev.Err)
		return
	}

	c.notify.Alert(AlertSaved)
	if ev.Created {
		c.setState(StateRedirected)
		c.nav.Navigate("/")
		return
	}

	c.post.Title = ev.Draft.Title
	c.post.Content = ev.Draft.Content
	c.setState(StateViewing)
	c.nav.Navigate(ReadPath(ev.ID))
}

func (c *Controller) alertSave(err error) {
	switch {
	case err == nil:
		c.notify.Alert(AlertSaved)
	case api.IsTransport(err):
		c.notify.Alert(AlertSaveError)
	default:
		c.notify.Alert(AlertSaveFailed)
	}
}

// RequestDelete records a delete intent for the persisted post in view.
func (c *Controller) RequestDelete() error {
	if c.Busy() {
		return ErrBusy
	}
	if !c.CanDelete() {
		return ErrInvalidState
	}
	c.lastErr = nil
	c.resume = c.state
	c.setState(StateDeleteConfirm)
	return nil
}

// ResolveDelete answers the delete confirmation. A declined delete restores
// the previous state with no tasks. No ownership pre-check is made; the
// server rejects deletes it does not allow.
func (c *Controller) ResolveDelete(accepted bool) []Task {
	if c.state != StateDeleteConfirm {
		return nil
	}
	if !accepted {
		c.setState(c.resume)
		return nil
	}

	c.setState(StateDeleting)
	cred, _ := c.tokens.Get()
	gen, id := c.gen, c.post.ID
	return []Task{func(ctx context.Context) Event {
		return DeleteFinished{gen: gen, ID: id, Err: c.gw.Remove(ctx, id, cred)}
	}}
}

func (c *Controller) handleDelete(ev DeleteFinished) {
	if ev.gen != c.gen || c.state != StateDeleting {
		c.alertDelete(ev.Err)
		return
	}

	if ev.Err != nil {
		c.logger.Warn("delete failed", zap.String("post_id", ev.ID), zap.Error(ev.Err))
		c.lastErr = ev.Err
		c.setState(c.resume)
		c.alertDelete(ev.Err)
		return
	}

	c.notify.Alert(AlertDeleted)
	c.setState(StateRedirected)
	c.nav.Navigate("/")
}

func (c *Controller) alertDelete(err error) {
	switch {
	case err == nil:
		c.notify.Alert(AlertDeleted)
	case api.IsTransport(err):
		c.notify.Alert(AlertDeleteError)
	default:
		c.notify.Alert(AlertDeleteFailed)
	}
}

func (c *Controller) setState(s State) {
	if c.state != s {
		c.logger.Debug("post view transition",
			zap.String("route", c.route.Path()),
			zap.Stringer("from", c.state),
			zap.Stringer("to", s),
		)
	}
	c.state = s
}
