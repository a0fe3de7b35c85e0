// ABOUTME: Full-screen blog browser: list, read, editor, and login views.
// ABOUTME: Controller tasks run as tea.Cmds and their events come back as messages.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/2389-research/quill/internal/blog"
	"github.com/2389-research/quill/internal/models"
	"github.com/2389-research/quill/internal/render"
)

// eventMsg carries a controller event back into the update loop.
type eventMsg struct {
	ev blog.Event
}

// postsLoadedMsg carries the result of a list load.
type postsLoadedMsg struct {
	gen   uint64
	posts []models.Post
	err   error
}

// navQueue records navigations requested by the controller during Update.
type navQueue struct {
	pending []string
}

func (q *navQueue) Navigate(path string) {
	q.pending = append(q.pending, path)
}

// alertBar holds the most recent alert.
type alertBar struct {
	msg string
}

func (a *alertBar) Alert(msg string) {
	a.msg = msg
}

// BrowserDeps are the collaborators the browser needs.
type BrowserDeps struct {
	Gateway  blog.Gateway
	Tokens   blog.TokenStore
	Renderer *render.Renderer
	Logger   *zap.Logger
}

// Browser is the bubbletea model for `quill browse`.
type Browser struct {
	ctx      context.Context
	ctrl     *blog.Controller
	list     *blog.ListController
	session  *blog.Session
	renderer *render.Renderer
	nav      *navQueue
	alerts   *alertBar
	initCmd  tea.Cmd

	route       blog.Route
	listGen     uint64
	listLoading bool
	posts       []models.Post
	listErr     error
	cursor      int

	login        LoginModel
	spinner      spinner.Model
	viewport     viewport.Model
	title        textinput.Model
	body         textarea.Model
	focusBody    bool
	editorFilled bool
	rendered     bool
	quitting     bool
}

// NewBrowser creates a browser opened at start.
func NewBrowser(ctx context.Context, deps BrowserDeps, start blog.Route) Browser {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	nav := &navQueue{}
	alerts := &alertBar{}

	title := textinput.New()
	title.Placeholder = "Title"
	title.Width = 60

	body := textarea.New()
	body.Placeholder = "Write your post in Markdown..."
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.SetWidth(78)
	body.SetHeight(12)

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Browser{
		ctx:  ctx,
		ctrl: blog.NewController(deps.Gateway, deps.Tokens, nav, alerts, blog.WithLogger(logger)),
		list: blog.NewListController(deps.Gateway, deps.Tokens),
		// Login runs off the update loop, so the session must not touch nav.
		session:  blog.NewSession(deps.Gateway, deps.Tokens, blog.NavigatorFunc(func(string) {})),
		renderer: deps.Renderer,
		nav:      nav,
		alerts:   alerts,
		spinner:  s,
		viewport: viewport.New(80, 20),
		title:    title,
		body:     body,
	}
	m.initCmd = m.open(start)
	return m
}

// Init implements tea.Model.
func (m Browser) Init() tea.Cmd {
	return m.initCmd
}

// Route returns the route in view.
func (m Browser) Route() blog.Route {
	return m.route
}

func (m *Browser) open(route blog.Route) tea.Cmd {
	m.route = route
	m.editorFilled = false
	m.rendered = false
	m.focusBody = false
	tasks := m.ctrl.Open(route)

	switch route.Kind {
	case blog.RouteList:
		return m.loadPosts()
	case blog.RouteLogin:
		m.login = NewLoginModel("", m.session.Login).Embedded()
		return m.login.Init()
	}
	m.syncEditor()
	return tea.Batch(m.runTasks(tasks), m.spinner.Tick)
}

func (m *Browser) loadPosts() tea.Cmd {
	m.listGen++
	m.listLoading = true
	m.listErr = nil
	gen, ctx, list := m.listGen, m.ctx, m.list
	return func() tea.Msg {
		posts, err := list.LoadAll(ctx)
		return postsLoadedMsg{gen: gen, posts: posts, err: err}
	}
}

func (m Browser) runTasks(tasks []blog.Task) tea.Cmd {
	if len(tasks) == 0 {
		return nil
	}
	ctx := m.ctx
	cmds := make([]tea.Cmd, 0, len(tasks))
	for _, task := range tasks {
		cmds = append(cmds, func() tea.Msg {
			return eventMsg{ev: task(ctx)}
		})
	}
	return tea.Batch(cmds...)
}

// settle follows any navigation the controller asked for and refreshes
// the editor and viewport from controller state.
func (m *Browser) settle() tea.Cmd {
	if n := len(m.nav.pending); n > 0 {
		path := m.nav.pending[n-1]
		m.nav.pending = m.nav.pending[:0]
		route, err := blog.ParseRoute(path)
		if err != nil {
			route = blog.Route{Kind: blog.RouteList}
		}
		return m.open(route)
	}
	m.syncEditor()
	m.syncViewport()
	return nil
}

func (m *Browser) syncEditor() {
	if m.route.Kind != blog.RouteEdit || m.editorFilled || m.ctrl.State() != blog.StateEditing {
		return
	}
	draft := m.ctrl.Draft()
	m.title.SetValue(draft.Title)
	m.body.SetValue(draft.Content)
	m.title.Focus()
	m.body.Blur()
	m.editorFilled = true
}

func (m *Browser) syncViewport() {
	post := m.ctrl.Post()
	if m.route.Kind != blog.RouteRead || m.rendered || post == nil {
		return
	}
	content := "# " + post.Title + "\n\n" + post.Content
	if m.renderer != nil {
		if out, err := m.renderer.Post(post); err == nil {
			content = out
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
	m.rendered = true
}

func (m Browser) loading() bool {
	if m.route.Kind == blog.RouteList {
		return m.listLoading
	}
	switch m.ctrl.State() {
	case blog.StateLoading, blog.StateSaving, blog.StateDeleting:
		return true
	}
	return false
}

// Update implements tea.Model.
func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.route.Kind == blog.RouteLogin {
		switch msg.(type) {
		case tea.WindowSizeMsg, LoggedInMsg, LoginCancelledMsg:
		default:
			updated, cmd := m.login.Update(msg)
			m.login = updated.(LoginModel)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case eventMsg:
		m.ctrl.Handle(msg.ev)
		return m, m.settle()

	case postsLoadedMsg:
		if msg.gen != m.listGen || m.route.Kind != blog.RouteList {
			return m, nil
		}
		m.listLoading = false
		m.posts, m.listErr = msg.posts, msg.err
		if m.cursor >= len(m.posts) {
			m.cursor = max(len(m.posts)-1, 0)
		}
		return m, nil

	case LoggedInMsg:
		m.alerts.Alert("Logged in.")
		return m, m.open(blog.Route{Kind: blog.RouteList})

	case LoginCancelledMsg:
		return m, m.open(blog.Route{Kind: blog.RouteList})

	case spinner.TickMsg:
		if m.loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.route.Kind == blog.RouteEdit && m.editorFilled {
		return m.updateEditorInputs(msg)
	}
	return m, nil
}

func (m *Browser) resize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = max(height-6, 3)
	m.title.Width = max(width-10, 10)
	m.body.SetWidth(max(width-2, 10))
	m.body.SetHeight(max(height-10, 3))
}

func (m Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.ctrl.State() {
	case blog.StateSaveConfirm:
		return m.answer(msg, m.ctrl.ResolveSave)
	case blog.StateDeleteConfirm:
		return m.answer(msg, m.ctrl.ResolveDelete)
	case blog.StateSaving, blog.StateDeleting:
		return m, nil
	}

	m.alerts.msg = ""
	switch m.route.Kind {
	case blog.RouteList:
		return m.listKeys(msg)
	case blog.RouteRead:
		return m.readKeys(msg)
	case blog.RouteEdit:
		return m.editKeys(msg)
	}
	return m, nil
}

func (m Browser) answer(msg tea.KeyMsg, resolve func(bool) []blog.Task) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		return m, tea.Batch(m.runTasks(resolve(true)), m.spinner.Tick)
	case "n", "esc":
		resolve(false)
	}
	return m, nil
}

func (m Browser) listKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.posts)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.posts) > 0 {
			return m, m.open(blog.Route{Kind: blog.RouteRead, ID: m.posts[m.cursor].ID})
		}
	case "n":
		if m.list.CanCreate() {
			return m, m.open(blog.Route{Kind: blog.RouteEdit, ID: models.NewPostID})
		}
	case "l":
		return m, m.open(blog.Route{Kind: blog.RouteLogin})
	case "x":
		if err := m.session.Logout(); err != nil {
			m.alerts.Alert(fmt.Sprintf("Logout failed: %v", err))
		} else {
			m.alerts.Alert("Logged out.")
		}
	case "r":
		return m, m.loadPosts()
	}
	return m, nil
}

func (m Browser) readKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "esc", "backspace":
		return m, m.open(blog.Route{Kind: blog.RouteList})
	case "r":
		return m, m.open(m.route)
	case "e":
		if m.ctrl.CanEdit() {
			return m, m.open(blog.Route{Kind: blog.RouteEdit, ID: m.route.ID})
		}
		return m, nil
	case "d":
		if m.ctrl.CanEdit() {
			_ = m.ctrl.RequestDelete()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Browser) editKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		post := m.ctrl.Post()
		if post == nil || post.IsDraft() {
			return m, m.open(blog.Route{Kind: blog.RouteList})
		}
		return m, m.open(blog.Route{Kind: blog.RouteRead, ID: post.ID})
	}

	if !m.editorFilled {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		if err := m.ctrl.SetDraft(m.title.Value(), m.body.Value()); err != nil {
			return m, nil
		}
		_ = m.ctrl.RequestSave()
		return m, nil
	case "ctrl+d":
		_ = m.ctrl.RequestDelete()
		return m, nil
	case "tab":
		m.focusBody = !m.focusBody
		if m.focusBody {
			m.title.Blur()
			return m, m.body.Focus()
		}
		m.body.Blur()
		return m, m.title.Focus()
	}
	return m.updateEditorInputs(msg)
}

func (m Browser) updateEditorInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focusBody {
		m.body, cmd = m.body.Update(msg)
	} else {
		m.title, cmd = m.title.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Browser) View() string {
	if m.quitting {
		return ""
	}
	if m.route.Kind == blog.RouteLogin {
		return m.login.View()
	}

	var b strings.Builder
	b.WriteString("\n")

	switch m.route.Kind {
	case blog.RouteList:
		b.WriteString(header("Posts"))
		b.WriteString("\n\n")
		m.viewList(&b)
	case blog.RouteRead:
		b.WriteString(header("Read"))
		b.WriteString("\n\n")
		m.viewRead(&b)
	case blog.RouteEdit:
		section := "Edit"
		if m.route.IsNew() {
			section = "New post"
		}
		b.WriteString(header(section))
		b.WriteString("\n\n")
		m.viewEditor(&b)
	}

	switch m.ctrl.State() {
	case blog.StateSaveConfirm:
		b.WriteString("\n")
		b.WriteString(modalStyle.Render(blog.SavePrompt + "?  [y/n]"))
		b.WriteString("\n")
	case blog.StateDeleteConfirm:
		b.WriteString("\n")
		b.WriteString(modalStyle.Render(blog.DeletePrompt + "  [y/n]"))
		b.WriteString("\n")
	}

	if m.alerts.msg != "" {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(m.alerts.msg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m Browser) viewList(b *strings.Builder) {
	switch {
	case m.listLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading posts...\n")
	case m.listErr != nil:
		b.WriteString(errorStyle.Render(m.listErr.Error()))
		b.WriteString("\n")
	case len(m.posts) == 0:
		b.WriteString(stepStyle.Render("No posts yet."))
		b.WriteString("\n")
	}
	if m.listLoading {
		return
	}

	for i, p := range m.posts {
		line := fmt.Sprintf("%s  %s", p.Title, stepStyle.Render("#"+p.ID))
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func (m Browser) viewRead(b *strings.Builder) {
	switch m.ctrl.State() {
	case blog.StateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading...\n")
	case blog.StateNotFound:
		b.WriteString(errorStyle.Render(blog.NotFoundMessage))
		b.WriteString("\n")
	case blog.StateDeleting:
		b.WriteString(m.spinner.View())
		b.WriteString(" Deleting...\n")
	default:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}
}

func (m Browser) viewEditor(b *strings.Builder) {
	switch m.ctrl.State() {
	case blog.StateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading...\n")
		return
	case blog.StateNotFound:
		b.WriteString(errorStyle.Render(blog.NotFoundMessage))
		b.WriteString("\n")
		return
	}

	b.WriteString(m.title.View())
	b.WriteString("\n\n")
	b.WriteString(m.body.View())
	b.WriteString("\n")

	switch m.ctrl.State() {
	case blog.StateSaving:
		b.WriteString(m.spinner.View())
		b.WriteString(" Saving...\n")
	case blog.StateDeleting:
		b.WriteString(m.spinner.View())
		b.WriteString(" Deleting...\n")
	}
}

func (m Browser) help() string {
	var keys []string
	switch m.route.Kind {
	case blog.RouteList:
		keys = append(keys, "enter read")
		if m.list.CanCreate() {
			keys = append(keys, "n new", "x logout")
		} else {
			keys = append(keys, "l login")
		}
		keys = append(keys, "r reload", "q quit")
	case blog.RouteRead:
		if m.ctrl.CanEdit() {
			keys = append(keys, "e edit", "d delete")
		}
		keys = append(keys, "esc back", "q quit")
	case blog.RouteEdit:
		if m.ctrl.CanMutate() {
			keys = append(keys, "ctrl+s save")
		}
		if m.ctrl.CanDelete() {
			keys = append(keys, "ctrl+d delete")
		}
		keys = append(keys, "tab switch", "esc back")
	}
	return strings.Join(keys, " • ")
}
