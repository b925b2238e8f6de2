package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/wbs/internal/backend"
	"github.com/alexanderramin/wbs/internal/cli/formatter"
	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/rollup"
	"github.com/alexanderramin/wbs/internal/service"
	"github.com/alexanderramin/wbs/internal/treestate"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// treeKeyMap lists the tree browser bindings.
type treeKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Search      key.Binding
	CycleStatus key.Binding
	Reload      key.Binding
	Refetch     key.Binding
	Quit        key.Binding
}

func defaultTreeKeys() treeKeyMap {
	return treeKeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open/close")),
		ExpandAll:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		CycleStatus: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Refetch:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refetch")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k treeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.ExpandAll, k.CollapseAll, k.Search, k.CycleStatus, k.Reload, k.Refetch, k.Quit}
}

// loadSource says where a reload takes the project from. With a backend
// configured, r pulls through the client cache and R bypasses it; without
// one both fall back to the local store.
type loadSource int

const (
	fromStore loadSource = iota
	fromBackend
	fromBackendUncached
)

// treeLoadedMsg carries the unfiltered tree for a project. pullErr is a
// failed pull; the tree then shows the last stored copy.
type treeLoadedMsg struct {
	res     *service.TreeResult
	err     error
	pullErr error
}

// treeModel browses one project's tree. The tree is loaded unfiltered and
// narrowed locally, so changing the filter never hits the database.
type treeModel struct {
	ctx       context.Context
	app       *App
	projectID string
	keys      treeKeyMap

	full     []rollup.PhaseWithWbs
	progress int
	exp      *treestate.Expansion
	filter   treestate.Filter
	// statusIdx indexes domain.AllStatuses for the f key; -1 keeps the
	// statuses the browser was started with.
	statusIdx  int
	baseStatus []domain.Status
	rows       []treestate.Row

	cursor  int
	offset  int
	width   int
	height  int
	loading bool
	err     error
	notice  string

	searching bool
	search    textinput.Model
}

func newTreeModel(ctx context.Context, app *App, projectID string, filter treestate.Filter) *treeModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "name, code or description"
	ti.CharLimit = 100

	return &treeModel{
		ctx:        ctx,
		app:        app,
		projectID:  projectID,
		keys:       defaultTreeKeys(),
		filter:     filter,
		statusIdx:  -1,
		baseStatus: filter.Statuses,
		width:      defaultTreeWidth,
		loading:    true,
		search:     ti,
	}
}

func (m *treeModel) Init() tea.Cmd {
	return m.load(fromStore)
}

func (m *treeModel) load(src loadSource) tea.Cmd {
	app, ctx, projectID := m.app, m.ctx, m.projectID
	now := app.now()
	return func() tea.Msg {
		var pullErr error
		switch {
		case app.Sync == nil || src == fromStore:
		case src == fromBackendUncached:
			_, pullErr = app.Sync.Refresh(ctx, projectID)
		default:
			_, pullErr = app.Sync.Pull(ctx, projectID)
		}
		if errors.Is(pullErr, backend.ErrNotConfigured) {
			pullErr = nil
		}
		res, err := app.Tree.Tree(ctx, service.TreeRequest{ProjectID: projectID, Now: &now})
		return treeLoadedMsg{res: res, err: err, pullErr: pullErr}
	}
}

func (m *treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scroll()
		return m, nil

	case treeLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.notice = ""
		if msg.pullErr != nil {
			m.notice = "pull failed: " + msg.pullErr.Error()
		}
		if msg.err != nil {
			return m, nil
		}
		m.full = msg.res.Phases
		m.progress = msg.res.Progress
		if m.exp == nil {
			m.exp = treestate.NewExpansion(m.full)
		}
		m.refresh(!m.filter.IsZero())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *treeModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.filter.Search = strings.TrimSpace(m.search.Value())
		m.refresh(true)
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue(m.filter.Search)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *treeModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(m.rows) {
			row := m.rows[m.cursor]
			if lvl, ok := row.Level(); ok && row.Expandable {
				m.exp.Toggle(lvl, row.ID)
				m.refresh(false)
			}
		}
	case key.Matches(msg, m.keys.ExpandAll):
		if m.exp != nil {
			m.exp.ExpandAll(m.visibleTree())
			m.refresh(false)
		}
	case key.Matches(msg, m.keys.CollapseAll):
		if m.exp != nil {
			m.exp.CollapseAll(m.visibleTree())
			m.cursor = 0
			m.refresh(false)
		}
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.filter.Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.CycleStatus):
		m.statusIdx++
		if m.statusIdx >= len(domain.AllStatuses) {
			m.statusIdx = -1
		}
		if m.statusIdx < 0 {
			m.filter.Statuses = m.baseStatus
		} else {
			m.filter.Statuses = []domain.Status{domain.AllStatuses[m.statusIdx]}
		}
		m.refresh(true)
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.load(fromBackend)
	case key.Matches(msg, m.keys.Refetch):
		m.loading = true
		return m, m.load(fromBackendUncached)
	}
	m.scroll()
	return m, nil
}

func (m *treeModel) visibleTree() []rollup.PhaseWithWbs {
	if m.filter.IsZero() {
		return m.full
	}
	f := m.filter
	f.Now = m.app.now()
	return treestate.Apply(m.full, f)
}

// refresh re-flattens the tree. A changed filter opens every surviving
// branch so matches are visible.
func (m *treeModel) refresh(filterChanged bool) {
	if m.exp == nil {
		return
	}
	tree := m.visibleTree()
	if filterChanged && !m.filter.IsZero() {
		m.exp.ExpandAll(tree)
	}
	m.rows = treestate.Flatten(tree, m.exp)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.scroll()
}

// pageSize is the number of tree rows that fit between header and footer.
func (m *treeModel) pageSize() int {
	if m.height <= 0 {
		return len(m.rows)
	}
	chrome := 4
	if m.notice != "" {
		chrome++
	}
	return max(m.height-chrome, 3)
}

func (m *treeModel) scroll() {
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if page > 0 && m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	if m.offset > len(m.rows) {
		m.offset = 0
	}
}

func (m *treeModel) View() string {
	if m.loading {
		return "\n  " + formatter.Dim("Loading "+m.projectID+"...")
	}
	if m.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+m.err.Error())
	}

	var b strings.Builder
	b.WriteString(formatter.Header(m.projectID) + "  " + formatter.RenderProgress(m.progress, 20))
	if desc := describeFilter(m.filter); desc != "" {
		b.WriteString("  " + formatter.Dim(desc))
	}
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString("  " + formatter.StyleYellow.Render(m.notice) + "\n")
	}
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(formatter.Dim("  Nothing matches.") + "\n")
	} else {
		end := min(m.offset+m.pageSize(), len(m.rows))
		b.WriteString(formatter.RenderTree(m.rows[m.offset:end], formatter.TreeOptions{
			Now:    m.app.now(),
			Width:  m.width,
			Cursor: m.cursor - m.offset,
		}))
	}

	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(m.helpLine())
	}
	return b.String()
}

func (m *treeModel) helpLine() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, kb := range m.keys.ShortHelp() {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return formatter.Dim(strings.Join(parts, " · "))
}

func describeFilter(f treestate.Filter) string {
	var parts []string
	if len(f.Statuses) > 0 {
		names := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			names[i] = string(s)
		}
		parts = append(parts, "status="+strings.Join(names, ","))
	}
	if f.Assignee != "" {
		parts = append(parts, "assignee="+f.Assignee)
	}
	if f.Bucket != "" {
		parts = append(parts, "due="+string(f.Bucket))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		parts = append(parts, fmt.Sprintf("search=%q", s))
	}
	return strings.Join(parts, " ")
}

var _ tea.Model = (*treeModel)(nil)

