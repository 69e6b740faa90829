// Package watchui is the terminal UI behind 'docpilot watch'. It is a
// thin presentation layer: all session, polling, and upload mechanics
// live in the sync layer; this model renders snapshots and forwards
// user intents (filter change, page navigation, upload) into it.
package watchui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/sync"
)

// Tab identifies the active view.
type Tab int

const (
	// TabDocuments shows the filtered page view.
	TabDocuments Tab = iota
	// TabDashboard shows aggregate counts from the sweep.
	TabDashboard
)

// snapshotMsg reports that the sync layer applied new data and the
// view should redraw.
type snapshotMsg struct{}

// refreshedMsg reports completion of a user-triggered (non-silent)
// refresh.
type refreshedMsg struct{ err error }

// uploadDoneMsg reports completion of an upload started from the UI.
// Feedback reaches the user through the coordinator's notice.
type uploadDoneMsg struct{}

// sessionExpiredMsg reports the client's 401 teardown signal.
type sessionExpiredMsg struct{}

type keyMap struct {
	Quit     key.Binding
	Tab      key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Filter   key.Binding
	Upload   key.Binding
	Dismiss  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		NextPage: key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("left", "b"), key.WithHelp("←", "prev page")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle filter")),
		Upload:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss notice")),
	}
}

// Model is the bubbletea model for the watch view.
type Model struct {
	ctx        context.Context
	collection *sync.Collection
	uploader   *sync.Uploader
	poller     *sync.Poller
	profile    *api.Profile

	// updates carries redraw signals from the poller and the upload
	// coordinator; expired carries the 401 teardown signal.
	updates chan struct{}
	expired chan struct{}

	query    sync.Query
	tab      Tab
	keys     keyMap
	spin     spinner.Model
	input    textinput.Model
	entering bool
	loadErr  error
	expire   bool
	width    int
	height   int
}

// New assembles the model with the given initial query. The poller is
// not yet started; Init starts it alongside the initial load.
func New(ctx context.Context, collection *sync.Collection, uploader *sync.Uploader, poller *sync.Poller, profile *api.Profile, query sync.Query, updates, expired chan struct{}) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	input := textinput.New()
	input.Placeholder = "path to file"
	input.CharLimit = 512

	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = api.DefaultPageSize
	}

	return Model{
		ctx:        ctx,
		collection: collection,
		uploader:   uploader,
		poller:     poller,
		profile:    profile,
		updates:    updates,
		expired:    expired,
		query:      query,
		keys:       defaultKeyMap(),
		spin:       spin,
		input:      input,
	}
}

func (m Model) Init() tea.Cmd {
	m.poller.Start(m.ctx, m.query)
	return tea.Batch(
		m.spin.Tick,
		m.initialLoad(),
		listenUpdates(m.updates),
		listenExpired(m.expired),
	)
}

// initialLoad fetches the page view and the aggregate sweep in
// parallel so the first paint has both.
func (m Model) initialLoad() tea.Cmd {
	ctx, query := m.ctx, m.query
	collection := m.collection
	return func() tea.Msg {
		group, ctx := errgroup.WithContext(ctx)
		group.Go(func() error { return collection.RefreshPage(ctx, query, false) })
		group.Go(func() error { return collection.RefreshStats(ctx) })
		return refreshedMsg{err: group.Wait()}
	}
}

func listenUpdates(updates chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return snapshotMsg{}
	}
}

func listenExpired(expired chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-expired
		return sessionExpiredMsg{}
	}
}

func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = message.Width, message.Height
		return m, nil

	case snapshotMsg:
		return m, listenUpdates(m.updates)

	case sessionExpiredMsg:
		m.expire = true
		m.poller.Stop()
		return m, tea.Quit

	case refreshedMsg:
		m.loadErr = message.err
		return m, nil

	case uploadDoneMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(message)
		return m, cmd

	case tea.KeyMsg:
		if m.entering {
			return m.updateEntering(message)
		}
		return m.updateKeys(message)
	}

	return m, nil
}

func (m Model) updateKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Quit):
		m.poller.Stop()
		return m, tea.Quit

	case key.Matches(message, m.keys.Tab):
		if m.tab == TabDocuments {
			m.tab = TabDashboard
		} else {
			m.tab = TabDocuments
		}
		return m, nil

	case key.Matches(message, m.keys.Filter):
		m.query.Status = nextFilter(m.query.Status)
		m.query.Page = 1
		return m, m.restart()

	case key.Matches(message, m.keys.NextPage):
		if page := m.collection.PageView(); page != nil && m.query.Page < page.TotalPages {
			m.query.Page++
			return m, m.restart()
		}
		return m, nil

	case key.Matches(message, m.keys.PrevPage):
		if m.query.Page > 1 {
			m.query.Page--
			return m, m.restart()
		}
		return m, nil

	case key.Matches(message, m.keys.Upload):
		if !m.uploader.Uploading() {
			m.entering = true
			m.input.Reset()
			return m, m.input.Focus()
		}
		return m, nil

	case key.Matches(message, m.keys.Dismiss):
		m.uploader.Dismiss()
		return m, nil
	}

	return m, nil
}

func (m Model) updateEntering(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.String() {
	case "esc":
		m.entering = false
		m.input.Blur()
		return m, nil
	case "enter":
		path := m.input.Value()
		m.entering = false
		m.input.Blur()
		if path == "" {
			return m, nil
		}
		ctx, uploader := m.ctx, m.uploader
		return m, func() tea.Msg {
			// Outcome lands in the coordinator's notice; errors are
			// already reflected there.
			uploader.Upload(ctx, path)
			return uploadDoneMsg{}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(message)
	return m, cmd
}

// restart tears down the poller timers and starts fresh ones with the
// new parameters, then runs a loading (non-silent) refresh so the
// user sees immediate feedback.
func (m Model) restart() tea.Cmd {
	m.poller.Start(m.ctx, m.query)
	ctx, query := m.ctx, m.query
	collection := m.collection
	return func() tea.Msg {
		return refreshedMsg{err: collection.RefreshPage(ctx, query, false)}
	}
}

// nextFilter cycles all -> pending -> processing -> completed ->
// failed -> all.
func nextFilter(status api.Status) api.Status {
	switch status {
	case "":
		return api.StatusPending
	case api.StatusPending:
		return api.StatusProcessing
	case api.StatusProcessing:
		return api.StatusCompleted
	case api.StatusCompleted:
		return api.StatusFailed
	default:
		return ""
	}
}

// SessionExpired reports whether the UI quit because the server
// invalidated the session.
func (m Model) SessionExpired() bool { return m.expire }
