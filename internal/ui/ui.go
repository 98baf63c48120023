package ui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// DefaultDebounce is the quiet period after an edit before a search is dispatched.
const DefaultDebounce = 220 * time.Millisecond

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	AddTrackDialog
	CopyDialog
	NameInputView
	EditorView
	CopyProgressView
	CopyResultView
)

// Options configures a [Model].
type Options struct {
	Service  services.PlaylistService
	Engine   *tasks.Engine
	Debounce time.Duration
	BaseURL  string             // used for artist deep links
	OpenURL  func(string) error // defaults to shared.OpenBrowser
}

// Model represents the TUI application state.
type Model struct {
	ctx  context.Context
	opts Options
	view ViewState

	input  textinput.Model
	search SearchState

	// dialog state
	subject   Item
	doc       *models.ExportDocument
	playlists []models.Playlist
	cursor    int
	nameInput textinput.Model
	returnTo  ViewState

	editor *models.PlaylistDetail

	progressChan chan tasks.ProgressUpdate
	copyDone     chan copyDoneMsg
	progress     tasks.ProgressUpdate
	copyResult   *tasks.CopyResult
	copyErr      error

	status string
	err    error

	width int
	help  help.Model
	keys  keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	input := textinput.New()
	input.Placeholder = "search artists, tracks and playlists"
	input.Prompt = "› "
	input.Focus()

	name := textinput.New()
	name.Placeholder = "playlist name"
	name.Prompt = "name: "

	return &Model{
		ctx:       ctx,
		opts:      opts,
		view:      SearchView,
		input:     input,
		search:    NewSearchState(),
		nameInput: name,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// State returns the current search state.
func (m *Model) State() SearchState { return m.search }

// CurrentView returns the active view.
func (m *Model) CurrentView() ViewState { return m.view }

// Init starts the cursor blink of the query input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case AddTrackDialog, CopyDialog:
			return m.handleDialogKeys(msg)
		case NameInputView:
			return m.handleNameKeys(msg)
		case EditorView:
			return m.handleEditorKeys(msg)
		case CopyResultView:
			if key.Matches(msg, m.keys.back, m.keys.enter) {
				m.view = SearchView
				m.copyResult, m.copyErr = nil, nil
			}
		}
		return m, nil

	case debounceMsg:
		if !m.search.Current(msg.token) {
			return m, nil
		}
		if m.search.Blank() {
			m.search.Accept(msg.token, models.EmptySearchResults())
			return m, nil
		}
		return m, m.runSearch(msg.token, m.search.Query)

	case searchResultMsg:
		if !m.search.Current(msg.token) {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.search.Accept(msg.token, msg.results)
		return m, nil

	case playlistsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = SearchView
			return m, nil
		}
		m.playlists = msg.playlists
		if m.cursor > len(m.playlists) {
			m.cursor = len(m.playlists)
		}
		return m, nil

	case exportLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.subject, m.doc = msg.item, msg.doc
		if msg.item.Mine {
			return m, m.loadDetail(msg.item.ID)
		}
		m.openDialog(CopyDialog)
		return m, m.loadPlaylists()

	case detailLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = SearchView
			return m, nil
		}
		m.editor = msg.detail
		if m.view != EditorView {
			m.cursor = 0
		}
		if m.cursor >= len(m.editor.Tracks) {
			m.cursor = max(len(m.editor.Tracks)-1, 0)
		}
		m.view = EditorView
		return m, nil

	case mutationDoneMsg:
		m.err = msg.err
		m.status = msg.status
		if m.view == AddTrackDialog || m.view == NameInputView {
			m.view = SearchView
		}
		switch {
		case msg.reload && m.editor != nil:
			return m, m.loadDetail(m.editor.ID)
		case msg.refresh:
			return m, m.loadPlaylists()
		}
		return m, nil

	case progressMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case copyDoneMsg:
		m.copyResult, m.copyErr = msg.result, msg.err
		m.progressChan = nil
		m.view = CopyResultView
		return m, m.loadPlaylists()

	case browserOpenedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "opened " + msg.url
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case NameInputView:
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.down):
		m.search.Next()
		return m, nil
	case key.Matches(msg, m.keys.up):
		m.search.Prev()
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.search.Clear()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		item, ok := m.search.Selected()
		if !ok {
			return m, nil
		}
		return m, m.activate(item)
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	token := m.search.SetQuery(m.input.Value())
	return m, tea.Batch(cmd, m.debounce(token))
}

// activate runs Enter on a result.
func (m *Model) activate(item Item) tea.Cmd {
	m.err, m.status = nil, ""
	switch item.Kind {
	case TrackItem:
		m.subject = item
		m.openDialog(AddTrackDialog)
		return m.loadPlaylists()
	case PlaylistItem:
		return m.loadExport(item)
	case ArtistItem:
		return m.openArtist(item)
	}
	return nil
}

func (m *Model) openDialog(v ViewState) {
	m.view = v
	m.cursor = 0
	m.playlists = nil
}

// dialogOptions lists the caller's playlists followed by the create entry.
func (m *Model) dialogOptions() []string {
	options := make([]string, 0, len(m.playlists)+1)
	for _, p := range m.playlists {
		if m.view == CopyDialog && m.subject.ID == p.ID {
			continue
		}
		options = append(options, p.Name)
	}
	return append(options, "create new…")
}

// targets mirrors dialogOptions without the create entry.
func (m *Model) targets() []models.Playlist {
	out := make([]models.Playlist, 0, len(m.playlists))
	for _, p := range m.playlists {
		if m.view == CopyDialog && m.subject.ID == p.ID {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (m *Model) handleDialogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.dialogOptions())
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = SearchView
		return m, nil
	case key.Matches(msg, m.keys.down):
		m.cursor = (m.cursor + 1) % n
		return m, nil
	case key.Matches(msg, m.keys.up):
		m.cursor = (m.cursor - 1 + n) % n
		return m, nil
	case key.Matches(msg, m.keys.enter):
		targets := m.targets()
		if m.cursor >= len(targets) {
			m.nameInput.Reset()
			if m.view == CopyDialog && m.doc != nil {
				m.nameInput.SetValue(m.doc.Name)
			}
			m.nameInput.Focus()
			m.returnTo = m.view
			m.view = NameInputView
			return m, textinput.Blink
		}
		target := targets[m.cursor]
		if m.view == AddTrackDialog {
			return m, m.addTrack(target)
		}
		return m, m.startCopy(&target, "")
	}
	return m, nil
}

func (m *Model) handleNameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.nameInput.Blur()
		m.view = m.returnTo
		return m, nil
	case key.Matches(msg, m.keys.enter):
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			m.err = fmt.Errorf("%w: name is required", shared.ErrValidation)
			return m, nil
		}
		m.nameInput.Blur()
		if m.returnTo == CopyDialog {
			return m, m.startCopy(nil, name)
		}
		return m, m.addToNew(name)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editor == nil {
		m.view = SearchView
		return m, nil
	}
	n := len(m.editor.Tracks)

	switch {
	case key.Matches(msg, m.keys.back):
		m.view = SearchView
		m.editor = nil
		return m, nil
	case key.Matches(msg, m.keys.down):
		if n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case key.Matches(msg, m.keys.up):
		if n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
	case key.Matches(msg, m.keys.remove):
		if n > 0 {
			return m, m.removeTrack(m.editor.ID, m.editor.Tracks[m.cursor])
		}
	case key.Matches(msg, m.keys.publish):
		return m, m.publish(m.editor.ID, !m.editor.IsPublic)
	}
	return m, nil
}

func (m *Model) debounce(token int) tea.Cmd {
	return tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{token: token}
	})
}

func (m *Model) runSearch(token int, query string) tea.Cmd {
	return func() tea.Msg {
		results, err := m.opts.Service.Search(m.ctx, query)
		return searchResultMsg{token: token, results: results, err: err}
	}
}

func (m *Model) loadPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.opts.Service.MyPlaylists(m.ctx)
		return playlistsLoadedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) loadExport(item Item) tea.Cmd {
	return func() tea.Msg {
		doc, err := m.opts.Service.Export(m.ctx, item.ID)
		return exportLoadedMsg{item: item, doc: doc, err: err}
	}
}

func (m *Model) loadDetail(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.opts.Service.PlaylistDetail(m.ctx, id)
		return detailLoadedMsg{detail: detail, err: err}
	}
}

func (m *Model) addTrack(target models.Playlist) tea.Cmd {
	track := m.subject
	return func() tea.Msg {
		_, err := m.opts.Service.AddTrack(m.ctx, target.ID, track.ID, nil)
		switch {
		case err == nil:
			return mutationDoneMsg{status: fmt.Sprintf("added %q to %s", track.Label, target.Name)}
		case errors.Is(err, shared.ErrConflict):
			return mutationDoneMsg{status: fmt.Sprintf("%q is already in %s", track.Label, target.Name)}
		default:
			return mutationDoneMsg{err: err}
		}
	}
}

func (m *Model) addToNew(name string) tea.Cmd {
	track := m.subject
	return func() tea.Msg {
		playlist, err := m.opts.Engine.AddToNew(m.ctx, name, track.ID)
		if err != nil {
			// a playlist created before the failed add must show up in the list
			return mutationDoneMsg{err: err, refresh: playlist != nil}
		}
		return mutationDoneMsg{status: fmt.Sprintf("created %s with %q", playlist.Name, track.Label), refresh: true}
	}
}

func (m *Model) removeTrack(playlistID string, t models.OrderedTrack) tea.Cmd {
	return func() tea.Msg {
		if err := m.opts.Service.RemoveTrack(m.ctx, playlistID, t.ID); err != nil {
			return mutationDoneMsg{err: err, reload: true}
		}
		return mutationDoneMsg{status: fmt.Sprintf("removed %q", t.Title), reload: true}
	}
}

func (m *Model) publish(playlistID string, isPublic bool) tea.Cmd {
	return func() tea.Msg {
		p, err := m.opts.Service.Publish(m.ctx, playlistID, isPublic)
		if err != nil {
			return mutationDoneMsg{err: err, reload: true}
		}
		return mutationDoneMsg{status: fmt.Sprintf("%s is now %s", p.Name, shared.Visibility(p.IsPublic)), reload: true}
	}
}

// startCopy runs the copy batch in the background and streams its progress.
// A nil target copies into a new playlist named name.
func (m *Model) startCopy(target *models.Playlist, name string) tea.Cmd {
	trackIDs := m.doc.TrackIDs()
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan copyDoneMsg, 1)
	m.progressChan = progress
	m.copyDone = done
	m.view = CopyProgressView

	go func() {
		var (
			result *tasks.CopyResult
			err    error
		)
		if target != nil {
			result, err = m.opts.Engine.CopyTracks(m.ctx, progress, target, trackIDs)
		} else {
			result, err = m.opts.Engine.CopyToNew(m.ctx, progress, name, trackIDs)
		}
		done <- copyDoneMsg{result: result, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.copyDone
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressMsg(update)
		}
		return <-done
	}
}

func (m *Model) openArtist(item Item) tea.Cmd {
	link := ArtistURL(m.opts.BaseURL, item.ID)
	return func() tea.Msg {
		return browserOpenedMsg{url: link, err: m.opts.OpenURL(link)}
	}
}

// ArtistURL is the catalog browse deep link for an artist.
func ArtistURL(baseURL, artistID string) string {
	return strings.TrimRight(baseURL, "/") + "/catalog.html?artist_id=" + url.QueryEscape(artistID)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SearchView:
		body = fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render("setlist"), m.input.View(), renderResults(m.search.Results, m.search.Active))
	case AddTrackDialog:
		body = fmt.Sprintf("%s\n%s", styles.title.Render(fmt.Sprintf("Add %q to…", m.subject.Label)), m.renderDialog())
	case CopyDialog:
		title := fmt.Sprintf("Copy %d tracks from %q into…", len(m.doc.Tracks), m.doc.Name)
		body = fmt.Sprintf("%s\n%s", styles.title.Render(title), m.renderDialog())
	case NameInputView:
		body = fmt.Sprintf("%s\n%s", styles.title.Render("New playlist"), m.nameInput.View())
	case EditorView:
		body = m.renderEditor()
	case CopyProgressView:
		body = fmt.Sprintf("%s\n%d/%d  %s", styles.title.Render("Copying tracks"), m.progress.Step, m.progress.Total, m.progress.Message)
	case CopyResultView:
		body = m.renderCopyResult()
	}

	var footer string
	if m.err != nil {
		footer = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	} else if m.status != "" {
		footer = styles.ok.Render(m.status)
	}

	return fmt.Sprintf("%s\n%s\n\n%s", body, footer, m.help.ShortHelpView(m.helpKeys()))
}

func (m *Model) helpKeys() []key.Binding {
	switch m.view {
	case EditorView:
		return []key.Binding{m.keys.up, m.keys.down, m.keys.remove, m.keys.publish, m.keys.back}
	case CopyResultView:
		return []key.Binding{m.keys.back, m.keys.quit}
	default:
		return m.keys.ShortHelp()
	}
}

func (m *Model) renderDialog() string {
	if m.playlists == nil {
		return styles.muted.Render("loading your playlists…")
	}
	return renderOptions(m.dialogOptions(), m.cursor)
}

func (m *Model) renderEditor() string {
	e := m.editor
	title := styles.title.Render(fmt.Sprintf("%s (%s)", e.Name, shared.Visibility(e.IsPublic)))
	return fmt.Sprintf("%s\n%s", title, renderTracks(e.Tracks, m.cursor))
}

func (m *Model) renderCopyResult() string {
	r := m.copyResult
	if r == nil {
		return styles.err.Render(fmt.Sprintf("Copy failed: %v", m.copyErr))
	}

	var b strings.Builder
	title := styles.ok.Render("✓ Copy complete")
	if m.copyErr != nil {
		title = styles.warn.Render(fmt.Sprintf("Copy stopped: %v", m.copyErr))
	}
	b.WriteString(title + "\n\n")
	if r.Target != nil {
		fmt.Fprintf(&b, "Target: %s\n", r.Target.Name)
	}
	fmt.Fprintf(&b, "Added: %d\nAlready present: %d\nFailed: %d\n", len(r.Added), len(r.AlreadyPresent), len(r.Failed))
	for _, f := range r.Failed {
		fmt.Fprintf(&b, "  • %s: %v\n", f.TrackID, f.Err)
	}
	return b.String()
}
