package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Carrerajorge/Hola-sub011/internal/catalog"
	"github.com/Carrerajorge/Hola-sub011/internal/chunk"
	"github.com/Carrerajorge/Hola-sub011/internal/grid"
	"github.com/Carrerajorge/Hola-sub011/internal/loader"
	"github.com/Carrerajorge/Hola-sub011/internal/logging"
	"github.com/Carrerajorge/Hola-sub011/internal/refs"
)

// Panel identifies which panel is active
type Panel int

const (
	PanelGrid Panel = iota
	PanelOverview
)

// openStartMsg kicks off the initial open after the first render
type openStartMsg struct{}

// sourceOpenedMsg is sent when a workbook picked at runtime has been read
type sourceOpenedMsg struct {
	src loader.Source
	err error
}

// discoverDoneMsg is sent when the catalog walk finishes
type discoverDoneMsg struct {
	entries []catalog.Entry
	err     error
}

// discoverProgressMsg is sent while the catalog walk runs
type discoverProgressMsg struct {
	progress catalog.Progress
}

// controllerEventMsg wraps one event from the session controller
type controllerEventMsg struct {
	event loader.Event
}

// snapshotSavedMsg is sent when a manual snapshot save finishes
type snapshotSavedMsg struct {
	err error
}

// reloadDoneMsg is sent when a reload from disk finishes
type reloadDoneMsg struct {
	err error
}

// spinnerTickMsg triggers spinner animation
type spinnerTickMsg struct{}

// statusExpireMsg clears a transient status message
type statusExpireMsg struct {
	version int
}

// Spinner frames - cyberpunk style
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Timing constants
const (
	spinnerTickInterval = 80 * time.Millisecond
	statusTimeout       = 4 * time.Second
)

const overviewPaneWidth = 34

// Config carries what the app needs to open a document
type Config struct {
	// Source is opened immediately when set
	Source loader.Source
	// ScanRoot is a directory to discover workbooks under when no Source
	// is given
	ScanRoot string
	// Loader configures the session controller
	Loader loader.Config
}

// App is the main application model
type App struct {
	// Components
	header   Header
	gridPane GridPane
	overview OverviewPanel
	picker   Picker
	help     HelpOverlay
	inputBar InputBar

	// State
	keys KeyMap
	cfg  Config

	ctrl    *loader.Controller
	walker  *catalog.Walker
	entries []catalog.Entry

	// UI state
	activePanel    Panel
	showOverview   bool
	status         string
	statusErr      bool
	statusVersion  int // incremented per message, used to expire the right one
	fileChanged    bool
	spinnerFrame   int
	spinnerRunning bool

	// Dimensions
	width  int
	height int
}

// NewApp creates a new application instance
func NewApp(cfg Config) App {
	maxChunks := cfg.Loader.MaxChunks
	if maxChunks <= 0 {
		maxChunks = chunk.DefaultMaxChunks
	}

	app := App{
		header:       NewHeader(maxChunks),
		gridPane:     NewGridPane(),
		overview:     NewOverviewPanel(),
		picker:       NewPicker(),
		help:         NewHelpOverlay(),
		inputBar:     NewInputBar(),
		keys:         DefaultKeyMap(),
		cfg:          cfg,
		activePanel:  PanelGrid,
		showOverview: true,
	}

	app.gridPane.SetFocused(true)
	app.overview.SetFocused(false)

	return app
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	titleCmd := tea.SetWindowTitle("HOLAGRID")
	return tea.Batch(titleCmd, func() tea.Msg {
		return openStartMsg{}
	})
}

// openSource stops any previous session and starts streaming from src
func (a *App) openSource(src loader.Source) tea.Cmd {
	if a.ctrl != nil {
		a.ctrl.Stop()
	}

	ctrl := loader.New(src, a.cfg.Loader)
	a.ctrl = ctrl
	a.fileChanged = false

	ctrl.Start(context.Background())
	if err := ctrl.StartWatching(); err != nil {
		logging.Debug.Printf("[UI] Watcher unavailable: %v", err)
	}

	a.gridPane.SetData(ctrl.Grid(), ctrl.Geometry(), ctrl.ChunkLoadedAt)
	a.gridPane.GoToTop()
	a.overview.SetChunks(nil)
	a.refreshHeader()
	a.pushViewport()

	return tea.Batch(a.listenForEvents(), a.armSpinner())
}

// startDiscovery walks the configured root for workbooks
func (a *App) startDiscovery() tea.Cmd {
	w := catalog.NewWalker(8)
	a.walker = w
	root := a.cfg.ScanRoot
	return func() tea.Msg {
		logging.Debug.Printf("[UI] Discovering workbooks under %s", root)
		entries, err := w.Find(context.Background(), root)
		return discoverDoneMsg{entries: entries, err: err}
	}
}

// listenForEvents returns a command waiting for the next controller event
func (a *App) listenForEvents() tea.Cmd {
	ctrl := a.ctrl
	if ctrl == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case event, ok := <-ctrl.Events():
			if !ok {
				return nil
			}
			return controllerEventMsg{event: event}
		case <-ctrl.Done():
			return nil
		}
	}
}

// listenDiscoverProgress waits for the next catalog progress report
func (a *App) listenDiscoverProgress() tea.Cmd {
	w := a.walker
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-w.Progress()
		if !ok {
			return nil
		}
		return discoverProgressMsg{progress: p}
	}
}

// armSpinner starts the spinner ticker unless it is already running
func (a *App) armSpinner() tea.Cmd {
	if a.spinnerRunning {
		return nil
	}
	a.spinnerRunning = true
	return tea.Tick(spinnerTickInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// setStatus shows a transient message in the status line
func (a *App) setStatus(text string, isErr bool) tea.Cmd {
	a.status = text
	a.statusErr = isErr
	a.statusVersion++
	v := a.statusVersion
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusExpireMsg{version: v}
	})
}

// pushViewport feeds the pane's pixel window to the controller
func (a *App) pushViewport() {
	if a.ctrl == nil {
		return
	}
	top, left, w, h := a.gridPane.Viewport()
	a.ctrl.SetViewport(top, left, w, h)
}

// refreshHeader pulls session state and the selection into the header
func (a *App) refreshHeader() {
	if a.ctrl == nil {
		return
	}
	a.header.SetSession(a.ctrl.Session())

	cell := a.gridPane.SelectedCell()
	preview := FormatValue(cell.Value)
	if preview == "" && cell.Formula != "" {
		preview = cell.Formula
	}
	a.header.SetSelection(a.gridPane.CursorRef(), preview)
}

// refreshPanes re-reads grid data after the controller changed it
func (a *App) refreshPanes() {
	if a.ctrl == nil {
		return
	}
	a.gridPane.SetData(a.ctrl.Grid(), a.ctrl.Geometry(), a.ctrl.ChunkLoadedAt)
	if a.showOverview {
		a.overview.SetChunks(a.ctrl.LoadedChunks())
		row, col := a.gridPane.Cursor()
		a.overview.FollowCursor(row, col)
	}
	a.refreshHeader()
}

func (a *App) focusGrid() {
	a.activePanel = PanelGrid
	a.gridPane.SetFocused(true)
	a.overview.SetFocused(false)
}

func (a *App) focusOverview() {
	a.activePanel = PanelOverview
	a.gridPane.SetFocused(false)
	a.overview.SetFocused(true)
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		a.pushViewport()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case openStartMsg:
		if a.cfg.Source != nil {
			return a, a.openSource(a.cfg.Source)
		}
		if a.cfg.ScanRoot != "" {
			a.picker.SetVisible(true)
			a.picker.SetScanning(true, "")
			return a, tea.Batch(a.startDiscovery(), a.listenDiscoverProgress(), a.armSpinner())
		}
		return a, a.setStatus("nothing to open", true)

	case sourceOpenedMsg:
		if msg.err != nil {
			a.picker.SetVisible(false)
			return a, a.setStatus(fmt.Sprintf("open failed: %v", msg.err), true)
		}
		a.picker.SetVisible(false)
		return a, a.openSource(msg.src)

	case discoverDoneMsg:
		a.walker = nil
		if msg.err != nil {
			a.picker.SetEntries(nil)
			return a, a.setStatus(fmt.Sprintf("discovery failed: %v", msg.err), true)
		}
		a.entries = msg.entries
		a.picker.SetEntries(msg.entries)
		logging.Debug.Printf("[UI] Discovery found %d workbooks", len(msg.entries))
		return a, nil

	case discoverProgressMsg:
		progress := fmt.Sprintf("%d files", msg.progress.FilesScanned)
		a.picker.SetScanning(true, progress)
		return a, a.listenDiscoverProgress()

	case controllerEventMsg:
		return a.handleControllerEvent(msg.event)

	case snapshotSavedMsg:
		a.refreshHeader()
		if msg.err != nil {
			return a, a.setStatus(fmt.Sprintf("snapshot failed: %v", msg.err), true)
		}
		return a, a.setStatus("snapshot saved", false)

	case reloadDoneMsg:
		if msg.err != nil {
			return a, a.setStatus(fmt.Sprintf("reload failed: %v", msg.err), true)
		}
		a.fileChanged = false
		a.refreshPanes()
		a.pushViewport()
		return a, a.setStatus("reloaded from disk", false)

	case spinnerTickMsg:
		spinning := a.picker.scanning
		if a.ctrl != nil && a.ctrl.Session().IsLoading() {
			spinning = true
		}
		if spinning {
			a.spinnerFrame++
			a.header.SetSpinner(spinnerFrames[a.spinnerFrame%len(spinnerFrames)])
			return a, tea.Tick(spinnerTickInterval, func(time.Time) tea.Msg {
				return spinnerTickMsg{}
			})
		}
		a.spinnerRunning = false
		a.header.SetSpinner("")
		return a, nil

	case statusExpireMsg:
		if msg.version == a.statusVersion {
			a.status = ""
			a.statusErr = false
		}
		return a, nil
	}

	return a, nil
}

// handleControllerEvent reacts to one loader event and re-arms the listener
func (a *App) handleControllerEvent(event loader.Event) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch e := event.(type) {
	case loader.OpenedEvent:
		a.refreshPanes()
		a.updateLayout()
		cmds = append(cmds, a.armSpinner())

	case loader.PhaseChangedEvent:
		a.refreshHeader()
		if e.Phase == loader.PhaseStreaming {
			cmds = append(cmds, a.armSpinner())
		}

	case loader.ChunkLoadedEvent, loader.EvictedEvent, loader.ViewportChangedEvent:
		a.refreshHeader()

	case loader.RenderEvent:
		a.refreshPanes()

	case loader.CellChangedEvent:
		a.refreshHeader()

	case loader.GeometryChangedEvent:
		a.refreshPanes()
		a.pushViewport()

	case loader.ChunkFailedEvent:
		cmds = append(cmds, a.setStatus(fmt.Sprintf("chunk %s failed: %v",
			refs.FormatCell(e.Key.Row, e.Key.Col), e.Err), true))

	case loader.FileChangedEvent:
		a.fileChanged = true

	case loader.ErrorEvent:
		cmds = append(cmds, a.setStatus(e.Err.Error(), true))
	}

	cmds = append(cmds, a.listenForEvents())
	return a, tea.Batch(cmds...)
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay takes precedence
	if a.help.IsVisible() {
		if key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Back) {
			a.help.SetVisible(false)
		}
		return a, nil
	}

	// Input bar captures typing
	if a.inputBar.Active() {
		switch {
		case key.Matches(msg, a.keys.Back):
			a.inputBar.Close()
			return a, nil
		case key.Matches(msg, a.keys.Enter):
			cmd := a.submitInput()
			return a, cmd
		}
		var cmd tea.Cmd
		a.inputBar, cmd = a.inputBar.Update(msg)
		return a, cmd
	}

	// Workbook picker overlay
	if a.picker.IsVisible() {
		switch {
		case key.Matches(msg, a.keys.Back):
			// Keep the picker up when nothing is open yet
			if a.ctrl != nil {
				a.picker.SetVisible(false)
			}
			return a, nil
		case key.Matches(msg, a.keys.Quit):
			if a.ctrl != nil {
				a.ctrl.Stop()
			}
			return a, tea.Quit
		case key.Matches(msg, a.keys.Up):
			a.picker.MoveUp()
			return a, nil
		case key.Matches(msg, a.keys.Down):
			a.picker.MoveDown()
			return a, nil
		case key.Matches(msg, a.keys.Enter):
			if entry := a.picker.SelectedEntry(); entry != nil {
				path := entry.Path
				return a, func() tea.Msg {
					src, err := loader.OpenPath(path)
					return sourceOpenedMsg{src: src, err: err}
				}
			}
			return a, nil
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		if a.ctrl != nil {
			a.ctrl.Stop()
		}
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
		return a, nil

	case key.Matches(msg, a.keys.Open):
		if a.cfg.ScanRoot == "" && len(a.entries) == 0 {
			return a, a.setStatus("no workbook directory to browse", true)
		}
		a.picker.SetVisible(true)
		if len(a.entries) == 0 && a.cfg.ScanRoot != "" {
			a.picker.SetScanning(true, "")
			return a, tea.Batch(a.startDiscovery(), a.listenDiscoverProgress(), a.armSpinner())
		}
		return a, nil

	case key.Matches(msg, a.keys.Overview):
		a.showOverview = !a.showOverview
		if !a.showOverview && a.activePanel == PanelOverview {
			a.focusGrid()
		}
		if a.showOverview {
			a.refreshPanes()
		}
		a.updateLayout()
		a.pushViewport()
		return a, nil

	case key.Matches(msg, a.keys.Tab):
		if !a.showOverview {
			return a, nil
		}
		if a.activePanel == PanelGrid {
			a.focusOverview()
		} else {
			a.focusGrid()
		}
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.activePanel == PanelOverview {
			a.overview.MoveToBlock(0, -1)
			return a, nil
		}
		a.gridPane.MoveUp()
		a.afterCursorMove()
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.activePanel == PanelOverview {
			a.overview.MoveToBlock(0, 1)
			return a, nil
		}
		a.gridPane.MoveDown()
		a.afterCursorMove()
		return a, nil

	case key.Matches(msg, a.keys.Left):
		if a.activePanel == PanelOverview {
			a.overview.MoveToBlock(-1, 0)
			return a, nil
		}
		a.gridPane.MoveLeft()
		a.afterCursorMove()
		return a, nil

	case key.Matches(msg, a.keys.Right):
		if a.activePanel == PanelOverview {
			a.overview.MoveToBlock(1, 0)
			return a, nil
		}
		a.gridPane.MoveRight()
		a.afterCursorMove()
		return a, nil

	case key.Matches(msg, a.keys.PageUp):
		a.gridPane.PageUp()
		a.afterCursorMove()
		return a, nil

	case key.Matches(msg, a.keys.PageDown):
		a.gridPane.PageDown()
		a.afterCursorMove()
		return a, nil

	case key.Matches(msg, a.keys.Top):
		a.gridPane.GoToTop()
		a.afterCursorMove()
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		a.gridPane.GoToBottom()
		a.afterCursorMove()
		return a, nil

	case key.Matches(msg, a.keys.Goto):
		if a.ctrl != nil {
			a.inputBar.OpenGoto()
		}
		return a, nil

	case key.Matches(msg, a.keys.Enter), key.Matches(msg, a.keys.Edit):
		if a.activePanel == PanelOverview {
			if info, ok := a.overview.Selected(); ok {
				a.gridPane.JumpTo(info.StartRow, info.StartCol)
				a.focusGrid()
				a.afterCursorMove()
			}
			return a, nil
		}
		if a.ctrl != nil {
			cell := a.gridPane.SelectedCell()
			current := cell.Formula
			if current == "" {
				current = FormatValue(cell.Value)
			}
			a.inputBar.OpenEdit(a.gridPane.CursorRef(), current)
		}
		return a, nil

	case key.Matches(msg, a.keys.Clear):
		if a.ctrl == nil || a.activePanel != PanelGrid {
			return a, nil
		}
		row, col := a.gridPane.Cursor()
		patch := grid.CellPatch{HasValue: true, Value: nil, Formula: grid.Str("")}
		if err := a.ctrl.EditCell(row, col, patch); err != nil {
			return a, a.setStatus(err.Error(), true)
		}
		return a, nil

	case key.Matches(msg, a.keys.Wider):
		return a, a.resizeColumn(20)

	case key.Matches(msg, a.keys.Narrower):
		return a, a.resizeColumn(-20)

	case key.Matches(msg, a.keys.Save):
		if a.ctrl == nil {
			return a, nil
		}
		ctrl := a.ctrl
		return a, func() tea.Msg {
			return snapshotSavedMsg{err: ctrl.SaveSnapshot()}
		}

	case key.Matches(msg, a.keys.Reload):
		if a.ctrl == nil {
			return a, nil
		}
		ctrl := a.ctrl
		return a, tea.Batch(a.armSpinner(), func() tea.Msg {
			return reloadDoneMsg{err: ctrl.Reload()}
		})

	case key.Matches(msg, a.keys.Reveal):
		return a, a.revealInFileManager()
	}

	return a, nil
}

// afterCursorMove refreshes everything that depends on the cursor
func (a *App) afterCursorMove() {
	a.pushViewport()
	if a.showOverview {
		row, col := a.gridPane.Cursor()
		a.overview.FollowCursor(row, col)
	}
	a.refreshHeader()
}

// submitInput applies the input bar's content
func (a *App) submitInput() tea.Cmd {
	text := a.inputBar.Value()
	mode := a.inputBar.Mode()
	a.inputBar.Close()

	switch mode {
	case InputGoto:
		row, col, err := refs.ParseCell(text)
		if err != nil {
			return a.setStatus(err.Error(), true)
		}
		a.gridPane.JumpTo(row, col)
		a.afterCursorMove()
		return nil

	case InputEdit:
		if a.ctrl == nil {
			return nil
		}
		row, col := a.gridPane.Cursor()
		if err := a.ctrl.EditCell(row, col, parseCellInput(text)); err != nil {
			return a.setStatus(err.Error(), true)
		}
		a.refreshHeader()
		return nil
	}
	return nil
}

// resizeColumn nudges the cursor column's width
func (a *App) resizeColumn(delta float64) tea.Cmd {
	if a.ctrl == nil || a.activePanel != PanelGrid {
		return nil
	}
	_, col := a.gridPane.Cursor()
	w := a.ctrl.Geometry().ColWidth(col) + delta
	if w < 40 {
		w = 40
	}
	a.ctrl.SetColWidth(col, w)
	return a.setStatus(fmt.Sprintf("column %s width %.0fpx", refs.ColumnName(col), w), false)
}

// revealInFileManager opens the workbook's directory in the OS file manager
func (a *App) revealInFileManager() tea.Cmd {
	if a.ctrl == nil {
		return nil
	}
	path := a.ctrl.Session().Name
	if _, err := os.Stat(path); err != nil {
		return a.setStatus("no file on disk to reveal", true)
	}
	if err := openInFileManager(filepath.Dir(path)); err != nil {
		logging.Debug.Printf("[UI] Reveal failed: %v", err)
		return a.setStatus("could not open file manager", true)
	}
	return nil
}

// updateLayout calculates component sizes based on window dimensions
func (a *App) updateLayout() {
	headerHeight := 1
	statusHeight := 1
	helpBarHeight := 1

	panelHeight := a.height - headerHeight - statusHeight - helpBarHeight
	if panelHeight < 1 {
		panelHeight = 1
	}

	gridWidth := a.width
	if a.showOverview {
		ow := overviewPaneWidth
		if ow > a.width/2 {
			ow = a.width / 2
		}
		gridWidth = a.width - ow
		a.overview.SetSize(ow, panelHeight)
	}

	a.header.SetWidth(a.width)
	a.gridPane.SetSize(gridWidth, panelHeight)
	a.help.SetSize(a.width, a.height)
	a.picker.SetSize(a.width, a.height)
	a.inputBar.SetWidth(a.width)
}

// statusLine renders the one-line strip between the panels and the help bar
func (a App) statusLine() string {
	switch {
	case a.status != "" && a.statusErr:
		return ErrorStyle.Render(a.status)
	case a.status != "":
		return StatusStyle.Render(a.status)
	case a.fileChanged:
		return NoticeStyle.Render("workbook changed on disk · press r to reload")
	case a.ctrl != nil:
		vr, version := a.ctrl.Viewport()
		return StatusStyle.Render(fmt.Sprintf("view %s:%s · v%d",
			refs.FormatCell(vr.StartRow, vr.StartCol),
			refs.FormatCell(vr.EndRow, vr.EndCol),
			version))
	default:
		return ""
	}
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, a.header.View())

	if a.showOverview {
		panels := lipgloss.JoinHorizontal(lipgloss.Top, a.gridPane.View(), a.overview.View())
		sections = append(sections, panels)
	} else {
		sections = append(sections, a.gridPane.View())
	}

	if a.inputBar.Active() {
		sections = append(sections, a.inputBar.View())
	} else {
		sections = append(sections, a.statusLine())
	}

	sections = append(sections, HelpBar(a.width))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	// Overlays
	if a.help.IsVisible() {
		return a.renderOverlay(a.help.View())
	}
	if a.picker.IsVisible() {
		return a.renderOverlay(a.picker.View())
	}

	return content
}

// renderOverlay renders an overlay centered on screen
func (a App) renderOverlay(overlay string) string {
	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Center,
		overlay,
		lipgloss.WithWhitespaceChars(" "),
	)
}
