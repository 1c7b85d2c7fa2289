// Package tui is the terminal front-end: the shortcut grid with a clock and
// search box above it, the folder overlay, keyboard drag and the modals.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nikbrunner/newtab/internal/clock"
	"github.com/nikbrunner/newtab/internal/grid"
	"github.com/nikbrunner/newtab/internal/pager"
	"github.com/nikbrunner/newtab/internal/picker"
	"github.com/nikbrunner/newtab/internal/search"
	"github.com/nikbrunner/newtab/internal/tui/layout"
	"github.com/nikbrunner/newtab/internal/wallpaper"
)

// SnapshotMsg tells the App the grid changed outside of a key press, e.g.
// when a dwell or auto-page timer fired.
type SnapshotMsg struct{}

type tickMsg time.Time

type wallpaperMsg struct {
	wp  *wallpaper.Wallpaper
	err error
}

// App is the main bubbletea model.
type App struct {
	grid   *grid.Controller
	engine *search.Dispatcher
	wall   *wallpaper.Service
	keys   KeyMap
	styles Styles
	cfg    layout.LayoutConfig
	log    zerolog.Logger
	now    func() time.Time
	open   func(string) error
	copy   func(string) error

	updates     chan struct{}
	unsubscribe func()
	snap        grid.Snapshot
	maxLayout   pager.Layout

	mode    Mode
	cursor  int  // slot position on the current page
	child   int  // cursor inside the open folder
	edge    int  // -1 or +1 while a drag pushes against a grid edge
	outside bool // in-folder drag pointer is outside the overlay

	searchBox   textinput.Model
	localEngine search.Engine // used when no Dispatcher is wired
	modal       ModalState
	picker      picker.Picker
	wallpaper   *wallpaper.Wallpaper
	face        clock.Face
	status      string
	statusErr   bool

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Grid      *grid.Controller
	Search    *search.Dispatcher   // optional
	Wallpaper *wallpaper.Service   // optional
	Keys      *KeyMap              // optional, uses default if nil
	Styles    *Styles              // optional, uses default if nil
	Layout    *layout.LayoutConfig // optional, uses default if nil
	Logger    zerolog.Logger
	Now       func() time.Time
	OpenURL   func(string) error // defaults to the system browser
	CopyText  func(string) error // defaults to the system clipboard
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}
	cfg := layout.DefaultConfig()
	if params.Layout != nil {
		cfg = *params.Layout
	}

	app := App{
		grid:        params.Grid,
		engine:      params.Search,
		wall:        params.Wallpaper,
		keys:        keys,
		styles:      styles,
		cfg:         cfg,
		log:         params.Logger,
		now:         params.Now,
		open:        params.OpenURL,
		copy:        params.CopyText,
		updates:     make(chan struct{}, 1),
		localEngine: search.DefaultEngine,
		modal:       NewModalState(cfg),
		width:       80,
		height:      24,
	}
	if app.now == nil {
		app.now = time.Now
	}
	if app.open == nil {
		app.open = OpenURL
	}
	if app.copy == nil {
		app.copy = clipboard.WriteAll
	}

	updates := app.updates
	app.unsubscribe = app.grid.Subscribe(func(grid.Snapshot) {
		// Runs under the controller lock; never block here.
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	app.searchBox = NewSearchInput(cfg, app.currentEngine().Placeholder())
	app.face = clock.At(app.now())
	app.snap = app.grid.Snapshot()
	app.maxLayout = app.snap.Layout
	app.refresh()
	return app
}

// Close stops listening to the grid.
func (a App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Mode returns the current input mode.
func (a App) Mode() Mode {
	return a.mode
}

// Cursor returns the selected slot position on the current page.
func (a App) Cursor() int {
	return a.cursor
}

// Child returns the selected child in the open folder.
func (a App) Child() int {
	return a.child
}

// Status returns the last status line message.
func (a App) Status() string {
	return a.status
}

// Snapshot returns the grid state the App last rendered.
func (a App) Snapshot() grid.Snapshot {
	return a.snap
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(a.updates), tick(), a.loadWallpaper(false))
}

func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return SnapshotMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.fitLayout()
		return a, nil

	case SnapshotMsg:
		a.refresh()
		return a, waitForUpdate(a.updates)

	case tickMsg:
		a.face = clock.At(a.now())
		return a, tick()

	case wallpaperMsg:
		if msg.err != nil {
			a.setError("壁纸更新失败")
			a.log.Warn().Err(msg.err).Msg("wallpaper refresh failed")
		}
		a.wallpaper = msg.wp
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.updateInputs(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	switch a.mode {
	case ModeHelp:
		if key.Matches(msg, a.keys.Help, a.keys.Cancel, a.keys.Quit) {
			a.mode = ModeNormal
		}
		return a, nil
	case ModeSearch:
		return a.handleSearchKey(msg)
	case ModeFind:
		return a.handleFindKey(msg)
	case ModeAdd, ModeEdit, ModeRename:
		return a.handleModalKey(msg)
	case ModeConfirm:
		return a.handleConfirmKey(msg)
	}

	switch {
	case a.dragging():
		return a.handleDragKey(msg)
	case a.snap.Folder.Open:
		return a.handleFolderKey(msg)
	default:
		return a.handleGridKey(msg)
	}
}

func (a App) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.status = ""
	slot, ok := a.slotAtCursor()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(0, -1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(0, 1)
	case key.Matches(msg, a.keys.Left):
		a.moveCursor(-1, 0)
	case key.Matches(msg, a.keys.Right):
		a.moveCursor(1, 0)

	case key.Matches(msg, a.keys.PrevPage):
		a.grid.PrevPage()
		a.refresh()
	case key.Matches(msg, a.keys.NextPage):
		a.grid.NextPage()
		a.refresh()

	case key.Matches(msg, a.keys.Open):
		switch {
		case !ok:
		case slot.Add:
			a.startAdd()
		case a.snap.Items.IsFolderAt(slot.Index):
			a.grid.OpenFolder(slot.Index)
			a.child = 0
			a.refresh()
		default:
			a.openLink(a.snap.Items[slot.Index].URL)
		}

	case key.Matches(msg, a.keys.Drag):
		if ok && !slot.Add && a.grid.StartDrag(slot.Index) {
			a.refresh()
			a.hoverCursor()
		}

	case key.Matches(msg, a.keys.Add):
		a.startAdd()

	case key.Matches(msg, a.keys.Edit):
		if ok && !slot.Add {
			if a.snap.Items.IsFolderAt(slot.Index) {
				a.startRename(slot.Index, a.snap.Items[slot.Index].Name)
			} else {
				a.startEdit(slot.Index)
			}
		}

	case key.Matches(msg, a.keys.Delete):
		if ok && !slot.Add {
			a.modal.Confirm = confirmDelete
			a.modal.ConfirmIndex = slot.Index
			a.mode = ModeConfirm
		}

	case key.Matches(msg, a.keys.YankURL):
		if ok && a.snap.Items.IsLinkAt(slot.Index) && !slot.Add {
			a.copyURL(a.snap.Items[slot.Index].URL)
		}

	case key.Matches(msg, a.keys.Find):
		a.picker = picker.New(picker.Params{Items: a.grid.Items(), Layout: &a.cfg})
		a.picker, _ = updatePicker(a.picker, tea.WindowSizeMsg{Width: a.width, Height: a.height})
		a.mode = ModeFind
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		return a, a.searchBox.Focus()

	case key.Matches(msg, a.keys.Engine):
		a.cycleEngine()

	case key.Matches(msg, a.keys.Wallpaper):
		a.status = "正在更换壁纸..."
		return a, a.loadWallpaper(true)

	case key.Matches(msg, a.keys.Clear):
		a.modal.Confirm = confirmClear
		a.mode = ModeConfirm

	case key.Matches(msg, a.keys.Restore):
		a.modal.Confirm = confirmRestore
		a.mode = ModeConfirm
	}
	return a, nil
}

func (a App) handleFolderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.status = ""
	children := a.snap.Folder.Children

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Cancel):
		a.grid.CloseFolder()
		a.refresh()

	case key.Matches(msg, a.keys.Up, a.keys.Left):
		if a.child > 0 {
			a.child--
		}
	case key.Matches(msg, a.keys.Down, a.keys.Right):
		if a.child < len(children)-1 {
			a.child++
		}

	case key.Matches(msg, a.keys.Open):
		if a.child < len(children) {
			a.openLink(children[a.child].URL)
		}

	case key.Matches(msg, a.keys.YankURL):
		if a.child < len(children) {
			a.copyURL(children[a.child].URL)
		}

	case key.Matches(msg, a.keys.Edit):
		a.startRename(-1, a.snap.Folder.Name)

	case key.Matches(msg, a.keys.Manage):
		a.grid.ToggleManage()
		a.refresh()

	case key.Matches(msg, a.keys.Delete):
		if !a.snap.Folder.Manage {
			a.status = "按 M 进入管理模式后删除"
			break
		}
		a.grid.RemoveChild(a.child)
		a.refresh()

	case key.Matches(msg, a.keys.Drag):
		if a.grid.StartFolderDrag(a.child) {
			a.outside = false
			a.refresh()
			a.hoverChild()
		}

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
	}
	return a, nil
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.searchBox.Blur()
		a.searchBox.Reset()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyTab:
		a.cycleEngine()
		return a, nil

	case tea.KeyEnter:
		input := a.searchBox.Value()
		target, ok := search.Resolve(input, a.currentEngine())
		if !ok {
			return a, nil
		}
		a.openLink(target)
		a.searchBox.Blur()
		a.searchBox.Reset()
		a.mode = ModeNormal
		return a, nil
	}

	var cmd tea.Cmd
	a.searchBox, cmd = a.searchBox.Update(msg)
	return a, cmd
}

func (a App) handleFindKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.picker, cmd = updatePicker(a.picker, msg)
	if !a.picker.Done() {
		return a, cmd
	}

	a.mode = ModeNormal
	if res, ok := a.picker.Selected(); ok {
		a.openLink(res.Link.URL)
	}
	return a, nil
}

func updatePicker(p picker.Picker, msg tea.Msg) (picker.Picker, tea.Cmd) {
	m, cmd := p.Update(msg)
	return m.(picker.Picker), cmd
}

func (a App) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		return a, nil

	case tea.KeyTab, tea.KeyShiftTab:
		if a.mode != ModeRename {
			a.modal.ToggleFocus()
		}
		return a, nil

	case tea.KeyEnter:
		a.submitModal()
		return a, nil
	}

	return a.updateInputs(msg)
}

func (a *App) submitModal() {
	name := a.modal.NameInput.Value()
	url := a.modal.URLInput.Value()

	var err error
	switch a.mode {
	case ModeAdd:
		var idx int
		idx, err = a.grid.AddLink(name, url)
		if err == nil {
			a.refresh()
			a.cursor = idx - a.snap.Page*a.snap.Layout.PerPage()
		}
	case ModeEdit:
		_, err = a.grid.EditLink(a.modal.Index, name, url)
	case ModeRename:
		if a.modal.Index < 0 {
			a.grid.RenameOpenFolder(name)
		} else {
			a.grid.RenameFolder(a.modal.Index, name)
		}
	}

	if errors.Is(err, grid.ErrInvalidInput) {
		a.modal.Err = "名称和网址不能为空"
		return
	}
	a.mode = ModeNormal
	a.refresh()
}

func (a App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		switch a.modal.Confirm {
		case confirmDelete:
			a.grid.DeleteItem(a.modal.ConfirmIndex)
		case confirmClear:
			a.grid.ClearAll()
		case confirmRestore:
			a.grid.RestoreDefaults()
		}
		a.mode = ModeNormal
		a.refresh()
	case "n", "N", "esc", "q":
		a.mode = ModeNormal
	}
	return a, nil
}

// updateInputs forwards non-key messages (cursor blink) and modal typing.
func (a App) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.mode {
	case ModeSearch:
		a.searchBox, cmd = a.searchBox.Update(msg)
	case ModeFind:
		a.picker, cmd = updatePicker(a.picker, msg)
	case ModeAdd, ModeEdit, ModeRename:
		if a.modal.Focus == 0 {
			a.modal.NameInput, cmd = a.modal.NameInput.Update(msg)
		} else {
			a.modal.URLInput, cmd = a.modal.URLInput.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) startAdd() {
	a.modal.Reset()
	a.mode = ModeAdd
}

func (a *App) startEdit(i int) {
	a.modal.Reset()
	a.modal.Index = i
	a.modal.NameInput.SetValue(a.snap.Items[i].Name)
	a.modal.URLInput.SetValue(a.snap.Items[i].URL)
	a.modal.NameInput.CursorEnd()
	a.modal.URLInput.CursorEnd()
	a.mode = ModeEdit
}

func (a *App) startRename(i int, name string) {
	a.modal.Reset()
	a.modal.Index = i
	a.modal.NameInput.SetValue(name)
	a.modal.NameInput.CursorEnd()
	a.mode = ModeRename
}

func (a *App) openLink(url string) {
	if err := a.open(url); err != nil {
		a.setError("无法打开链接")
		a.log.Warn().Err(err).Str("url", url).Msg("open url failed")
		return
	}
	a.status = "已打开 " + url
	a.statusErr = false
}

func (a *App) copyURL(url string) {
	if err := a.copy(url); err != nil {
		a.setError("复制失败")
		return
	}
	a.status = "已复制 " + url
	a.statusErr = false
}

func (a *App) setError(msg string) {
	a.status = msg
	a.statusErr = true
}

func (a *App) currentEngine() search.Engine {
	if a.engine != nil {
		return a.engine.Engine()
	}
	return a.localEngine
}

func (a *App) cycleEngine() {
	all := search.Engines()
	cur := a.currentEngine()
	next := all[0]
	for i, e := range all {
		if e == cur {
			next = all[(i+1)%len(all)]
			break
		}
	}

	if a.engine != nil {
		if err := a.engine.SetEngine(context.Background(), next); err != nil {
			a.setError("保存搜索引擎失败")
			return
		}
	} else {
		a.localEngine = next
	}
	a.searchBox.Placeholder = next.Placeholder()
	a.status = "搜索引擎: " + string(next)
	a.statusErr = false
}

func (a App) loadWallpaper(force bool) tea.Cmd {
	if a.wall == nil {
		return nil
	}
	svc := a.wall
	return func() tea.Msg {
		ctx := context.Background()
		if force {
			wp, err := svc.Refresh(ctx, true)
			return wallpaperMsg{wp: wp, err: err}
		}
		wp, err := svc.Load(ctx)
		return wallpaperMsg{wp: wp, err: err}
	}
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
