package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/newtab/internal/grid"
	"github.com/nikbrunner/newtab/internal/tui/layout"
)

// renderView draws the whole screen for the current mode.
func (a App) renderView() string {
	switch a.mode {
	case ModeHelp:
		return a.renderHelpOverlay()
	case ModeFind:
		return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, a.picker.View())
	case ModeAdd, ModeEdit, ModeRename, ModeConfirm:
		return a.renderModal()
	}

	if a.snap.Folder.Open {
		overlay := lipgloss.Place(
			a.width,
			a.height-a.cfg.Grid.FooterLines,
			lipgloss.Center,
			lipgloss.Center,
			a.renderFolderOverlay(),
		)
		return lipgloss.JoinVertical(lipgloss.Left, overlay, a.renderHelpBar())
	}

	body := a.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderGrid()))
	body = lipgloss.NewStyle().Height(a.height - a.cfg.Grid.FooterLines).Render(body)

	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, body, a.renderHelpBar()))
}

// renderHeader draws the clock, greeting and search box.
func (a App) renderHeader() string {
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, s)
	}

	clockLine := a.styles.Clock.Render(a.face.Time) + "  " + a.styles.Date.Render(a.face.Date)
	box := a.styles.SearchBox
	if a.mode == ModeSearch {
		box = a.styles.SearchFocus
	}
	search := box.Render(a.searchBox.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		center(clockLine),
		center(a.styles.Date.Render(a.face.Greeting)),
		center(search),
		"",
	)
}

// renderGrid draws the tiles of the current page inside the grid box.
func (a App) renderGrid() string {
	g := a.cfg.Grid
	cols := a.columns()
	rows := a.snap.Layout.Normalized().RowsPerPage
	width := cols*g.TileWidth + (cols-1)*g.Gap

	left := (a.width - width) / 2
	if left < 0 {
		left = 0
	}
	block := lipgloss.NewStyle().
		Width(width).
		Height(rows * g.TileHeight).
		MarginLeft(left)

	tiles := a.tiles()
	if len(tiles) == 0 {
		return block.Render(a.styles.Empty.Render("没有快捷方式"))
	}

	var lines []string
	for start := 0; start < len(tiles); start += cols {
		end := min(start+cols, len(tiles))
		cells := make([]string, 0, 2*(end-start))
		for i := start; i < end; i++ {
			if i > start {
				cells = append(cells, strings.Repeat(" ", g.Gap))
			}
			cells = append(cells, a.renderTile(tiles[i]))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return block.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (a App) renderTile(t Tile) string {
	g := a.cfg.Grid
	style := a.styles.Tile
	badge := a.styles.Initials

	switch {
	case t.Source:
		style = a.styles.TileSource
	case t.Target && t.Dwell:
		style = a.styles.TileMerge
	case t.Cursor, t.Target:
		style = a.styles.TileCursor
	case t.Kind == TileAdd:
		style = a.styles.AddTile
	}
	if t.Kind == TileFolder {
		badge = a.styles.TileFolder
	}

	inner := g.TileWidth - 2
	label, _ := layout.TruncateText(t.Label(), inner, a.cfg.Text)
	return style.
		Width(inner).
		Height(g.TileHeight - 2).
		Render(badge.Render(t.Badge()) + "\n" + label)
}

// renderFolderOverlay draws the open folder's children.
func (a App) renderFolderOverlay() string {
	f := a.snap.Folder
	drag := a.snap.Drag
	width := layout.CalculateModalWidth(a.width, a.cfg.Modal.DefaultWidthPercent, a.cfg.Modal)
	inner := width - 4

	title := f.Name + " (" + strconv.Itoa(len(f.Children)) + ")"
	if f.Manage {
		title += " · 管理"
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render(title))
	b.WriteString("\n\n")

	if len(f.Children) == 0 {
		b.WriteString(a.styles.Empty.Render("文件夹是空的"))
		b.WriteString("\n")
	}

	start, end := layout.CalculateVisibleListItems(a.cfg.Modal.FolderMaxVisible, a.child, len(f.Children))
	inDrag := a.dragging() && a.inFolderDrag()
	for i := start; i < end; i++ {
		child := f.Children[i]

		prefix := "  "
		if f.Manage {
			prefix = "✕ "
		}
		if inDrag && i == drag.Target {
			switch drag.Hint {
			case grid.HintLeft:
				prefix = "▴ "
			case grid.HintRight:
				prefix = "▾ "
			}
		}

		name, _ := layout.TruncateText(child.Name, inner/2, a.cfg.Text)
		url, _ := layout.TruncateText(child.URL, inner-layout.VisibleWidth(name)-4, a.cfg.Text)
		line := prefix + name + "  " + a.styles.URL.Render(url)

		switch {
		case inDrag && i == drag.SourceChild:
			line = a.styles.Empty.Render(prefix + name)
		case i == a.child && !a.outside:
			line = a.styles.ItemCursor.Width(inner).Render(prefix + name + "  " + url)
		default:
			line = a.styles.Item.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderHintsInline(a.folderHints()))
	return a.styles.Overlay.Width(width).Render(b.String())
}

// renderModal draws the add, edit, rename and confirm dialogs.
func (a App) renderModal() string {
	var title string
	var content strings.Builder

	switch a.mode {
	case ModeAdd, ModeEdit:
		title = "添加快捷方式"
		if a.mode == ModeEdit {
			title = "编辑快捷方式"
		}
		content.WriteString("名称:\n")
		content.WriteString(a.modal.NameInput.View())
		content.WriteString("\n\n")
		content.WriteString("网址:\n")
		content.WriteString(a.modal.URLInput.View())

	case ModeRename:
		title = "重命名文件夹"
		content.WriteString("名称:\n")
		content.WriteString(a.modal.NameInput.View())

	case ModeConfirm:
		title, body := a.confirmText()
		content.WriteString(body)
		content.WriteString("\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "y/Enter", Desc: "确认"},
			{Key: "n/Esc", Desc: "取消"},
		}))
		return a.placeModal(title, content.String())
	}

	if a.modal.Err != "" {
		content.WriteString("\n\n")
		content.WriteString(a.styles.Error.Render(a.modal.Err))
	}
	content.WriteString("\n\n")
	content.WriteString(a.renderHintsInline(a.modalHints()))
	return a.placeModal(title, content.String())
}

func (a App) placeModal(title, content string) string {
	width := layout.CalculateModalWidth(a.width, a.cfg.Modal.DefaultWidthPercent, a.cfg.Modal)
	modal := lipgloss.Place(
		a.width,
		a.height-a.cfg.Grid.FooterLines,
		lipgloss.Center,
		lipgloss.Center,
		a.styles.Modal.Width(width).Render(a.styles.Title.Render(title)+"\n\n"+content),
	)
	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderHelpBar())
}

func (a App) confirmText() (title, body string) {
	switch a.modal.Confirm {
	case confirmClear:
		return "清空快捷方式", "确定要清空所有快捷方式吗？此操作无法撤销。"
	case confirmRestore:
		return "恢复默认", "确定要恢复默认快捷方式吗？当前快捷方式将被替换。"
	}

	i := a.modal.ConfirmIndex
	if !a.snap.Items.Valid(i) {
		return "删除", "该项目已不存在。"
	}
	item := a.snap.Items[i]
	if item.IsFolder() {
		return "删除文件夹", "确定要删除文件夹 \"" + item.Name + "\" 及其中 " +
			strconv.Itoa(len(item.Children)) + " 个快捷方式吗？"
	}
	return "删除快捷方式", "确定要删除 \"" + item.Name + "\" 吗？"
}

// renderHelpOverlay lists every binding, grouped, in two columns.
func (a App) renderHelpOverlay() string {
	sections := a.keys.helpSections()
	keyCol := lipgloss.NewStyle().Width(a.cfg.Modal.HelpKeyColumnWidth)

	render := func(secs []helpSection) string {
		var b strings.Builder
		for i, s := range secs {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(a.styles.Title.Render(s.Title) + "\n")
			for _, k := range s.Keys {
				h := k.Help()
				b.WriteString(keyCol.Render(h.Key) + h.Desc + "\n")
			}
		}
		return b.String()
	}

	half := (len(sections) + 1) / 2
	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		render(sections[:half]), "    ", render(sections[half:]))
	footer := a.styles.Empty.Render("[?/esc] close  [q] quit")

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(cols+"\n"+footer),
	)
}

// renderHelpBar is the footer: page dots, status and contextual hints.
func (a App) renderHelpBar() string {
	return strings.Join([]string{
		a.renderPageDots(),
		a.renderStatusLine(),
		" " + a.renderHints(a.getContextualHints()),
	}, "\n")
}

func (a App) renderPageDots() string {
	total := a.snap.TotalPages
	if total <= 1 {
		return ""
	}
	dots := make([]string, total)
	for i := range dots {
		if i == a.snap.Page {
			dots[i] = a.styles.PageDotOn.Render("●")
		} else {
			dots[i] = a.styles.PageDot.Render("○")
		}
	}
	line := strings.Join(dots, " ")
	switch a.snap.Drag.AutoPageDir {
	case -1:
		line = a.styles.PageDotOn.Render("«") + " " + line
	case 1:
		line += " " + a.styles.PageDotOn.Render("»")
	}
	return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, line)
}

func (a App) renderStatusLine() string {
	switch {
	case a.status != "" && a.statusErr:
		return " " + a.styles.Error.Render("✗ "+a.status)
	case a.dragging():
		return " " + a.styles.Status.Render(a.dragStatus())
	case a.status != "":
		return " " + a.styles.Status.Render(a.status)
	case a.wallpaper != nil && a.wallpaper.Author != "":
		return " " + a.styles.Status.Render("壁纸: "+a.wallpaper.Author)
	}
	return ""
}

// dragStatus describes what letting go would do.
func (a App) dragStatus() string {
	d := a.snap.Drag
	name := d.Source.Name

	switch {
	case a.inFolderDrag() && a.outside:
		return "移出文件夹: " + name
	case d.OverAdd:
		return "不能放在这里"
	case d.AutoPageDir != 0:
		return "即将翻页..."
	}

	switch d.Intent {
	case grid.IntentMerge:
		return "停留以与该快捷方式合并为文件夹"
	case grid.IntentOpenFolder:
		return "停留以放入该文件夹"
	case grid.IntentReorderOnly:
		return "文件夹之间只能排序"
	case grid.IntentReorder:
		return "松开以移动 " + name
	}
	return "拖动中: " + name
}
