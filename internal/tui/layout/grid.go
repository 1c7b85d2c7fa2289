package layout

// GridShape is how many tiles fit the terminal.
type GridShape struct {
	Columns int
	Rows    int
}

// CalculateGridShape fits tiles into the terminal, capped by the configured
// layout. Always at least 1x1.
func CalculateGridShape(terminalWidth, terminalHeight, maxColumns, maxRows int, cfg GridConfig) GridShape {
	cols := (terminalWidth + cfg.Gap) / (cfg.TileWidth + cfg.Gap)
	rows := (terminalHeight - cfg.HeaderLines - cfg.FooterLines) / cfg.TileHeight

	if maxColumns > 0 && cols > maxColumns {
		cols = maxColumns
	}
	if maxRows > 0 && rows > maxRows {
		rows = maxRows
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return GridShape{Columns: cols, Rows: rows}
}

// Box is a rectangle in pointer units.
type Box struct {
	Left, Top, Right, Bottom float64
}

// GridBox returns the area the tiles occupy, centered horizontally.
func GridBox(terminalWidth int, shape GridShape, cfg GridConfig) Box {
	width := shape.Columns*cfg.TileWidth + (shape.Columns-1)*cfg.Gap
	left := (terminalWidth - width) / 2
	if left < 0 {
		left = 0
	}
	return Box{
		Left:   float64(left) * cfg.CellWidth,
		Top:    float64(cfg.HeaderLines) * cfg.CellHeight,
		Right:  float64(left+width) * cfg.CellWidth,
		Bottom: float64(cfg.HeaderLines+shape.Rows*cfg.TileHeight) * cfg.CellHeight,
	}
}

// TileCenter is the pointer position over the tile at slot position pos.
func TileCenter(grid Box, pos, columns int, cfg GridConfig) (x, y float64) {
	if columns < 1 {
		columns = 1
	}
	col, row := pos%columns, pos/columns
	stepX := float64(cfg.TileWidth+cfg.Gap) * cfg.CellWidth
	stepY := float64(cfg.TileHeight) * cfg.CellHeight
	x = grid.Left + float64(col)*stepX + float64(cfg.TileWidth)*cfg.CellWidth/2
	y = grid.Top + float64(row)*stepY + stepY/2
	return x, y
}

// EdgePoint is a pointer position just inside the grid's left (dir -1) or
// right (dir +1) edge, at the height of row.
func EdgePoint(grid Box, dir, row int, cfg GridConfig) (x, y float64) {
	y = grid.Top + (float64(row)+0.5)*float64(cfg.TileHeight)*cfg.CellHeight
	if dir < 0 {
		return grid.Left + cfg.CellWidth/2, y
	}
	return grid.Right - cfg.CellWidth/2, y
}
