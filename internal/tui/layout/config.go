package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Grid   GridConfig
	Modal  ModalConfig
	Input  InputConfig
	Text   TextConfig
	Picker PickerConfig
}

// GridConfig sizes the shortcut tiles.
type GridConfig struct {
	// TileWidth and TileHeight are the outer tile size in cells, border included.
	TileWidth  int
	TileHeight int

	// Gap is the horizontal space between tiles.
	Gap int

	// HeaderLines is the space above the grid: clock (3) + search box (3) + spacing (1).
	HeaderLines int

	// FooterLines is the space below the grid: page dots (1) + status (1) + hints (1).
	FooterLines int

	// CellWidth and CellHeight convert cells to the pointer units the grid
	// controller measures its edge margins in.
	CellWidth  float64
	CellHeight float64
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// FolderMaxVisible is how many children the folder overlay lists at once.
	FolderMaxVisible int

	// HelpKeyColumnWidth is the key column of the help overlay.
	HelpKeyColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	NameCharLimit   int
	URLCharLimit    int
	SearchCharLimit int

	// Display widths
	StandardWidth int // name, url and rename inputs
	SearchWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// PickerConfig sizes the shortcut finder.
type PickerConfig struct {
	// HeaderReduction: lines for header, input, help, padding.
	HeaderReduction int

	// LinesPerResult: name line + url line.
	LinesPerResult int
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Grid: GridConfig{
			TileWidth:   16,
			TileHeight:  4,
			Gap:         2,
			HeaderLines: 7,
			FooterLines: 3,
			CellWidth:   10,
			CellHeight:  20,
		},
		Modal: ModalConfig{
			DefaultWidthPercent: 40,
			MinWidth:            44,
			MaxWidth:            72,
			FolderMaxVisible:    8,
			HelpKeyColumnWidth:  14,
		},
		Input: InputConfig{
			NameCharLimit:   60,
			URLCharLimit:    500,
			SearchCharLimit: 200,
			StandardWidth:   40,
			SearchWidth:     48,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
		Picker: PickerConfig{
			HeaderReduction: 6,
			LinesPerResult:  2,
		},
	}
}
