package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/newtab/internal/tui/layout"
)

// Mode is what the keyboard currently drives.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch      // typing into the web search box
	ModeFind        // fuzzy shortcut finder
	ModeAdd
	ModeEdit
	ModeRename // folder name
	ModeConfirm
	ModeHelp
)

// confirmAction is the destructive operation awaiting a yes.
type confirmAction int

const (
	confirmDelete confirmAction = iota
	confirmClear
	confirmRestore
)

// ModalState holds state for the add, edit and rename modals.
type ModalState struct {
	NameInput textinput.Model
	URLInput  textinput.Model
	Focus     int // 0 = name, 1 = url
	Index     int // item being edited or renamed, -1 for the open folder
	Err       string

	Confirm      confirmAction
	ConfirmIndex int
}

// NewModalState creates a new ModalState with initialized inputs.
func NewModalState(cfg layout.LayoutConfig) ModalState {
	nameInput := textinput.New()
	nameInput.Placeholder = "名称"
	nameInput.CharLimit = cfg.Input.NameCharLimit
	nameInput.Width = cfg.Input.StandardWidth

	urlInput := textinput.New()
	urlInput.Placeholder = "https://..."
	urlInput.CharLimit = cfg.Input.URLCharLimit
	urlInput.Width = cfg.Input.StandardWidth

	return ModalState{
		NameInput: nameInput,
		URLInput:  urlInput,
		Index:     -1,
	}
}

// Reset clears the inputs for a new modal session and focuses the name.
func (m *ModalState) Reset() {
	m.NameInput.Reset()
	m.URLInput.Reset()
	m.URLInput.Blur()
	m.NameInput.Focus()
	m.Focus = 0
	m.Index = -1
	m.Err = ""
}

// ToggleFocus moves focus between the name and url inputs.
func (m *ModalState) ToggleFocus() {
	if m.Focus == 0 {
		m.Focus = 1
		m.NameInput.Blur()
		m.URLInput.Focus()
		return
	}
	m.Focus = 0
	m.URLInput.Blur()
	m.NameInput.Focus()
}

// NewSearchInput creates the web search box.
func NewSearchInput(cfg layout.LayoutConfig, placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = cfg.Input.SearchCharLimit
	input.Width = cfg.Input.SearchWidth
	input.Prompt = "🔍 "
	return input
}
