package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/favorites"
	"github.com/mmcdole/akiba/internal/filecache"
	"github.com/mmcdole/akiba/internal/settings"
	"github.com/mmcdole/akiba/internal/tui/components"
	"github.com/mmcdole/akiba/internal/tui/styles"
)

// Vertical chrome: tab bar + status line + help line
const ChromeHeight = 3

const statusTimeout = 4 * time.Second

// Opener shows an image path or URL outside the terminal
type Opener interface {
	Open(target string) error
}

// Deps are the collaborators the browser reads and writes through
type Deps struct {
	Ledger   *favorites.Ledger
	Files    *filecache.Manager
	Settings *settings.Store
	Viewer   Opener // optional
	Logger   *slog.Logger
}

// Model is the main Bubble Tea model for the favorites browser
type Model struct {
	deps   Deps
	logger *slog.Logger
	keys   KeyMap
	help   help.Model

	Ready  bool
	Width  int
	Height int

	// Active tab
	Kind domain.FavoriteKind

	artGrid  components.Grid
	charGrid components.Grid

	// UI state
	StatusMsg   string
	StatusIsErr bool
	statusID    int
	CacheSize   int64
	LastOpened  string
}

// NewModel creates a browser over the given dependencies
func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cols := 1
	if deps.Settings != nil {
		cols = deps.Settings.Current().GridColumns
	}

	return Model{
		deps:     deps,
		logger:   logger,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		Kind:     domain.KindArt,
		artGrid:  components.NewGrid(cols),
		charGrid: components.NewGrid(cols),
	}
}

// Init loads favorites and measures the cache
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadFavoritesCmd(m.deps.Ledger),
		CacheSizeCmd(m.deps.Files),
	)
}

func (m *Model) activeGrid() *components.Grid {
	if m.Kind == domain.KindCharacter {
		return &m.charGrid
	}
	return &m.artGrid
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.help.Width = msg.Width
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case FavoritesLoadedMsg:
		m.artGrid.SetCells(artCells(msg.Art))
		m.charGrid.SetCells(characterCells(msg.Characters))
		return m, nil

	case FavoriteToggledMsg:
		verb := "Removed"
		if msg.Favorite {
			verb = "Added"
		}
		cmd := m.setStatus(fmt.Sprintf("%s %s #%d", verb, msg.Kind, msg.ID), false)
		return m, tea.Batch(cmd, LoadFavoritesCmd(m.deps.Ledger))

	case ImageResolvedMsg:
		m.LastOpened = msg.Resolved
		cmds := []tea.Cmd{CacheSizeCmd(m.deps.Files)}
		if m.deps.Viewer != nil {
			cmds = append(cmds, OpenImageCmd(m.deps.Viewer, msg.Resolved))
		}
		if msg.Resolved == filecache.Canonicalize(msg.URL) {
			cmds = append(cmds, m.setStatus("Offline, using remote "+msg.Resolved, true))
		} else {
			cmds = append(cmds, m.setStatus("Cached "+msg.Resolved, false))
		}
		return m, tea.Batch(cmds...)

	case CacheSizeMsg:
		m.CacheSize = msg.Bytes
		return m, nil

	case ErrMsg:
		m.logger.Error("tui command failed", "context", msg.Context, "error", msg.Err)
		return m, m.setStatus(msg.Error(), true)

	case ClearStatusMsg:
		if msg.ID == m.statusID {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	grid := m.activeGrid()

	// Filter input has focus: route everything except quit-by-ctrl+c
	if grid.IsFiltering() {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		*grid, cmd = grid.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.updateLayout()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.Kind == domain.KindArt {
			m.Kind = domain.KindCharacter
		} else {
			m.Kind = domain.KindArt
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		grid.Move(0, -1)
	case key.Matches(msg, m.keys.Down):
		grid.Move(0, 1)
	case key.Matches(msg, m.keys.Left):
		grid.Move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		grid.Move(1, 0)

	case key.Matches(msg, m.keys.Filter):
		return m, grid.StartFilter()

	case key.Matches(msg, m.keys.Escape):
		grid.ClearFilter()

	case key.Matches(msg, m.keys.Reload):
		// Settings may have changed in another process
		if m.deps.Settings != nil {
			if s, err := m.deps.Settings.Load(); err == nil {
				m.artGrid.SetColumns(s.GridColumns)
				m.charGrid.SetColumns(s.GridColumns)
			}
		}
		return m, tea.Batch(LoadFavoritesCmd(m.deps.Ledger), CacheSizeCmd(m.deps.Files))

	case key.Matches(msg, m.keys.Unfavorite):
		if cell, ok := grid.Selected(); ok {
			return m, ToggleFavoriteCmd(m.deps.Ledger, m.Kind, cell.ID)
		}

	case key.Matches(msg, m.keys.Enter):
		if cell, ok := grid.Selected(); ok && cell.ImageURL != "" {
			return m, tea.Batch(
				m.setStatus("Fetching "+cell.Title+"…", false),
				ResolveImageCmd(m.deps.Files, cell.ImageURL),
			)
		}
	}

	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusID++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.statusID, statusTimeout)
}

func (m *Model) updateLayout() {
	height := m.Height - ChromeHeight
	if m.help.ShowAll {
		height -= len(m.keys.FullHelp()[0])
	}
	m.artGrid.SetSize(m.Width, height)
	m.charGrid.SetSize(m.Width, height)
}

// View renders the browser
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	grid := m.artGrid
	if m.Kind == domain.KindCharacter {
		grid = m.charGrid
	}

	sections := []string{
		m.renderTabs(),
		grid.View(),
		m.renderStatus(),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTabs() string {
	tab := func(kind domain.FavoriteKind, label string, n int) string {
		text := fmt.Sprintf("%s (%d)", label, n)
		if m.Kind == kind {
			return styles.ActiveTabStyle.Render(text)
		}
		return styles.TabStyle.Render(text)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		tab(domain.KindArt, "Art", m.artGrid.Len()),
		" ",
		tab(domain.KindCharacter, "Characters", m.charGrid.Len()),
	)
}

func (m Model) renderStatus() string {
	var parts []string

	size := "cache " + humanize.Bytes(uint64(max(m.CacheSize, 0)))
	if m.deps.Settings != nil {
		if limit := m.deps.Settings.Current().MaxCacheSize; limit > 0 {
			size += " / " + humanize.Bytes(uint64(limit))
		}
	}
	parts = append(parts, styles.DimStyle.Render(size))

	if m.StatusMsg != "" {
		style := styles.AccentStyle
		if m.StatusIsErr {
			style = styles.ErrorStyle
		}
		parts = append(parts, style.Render(m.StatusMsg))
	}
	return strings.Join(parts, "  ")
}

func artCells(records []domain.ImageRecord) []components.Cell {
	cells := make([]components.Cell, len(records))
	for i, r := range records {
		sub := fmt.Sprintf("%dx%d", r.Width, r.Height)
		if r.FileSize > 0 {
			sub += " " + humanize.Bytes(uint64(r.FileSize))
		}
		cells[i] = components.Cell{ID: r.ID, Title: r.Title(), Subtitle: sub, ImageURL: r.FileURL}
	}
	return cells
}

func characterCells(records []domain.CharacterRecord) []components.Cell {
	cells := make([]components.Cell, len(records))
	for i, r := range records {
		cells[i] = components.Cell{
			ID:       r.MalID,
			Title:    r.Title(),
			Subtitle: fmt.Sprintf("#%d", r.MalID),
			ImageURL: r.ImageURL(),
		}
	}
	return cells
}
