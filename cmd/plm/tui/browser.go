// Package tui implements `plm managed`'s interactive plugin browser
// (spec.md §6's "managed" TUI), grounded on the teacher's
// cmd/claude-sync/tui styling conventions (a Catppuccin Mocha palette
// over lipgloss) and yanmxa-gencode's selector-style bubbletea model
// (a flat list, cursor-driven navigation, action keys dispatched from
// Update).
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ruminaider/plm/internal/applier"
	"github.com/ruminaider/plm/internal/cache"
	"github.com/ruminaider/plm/internal/deployment"
	"github.com/ruminaider/plm/internal/metadata"
	"github.com/ruminaider/plm/internal/placement"
	"github.com/ruminaider/plm/internal/planner"
	"github.com/ruminaider/plm/internal/repo"
	"github.com/ruminaider/plm/internal/targets"
	"github.com/ruminaider/plm/internal/vfs"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CBA6F7"))
	selected   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89B4FA")).PaddingLeft(1)
	normal     = lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4")).PaddingLeft(1)
	dim        = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
)

type item struct {
	marketplace string
	name        string
	version     string
	enabled     []string
}

// Model is the managed browser's bubbletea state.
type Model struct {
	fs          vfs.FS
	cache       *cache.Cache
	targets     *targets.Registry
	projectRoot string

	items      []item
	cursor     int
	status     string
	isError    bool
	filter     textinput.Model
	filtering  bool
}

// New builds a Model rooted at the given cache, targets registry, and
// project root.
func New(fs vfs.FS, c *cache.Cache, targetReg *targets.Registry, projectRoot string) Model {
	filter := textinput.New()
	filter.Placeholder = "filter by name..."
	filter.CharLimit = 80
	filter.Width = 40

	m := Model{fs: fs, cache: c, targets: targetReg, projectRoot: projectRoot, filter: filter}
	m.reload()
	return m
}

// visible returns the items matching the current filter text, or every
// item when no filter is active.
func (m Model) visible() []item {
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		return m.items
	}
	var out []item
	for _, it := range m.items {
		if strings.Contains(strings.ToLower(it.name), strings.ToLower(query)) {
			out = append(out, it)
		}
	}
	return out
}

func (m *Model) reload() {
	entries, err := m.cache.List()
	if err != nil {
		m.status = err.Error()
		m.isError = true
		return
	}

	items := make([]item, 0, len(entries))
	for _, e := range entries {
		manifest, err := m.cache.LoadManifest(e.Marketplace, e.Name)
		version := "?"
		if err == nil {
			version = manifest.Version
		}

		var enabled []string
		if sidecar, ok, err := metadata.Load(m.fs, m.cache.PluginPath(e.Marketplace, e.Name)); err == nil && ok {
			enabled = sidecar.EnabledTargets()
		}

		items = append(items, item{marketplace: e.Marketplace, name: e.Name, version: version, enabled: enabled})
	}
	m.items = items
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.cursor = 0
			return m, nil
		case tea.KeyEnter:
			m.filtering = false
			m.filter.Blur()
			m.cursor = 0
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.cursor = 0
		return m, cmd
	}

	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "e":
		m.toggle(true)
	case "d":
		m.toggle(false)
	case "r":
		m.status = ""
		m.reload()
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// toggle enables (enable=true) the cursor's plugin on every registered
// target, or disables it on every target its sidecar records as enabled,
// against the current --project root and Project scope.
func (m *Model) toggle(enable bool) {
	visible := m.visible()
	if len(visible) == 0 {
		return
	}
	it := visible[m.cursor]
	origin := repo.FromCachedPlugin(it.marketplace, it.name)
	pluginDir := m.cache.PluginPath(it.marketplace, it.name)

	manifest, err := m.cache.LoadManifest(it.marketplace, it.name)
	if err != nil {
		m.fail(err)
		return
	}
	components, err := deployment.Resolve(m.fs, pluginDir, manifest)
	if err != nil {
		m.fail(err)
		return
	}

	sidecar, _, err := metadata.Load(m.fs, pluginDir)
	if err != nil {
		m.fail(err)
		return
	}

	var result applier.Result
	if enable {
		selectedTargets, err := m.targets.Resolve()
		if err != nil {
			m.fail(err)
			return
		}
		plan := planner.PlanEnable(planner.EnableInput{
			Origin: origin, Targets: selectedTargets, Scope: placement.Project,
			ProjectRoot: m.projectRoot, Components: components,
		})
		result = applier.Apply(m.fs, plan)
		for targetName, tr := range result.ByTarget {
			if tr.OK() {
				sidecar.SetStatus(targetName, metadata.StatusEnabled)
			}
		}
	} else {
		var placed []planner.PlacedComponent
		for _, t := range sidecar.EnabledTargets() {
			for _, c := range components {
				placed = append(placed, planner.PlacedComponent{Target: t, Scope: placement.Project, Component: c.Component})
			}
		}
		plan := planner.PlanDisable(planner.DisableInput{Origin: origin, ProjectRoot: m.projectRoot, Placed: placed})
		result = applier.Apply(m.fs, plan)
		for targetName, tr := range result.ByTarget {
			if tr.OK() {
				sidecar.SetStatus(targetName, metadata.StatusDisabled)
			}
		}
	}

	if err := metadata.Save(m.fs, pluginDir, sidecar); err != nil {
		m.fail(err)
		return
	}

	m.isError = !result.Success()
	m.status = result.Message()
	m.reload()
}

func (m *Model) fail(err error) {
	m.isError = true
	m.status = err.Error()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("plm managed") + "\n\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View() + "\n\n")
	}

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(dim.Render("no plugins installed") + "\n")
	}

	for i, it := range visible {
		line := fmt.Sprintf("%s @%s  v%s  [%s]", it.name, displayMarketplace(it.marketplace), it.version, strings.Join(it.enabled, ","))
		if i == m.cursor {
			b.WriteString(selected.Render("> "+line) + "\n")
		} else {
			b.WriteString(normal.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n" + dim.Render("↑/↓ move  e enable  d disable  / filter  r refresh  q quit") + "\n")
	if m.status != "" {
		if m.isError {
			b.WriteString(errStyle.Render(m.status) + "\n")
		} else {
			b.WriteString(okStyle.Render(m.status) + "\n")
		}
	}
	return b.String()
}

func displayMarketplace(name string) string {
	if name == "" {
		return "github"
	}
	return name
}
