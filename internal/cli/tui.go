package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/ontolayout/pkg/diagram"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// AnchorPickerModel - Interactive anchor selection
// =============================================================================

// anchorItem is one diagram node in the picker.
type anchorItem struct {
	ID          string
	Represented string
	Label       string
	Anchored    bool
	Original    bool // Anchored flag stored in the diagram
}

// AnchorPickerModel is the bubbletea model for choosing which diagram
// nodes stay in place during a layout.
type AnchorPickerModel struct {
	Items     []anchorItem
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewAnchorPickerModel lists the node entities of a diagram, preselecting
// the ones in selected. A nil selected preselects the stored anchors.
func NewAnchorPickerModel(entities []diagram.Entity, selected map[string]bool) AnchorPickerModel {
	var items []anchorItem
	for _, e := range entities {
		if e.Kind != diagram.KindNode {
			continue
		}
		anchored := e.Anchored
		if selected != nil {
			anchored = selected[e.ID]
		}
		items = append(items, anchorItem{
			ID:          e.ID,
			Represented: e.Represented,
			Label:       e.Label,
			Anchored:    anchored,
			Original:    e.Anchored,
		})
	}
	return AnchorPickerModel{Items: items, Height: 15}
}

// Anchored returns the ids of the selected items.
func (m AnchorPickerModel) Anchored() []string {
	var ids []string
	for _, it := range m.Items {
		if it.Anchored {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func (m AnchorPickerModel) Init() tea.Cmd {
	return nil
}

func (m AnchorPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Items) > 0 {
				m.Items[m.Cursor].Anchored = !m.Items[m.Cursor].Anchored
			}
		case "a":
			m.setAll(func(anchorItem) bool { return true })
		case "n":
			m.setAll(func(anchorItem) bool { return false })
		case "r":
			m.setAll(func(it anchorItem) bool { return it.Original })
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m AnchorPickerModel) setAll(f func(anchorItem) bool) {
	for i := range m.Items {
		m.Items[i].Anchored = f(m.Items[i])
	}
}

func (m AnchorPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Anchored Nodes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  n none  r reset  ⏎ save  q quit"))
	b.WriteString("\n\n")

	if len(m.Items) == 0 {
		b.WriteString(listDimStyle.Render("  diagram has no nodes"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Items))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if it.Anchored {
			mark = "[x]"
		}
		stored := ""
		if it.Original {
			stored = "anchored"
		}
		rows = append(rows, []string{cursor, mark, it.ID, orDash(it.Label), orDash(it.Represented), stored})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Node", "Label", "Represents", "Stored").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 5 {
				base = base.Foreground(colorDim)
			} else if m.Items[idx].Anchored {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d anchored", m.Cursor+1, len(m.Items), len(m.Anchored()))))

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
