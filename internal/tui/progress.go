package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Column is a fixed-width table column addressed by its header.
type Column struct {
	Header string
	Width  int
}

// Row is one line of the table, keyed for RowUpdateMsg.
type Row struct {
	Key    string
	Fields []string
}

// ProgressModel renders clip and encode progress as a table with a spinner
// footer. Rows are updated in place through RowUpdateMsg.
type ProgressModel struct {
	title   string
	columns []Column
	rows    []Row
	byKey   map[string]int
	status  int // index of the STATUS column, -1 when absent

	spinner spinner.Model
	done    bool
	err     error
}

// NewProgressModel creates an empty table.
func NewProgressModel(title string, columns []Column) ProgressModel {
	m := ProgressModel{
		title:   title,
		columns: columns,
		byKey:   make(map[string]int),
		status:  -1,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for i, c := range columns {
		if strings.EqualFold(c.Header, ColStatus) {
			m.status = i
			break
		}
	}
	return m
}

// AddRow appends a row. Rows must be added before the program starts.
func (m *ProgressModel) AddRow(key string, fields []string) {
	row := Row{Key: key, Fields: make([]string, len(m.columns))}
	copy(row.Fields, fields)
	m.byKey[key] = len(m.rows)
	m.rows = append(m.rows, row)
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RowUpdateMsg:
		if idx, ok := m.byKey[msg.Key]; ok {
			for j, col := range m.columns {
				if v, ok := msg.Fields[col.Header]; ok {
					m.rows[idx].Fields[j] = v
				}
			}
		}
	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit
	case ErrorMsg:
		m.done, m.err = true, msg.Err
		return m, tea.Quit
	case tea.KeyMsg:
		if s := msg.String(); s == "ctrl+c" || s == "q" {
			m.done = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title) + "\n")
	}

	cells := make([]string, len(m.columns))
	for i, col := range m.columns {
		cells[i] = HeaderStyle.Width(m.width(i)).Render(col.Header)
	}
	b.WriteString(strings.Join(cells, "  ") + "\n")

	for _, row := range m.rows {
		for i := range m.columns {
			val := TruncateWithEllipsis(row.Fields[i], m.width(i))
			style := lipgloss.NewStyle()
			if i == m.status {
				style = StatusStyle(val)
			}
			cells[i] = style.Width(m.width(i)).Render(val)
		}
		b.WriteString(strings.Join(cells, "  ") + "\n")
	}

	if !m.done {
		finished, total := m.progressCounts()
		fmt.Fprintf(&b, "\n%s %d/%d steps finished\n", m.spinner.View(), finished, total)
	}
	return b.String()
}

func (m ProgressModel) width(col int) int {
	return max(m.columns[col].Width, len(m.columns[col].Header))
}

// progressCounts reports how many rows reached a final status.
func (m ProgressModel) progressCounts() (finished, total int) {
	total = len(m.rows)
	if m.status < 0 {
		return 0, total
	}
	for _, row := range m.rows {
		if isTerminalStatus(strings.TrimSpace(row.Fields[m.status])) {
			finished++
		}
	}
	return finished, total
}

// Done reports whether the program has finished.
func (m ProgressModel) Done() bool {
	return m.done
}

// Err returns the error that stopped the program, if any.
func (m ProgressModel) Err() error {
	return m.err
}

// TruncateWithEllipsis shortens value to limit bytes, marking the cut with
// "..." when there is room for it.
func TruncateWithEllipsis(value string, limit int) string {
	value = strings.TrimSpace(value)
	switch {
	case limit <= 0:
		return ""
	case len(value) <= limit:
		return value
	case limit <= 3:
		return value[:limit]
	}
	return value[:limit-3] + "..."
}
