package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qualitasnexus/nexctl/internal/identity"
	"github.com/qualitasnexus/nexctl/internal/ux"
)

// FetchUserPage loads one page of users for the browser. Implemented by
// the identity client; injected so the model is testable without a backend.
type FetchUserPage func(pageNumber int, search string) (*identity.UserPage, error)

// browseKeyMap defines the keyboard shortcuts for the user browser
type browseKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Search key.Binding
	Quit   key.Binding
}

var browseKeys = browseKeyMap{
	Next: key.NewBinding(
		key.WithKeys("n", "right"),
		key.WithHelp("n", "next page"),
	),
	Prev: key.NewBinding(
		key.WithKeys("p", "left"),
		key.WithHelp("p", "previous page"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type userPageMsg struct {
	page *identity.UserPage
}

type browseErrMsg struct {
	err error
}

// BrowseModel is the interactive paged user browser
type BrowseModel struct {
	fetch FetchUserPage

	page       *identity.UserPage
	pageNumber int
	pageSize   int
	search     string

	searchInput textinput.Model
	searching   bool

	spin    spinner.Model
	loading bool
	err     error

	styles   Styles
	width    int
	quitting bool
}

// NewBrowseModel creates a user browser starting at the first page
func NewBrowseModel(fetch FetchUserPage, pageSize int) BrowseModel {
	if pageSize <= 0 {
		pageSize = 20
	}

	input := textinput.New()
	input.Placeholder = "name or email"
	input.Prompt = "search: "

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return BrowseModel{
		fetch:       fetch,
		pageNumber:  1,
		pageSize:    pageSize,
		searchInput: input,
		spin:        spin,
		loading:     true,
		styles:      DefaultStyles(),
	}
}

// Init implements tea.Model
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadPage())
}

func (m BrowseModel) loadPage() tea.Cmd {
	pageNumber, search := m.pageNumber, m.search
	fetch := m.fetch
	return func() tea.Msg {
		page, err := fetch(pageNumber, search)
		if err != nil {
			return browseErrMsg{err: err}
		}
		return userPageMsg{page: page}
	}
}

// Update implements tea.Model
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case userPageMsg:
		m.loading = false
		m.err = nil
		m.page = msg.page
		return m, nil

	case browseErrMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, browseKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, browseKeys.Next):
			if m.page != nil && m.page.HasNext && !m.loading {
				m.pageNumber++
				m.loading = true
				return m, tea.Batch(m.spin.Tick, m.loadPage())
			}
		case key.Matches(msg, browseKeys.Prev):
			if m.pageNumber > 1 && !m.loading {
				m.pageNumber--
				m.loading = true
				return m, tea.Batch(m.spin.Tick, m.loadPage())
			}
		case key.Matches(msg, browseKeys.Search):
			m.searching = true
			m.searchInput.SetValue(m.search)
			return m, m.searchInput.Focus()
		}
	}

	return m, nil
}

func (m BrowseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search = strings.TrimSpace(m.searchInput.Value())
		m.searchInput.Blur()
		m.pageNumber = 1
		m.loading = true
		return m, tea.Batch(m.spin.Tick, m.loadPage())
	case tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	default:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model
func (m BrowseModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Users"))
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	} else if m.search != "" {
		b.WriteString(m.styles.Subtitle.Render("search: " + m.search))
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(ux.RenderError(m.err)))
		b.WriteString("\n")
	case m.loading:
		b.WriteString(m.spin.View())
		b.WriteString(" loading...\n")
	case m.page != nil:
		b.WriteString(m.renderPage())
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("n next · p prev · / search · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m BrowseModel) renderPage() string {
	rows := make([][]string, 0, len(m.page.Items))
	for _, u := range m.page.Items {
		status := "inactive"
		if u.IsActive {
			status = "active"
		}
		rows = append(rows, []string{
			u.ID,
			u.UserName,
			u.Email,
			strings.TrimSpace(u.FirstName + " " + u.LastName),
			status,
		})
	}

	var b strings.Builder
	b.WriteString(ux.RenderTable([]string{"ID", "USERNAME", "EMAIL", "NAME", "STATUS"}, rows, false))
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("page %s of %s (%d users)",
		strconv.Itoa(m.page.PageNumber), strconv.Itoa(m.page.TotalPages), m.page.TotalCount)))
	b.WriteString("\n")
	return b.String()
}
