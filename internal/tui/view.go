package tui

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/scratch/internal/views"
)

func (m Model) View() string {
	var s strings.Builder

	switch m.screen {
	case screenNote:
		m.viewNote(&s)
	case screenNewNote:
		s.WriteString(titleStyle.Render("New note"))
		s.WriteString("\n\n")
		s.WriteString(m.contentInput.View())
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("enter: save  esc: cancel"))
	case screenBulk:
		m.viewBulk(&s)
	default:
		m.viewHome(&s)
	}

	if m.status != "" {
		s.WriteString("\n")
		if m.lastError != "" {
			s.WriteString(errorStyle.Render(m.status))
		} else {
			s.WriteString(successStyle.Render(m.status))
		}
	}
	s.WriteString("\n")
	return s.String()
}

func (m Model) viewHome(s *strings.Builder) {
	page := m.home.Render()
	if !page.Authenticated {
		s.WriteString(titleStyle.Render(page.Lander.Title))
		s.WriteString("\n")
		s.WriteString(page.Lander.Tagline)
		s.WriteString("\n\n")
		links := make([]string, 0, len(page.Lander.Links))
		for _, l := range page.Lander.Links {
			links = append(links, fmt.Sprintf("%s (%s)", l.Label, l.Route))
		}
		s.WriteString(helpStyle.Render(strings.Join(links, "  ")))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("Run 'scratch auth login' to sign in.  q: quit"))
		return
	}

	if m.screen == screenSearch || page.SearchTerm != "" {
		s.WriteString(labelStyle.Render("Search: "))
		s.WriteString(m.searchInput.View())
		s.WriteString("\n\n")
	}

	if page.Loading {
		s.WriteString(titleStyle.Render("Your Notes"))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("Loading..."))
		s.WriteString("\n")
		return
	}

	s.WriteString(m.list.View())
	s.WriteString("\n")
	if m.screen == screenSearch {
		s.WriteString(helpStyle.Render("enter: keep search  esc: clear search"))
	} else {
		s.WriteString(helpStyle.Render("enter: open  /: search  b: bulk replace  r: reload  q: quit"))
	}
}

func (m Model) viewNote(s *strings.Builder) {
	if m.current == nil {
		return
	}
	s.WriteString(titleStyle.Render(views.NoteRoute(m.current.ID)))
	s.WriteString("\n")
	loc := m.deps.Location
	if loc == nil {
		loc = m.current.CreatedAt.Location()
	}
	layout := m.deps.TimeLayout
	if layout == "" {
		layout = views.DefaultTimeLayout
	}
	s.WriteString(helpStyle.Render("Created: " + m.current.CreatedAt.In(loc).Format(layout)))
	if m.current.HasAttachment() {
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("Attachment: " + m.current.Attachment))
	}
	s.WriteString("\n\n")
	s.WriteString(m.current.Content)
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("esc: back"))
}

func (m Model) viewBulk(s *strings.Builder) {
	s.WriteString(titleStyle.Render("Bulk replace"))
	s.WriteString("\n\n")
	s.WriteString(labelStyle.Render("Find"))
	s.WriteString("\n")
	s.WriteString(m.originalInput.View())
	s.WriteString("\n\n")
	s.WriteString(labelStyle.Render("Replace with"))
	s.WriteString("\n")
	s.WriteString(m.newInput.View())
	s.WriteString("\n\n")

	switch {
	case m.bulk == nil:
	case m.bulk.Loading():
		s.WriteString(disabledStyle.Render("[ Replacing... ]"))
	case m.bulk.CanSubmit():
		s.WriteString(buttonStyle.Render("Replace"))
	default:
		s.WriteString(disabledStyle.Render("[ Replace ]"))
	}
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("tab: switch field  enter: replace  esc: back"))
}
