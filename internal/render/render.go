// Package render prints view models for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
	"github.com/preston-bernstein/pickem-client/internal/session"
	"github.com/preston-bernstein/pickem-client/internal/views"
)

const (
	teamWidth  = 22
	nameWidth  = 18
	rankWidth  = 5
	valueWidth = 8
	pickMarker = "* "
)

type styles struct {
	header  lipgloss.Style
	muted   lipgloss.Style
	picked  lipgloss.Style
	plain   lipgloss.Style
	empty   lipgloss.Style
	failure lipgloss.Style
	col     func(width int) lipgloss.Style
}

// Printer writes styled text to one writer. Color is dropped automatically
// when the writer is not a terminal.
type Printer struct {
	w io.Writer
	s styles
}

// New returns a Printer bound to w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w: w,
		s: styles{
			header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
			picked:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
			plain:   r.NewStyle(),
			empty:   r.NewStyle().Italic(true).Foreground(lipgloss.Color("8")),
			failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			col:     func(width int) lipgloss.Style { return r.NewStyle().Width(width) },
		},
	}
}

func (p *Printer) line(s string) error {
	_, err := fmt.Fprintln(p.w, s)
	return err
}

// Session prints the signed-in identity.
func (p *Printer) Session(s session.Session) error {
	if s.User == nil || s.State == session.Unauthenticated {
		return p.line(p.s.muted.Render("Not signed in"))
	}
	return p.line(fmt.Sprintf("%s %s <%s> (%s)", p.s.header.Render("Signed in as"), s.User.Name, s.User.Email, s.State))
}

// Weeks lists weeks, marking the active one.
func (p *Printer) Weeks(list []weeks.Week, active int64) error {
	if len(list) == 0 {
		return p.line(p.s.empty.Render("No weeks yet."))
	}
	for _, w := range list {
		marker := "  "
		style := p.s.plain
		if w.ID == active {
			marker, style = pickMarker, p.s.picked
		}
		text := fmt.Sprintf("%s%-4d %s", marker, w.ID, w.Label())
		if w.StartDate != "" {
			text += p.s.muted.Render(fmt.Sprintf("  %s to %s", w.StartDate, w.EndDate))
		}
		if err := p.line(style.Render(text)); err != nil {
			return err
		}
	}
	return nil
}

// Cards prints the dashboard for one week.
func (p *Printer) Cards(week weeks.Week, cards []views.GameCard) error {
	if err := p.line(p.s.header.Render(week.Label())); err != nil {
		return err
	}
	if len(cards) == 0 {
		return p.line(p.s.empty.Render("No games found for this week."))
	}
	for _, c := range cards {
		meta := fmt.Sprintf("game %d", c.GameID)
		if c.Kickoff != "" {
			meta += "  " + c.Kickoff
		}
		meta += "  " + string(c.Status)
		if c.Score != "" {
			meta += "  " + c.Score
		}
		middle := "@"
		if c.OverUnder != "" {
			middle += "  " + c.OverUnder
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			p.team(c.Away),
			p.s.col(16).Render(p.s.muted.Render(middle)),
			p.team(c.Home),
		)
		if err := p.line(p.s.muted.Render(meta)); err != nil {
			return err
		}
		if err := p.line("  " + row); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) team(b views.TeamButton) string {
	text := fmt.Sprintf("%s (%d) %s", b.Name, b.TeamID, b.Spread)
	if b.Picked {
		return p.s.col(teamWidth).Render(p.s.picked.Render(pickMarker + text))
	}
	return p.s.col(teamWidth).Render("  " + text)
}

// Comparison prints both users' picks side by side.
func (p *Printer) Comparison(week weeks.Week, opponent string, rows []views.ComparisonRow) error {
	if err := p.line(p.s.header.Render(fmt.Sprintf("%s: You vs %s", week.Label(), opponent))); err != nil {
		return err
	}
	if len(rows) == 0 {
		return p.line(p.s.empty.Render("No games found for this week."))
	}
	for _, r := range rows {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			p.s.col(28).Render(r.Matchup),
			p.s.col(nameWidth).Render(p.cell(r.Mine)),
			p.s.col(nameWidth).Render(p.cell(r.Theirs)),
		)
		if err := p.line(row); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) cell(c views.PickCell) string {
	if !c.Picked {
		return p.s.empty.Render(c.Label)
	}
	return p.s.picked.Render(c.Team)
}

// Opponents lists users with picks, marking the default choice.
func (p *Printer) Opponents(list []views.Opponent, def int64) error {
	if len(list) == 0 {
		return p.line(p.s.empty.Render("Nobody has picked this week yet."))
	}
	for _, o := range list {
		marker := "  "
		if o.UserID == def {
			marker = pickMarker
		}
		if err := p.line(fmt.Sprintf("%s%-4d %s", marker, o.UserID, o.Label())); err != nil {
			return err
		}
	}
	return nil
}

// Leaderboard prints the ranking table.
func (p *Printer) Leaderboard(rows []views.LeaderboardRow) error {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		p.s.col(rankWidth).Render("Rank"),
		p.s.col(nameWidth).Render("User"),
		p.s.col(valueWidth).Render("Correct"),
		p.s.col(valueWidth).Render("%"),
	)
	if err := p.line(p.s.header.Render(header)); err != nil {
		return err
	}
	if len(rows) == 0 {
		return p.line(p.s.empty.Render(views.EmptyLeaderboard))
	}
	for _, r := range rows {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			p.s.col(rankWidth).Render(r.Rank),
			p.s.col(nameWidth).Render(truncate(r.Name, nameWidth-1)),
			p.s.col(valueWidth).Render(r.Record),
			p.s.col(valueWidth).Render(r.WinRate),
		)
		if err := p.line(row); err != nil {
			return err
		}
	}
	return nil
}

// Failure prints an error the way a user should see it.
func (p *Printer) Failure(msg string) error {
	return p.line(p.s.failure.Render(strings.TrimSpace(msg)))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
