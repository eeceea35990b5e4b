// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/speakup/internal/model"
	"github.com/verte-zerg/speakup/internal/practice"
	"github.com/verte-zerg/speakup/internal/session"
)

// Game is the controller surface the UI drives. *practice.Controller implements it.
type Game interface {
	Snapshot() practice.Snapshot
	NewTarget(ctx context.Context) (practice.Snapshot, error)
	Listen(ctx context.Context) (practice.Snapshot, error)
	SetDifficulty(d model.Difficulty) (practice.Snapshot, error)
	Reset() practice.Snapshot
}

type keyMap struct {
	New        key.Binding
	Speak      key.Binding
	Difficulty key.Binding
	Reset      key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Speak, k.Difficulty, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap(mode model.Mode) keyMap {
	newHelp := "new word"
	if mode == model.ModeObjects {
		newHelp = "capture"
	}
	return keyMap{
		New:        key.NewBinding(key.WithKeys("n", "c"), key.WithHelp("n/c", newHelp)),
		Speak:      key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "speak")),
		Difficulty: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "difficulty")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// resultMsg carries the snapshot produced by a controller operation.
type resultMsg struct {
	snap practice.Snapshot
	err  error
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	game   Game
	ctx    context.Context
	cancel context.CancelFunc

	snap    practice.Snapshot
	err     error
	busy    string
	spinner spinner.Model
	keys    keyMap
	help    help.Model

	width  int
	height int
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	targetStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0")).Padding(1, 4).Border(lipgloss.RoundedBorder())
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#69C0FF"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	winnerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// NewModel constructs the practice UI around game.
func NewModel(ctx context.Context, game Game) *Model {
	ctx, cancel := context.WithCancel(ctx)
	snap := game.Snapshot()
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	return &Model{
		game:    game,
		ctx:     ctx,
		cancel:  cancel,
		snap:    snap,
		spinner: sp,
		keys:    newKeyMap(snap.Mode),
		help:    help.New(),
	}
}

// Init implements tea.Model. The first target is requested immediately.
func (m *Model) Init() tea.Cmd {
	return m.run(m.busyLabel(), func(ctx context.Context) (practice.Snapshot, error) {
		return m.game.NewTarget(ctx)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case resultMsg:
		m.busy = ""
		m.snap = msg.snap
		m.err = msg.err
		return m, nil
	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		return m, tea.Quit
	}
	if m.busy != "" {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.New):
		if m.snap.State == practice.Finished || m.snap.State == practice.AwaitingSpeech {
			return m, nil
		}
		return m, m.run(m.busyLabel(), func(ctx context.Context) (practice.Snapshot, error) {
			return m.game.NewTarget(ctx)
		})
	case key.Matches(msg, m.keys.Speak):
		if m.snap.State != practice.TargetReady {
			return m, nil
		}
		return m, m.run("Listening... say the word", func(ctx context.Context) (practice.Snapshot, error) {
			return m.game.Listen(ctx)
		})
	case key.Matches(msg, m.keys.Difficulty):
		snap, err := m.game.SetDifficulty(m.snap.Difficulty.Cycle())
		m.snap, m.err = snap, err
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		m.snap, m.err = m.game.Reset(), nil
		return m, m.run(m.busyLabel(), func(ctx context.Context) (practice.Snapshot, error) {
			return m.game.NewTarget(ctx)
		})
	}
	return m, nil
}

func (m *Model) busyLabel() string {
	if m.snap.Mode == model.ModeObjects {
		return "Looking for an object..."
	}
	return "Finding a word..."
}

// run executes op off the UI goroutine. Keys are ignored until its result
// arrives, so the controller only ever sees one operation at a time.
func (m *Model) run(label string, op func(context.Context) (practice.Snapshot, error)) tea.Cmd {
	m.busy = label
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		snap, err := op(ctx)
		return resultMsg{snap: snap, err: err}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	contentWidth := max(20, int(float64(width)*0.70))

	sections := []string{m.renderHeader()}
	sections = append(sections, m.renderBody(contentWidth)...)
	if m.busy != "" {
		sections = append(sections, m.spinner.View()+" "+m.busy)
	}
	sections = append(sections, m.renderNotices(contentWidth)...)

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	footer := m.renderFooter() + "\n" + m.help.View(m.keys)
	if m.height < 6 {
		return content + "\n" + footer
	}
	body := lipgloss.Place(width, m.height-2, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, footer)
}

func (m *Model) renderHeader() string {
	title := "speakup · say the word"
	if m.snap.Mode == model.ModeObjects {
		title = "speakup · name the object"
	}
	return titleStyle.Render(title)
}

func (m *Model) renderBody(width int) []string {
	snap := m.snap
	if snap.State == practice.Finished {
		return []string{
			winnerStyle.Render(fmt.Sprintf("You won! Score %d/%d", snap.Score, snap.Total)),
			mutedStyle.Render("Press r to play again or q to quit."),
		}
	}
	if !snap.HasRound {
		return nil
	}
	round := snap.Round
	out := []string{targetStyle.Render(round.Target)}
	if round.Example != "" {
		out = append(out, mutedStyle.Render(wrapLabeled("Example: ", round.Example, width)))
	}
	if last := round.Last; last != nil {
		out = append(out, renderAttempt(*last))
		if len(last.Reference) > 0 {
			out = append(out, mutedStyle.Render(fmt.Sprintf("Phonemes: %s → %s",
				strings.Join(last.Reference, " "), orDash(strings.Join(last.Spoken, " ")))))
		}
	}
	if round.Tip != "" && (round.Last == nil || !round.Last.Passed) {
		out = append(out, wrapLabeled("Tip: ", round.Tip, width))
	}
	if round.Similar != "" && (round.Last == nil || !round.Last.Passed) {
		out = append(out, "Also try: "+round.Similar)
	}
	if round.NeedsHint && len(round.Hints) > 0 {
		out = append(out, hintStyle.Render(wrapLabeled("Similar sounds: ", round.HintText(), width)))
	}
	if snap.State == practice.TargetReady && m.busy == "" {
		out = append(out, mutedStyle.Render("Press space and say the word."))
	}
	if snap.State == practice.Idle && snap.Verdict != nil && snap.Verdict.Passed && m.busy == "" {
		out = append(out, mutedStyle.Render("Press n for the next one."))
	}
	return out
}

func renderAttempt(a session.Attempt) string {
	said := orDash(a.Transcript)
	if a.Passed {
		return passStyle.Render(fmt.Sprintf("✓ You said %q · %.0f%% match", said, a.Score*100))
	}
	return failStyle.Render(fmt.Sprintf("✗ You said %q · %.0f%% match", said, a.Score*100))
}

func (m *Model) renderNotices(width int) []string {
	var out []string
	seen := map[practice.Kind]bool{}
	for _, n := range m.snap.Notices {
		kind := practice.KindOf(n)
		if seen[kind] {
			continue
		}
		seen[kind] = true
		out = append(out, noticeStyle.Render(wrapLabeled("! ", kind.Message(), width)))
	}
	if m.err != nil && !errors.Is(m.err, practice.ErrInvalidTransition) {
		out = append(out, failStyle.Render(wrapLabeled("error: ", m.err.Error(), width)))
	}
	return out
}

func (m *Model) renderFooter() string {
	snap := m.snap
	segments := []string{
		fmt.Sprintf("Score %d/%d", snap.Score, snap.Total),
		"Difficulty " + snap.Difficulty.String(),
	}
	if snap.HasRound {
		segments = append(segments, fmt.Sprintf("Attempts %d", snap.Round.Attempts))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
