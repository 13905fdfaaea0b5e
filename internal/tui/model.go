package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
	"docqa/internal/ingest"
	"docqa/internal/service"
)

// Analyzer is the TUI-facing subset of the session service.
type Analyzer interface {
	IngestWithProgress(ctx context.Context, data []byte, onProgress ingest.ProgressFunc) (service.Summary, error)
	Ask(ctx context.Context, question string) (domain.AnswerResult, error)
	History() []domain.HistoryEntry
	ClearHistory()
	ClearAnswer()
	ShowHistoryAnswer(i int) bool
	LastAnswer() (domain.AnswerResult, bool)
	Ready() bool
	Current() (service.Summary, bool)
}

type focusArea int

const (
	focusInput focusArea = iota
	focusHistory
)

// Messages produced by the async commands.
type (
	ingestedMsg service.Summary
	answeredMsg domain.AnswerResult
	phaseMsg    ingest.Phase
	errMsg      struct{ err error }
)

// Model is the Bubble Tea model for the document QA terminal app.
type Model struct {
	ctx      context.Context
	analyzer Analyzer

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	phases       chan ingest.Phase
	busy         bool
	ready        bool
	focus        focusArea
	historyPos   int
	status       string
	docLine      string
	lastQuestion string
	initialDoc   string
	width        int
}

// New creates the TUI model. If docPath is non-empty, that file is ingested
// as soon as the program starts.
func New(ctx context.Context, analyzer Analyzer, docPath string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or /load <file.pdf>"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	vp := viewport.New(0, 0)
	return Model{
		ctx:        ctx,
		analyzer:   analyzer,
		input:      ti,
		viewport:   vp,
		spinner:    sp,
		phases:     make(chan ingest.Phase, 8),
		status:     "Load a PDF with /load <path> and ask away.",
		docLine:    "No document loaded.",
		initialDoc: docPath,
	}
}

// Init starts cursor blink and, when a document was given on the command
// line, kicks off its ingestion.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.initialDoc != "" {
		cmds = append(cmds, m.spinner.Tick, m.ingestFile(m.initialDoc, m.phases), m.listenPhases())
	}
	return tea.Batch(cmds...)
}

// Update handles key, window, and pipeline events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.resize(msg.Width, msg.Height)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case phaseMsg:
		m.status = phaseLabel(ingest.Phase(msg))
		if msg == phaseMsg(ingest.PhaseReady) || msg == phaseMsg(ingest.PhaseFailed) {
			return m, nil
		}
		return m, m.listenPhases()
	case ingestedMsg:
		m.busy = false
		summary := service.Summary(msg)
		m.docLine = docLine(summary)
		if summary.Reused {
			m.status = "Document unchanged, reusing the existing index."
		} else {
			m.status = "Document processed successfully."
		}
		if summary.Oversized {
			m.status += " Note: file exceeds 10MB, processing may be slow."
		}
		return m, nil
	case answeredMsg:
		m.busy = false
		m.status = "Answer ready."
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case errMsg:
		m.busy = false
		m.status = userErrorMessage(msg.err)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
		return m, tea.Quit
	}
	switch msg.String() {
	case "tab":
		if m.focus == focusInput && len(m.analyzer.History()) > 0 {
			m.focus = focusHistory
			m.historyPos = 0
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil
	case "enter":
		if m.busy {
			m.status = "Still working, hold on."
			return m, nil
		}
		if m.focus == focusHistory {
			if m.analyzer.ShowHistoryAnswer(m.historyPos) {
				m.status = "Showing a previous answer."
				m.viewport.SetContent(m.renderAnswer())
			}
			return m, nil
		}
		return m.submitInput()
	case "up":
		if m.focus == focusHistory {
			if n := len(m.analyzer.History()); n > 0 {
				m.historyPos = (m.historyPos - 1 + n) % n
			}
			return m, nil
		}
	case "down":
		if m.focus == focusHistory {
			if n := len(m.analyzer.History()); n > 0 {
				m.historyPos = (m.historyPos + 1) % n
			}
			return m, nil
		}
	case "ctrl+r":
		m.analyzer.ClearAnswer()
		m.lastQuestion = ""
		m.status = "Answer cleared. Ask a new question."
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case "ctrl+x":
		m.analyzer.ClearHistory()
		m.focus = focusInput
		m.input.Focus()
		m.historyPos = 0
		m.status = "History cleared."
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if m.focus == focusHistory {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}
	if path, ok := strings.CutPrefix(value, "/load "); ok {
		m.input.SetValue("")
		m.busy = true
		m.status = "Loading " + strings.TrimSpace(path)
		m.phases = make(chan ingest.Phase, 8)
		return m, tea.Batch(m.spinner.Tick, m.ingestFile(strings.TrimSpace(path), m.phases), m.listenPhases())
	}
	m.input.SetValue("")
	m.lastQuestion = value
	m.busy = true
	m.status = "Thinking..."
	return m, tea.Batch(m.spinner.Tick, m.ask(value))
}

// View renders the full layout: header, document line, answer viewport,
// history panel, input box, status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Document QA")
	doc := docStyle.Render(m.docLine)
	answer := answerBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := m.statusLine()
	parts := []string{header, doc, answer}
	if history := m.renderHistory(); history != "" {
		parts = append(parts, history)
	}
	parts = append(parts, input, status)
	return strings.Join(parts, "\n")
}

func (m Model) statusLine() string {
	if m.busy {
		return statusStyle.Render(m.spinner.View() + m.status)
	}
	return statusStyle.Render(m.status)
}

func (m *Model) resize(width, height int) {
	_, ah := answerBoxStyle.GetFrameSize()
	_, ih := inputBoxStyle.GetFrameSize()
	headerLines := 2
	statusLines := 1
	historyLines := 0
	if n := len(m.analyzer.History()); n > 0 {
		historyLines = n + 1
	}
	reserved := headerLines + statusLines + historyLines + ih + 1
	vh := height - reserved - ah
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = max(20, width-2)
	m.viewport.Height = vh
}

func (m Model) renderAnswer() string {
	result, ok := m.analyzer.LastAnswer()
	if !ok {
		return "No answer yet. Ask a question about the loaded document."
	}
	var sb strings.Builder
	sb.WriteString(result.Answer)
	if len(result.Sources) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(sourceTitleStyle.Render("Sources"))
		for i, src := range result.Sources {
			sb.WriteString(fmt.Sprintf("\n[%d] page %d  score=%.3f\n", i+1, src.Page, src.Score))
			sb.WriteString(highlightBestSentence(src.Text, m.lastQuestion))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m Model) renderHistory() string {
	entries := m.analyzer.History()
	if len(entries) == 0 {
		return ""
	}
	var sb strings.Builder
	title := "History (tab to browse, enter to view)"
	sb.WriteString(historyTitleStyle.Render(title))
	for i, entry := range entries {
		cursor := "  "
		line := fmt.Sprintf("%d. %s", i+1, truncate(entry.Question, max(10, m.width-8)))
		if m.focus == focusHistory && i == m.historyPos {
			cursor = "> "
			line = historySelStyle.Render(line)
		}
		sb.WriteString("\n" + cursor + line)
	}
	return sb.String()
}

// ingestFile reads and ingests a file, forwarding pipeline phases on the
// given channel. The channel is closed when ingestion finishes so a parked
// listener never outlives the load, even when no phase was ever emitted
// (unreadable file, unchanged document).
func (m Model) ingestFile(path string, phases chan ingest.Phase) tea.Cmd {
	return func() tea.Msg {
		defer close(phases)
		data, err := os.ReadFile(path)
		if err != nil {
			return errMsg{err}
		}
		summary, err := m.analyzer.IngestWithProgress(m.ctx, data, func(p ingest.Phase) {
			select {
			case phases <- p:
			default:
			}
		})
		if err != nil {
			return errMsg{err}
		}
		return ingestedMsg(summary)
	}
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.analyzer.Ask(m.ctx, question)
		if err != nil {
			return errMsg{err}
		}
		return answeredMsg(result)
	}
}

func (m Model) listenPhases() tea.Cmd {
	phases := m.phases
	return func() tea.Msg {
		p, ok := <-phases
		if !ok {
			return nil
		}
		return phaseMsg(p)
	}
}

func docLine(s service.Summary) string {
	line := fmt.Sprintf("doc %s  |  %d pages  |  %d chunks", s.DocHashPrefix, s.PageCount, s.ChunkCount)
	if s.Oversized {
		line += "  |  over 10MB"
	}
	return line
}

func phaseLabel(p ingest.Phase) string {
	switch p {
	case ingest.PhaseExtracting:
		return "Extracting text..."
	case ingest.PhaseChunking:
		return "Splitting into chunks..."
	case ingest.PhaseEmbedding:
		return "Generating embeddings..."
	case ingest.PhaseReady:
		return "Document ready."
	case ingest.PhaseFailed:
		return "Processing failed."
	default:
		return string(p)
	}
}

func userErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoDocument):
		return "Load a document first: /load <file.pdf>"
	case errors.Is(err, domain.ErrEmptyQuestion):
		return "Type a question first."
	case errors.Is(err, domain.ErrExtraction):
		return "Could not read that PDF: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

var (
	headerStyle       = lipgloss.NewStyle().Bold(true)
	docStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sourceTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	historyTitleStyle = lipgloss.NewStyle().Bold(true)
	historySelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	highlightStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe        = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence marks the sentence of text that shares the most
// vocabulary with the question, so the user can see why a chunk was cited.
func highlightBestSentence(text, question string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(question)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
