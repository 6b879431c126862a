package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"council/internal/backend"
	"council/internal/council"
)

const (
	defaultAPIBase        = "http://localhost:5000"
	defaultRequestTimeout = 60
	defaultTurnPause      = 2
	defaultSpeakingHold   = 2
	logKeep               = 50
	runEventBuffer        = 64
)

type appConfig struct {
	apiBase        string
	rosterPath     string
	sessionID      string
	requestTimeout time.Duration
	turnPause      time.Duration
	speakingHold   time.Duration
	altScreen      bool
}

func parseFlags() appConfig {
	cfg := appConfig{}
	flag.StringVar(&cfg.apiBase, "api", envOr("COUNCIL_API_BASE", defaultAPIBase), "Council server base URL")
	flag.StringVar(&cfg.rosterPath, "roster", envOr("COUNCIL_ROSTER", ""), "Optional YAML roster override file")
	flag.StringVar(&cfg.sessionID, "session", envOr("COUNCIL_SESSION", ""), "Session id to open at startup")
	requestTimeout := envOrInt("COUNCIL_REQUEST_TIMEOUT", defaultRequestTimeout)
	flag.IntVar(&requestTimeout, "request-timeout", requestTimeout, "Per-request backend timeout seconds")
	turnPause := envOrInt("COUNCIL_TURN_PAUSE", defaultTurnPause)
	flag.IntVar(&turnPause, "turn-pause", turnPause, "Pause between agent turns, seconds")
	speakingHold := envOrInt("COUNCIL_SPEAKING_HOLD", defaultSpeakingHold)
	flag.IntVar(&speakingHold, "speaking-hold", speakingHold, "How long a member stays highlighted after speaking, seconds")
	altScreen := envOrBool("COUNCIL_ALT_SCREEN", true)
	flag.BoolVar(&altScreen, "alt-screen", altScreen, "Use alternate screen buffer")
	flag.Parse()

	cfg.requestTimeout = time.Duration(clampInt(requestTimeout, 1, 600)) * time.Second
	cfg.turnPause = time.Duration(clampInt(turnPause, 0, 30)) * time.Second
	cfg.speakingHold = time.Duration(clampInt(speakingHold, 0, 30)) * time.Second
	cfg.altScreen = altScreen
	cfg.apiBase = strings.TrimRight(strings.TrimSpace(cfg.apiBase), "/")
	return cfg
}

type tabID int

const (
	tabChat tabID = iota
	tabSettings
	tabHelp
)

type bootDoneMsg struct {
	created bool
	loadErr error
	err     error
}

type historyLoadedMsg struct {
	sessionID string
	err       error
}

type runFinishedMsg struct {
	result council.RunResult
}

type runEventMsg struct {
	event any
}

type philosophersMsg struct {
	configs map[string]backend.PhilosopherConfig
	err     error
}

type modelUpdatedMsg struct {
	id    string
	model string
	err   error
}

type uiTheme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	inputPanel  lipgloss.Style
	helpText    lipgloss.Style
	notice      lipgloss.Style
	chairman    lipgloss.Style
	memberIdle  lipgloss.Style
	memberLive  lipgloss.Style
	sessionPick lipgloss.Style
	sessionDim  lipgloss.Style
	speakers    map[string]lipgloss.Style
}

func newTheme(roster council.Roster) uiTheme {
	ivory := lipgloss.Color("#f5efe0")
	amber := lipgloss.Color("#e0a458")
	teal := lipgloss.Color("#419d78")
	wine := lipgloss.Color("#a63a50")
	bg := lipgloss.Color("#1d1a23")
	panelBg := lipgloss.Color("#27222f")
	muted := lipgloss.Color("#8d86a0")

	seatColors := []lipgloss.Color{
		"#e0a458", "#419d78", "#a63a50", "#7d82b8", "#c2b97f",
		"#6aa9c9", "#b56fb0",
	}
	speakers := map[string]lipgloss.Style{}
	for i, seat := range roster {
		color := seatColors[i%len(seatColors)]
		speakers[seat.Name] = lipgloss.NewStyle().Foreground(color).Bold(true)
	}

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(ivory).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(ivory).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 1),
		tabActive: lipgloss.NewStyle().
			Background(amber).
			Foreground(lipgloss.Color("#2a2118")).
			Bold(true).
			Padding(0, 1),
		tabInactive: lipgloss.NewStyle().
			Background(lipgloss.Color("#332d3e")).
			Foreground(muted).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(teal).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(teal).
			Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(wine).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(teal).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(wine).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 1),
		helpText:    lipgloss.NewStyle().Foreground(muted),
		notice:      lipgloss.NewStyle().Foreground(muted).Italic(true),
		chairman:    lipgloss.NewStyle().Foreground(ivory).Bold(true),
		memberIdle:  lipgloss.NewStyle().Foreground(muted),
		memberLive:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		sessionPick: lipgloss.NewStyle().Foreground(amber).Bold(true),
		sessionDim:  lipgloss.NewStyle().Foreground(muted),
		speakers:    speakers,
	}
}

type model struct {
	cfg appConfig

	gw         *backend.Gateway
	store      *council.SessionStore
	registry   *council.Registry
	transcript *council.Transcript
	orch       *council.Orchestrator
	runInbound chan tea.Msg

	ready       bool
	bootErr     error
	runActive   bool
	statusLine  string
	statusError bool
	logs        []string
	activeTab   tabID
	configs     map[string]backend.PhilosopherConfig
	quitConfirm bool

	width  int
	height int

	input   textinput.Model
	chat    viewport.Model
	sidebar viewport.Model
	spinner spinner.Model

	theme uiTheme
}

func newModel(cfg appConfig, roster council.Roster) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Pose a topic to the council. /help for commands."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0a458"))

	chat := viewport.New(0, 0)
	chat.MouseWheelEnabled = true
	chat.MouseWheelDelta = 4
	sidebar := viewport.New(0, 0)
	sidebar.MouseWheelEnabled = true
	sidebar.MouseWheelDelta = 4

	gw := backend.New(cfg.apiBase, cfg.requestTimeout)
	store := council.NewSessionStore(gw)
	registry := council.NewRegistry(roster)
	transcript := council.NewTranscript()
	runInbound := make(chan tea.Msg, runEventBuffer)
	orch := council.NewOrchestrator(gw, store, registry, transcript, council.OrchestratorConfig{
		TurnPause:    cfg.turnPause,
		SpeakingHold: cfg.speakingHold,
		Notify: func(event any) {
			runInbound <- runEventMsg{event: event}
		},
	})

	return model{
		cfg:        cfg,
		gw:         gw,
		store:      store,
		registry:   registry,
		transcript: transcript,
		orch:       orch,
		runInbound: runInbound,
		statusLine: "connecting to council server...",
		logs:       []string{},
		activeTab:  tabChat,
		input:      input,
		chat:       chat,
		sidebar:    sidebar,
		spinner:    sp,
		theme:      newTheme(roster),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.bootCmd(),
		waitRunMsg(m.runInbound),
	)
}

func (m model) bootCmd() tea.Cmd {
	gw := m.gw
	store := m.store
	registry := m.registry
	transcript := m.transcript
	preselect := strings.TrimSpace(m.cfg.sessionID)
	return func() tea.Msg {
		if preselect != "" {
			store.Select(preselect)
		}
		created, err := council.EnsureSession(gw, store)
		if err != nil {
			return bootDoneMsg{err: err}
		}
		loadErr := council.LoadHistory(gw, store, registry, transcript, store.Current())
		return bootDoneMsg{created: created, loadErr: loadErr}
	}
}

func (m model) philosophersCmd() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		configs, err := gw.ListPhilosophers()
		return philosophersMsg{configs: configs, err: err}
	}
}

func (m model) runCmd(input string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		return runFinishedMsg{result: orch.Run(input)}
	}
}

func (m model) switchSessionCmd(id string) tea.Cmd {
	gw := m.gw
	store := m.store
	registry := m.registry
	transcript := m.transcript
	return func() tea.Msg {
		err := council.LoadHistory(gw, store, registry, transcript, id)
		return historyLoadedMsg{sessionID: id, err: err}
	}
}

func (m model) newSessionCmd() tea.Cmd {
	gw := m.gw
	store := m.store
	registry := m.registry
	transcript := m.transcript
	return func() tea.Msg {
		created, err := gw.CreateSession()
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		_, _ = store.RefreshList()
		err = council.LoadHistory(gw, store, registry, transcript, created.ID)
		return historyLoadedMsg{sessionID: created.ID, err: err}
	}
}

func (m model) updateModelCmd(id, modelName string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		err := gw.UpdateModel(id, modelName)
		return modelUpdatedMsg{id: id, model: modelName, err: err}
	}
}

func waitRunMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case bootDoneMsg:
		if msg.err != nil {
			m.bootErr = msg.err
			m.setStatus("startup failed", true)
			return m, nil
		}
		m.ready = true
		if msg.created {
			m.appendLog("no sessions on server; created a fresh one")
		}
		if msg.loadErr != nil {
			m.logError(msg.loadErr)
		} else {
			m.setStatus("session "+m.store.Current(), false)
		}
		m.renderPanes()
		cmds = append(cmds, m.philosophersCmd())
	case historyLoadedMsg:
		if msg.err != nil {
			m.logError(msg.err)
		} else {
			m.setStatus("session "+msg.sessionID, false)
		}
		m.renderPanes()
	case runEventMsg:
		m.applyRunEvent(msg.event)
		m.renderPanes()
		cmds = append(cmds, waitRunMsg(m.runInbound))
	case runFinishedMsg:
		m.runActive = false
		result := msg.result
		switch {
		case result.Err != nil:
			m.setStatus("debate interrupted", true)
		case !result.Started:
			m.setStatus("no session selected", true)
		default:
			m.setStatus(fmt.Sprintf("debate concluded · %d spoke, %d silent", result.Spoke, result.Skipped), false)
		}
		m.renderPanes()
	case philosophersMsg:
		if msg.err != nil {
			// Config panel is an optional extra; keep the chat usable.
			m.appendLog("philosopher configs unavailable: " + compactSingleLine(msg.err.Error(), 160))
		} else {
			m.configs = msg.configs
		}
	case modelUpdatedMsg:
		if msg.err != nil {
			m.logError(msg.err)
		} else {
			m.setStatus(fmt.Sprintf("model for %s set to %s", msg.id, msg.model), false)
			cmds = append(cmds, m.philosophersCmd())
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		if m.activeTab == tabChat && !m.quitConfirm {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			cmds = append(cmds, cmd)
		}
	case tea.KeyMsg:
		return m.handleKey(msg, cmds)
	}
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.bootErr != nil {
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}
	if m.quitConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			return m, tea.Quit
		case "n", "N", "esc":
			m.quitConfirm = false
			m.setStatus("quit canceled", false)
		}
		return m, tea.Batch(cmds...)
	}

	switch msg.String() {
	case "esc":
		if m.activeTab == tabChat {
			m.quitConfirm = true
			return m, tea.Batch(cmds...)
		}
		m.activeTab = tabChat
		m.input.Focus()
		return m, tea.Batch(cmds...)
	case "tab":
		m.activeTab = (m.activeTab + 1) % 3
		if m.activeTab == tabChat {
			m.input.Focus()
		} else {
			m.input.Blur()
		}
		return m, tea.Batch(cmds...)
	case "shift+tab":
		m.activeTab = (m.activeTab + 2) % 3
		if m.activeTab == tabChat {
			m.input.Focus()
		} else {
			m.input.Blur()
		}
		return m, tea.Batch(cmds...)
	}

	if m.activeTab != tabChat {
		return m, tea.Batch(cmds...)
	}

	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(m.input.Value())
		if raw == "" {
			return m, tea.Batch(cmds...)
		}
		m.input.SetValue("")
		if strings.HasPrefix(raw, "/") {
			var cmd tea.Cmd
			m, cmd = m.handleSlash(raw)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}
		if !m.ready || m.runActive {
			m.setStatus("debate in progress; wait for the council", true)
			return m, tea.Batch(cmds...)
		}
		if m.store.Current() == "" {
			m.setStatus("no session selected", true)
			return m, tea.Batch(cmds...)
		}
		// Render the chairman line immediately; the server ack comes later.
		m.transcript.AppendMessage(council.ChairmanName, raw, true)
		m.runActive = true
		m.setStatus("the council deliberates...", false)
		m.renderPanes()
		cmds = append(cmds, m.runCmd(raw))
		return m, tea.Batch(cmds...)
	case "ctrl+n":
		if !m.sessionActionAllowed() {
			return m, tea.Batch(cmds...)
		}
		m.setStatus("creating session...", false)
		cmds = append(cmds, m.newSessionCmd())
		return m, tea.Batch(cmds...)
	case "ctrl+o", "ctrl+p":
		if !m.sessionActionAllowed() {
			return m, tea.Batch(cmds...)
		}
		delta := 1
		if msg.String() == "ctrl+p" {
			delta = -1
		}
		next := nextSessionID(m.store.Sessions(), m.store.Current(), delta)
		if next == "" || next == m.store.Current() {
			return m, tea.Batch(cmds...)
		}
		m.setStatus("switching session...", false)
		cmds = append(cmds, m.switchSessionCmd(next))
		return m, tea.Batch(cmds...)
	case "pgup", "ctrl+b":
		m.chat.LineUp(8)
		return m, tea.Batch(cmds...)
	case "pgdown", "ctrl+f":
		m.chat.LineDown(8)
		return m, tea.Batch(cmds...)
	case "up":
		if strings.TrimSpace(m.input.Value()) == "" {
			m.chat.LineUp(4)
			return m, tea.Batch(cmds...)
		}
	case "down":
		if strings.TrimSpace(m.input.Value()) == "" {
			m.chat.LineDown(4)
			return m, tea.Batch(cmds...)
		}
	case "home":
		m.chat.GotoTop()
		return m, tea.Batch(cmds...)
	case "end":
		m.chat.GotoBottom()
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// sessionActionAllowed blocks session churn while a run is in flight;
// switching mid-run would desynchronize the visible transcript from the
// session the backend keeps advancing.
func (m *model) sessionActionAllowed() bool {
	if !m.ready {
		return false
	}
	if m.runActive {
		m.setStatus("debate in progress; session switch blocked", true)
		return false
	}
	return true
}

func (m model) handleSlash(raw string) (model, tea.Cmd) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "/help":
		m.activeTab = tabHelp
		m.input.Blur()
	case "/sessions":
		sessions := m.store.Sessions()
		m.appendLog(fmt.Sprintf("%d session(s) cached; ctrl+o/ctrl+p to cycle", len(sessions)))
		for _, s := range sessions {
			m.appendLog("  " + s.ID + "  " + compactSingleLine(s.Title, 60))
		}
	case "/new":
		if !m.sessionActionAllowed() {
			return m, nil
		}
		m.setStatus("creating session...", false)
		return m, m.newSessionCmd()
	case "/switch":
		if len(parts) < 2 {
			m.setStatus("usage: /switch <session-id>", true)
			return m, nil
		}
		if !m.sessionActionAllowed() {
			return m, nil
		}
		m.setStatus("switching session...", false)
		return m, m.switchSessionCmd(parts[1])
	case "/continue":
		if !m.ready || m.runActive {
			m.setStatus("debate in progress; wait for the council", true)
			return m, nil
		}
		if m.store.Current() == "" {
			m.setStatus("no session selected", true)
			return m, nil
		}
		m.runActive = true
		m.setStatus("the council continues...", false)
		return m, m.runCmd("")
	case "/model":
		if len(parts) < 3 {
			m.setStatus("usage: /model <philosopher-id> <model-name>", true)
			return m, nil
		}
		return m, m.updateModelCmd(parts[1], strings.Join(parts[2:], " "))
	default:
		m.setStatus("unknown command "+parts[0]+"; try /help", true)
	}
	return m, nil
}

func (m *model) applyRunEvent(event any) {
	switch event := event.(type) {
	case council.HumanAcked:
		m.appendLog("topic recorded by the server")
	case council.AgentSpoke:
		m.setStatus(event.Speaker+" is speaking...", false)
	case council.SlotSkipped:
		m.appendLog(fmt.Sprintf("a turn passed in silence (%d remaining)", event.Remaining))
	case council.RunNotice:
		m.setStatus(event.Text, true)
	case council.RunLog:
		m.appendLog(event.Text)
	}
}

func (m model) View() string {
	if m.bootErr != nil {
		errorPanel := m.theme.panel.
			Width(maxInt(20, m.width-4)).
			Render(
				m.theme.panelTitle.Render("Council TUI Startup Failed") + "\n\n" +
					m.theme.errorStatus.Render(m.bootErr.Error()) + "\n\n" +
					m.theme.helpText.Render("Is the council server running at "+m.cfg.apiBase+"? Press q to exit."),
			)
		return m.theme.root.Render(errorPanel)
	}
	if m.quitConfirm {
		return m.theme.root.Render(m.renderQuitModal())
	}
	header := m.renderHeader()
	members := m.renderMembers()
	content := m.renderContent()
	input := m.renderInput()
	footer := m.renderFooter()
	return m.theme.root.Render(
		lipgloss.JoinVertical(lipgloss.Left, header, members, content, input, footer),
	)
}

func (m *model) renderHeader() string {
	tabs := []struct {
		id    tabID
		label string
	}{
		{tabChat, "Council"},
		{tabSettings, "Philosophers"},
		{tabHelp, "Help"},
	}
	segments := make([]string, 0, len(tabs)+1)
	for _, tab := range tabs {
		style := m.theme.tabInactive
		if tab.id == m.activeTab {
			style = m.theme.tabActive
		}
		segments = append(segments, style.Render(tab.label))
	}
	current := m.store.Current()
	meta := "Session: " + nullCoalesce(current, "n/a")
	if title := m.store.Title(current); title != "" {
		meta += " · " + compactSingleLine(title, 40)
	}
	segments = append(segments, m.theme.helpText.Render(meta))
	joined := lipgloss.JoinHorizontal(lipgloss.Left, segments...)
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(joined)
}

func (m *model) renderMembers() string {
	activity := m.registry.Snapshot()
	roster := m.registry.Roster()
	segments := make([]string, 0, roster.Size())
	for _, seat := range roster {
		label := seat.Initials
		if label == "" {
			label = strings.ToUpper(truncate(seat.ID, 2))
		}
		if activity[seat.ID] == council.Speaking {
			segments = append(segments, m.theme.memberLive.Render("● "+label+" "+seat.Name+" · Speaking..."))
		} else {
			segments = append(segments, m.theme.memberIdle.Render("○ "+label+" "+seat.Name+" · Listening..."))
		}
	}
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(strings.Join(segments, "   "))
}

func (m *model) renderContent() string {
	contentHeight := maxInt(6, m.height-13)
	contentWidth := maxInt(40, m.width-4)

	switch m.activeTab {
	case tabChat:
		leftWidth, rightWidth := splitWidths(contentWidth)
		left := m.theme.panel.Width(leftWidth).Height(contentHeight).Render(
			m.theme.panelTitle.Render("Transcript") + "\n" + m.chat.View(),
		)
		right := m.theme.panel.Width(rightWidth).Height(contentHeight).Render(
			m.theme.panelTitle.Render("Sessions") + "\n" + m.sidebar.View(),
		)
		return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	case tabSettings:
		return m.theme.panel.Width(contentWidth).Height(contentHeight).Render(
			m.theme.panelTitle.Render("Philosopher Configuration") + "\n" + m.renderSettings(),
		)
	default:
		return m.theme.panel.Width(contentWidth).Height(contentHeight).Render(
			m.theme.panelTitle.Render("Help") + "\n" + m.renderHelp(),
		)
	}
}

func (m *model) renderInput() string {
	inputView := m.input.View()
	if m.runActive {
		inputView = m.spinner.View() + " deliberating... " + inputView
	}
	return m.theme.inputPanel.Width(maxInt(20, m.width-4)).Render(inputView)
}

func (m *model) renderFooter() string {
	statusStyle := m.theme.status
	if m.statusError {
		statusStyle = m.theme.errorStatus
	}
	status := statusStyle.Render(compactSingleLine(m.statusLine, maxInt(20, m.width/2)))
	keys := m.theme.helpText.Render("enter send · ctrl+n new · ctrl+o/p switch · tab panes · esc quit")
	line := status + "  " + keys
	if tail := m.logTail(); tail != "" {
		line += "\n" + m.theme.helpText.Render(tail)
	}
	return m.theme.footer.Width(maxInt(20, m.width-4)).Render(line)
}

func (m *model) renderQuitModal() string {
	panel := m.theme.panel.Padding(1, 3).Render(
		m.theme.panelTitle.Render("Adjourn the council?") + "\n\n" +
			m.theme.helpText.Render("y/enter to quit · n/esc to stay"),
	)
	return lipgloss.Place(
		maxInt(24, m.width-2),
		maxInt(8, m.height-2),
		lipgloss.Center,
		lipgloss.Center,
		panel,
	)
}

func (m *model) renderSettings() string {
	if len(m.configs) == 0 {
		return "No configuration loaded from the server yet."
	}
	ids := make([]string, 0, len(m.configs))
	for id := range m.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var b strings.Builder
	for _, id := range ids {
		cfg := m.configs[id]
		name := m.theme.chairman.Render(cfg.Name)
		if style, ok := m.theme.speakers[cfg.Name]; ok {
			name = style.Render(cfg.Name)
		}
		b.WriteString(fmt.Sprintf("%s (%s)\n", name, id))
		b.WriteString("  model: " + nullCoalesce(cfg.Model, "default") + "\n")
		b.WriteString("  " + m.theme.helpText.Render(compactSingleLine(cfg.Prompt, 90)) + "\n\n")
	}
	b.WriteString(m.theme.helpText.Render("Change a model with /model <id> <name>."))
	return b.String()
}

func (m *model) renderHelp() string {
	lines := []string{
		"enter        submit a topic; the full council then debates it",
		"/continue    let the council keep debating without new input",
		"/new         create a session        ctrl+n",
		"/switch ID   open a session          ctrl+o / ctrl+p cycle",
		"/sessions    list cached sessions in the log",
		"/model ID M  point a philosopher at another model",
		"pgup/pgdown  scroll transcript       home/end jump",
		"tab          cycle panes             esc quit",
		"",
		"While the council debates, input and session switching stay",
		"locked: the server speaks one turn per request, in order.",
	}
	return strings.Join(lines, "\n")
}

func (m *model) renderTranscript() string {
	entries := m.transcript.Entries()
	if len(entries) == 0 {
		return "The chamber is quiet. Pose a topic to begin."
	}
	width := maxInt(24, m.chat.Width-2)
	var b strings.Builder
	for _, entry := range entries {
		timestamp := entry.At.Format("15:04:05")
		if entry.Kind == council.EntryNotice {
			b.WriteString(m.theme.notice.Render(timestamp + " · " + entry.Text))
			b.WriteString("\n\n")
			continue
		}
		style := m.theme.chairman
		if !entry.Human {
			if s, ok := m.theme.speakers[entry.Speaker]; ok {
				style = s
			} else {
				style = m.theme.notice
			}
		}
		b.WriteString(style.Render(timestamp + " " + entry.Speaker))
		b.WriteString("\n")
		b.WriteString(wrapText(entry.Text, width))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func (m *model) renderSessions() string {
	sessions := m.store.Sessions()
	if len(sessions) == 0 {
		return "No sessions on the server."
	}
	current := m.store.Current()
	width := maxInt(16, m.sidebar.Width-2)
	var b strings.Builder
	for _, session := range sessions {
		title := nullCoalesce(compactSingleLine(session.Title, width-4), session.ID)
		if session.ID == current {
			b.WriteString(m.theme.sessionPick.Render("▍ " + title))
		} else {
			b.WriteString("  " + title)
		}
		b.WriteString("\n")
		b.WriteString(m.theme.sessionDim.Render("  " + session.ID))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderPanes refreshes both viewports and keeps the transcript pinned
// to its newest entry.
func (m *model) renderPanes() {
	m.chat.SetContent(m.renderTranscript())
	m.chat.GotoBottom()
	m.sidebar.SetContent(m.renderSessions())
}

func splitWidths(contentWidth int) (left, right int) {
	left = int(float64(contentWidth) * 0.72)
	right = contentWidth - left - 1
	if right < 24 {
		right = minInt(24, contentWidth-20)
		left = contentWidth - right - 1
	}
	return left, right
}

func (m *model) resize() {
	contentWidth := maxInt(40, m.width-4)
	contentHeight := maxInt(6, m.height-13)
	leftWidth, rightWidth := splitWidths(contentWidth)
	m.chat.Width = maxInt(20, leftWidth-2)
	m.chat.Height = maxInt(3, contentHeight-1)
	m.sidebar.Width = maxInt(12, rightWidth-2)
	m.sidebar.Height = maxInt(3, contentHeight-1)
	m.input.Width = maxInt(20, contentWidth-6)
}

func (m *model) setStatus(line string, isError bool) {
	m.statusLine = line
	m.statusError = isError
}

func (m *model) appendLog(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	m.logs = append(m.logs, time.Now().Format("15:04:05")+" "+compactSingleLine(trimmed, 220))
	if len(m.logs) > logKeep {
		m.logs = m.logs[len(m.logs)-logKeep:]
	}
}

func (m *model) logError(err error) {
	if err == nil {
		return
	}
	m.appendLog("error: " + err.Error())
	m.setStatus("error: "+compactSingleLine(err.Error(), 160), true)
}

func (m *model) logTail() string {
	if len(m.logs) == 0 {
		return ""
	}
	return m.logs[len(m.logs)-1]
}

func nextSessionID(sessions []backend.SessionSummary, current string, delta int) string {
	if len(sessions) == 0 {
		return ""
	}
	idx := 0
	for i, session := range sessions {
		if session.ID == current {
			idx = i
			break
		}
	}
	idx = (idx + delta) % len(sessions)
	if idx < 0 {
		idx += len(sessions)
	}
	return sessions[idx].ID
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return fallback
	}
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			wrapped = append(wrapped, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if len(current)+1+len(word) <= width {
				current += " " + word
				continue
			}
			wrapped = append(wrapped, current)
			current = word
		}
		wrapped = append(wrapped, current)
	}
	return strings.Join(wrapped, "\n")
}

func truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(text) <= limit {
		return text
	}
	if limit <= 3 {
		return text[:limit]
	}
	return text[:limit-3] + "..."
}

func compactSingleLine(text string, limit int) string {
	compact := strings.Join(strings.Fields(text), " ")
	return truncate(compact, limit)
}

func nullCoalesce(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func main() {
	cfg := parseFlags()

	roster := council.DefaultRoster()
	if cfg.rosterPath != "" {
		loaded, err := council.LoadRoster(cfg.rosterPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "council-tui: %v\n", err)
			os.Exit(1)
		}
		roster = loaded
	}

	if debugLog := strings.TrimSpace(os.Getenv("COUNCIL_DEBUG_LOG")); debugLog != "" {
		f, err := tea.LogToFile(debugLog, "council")
		if err != nil {
			fmt.Fprintf(os.Stderr, "council-tui: open debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(newModel(cfg, roster), opts...)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "council-tui fatal error: %v\n", err)
		os.Exit(1)
	}
}
