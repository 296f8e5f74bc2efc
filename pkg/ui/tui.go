// Package ui provides the Bubble Tea TUI for the stETH queue monitor.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/steth-arb/business/arbitrage/domain"
	"github.com/fd1az/steth-arb/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "done", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading/connecting
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

var stepOrder = []string{"config", "ethereum", "contracts", "loop"}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	market  *components.MarketComponent
	history *components.HistoryComponent
	stats   *components.StatsComponent
	status  *components.StatusComponent
	keys    KeyMap
	help    help.Model

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready        bool
	quitting     bool
	paused       bool
	width        int
	height       int
	currentBlock uint64
	lastUpdate   time.Time
	errors       []ErrorEntry // last 3
	logs         []string

	totalTickMs float64

	// Startup state
	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time

	// onStart is invoked once when the welcome phase ends.
	onStart func()
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		market:       components.NewMarketComponent(),
		history:      components.NewHistoryComponent(50),
		stats:        components.NewStatsComponent(),
		status:       components.NewStatusComponent(),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		logs:         make([]string, 0, 5),
		errors:       make([]ErrorEntry, 0, 3),
		startupSteps: map[string]*StartupStep{
			"config":    {Name: "Loading configuration", Status: "pending"},
			"ethereum":  {Name: "Connecting to Ethereum", Status: "pending"},
			"contracts": {Name: "Binding Curve, Aave and Lido", Status: "pending"},
			"loop":      {Name: "Starting polling loop", Status: "pending"},
		},
		startupTime: now,
		onStart:     func() { callOnStartModules() },
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return frameCmd()
}

// frameCmd returns a command that sends a frame every 100ms for animations.
func frameCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return FrameMsg{}
	})
}

func (m *Model) leaveWelcome() {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	// Not Send(): this runs inside Update.
	if m.onStart != nil {
		go m.onStart()
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to startup
		if m.phase == PhaseWelcome {
			m.leaveWelcome()
			return m, frameCmd()
		}
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.history.Clear()
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Up):
			m.history.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.history.ScrollDown()
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, 3)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case FrameMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.leaveWelcome()
		}
		return m, frameCmd()

	case TickReportMsg:
		m.applyReport(msg.Report)

	case TickFailedMsg:
		s := m.stats.Stats()
		s.TickErrors++
		m.stats.Update(s)
		m.pushError(fmt.Sprintf("tick %d skipped: %v", msg.Sequence, msg.Err))

	case ErrorMsg:
		m.pushError(msg.Error.Error())
		m.logs = addLog(m.logs, "error", msg.Error.Error())

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		if msg.Status == "failed" && msg.Message != "" {
			m.pushError(msg.Message)
		}
		m.startupComplete = m.allStepsDone()
		if m.startupComplete && m.phase == PhaseStartup {
			m.phase = PhaseDashboard
		}
	}

	return m, nil
}

// applyReport folds one tick into every panel. Paused dashboards keep
// counting but stop redrawing the market and history panels.
func (m *Model) applyReport(r domain.TickReport) {
	s := m.stats.Stats()
	s.Ticks++
	if r.Result.Profitable() {
		s.Profitable++
	}
	if !r.Snapshot.Complete() {
		s.DegradedTicks++
	}
	if s.Ticks == 1 || r.Result.RelativeProfit.GreaterThan(s.BestProfit) {
		s.BestProfit = r.Result.RelativeProfit
	}
	m.totalTickMs += float64(r.Duration.Microseconds()) / 1000
	s.AvgTickMs = m.totalTickMs / float64(s.Ticks)
	m.stats.Update(s)

	m.status.Update(components.ConnectionStatus{
		Name:         "Ethereum",
		State:        string(r.Connection.State),
		Latency:      r.Connection.Latency,
		LastBlock:    r.Connection.LastBlock,
		LastUpdate:   r.Connection.LastUpdate,
		OpenCircuits: r.Connection.OpenCircuits,
	})

	m.currentBlock = r.Snapshot.BlockHeight
	m.lastUpdate = time.Now()
	if m.phase == PhaseStartup {
		m.phase = PhaseDashboard
	}

	if m.paused {
		return
	}

	unavailable := make(map[string]bool, len(r.Snapshot.Unavailable))
	for _, src := range r.Snapshot.Unavailable {
		unavailable[src] = true
	}

	m.market.Update(components.MarketView{
		Block:           r.Snapshot.BlockHeight,
		ObservedAt:      r.Snapshot.ObservedAt,
		ExchangeRate:    r.Snapshot.ExchangeRate,
		SupplyAPY:       r.Snapshot.SupplyAPY,
		QueueYears:      r.Snapshot.QueueDurationYears,
		QueueEmpty:      r.Snapshot.QueueEmpty(),
		Unavailable:     unavailable,
		ReferenceCoupon: r.Result.ReferenceCoupon,
		QueueCoupon:     r.Result.QueueCoupon,
		RelativeProfit:  r.Result.RelativeProfit,
		Profitable:      r.Result.Profitable(),
		Principal:       r.Params.Principal,
		RiskPremium:     r.Params.RiskPremium,
	})

	m.history.Add(components.ResultRow{
		Time:         r.StartedAt.Format("15:04:05"),
		BlockNumber:  r.Snapshot.BlockHeight,
		ExchangeRate: r.Snapshot.ExchangeRate,
		SupplyAPY:    r.Snapshot.SupplyAPY,
		QueueYears:   r.Snapshot.QueueDurationYears,
		Profit:       r.Result.RelativeProfit,
		Profitable:   r.Result.Profitable(),
		Degraded:     len(unavailable) > 0,
	})
}

func (m *Model) pushError(message string) {
	m.errors = append(m.errors, ErrorEntry{Message: message, Timestamp: time.Now()})
	if len(m.errors) > 3 {
		m.errors = m.errors[len(m.errors)-3:]
	}
}

func (m Model) allStepsDone() bool {
	for _, step := range m.startupSteps {
		if step.Status != "connected" && step.Status != "done" {
			return false
		}
	}
	return true
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logs = append(logs, fmt.Sprintf("[%s] %s: %s", timestamp, level, message))
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Exiting...\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" stETH Withdrawal Queue Monitor "))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.market.View() + "\n\n" + m.stats.View()
	rightCol := m.history.View()

	if m.width > 120 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		width := m.width - 4
		if width < 40 {
			width = 80
		}
		b.WriteString(BoxStyle.Width(width).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(width).Render(rightCol))
	}

	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		mutedError := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(mutedError.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(mutedError.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		pauseStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
		b.WriteString(pauseStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	greenStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	dotCount := int(time.Since(m.welcomeStart).Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
   ███████╗████████╗███████╗████████╗██╗  ██╗
   ██╔════╝╚══██╔══╝██╔════╝╚══██╔══╝██║  ██║
   ███████╗   ██║   █████╗     ██║   ███████║
   ╚════██║   ██║   ██╔══╝     ██║   ██╔══██║
   ███████║   ██║   ███████╗   ██║   ██║  ██║
   ╚══════╝   ╚═╝   ╚══════╝   ╚═╝   ╚═╝  ╚═╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("         W I T H D R A W A L   Q U E U E   M O N I T O R"))
	sb.WriteString("\n\n\n")
	sb.WriteString(greenStyle.Render(fmt.Sprintf("                  Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("            Press any key to skip, or wait..."))
	sb.WriteString("\n")

	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).MarginBottom(1)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	successStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	connectingStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	failedStyle := lipgloss.NewStyle().Foreground(ColorDanger)

	var sb strings.Builder

	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("  stETH Withdrawal Queue Monitor"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	for _, k := range stepOrder {
		step, ok := m.startupSteps[k]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon, statusText, style = "✓", "Ready", successStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
			icon, statusText, style = spinners[idx], "Connecting...", connectingStyle
		case "failed":
			icon, statusText, style = "✗", "Failed", failedStyle
		default:
			icon, statusText, style = "○", "Pending", mutedStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			mutedStyle.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")

	for _, e := range m.errors {
		sb.WriteString(failedStyle.Render("  " + e.Message))
		sb.WriteString("\n")
	}

	sb.WriteString(mutedStyle.Render("  Waiting for first tick..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if time.Since(m.lastUpdate) < 500*time.Millisecond {
		spinners := []string{"⟳", "◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/100) % len(spinners)
		parts = append(parts, StatusConnected.Render(spinners[idx]+" Polling"))
	}

	parts = append(parts, fmt.Sprintf("Block: #%d", m.currentBlock))
	parts = append(parts, m.status.View())

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

func callOnStartModules() {
	if OnStartModules != nil {
		OnStartModules()
	}
}

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
