// Package tui is the interactive terminal front end: tanks on the left, the
// selected tank's fish and recent maintenance in the middle, details on the right.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

// Steps of the new tank form
const (
	stepName = iota
	stepSize
	stepType
)

type model struct {
	keeper      *tanks.Keeper
	storageName string

	tanks []tanks.Tank
	fish  []tanks.Fish
	logs  []tanks.MaintenanceLog

	columnFocus int // 0 = tanks, 1 = fish
	width       int // Current terminal width (for layout)
	height      int // Current terminal height
	err         error
	status      string // Result of the last action

	quitting bool

	tankCursor           int // Index of selected tank
	tankCreating         bool
	tankCreatingStep     int
	tankCreatingError    string
	tankInputs           [3]textinput.Model // name, size, type
	tankDeleting         bool
	tankDeleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	fishCursor int // Index of selected fish

	// Animation state
	marqueeOffset int
	marqueeTimer  int
}

// Initialize TUI model
func initModel(k *tanks.Keeper, storageName string) model {
	name := textinput.New()
	name.Placeholder = "Tank Name"
	name.CharLimit = 128

	size := textinput.New()
	size.Placeholder = "Size in gallons"
	size.CharLimit = 16

	tankType := textinput.New()
	tankType.Placeholder = "freshwater, saltwater or brackish"
	tankType.CharLimit = 16

	return model{
		keeper:      k,
		storageName: storageName,
		tanks:       []tanks.Tank{},
		fish:        []tanks.Fish{},
		logs:        []tanks.MaintenanceLog{},
		tankInputs:  [3]textinput.Model{name, size, tankType},
	}
}

func tick() tea.Cmd {
	return tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
		return t
	})
}

// Execute commands concurrently with no ordering guarantees during initialization
func (m model) Init() tea.Cmd {
	return tea.Batch(listTanks(m.keeper), tick())
}

func (m model) selectedTank() (tanks.Tank, bool) {
	if m.tankCursor < 0 || m.tankCursor >= len(m.tanks) {
		return tanks.Tank{}, false
	}
	return m.tanks[m.tankCursor], true
}

// reloadSelected fetches the contents of the tank under the cursor.
func (m model) reloadSelected() tea.Cmd {
	tank, ok := m.selectedTank()
	if !ok {
		return nil
	}
	return loadTankContents(m.keeper, tank.ID)
}

func (m *model) resetTankForm() {
	m.tankCreatingStep = stepName
	m.tankCreatingError = ""
	for i := range m.tankInputs {
		m.tankInputs[i].Reset()
		m.tankInputs[i].Blur()
	}
	m.tankInputs[stepName].Focus()
}

// submitTankForm validates the form and returns the command creating the tank.
func (m *model) submitTankForm() tea.Cmd {
	size, err := strconv.ParseFloat(strings.TrimSpace(m.tankInputs[stepSize].Value()), 64)
	if err != nil {
		m.tankCreatingError = "Size must be a number"
		return nil
	}
	tank, err := tanks.NewTank(tanks.TankInput{
		Name:        m.tankInputs[stepName].Value(),
		SizeGallons: size,
		TankType:    strings.ToLower(strings.TrimSpace(m.tankInputs[stepType].Value())),
	})
	if err != nil {
		m.tankCreatingError = err.Error()
		return nil
	}
	m.tankCreating = false
	m.resetTankForm()
	return createTank(m.keeper, tank)
}

// Processes events like window resize, errors, loaded data, and key presses
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case tanksLoadedMsg:
		m.tanks = msg
		if m.tankCursor >= len(m.tanks) {
			m.tankCursor = max(len(m.tanks)-1, 0)
		}
		if len(m.tanks) == 0 {
			m.fish = []tanks.Fish{}
			m.logs = []tanks.MaintenanceLog{}
			m.columnFocus = 0
			return m, nil
		}
		return m, m.reloadSelected()

	case tankContentsMsg:
		// Ignore results for a tank that is no longer selected
		if tank, ok := m.selectedTank(); !ok || tank.ID != msg.tankID {
			return m, nil
		}
		m.fish = msg.fish
		m.logs = msg.logs
		if m.fishCursor >= len(m.fish) {
			m.fishCursor = 0
		}
		return m, nil

	case tankCreatedMsg:
		m.tanks = append(m.tanks, tanks.Tank(msg))
		m.tankCursor = len(m.tanks) - 1
		m.status = fmt.Sprintf("Created tank %s", msg.Name)
		return m, m.reloadSelected()

	case tankDeletedMsg:
		m.status = fmt.Sprintf("Removed %s with %d fish and %d logs", msg.tank.Name, msg.result.FishRemoved, msg.result.LogsRemoved)
		return m, listTanks(m.keeper)

	case tea.KeyMsg:
		if m.tankCreating {
			switch msg.Type {
			case tea.KeyEnter:
				if m.tankCreatingStep == stepType {
					return m, m.submitTankForm()
				}
				if m.tankCreatingStep == stepName && strings.TrimSpace(m.tankInputs[stepName].Value()) == "" {
					m.tankCreatingError = "Tank name cannot be empty"
					return m, nil
				}
				m.tankCreatingError = ""
				m.tankInputs[m.tankCreatingStep].Blur()
				m.tankCreatingStep++
				m.tankInputs[m.tankCreatingStep].Focus()
				return m, nil

			case tea.KeyEsc:
				m.tankCreating = false
				m.resetTankForm()
				return m, nil
			}

			// Route character input to the active field
			var cmd tea.Cmd
			m.tankInputs[m.tankCreatingStep], cmd = m.tankInputs[m.tankCreatingStep].Update(msg)
			return m, cmd
		}

		if m.tankDeleting {
			switch msg.String() {
			case "up", "k":
				m.tankDeleteConfirmIdx = 0

			case "down", "j":
				m.tankDeleteConfirmIdx = 1

			case "enter":
				m.tankDeleting = false
				tank, ok := m.selectedTank()
				if m.tankDeleteConfirmIdx != 0 || !ok {
					return m, nil
				}
				return m, deleteTank(m.keeper, tank)

			case "esc":
				m.tankDeleting = false
			}
			return m, nil
		}

		// Root Navigation Mode
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			// Exit alt screen before quitting so the goodbye message displays
			return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

		case "up", "k":
			if m.columnFocus == 0 && m.tankCursor > 0 {
				m.tankCursor--
				m.fishCursor = 0
				return m, m.reloadSelected()
			}
			if m.columnFocus == 1 && m.fishCursor > 0 {
				m.fishCursor--
			}

		case "down", "j":
			if m.columnFocus == 0 && m.tankCursor < len(m.tanks)-1 {
				m.tankCursor++
				m.fishCursor = 0
				return m, m.reloadSelected()
			}
			if m.columnFocus == 1 && m.fishCursor < len(m.fish)-1 {
				m.fishCursor++
			}

		case "right", "l":
			if m.columnFocus == 0 && len(m.fish) > 0 {
				m.columnFocus = 1
				m.fishCursor = 0
			}

		case "left", "h":
			m.columnFocus = 0

		case "r":
			m.err = nil
			m.status = ""
			return m, listTanks(m.keeper)

		case "n":
			m.resetTankForm()
			m.tankCreating = true

		case "d":
			if m.columnFocus == 0 && len(m.tanks) > 0 {
				m.tankDeleteConfirmIdx = 1
				m.tankDeleting = true
			}
		}
		return m, nil

	case time.Time:
		// Update marquee animation every x ticks (adjust for speed)
		m.marqueeTimer++
		if m.marqueeTimer >= 10 {
			m.marqueeTimer = 0
			m.marqueeOffset++
		}
		return m, tick()
	}

	return m, nil
}

func (m model) renderTanks(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Width(width - bordersAndPaddingWidth).Render("  Tanks"))
	b.WriteString("\n\n")

	if len(m.tanks) == 0 {
		b.WriteString("No tanks yet. Press 'n' to create new.\n")
	}
	for i, tank := range m.tanks {
		selected := i == m.tankCursor
		pointer := generateLinePointer(selected && m.columnFocus == 0, 2)
		availableWidth := width - len(pointer) - bordersAndPaddingWidth - 1
		if selected {
			name := lipgloss.NewStyle().MaxWidth(availableWidth).Render(m.marqueeText(tank.Name, availableWidth))
			b.WriteString(pointer + selectedStyle.Render(name) + "\n")
			continue
		}
		name := lipgloss.NewStyle().MaxWidth(availableWidth).Render(truncate(tank.Name, availableWidth))
		b.WriteString(pointer + inactiveStyle.Render(name) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Storage: %v\n", TextStatusColorize(m.storageName, 1)))
	return b.String()
}

func (m model) renderFish(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Width(width - bordersAndPaddingWidth).Render("  Fish"))
	b.WriteString("\n\n")

	if _, ok := m.selectedTank(); !ok {
		b.WriteString("  No tank selected.\n")
		return b.String()
	}
	if len(m.fish) == 0 {
		b.WriteString("  No fish in this tank.\n")
	}
	for i, f := range m.fish {
		pointer := generateLinePointer(i == m.fishCursor && m.columnFocus == 1, 2)
		availableWidth := width - len(pointer) - bordersAndPaddingWidth - 3
		line := truncate(f.Name+" ("+f.Species+")", availableWidth)
		icon := TextStatusColorize(f.HealthStatus.Icon(), healthStatusColor(f.HealthStatus))
		style := inactiveStyle
		if i == m.fishCursor && m.columnFocus == 1 {
			style = selectedStyle
		}
		b.WriteString(pointer + icon + " " + style.Render(line) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("  Recent maintenance"))
	b.WriteString("\n\n")
	if len(m.logs) == 0 {
		b.WriteString("  No maintenance logged.\n")
	}
	for _, l := range m.logs {
		line := l.Date.Format("2006-01-02") + " " + l.ActivityType.DisplayName()
		b.WriteString("  " + logStyle.Render(truncate(line, width-bordersAndPaddingWidth-2)) + "\n")
	}
	return b.String()
}

func detailLine(label, value string) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(value) + "\n"
}

func (m model) renderDetails(width int) string {
	var b strings.Builder

	subtitle := "Details"
	switch {
	case m.tankCreating:
		subtitle = "Create New Tank"
	case m.tankDeleting:
		subtitle = "Delete Tank"
	}
	b.WriteString(subtitleStyle.Width(width - bordersAndPaddingWidth).Render(subtitle))
	b.WriteString("\n\n")

	switch {
	case m.tankCreating:
		labels := [3]string{"Name", "Size", "Type"}
		for i := range m.tankInputs {
			m.tankInputs[i].Width = width - bordersAndPaddingWidth
			b.WriteString(labels[i] + ": " + m.tankInputs[i].View() + "\n")
		}
		b.WriteString("\n(enter for next field, esc to cancel)")
		if m.tankCreatingError != "" {
			b.WriteString("\n\n" + errorStyle.Render(m.tankCreatingError) + "\n")
		}

	case m.tankDeleting:
		tank, _ := m.selectedTank()
		b.WriteString("Name: " + errorStyle.Render(tank.Name) + "\n")
		b.WriteString(fmt.Sprintf("Also removes %d fish and their tank's maintenance history.\n\n", len(m.fish)))
		yesOpt, noOpt := "Yes", "No"
		if m.tankDeleteConfirmIdx == 0 {
			yesOpt = dangerSelectedStyle.Render(" >" + yesOpt)
			noOpt = inactiveStyle.Render("  " + noOpt)
		} else {
			yesOpt = inactiveStyle.Render("  " + yesOpt)
			noOpt = selectedStyle.Render(" >" + noOpt)
		}
		b.WriteString(fmt.Sprintf("%s\n%s\n\n", yesOpt, noOpt))
		b.WriteString("(enter to confirm, esc to cancel, up/down to switch)")

	case m.columnFocus == 1 && m.fishCursor < len(m.fish):
		f := m.fish[m.fishCursor]
		b.WriteString(detailLine("Name", f.Name))
		b.WriteString(detailLine("Species", f.Species))
		b.WriteString(labelStyle.Render("Health: ") + TextStatusColorize(f.HealthStatus.Icon()+" "+f.HealthStatus.String(), healthStatusColor(f.HealthStatus)) + "\n")
		b.WriteString(detailLine("Added", f.DateAdded.Format("2006-01-02")))
		if f.BirthDate != nil {
			b.WriteString(detailLine("Born", f.BirthDate.Format("2006-01-02")))
		}
		for _, opt := range []struct {
			label string
			value *string
		}{{"Size", f.Size}, {"Color", f.Color}, {"Feeding", f.FeedingPreferences}, {"Notes", f.Notes}} {
			if opt.value != nil {
				b.WriteString(detailLine(opt.label, *opt.value))
			}
		}

	default:
		tank, ok := m.selectedTank()
		if !ok {
			b.WriteString("Select a tank to view details.")
			break
		}
		b.WriteString(detailLine("Name", tank.Name))
		b.WriteString(detailLine("Type", tank.TankType.String()))
		b.WriteString(detailLine("Size", fmt.Sprintf("%g gallons", tank.SizeGallons)))
		if tank.Location != "" {
			b.WriteString(detailLine("Location", tank.Location))
		}
		if len(tank.Equipment) > 0 {
			b.WriteString(detailLine("Equipment", strings.Join(tank.Equipment, ", ")))
		}
		if tank.CurrentParameters != nil {
			b.WriteString("\n" + labelStyle.Render("Water") + "\n" + valueStyle.Render(tank.CurrentParameters.String()) + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n\n" + TextStatusColorize(m.status, 1))
	}
	return b.String()
}

// Assembles the UI string for each frame
func (m model) View() string {
	if m.quitting {
		return "Lights off. The fish are sleeping.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit.\n", m.err)
	}

	titleBar := titleStyle.Width(m.width).Render("Aquarium - tanks, fish and maintenance")
	leftWidth, middleWidth, rightWidth := m.dynamicColumnWidth()
	panelHeight := m.height - panelHeightPadding

	borderRight := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2)

	leftPanel := borderRight.Width(leftWidth).Height(panelHeight).Render(m.renderTanks(leftWidth))
	middlePanel := borderRight.Width(middleWidth).Height(panelHeight).Render(m.renderFish(middleWidth))
	rightPanel := lipgloss.NewStyle().Padding(0, 2).Width(rightWidth).Height(panelHeight).Render(m.renderDetails(rightWidth))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, middlePanel, rightPanel)

	footerText := "\n↑/↓ to navigate • ←/→ to switch column • n new tank • d delete tank • r refresh • q quit"
	footerBar := footerStyle.Width(m.width).Render(footerText)

	return titleBar + "\n\n" + columns + footerBar
}

// Create and start the Bubble Tea TUI
func ShowTUI(k *tanks.Keeper, storageName string) error {
	p := tea.NewProgram(initModel(k, storageName), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
