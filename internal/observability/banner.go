package observability

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset    = "\033[0m"
	colorPurple   = "\033[35m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
)

var spinnerFrames = []string{"◜", "◝", "◞", "◟"}
var spinnerIdx = 0

// termMu synchronizes ALL terminal output so that the cursor
// save/restore in PrintLiveStatus can never be interrupted by a log write.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// termWriter is a mutex-guarded io.Writer for log output, keeping log
// writes serialized with PrintLiveStatus via termMu.
type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable as a log sink.
func NewTermWriter() *termWriter {
	return &termWriter{}
}

func PrintBanner() {
	fmt.Print("\033[2J\033[H")

	banner := `
    __    ___    ____  ______________
   / /   /   |  / __ )/ ____/ ____/ /_
  / /   / /| | / __  / __/ / __/ / __ \
 / /___/ ___ |/ /_/ / /___/ /___/ /_/ /
/_____/_/  |_/_____/_____/_____/_.___/

     >> DESKTOP AUTOMATION AGENT <<
`

	width := termWidth()
	lines := strings.Split(banner, "\n")

	for _, l := range lines {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}

func InitializeTerminal() {
	// Header/Logo area: 1-9
	// Status line: 10
	// Gap: 11
	// Scrolling Logs: 12+
	fmt.Print("\033[12;r")
	fmt.Print("\033[12;1H")
}

func CleanupTerminal() {
	fmt.Print("\033[r\033[2J\033[H")
}

// PrintLiveStatus redraws the single status line: heartbeat health,
// pipeline phase, active command, uptime and memory.
func PrintLiveStatus() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(startTime).Round(time.Second)
	memMB := float64(m.Alloc) / 1024 / 1024

	phase, command, lastHB := GetStatus()

	pulseText := "OFFLINE"
	pulseColor := colorNeonMag

	delta := time.Since(lastHB)
	if delta < 40*time.Second {
		pulseText = "HEALTHY"
		pulseColor = colorNeonCyan
	} else if delta < 90*time.Second {
		pulseText = "LAGGING"
		pulseColor = colorPurple
	}

	phaseColor := colorReset
	switch phase {
	case PhasePlanning:
		phaseColor = colorNeonCyan
	case PhaseExecuting:
		phaseColor = colorNeonMag
	}

	spinner := " "
	if phase != PhaseIdle {
		spinner = spinnerFrames[spinnerIdx]
		spinnerIdx = (spinnerIdx + 1) % len(spinnerFrames)
	}

	displayCommand := command
	if displayCommand == "" {
		displayCommand = "Waiting..."
	}
	if len(displayCommand) > 25 {
		displayCommand = displayCommand[:22] + "..."
	}

	totalMB := float64(m.Sys) / 1024 / 1024
	memPercent := memMB / totalMB

	barWidth := 20
	filled := clamp(int(memPercent*float64(barWidth)), 0, barWidth)

	bar := strings.Repeat("█", filled) +
		strings.Repeat("▒", barWidth-filled)

	barColor := colorNeonCyan
	if memPercent > 0.7 {
		barColor = colorNeonMag
	}

	// Build the status string BEFORE locking, to minimise lock hold time.
	statusStr := fmt.Sprintf(
		"\033[s\033[10;1H\033[K%s[%s] %s%-7s%s | [%s%-9s%s] [%s] %s%s%s [%v] [%s%s %.1fMB%s]\033[u",
		colorReset,
		lastHB.Format("15:04:05"),
		pulseColor, pulseText, colorReset,
		phaseColor, phase, colorReset,
		displayCommand,
		colorPurple, spinner, colorReset,
		uptime,
		barColor, bar, memMB, colorReset,
	)

	// Lock, write the ENTIRE escape sequence atomically, unlock.
	termMu.Lock()
	fmt.Print(statusStr)
	termMu.Unlock()
}
