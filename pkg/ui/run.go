package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/conceptmap/pkg/debug"
)

// Run starts the model's background work, runs the program with mouse
// tracking until the user quits, and saves state on the way out.
func Run(ctx context.Context, m Model) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	defer m.Stop()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}
		p.Quit()
		select {
		case <-runDone:
		case <-sigCh:
			p.Kill()
		case <-time.After(5 * time.Second):
			p.Kill()
		}
	}()

	// Auto-quit for scripted smoke tests.
	if v := os.Getenv("CMAP_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				select {
				case <-runDone:
				case <-time.After(time.Duration(ms) * time.Millisecond):
					p.Quit()
				}
			}()
		}
	}

	final, err := p.Run()
	debug.Log("ui: %d frames", m.loop.Frames())
	if fm, ok := final.(Model); ok {
		if serr := fm.Save(); serr != nil {
			debug.Log("ui: saving state: %v", serr)
		}
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, tea.ErrInterrupted) {
		return fmt.Errorf("running canvas: %w", err)
	}
	return nil
}
