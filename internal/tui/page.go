package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/solmint/internal/models"
)

// Page runs the terminal page. It is also the notifier handed to the
// service, forwarding notices into the running program.
type Page struct {
	mu      sync.Mutex
	program *tea.Program
}

func NewPage() *Page {
	return &Page{}
}

// Notify implements the service notifier. Notices sent while the page is not
// running are dropped.
func (p *Page) Notify(notice models.Notice) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program != nil {
		program.Send(NoticeMsg(notice))
	}
}

func (p *Page) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.program != nil {
		p.program.Quit()
	}
}

// Run shows the page for service and blocks until the user quits.
func (p *Page) Run(ctx context.Context, service Service) error {
	program := tea.NewProgram(NewModel(ctx, service), tea.WithAltScreen(), tea.WithContext(ctx))

	p.mu.Lock()
	p.program = program
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.program = nil
		p.mu.Unlock()
	}()

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}
