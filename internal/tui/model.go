package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/solmint/internal/blockchain"
	"github.com/kelsos/solmint/internal/config"
	"github.com/kelsos/solmint/internal/mint"
	"github.com/kelsos/solmint/internal/models"
	"github.com/kelsos/solmint/internal/ui"
)

// maxNotices is how many notices stay on screen.
const maxNotices = 6

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

// Service is what the page needs from the dApp service.
type Service interface {
	Snapshot() models.PageState
	Load(ctx context.Context) error
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	RefreshBalance(ctx context.Context) error
	SubmitTransfer(ctx context.Context, receiver, amount string) (string, error)
	UploadFromURL(ctx context.Context, rawURL string) (string, error)
	UploadFile(ctx context.Context, path string) (string, error)
	GenerateNFT(ctx context.Context) (*mint.Result, error)
}

type Action string

const (
	ActionLoad       Action = "load"
	ActionConnect    Action = "connect"
	ActionDisconnect Action = "disconnect"
	ActionRefresh    Action = "refresh"
	ActionTransfer   Action = "transfer"
	ActionUpload     Action = "upload"
	ActionMint       Action = "mint"
)

type field int

const (
	fieldNone field = iota
	fieldReceiver
	fieldAmount
	fieldImage
	fieldCount
)

// NoticeMsg carries a notice from the service into the page.
type NoticeMsg models.Notice

// ActionDone reports the end of a service call.
type ActionDone struct {
	Action Action
	Link   string
	Err    error
}

type timedNotice struct {
	at     time.Time
	notice models.Notice
}

type Model struct {
	ctx      context.Context
	service  Service
	state    models.PageState
	receiver textinput.Model
	amount   textinput.Model
	image    textinput.Model
	focus    field
	spinner  spinner.Model
	busy     Action
	lastLink string
	notices  []timedNotice
	width    int
	quit     bool
}

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.Width = width
	return ti
}

func NewModel(ctx context.Context, service Service) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ui.ColorPrimary)

	amount := newInput("0.1", 20)
	amount.CharLimit = 32

	return Model{
		ctx:      ctx,
		service:  service,
		state:    service.Snapshot(),
		receiver: newInput("Receiver address", 48),
		amount:   amount,
		image:    newInput("https://... or a local file path", 48),
		spinner:  sp,
		busy:     ActionLoad,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		runAction(m.ctx, ActionLoad, func(ctx context.Context) (string, error) {
			return "", m.service.Load(ctx)
		}),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case NoticeMsg:
		m = m.handleNotice(models.Notice(msg))

	case ActionDone:
		m = m.handleActionDone(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quit = true
		return m, tea.Quit
	case "tab":
		return m.cycleFocus(1)
	case "shift+tab":
		return m.cycleFocus(-1)
	case "esc":
		return m.setFocus(fieldNone)
	case "enter":
		return m.submitFocused()
	case "ctrl+u":
		return m.startUpload()
	case "ctrl+n":
		return m.startMint()
	case "ctrl+r":
		return m.startRefresh()
	case "ctrl+y":
		return m.copyLink(), nil
	}

	if m.focus != fieldNone {
		return m.updateFocusedInput(msg)
	}

	switch msg.String() {
	case "q":
		m.quit = true
		return m, tea.Quit
	case "c":
		return m.startConnect()
	case "x":
		return m.startDisconnect()
	}

	return m, nil
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldReceiver:
		m.receiver, cmd = m.receiver.Update(msg)
	case fieldAmount:
		m.amount, cmd = m.amount.Update(msg)
	case fieldImage:
		m.image, cmd = m.image.Update(msg)
	}
	return m, cmd
}

func (m Model) cycleFocus(step int) (tea.Model, tea.Cmd) {
	if !m.state.Connected() {
		return m, nil
	}
	next := (int(m.focus) + step + int(fieldCount)) % int(fieldCount)
	return m.setFocus(field(next))
}

func (m Model) setFocus(f field) (tea.Model, tea.Cmd) {
	m.focus = f
	m.receiver.Blur()
	m.amount.Blur()
	m.image.Blur()

	var cmd tea.Cmd
	switch f {
	case fieldReceiver:
		cmd = m.receiver.Focus()
	case fieldAmount:
		cmd = m.amount.Focus()
	case fieldImage:
		cmd = m.image.Focus()
	}
	return m, cmd
}

func (m Model) submitFocused() (tea.Model, tea.Cmd) {
	switch m.focus {
	case fieldReceiver, fieldAmount:
		return m.startTransfer()
	case fieldImage:
		return m.startUpload()
	}
	return m, nil
}

func (m Model) handleNotice(notice models.Notice) Model {
	m.notices = append(m.notices, timedNotice{at: time.Now(), notice: notice})
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
	return m
}

func (m Model) handleActionDone(msg ActionDone) Model {
	if m.busy == msg.Action {
		m.busy = ""
	}
	m.state = m.service.Snapshot()

	if msg.Err != nil {
		return m
	}

	if msg.Link != "" {
		m.lastLink = msg.Link
	}

	switch msg.Action {
	case ActionTransfer:
		m.receiver.Reset()
		m.amount.Reset()
	case ActionUpload:
		m.image.Reset()
	case ActionDisconnect:
		m.lastLink = ""
		m.receiver.Reset()
		m.amount.Reset()
		m.image.Reset()
		m.focus = fieldNone
	}
	return m
}

// runAction executes fn off the update loop and reports the outcome.
func runAction(ctx context.Context, action Action, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		link, err := fn(ctx)
		return ActionDone{Action: action, Link: link, Err: err}
	}
}

func (m Model) begin(action Action, fn func(ctx context.Context) (string, error)) (tea.Model, tea.Cmd) {
	if m.busy != "" {
		m = m.handleNotice(models.Notice{
			Level:   models.NoticeInfo,
			Message: fmt.Sprintf("Please wait, %s is still running", m.busy),
		})
		return m, nil
	}
	m.busy = action
	return m, tea.Batch(runAction(m.ctx, action, fn), m.spinner.Tick)
}

func (m Model) startConnect() (tea.Model, tea.Cmd) {
	if m.state.Connected() {
		return m, nil
	}
	service := m.service
	return m.begin(ActionConnect, func(ctx context.Context) (string, error) {
		return "", service.Connect(ctx)
	})
}

func (m Model) startDisconnect() (tea.Model, tea.Cmd) {
	if !m.state.Connected() {
		return m, nil
	}
	service := m.service
	return m.begin(ActionDisconnect, func(ctx context.Context) (string, error) {
		return "", service.Disconnect(ctx)
	})
}

func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	if !m.state.Connected() {
		return m, nil
	}
	service := m.service
	return m.begin(ActionRefresh, func(ctx context.Context) (string, error) {
		return "", service.RefreshBalance(ctx)
	})
}

func (m Model) startTransfer() (tea.Model, tea.Cmd) {
	if !m.state.Connected() {
		return m, nil
	}
	service := m.service
	receiver := strings.TrimSpace(m.receiver.Value())
	amount := strings.TrimSpace(m.amount.Value())
	return m.begin(ActionTransfer, func(ctx context.Context) (string, error) {
		return service.SubmitTransfer(ctx, receiver, amount)
	})
}

func (m Model) startUpload() (tea.Model, tea.Cmd) {
	if !m.state.Connected() {
		return m, nil
	}
	source := strings.TrimSpace(m.image.Value())
	if source == "" {
		m = m.handleNotice(models.Notice{Level: models.NoticeError, Message: "Enter an image URL or file path"})
		return m, nil
	}

	service := m.service
	return m.begin(ActionUpload, func(ctx context.Context) (string, error) {
		if isURL(source) {
			return service.UploadFromURL(ctx, source)
		}
		return service.UploadFile(ctx, config.ExpandHome(source))
	})
}

func (m Model) startMint() (tea.Model, tea.Cmd) {
	if !m.state.Connected() {
		return m, nil
	}
	service := m.service
	return m.begin(ActionMint, func(ctx context.Context) (string, error) {
		result, err := service.GenerateNFT(ctx)
		if err != nil {
			return "", err
		}
		return result.ExplorerURL, nil
	})
}

func (m Model) copyLink() Model {
	if m.lastLink == "" {
		return m
	}
	if err := copyToClipboard(m.lastLink); err != nil {
		return m.handleNotice(models.Notice{Level: models.NoticeError, Message: "Could not copy to the clipboard"})
	}
	return m.handleNotice(models.Notice{Level: models.NoticeInfo, Message: "Link copied to the clipboard"})
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func formatBalance(state models.PageState) string {
	return blockchain.FormatSOL(state.Lamports) + " SOL"
}
