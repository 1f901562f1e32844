package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/solmint/internal/ui"
)

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	s.WriteString(ui.StyleTitle.Render(ui.IconWallet + " Solana dApp"))
	s.WriteString("\n")

	if !m.state.Connected() {
		s.WriteString(m.unconnectedView())
	} else {
		s.WriteString(m.connectedView())
	}

	if m.busy != "" {
		s.WriteString(fmt.Sprintf("\n%s %s...\n", m.spinner.View(), m.busy))
	}

	if len(m.notices) > 0 {
		s.WriteString("\n")
		for _, n := range m.notices {
			s.WriteString(ui.FormatMuted(n.at.Format("15:04:05")) + " " + ui.FormatNotice(n.notice) + "\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(ui.FormatMuted(m.footer()))
	return s.String()
}

func (m Model) unconnectedView() string {
	return m.section(ui.FormatBold("Connect your wallet to get started") + "\n\n" +
		ui.FormatMuted("Press 'c' to connect your wallet"))
}

func (m Model) connectedView() string {
	var s strings.Builder

	var account strings.Builder
	account.WriteString(row("Account", m.state.Account))
	account.WriteString(row("Balance", formatBalance(m.state)))
	s.WriteString(m.section(account.String()))
	s.WriteString("\n")

	var transfer strings.Builder
	transfer.WriteString(ui.StylePrimary.Render("Send SOL") + "\n")
	transfer.WriteString(row("Receiver", m.receiver.View()))
	transfer.WriteString(row("Amount", m.amount.View()))
	if m.state.ExplorerLink != "" {
		transfer.WriteString(row(ui.IconLink+" Tx", ui.FormatLink(m.state.ExplorerLink)))
	}
	s.WriteString(m.section(strings.TrimRight(transfer.String(), "\n")))
	s.WriteString("\n")

	var nft strings.Builder
	nft.WriteString(ui.StylePrimary.Render(ui.IconImage+" Create your NFT") + "\n")
	nft.WriteString(row("Image", m.image.View()))
	if m.state.StatusText != "" {
		nft.WriteString(ui.StyleInfo.Render(m.state.StatusText) + "\n")
	}
	if m.state.UploadURL != "" {
		nft.WriteString(ui.FormatMuted("Press ctrl+n to mint") + "\n")
	}
	if m.state.MintLink != "" {
		nft.WriteString(row(ui.IconRocket+" NFT", ui.FormatLink(m.state.MintLink)))
	}
	s.WriteString(m.section(strings.TrimRight(nft.String(), "\n")))
	s.WriteString("\n")

	return s.String()
}

func (m Model) section(content string) string {
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return ui.StyleSection.Width(width).Render(content)
}

func (m Model) footer() string {
	if !m.state.Connected() {
		return "c connect | q quit"
	}
	keys := "tab focus | enter submit | ctrl+u upload | ctrl+n mint | ctrl+r refresh | x disconnect | q quit"
	if m.lastLink != "" {
		keys = "ctrl+y copy link | " + keys
	}
	return keys
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, ui.StyleLabel.Render(label), value) + "\n"
}
