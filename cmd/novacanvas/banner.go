package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type bannerInfo struct {
	ModelID   string
	Region    string
	ImagesDir string
	Transport string
	Port      int
}

var (
	bannerTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff9900"))
	bannerLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681")).Width(11)
	bannerBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ff9900")).
			Padding(0, 1)
)

// renderBanner は起動時に stderr へ表示する設定の要約を作ります。
func renderBanner(info bannerInfo) string {
	transport := info.Transport
	if transport == "http" {
		transport = fmt.Sprintf("http (:%d)", info.Port)
	}

	rows := [][2]string{
		{"Model", info.ModelID},
		{"Region", info.Region},
		{"Images", info.ImagesDir},
		{"Transport", transport},
	}
	lines := []string{bannerTitle.Render("Nova Canvas MCP Server")}
	for _, r := range rows {
		lines = append(lines, bannerLabel.Render(r[0])+r[1])
	}
	return bannerBox.Render(strings.Join(lines, "\n"))
}
