package tui

import "github.com/charmbracelet/lipgloss"

// styles holds every lipgloss style the viewer renders with. Rebuilt
// wholesale on theme switch.
type styles struct {
	title    lipgloss.Style
	titleDim lipgloss.Style
	editor   lipgloss.Style
	header   lipgloss.Style
	sorted   lipgloss.Style
	cell     lipgloss.Style
	selected lipgloss.Style
	nullCell lipgloss.Style
	status   lipgloss.Style
	help     lipgloss.Style
	info     lipgloss.Style
	success  lipgloss.Style
	errmsg   lipgloss.Style
	dropHint lipgloss.Style
	menu     lipgloss.Style
	picker   lipgloss.Style
	pickerOn lipgloss.Style
}

func newStyles(theme string) styles {
	if theme == "light" {
		return styles{
			title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
			titleDim: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			editor:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")),
			header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")),
			sorted:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("5")),
			cell:     lipgloss.NewStyle().Foreground(lipgloss.Color("0")),
			selected: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")),
			nullCell: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
			status:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7")),
			help:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			info:     lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
			success:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
			errmsg:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
			dropHint: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
			menu:     lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("5")),
			picker:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")),
			pickerOn: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")),
		}
	}

	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		titleDim: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		editor:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")),
		sorted:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13")),
		cell:     lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")),
		nullCell: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		info:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		errmsg:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dropHint: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		menu:     lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13")),
		picker:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		pickerOn: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")),
	}
}
