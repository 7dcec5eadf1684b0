package cli

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/brunoscheufler/pim/telemetry"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type Theme struct {
	Name       string
	Foreground tcell.Color
	Border     tcell.Color
	Title      tcell.Color
	Highlight  tcell.Color
	Secondary  tcell.Color
	Accent     tcell.Color
	Success    tcell.Color
	Warning    tcell.Color
	Error      tcell.Color
}

var (
	DarkTheme = Theme{
		Name:       "dark",
		Foreground: tcell.ColorWhite,
		Border:     tcell.ColorBlue,
		Title:      tcell.ColorYellow,
		Highlight:  tcell.ColorGreen,
		Secondary:  tcell.ColorGray,
		Accent:     tcell.ColorAqua,
		Success:    tcell.ColorGreen,
		Warning:    tcell.ColorYellow,
		Error:      tcell.ColorRed,
	}

	LightTheme = Theme{
		Name:       "light",
		Foreground: tcell.ColorBlack,
		Border:     tcell.ColorNavy,
		Title:      tcell.ColorDarkBlue,
		Highlight:  tcell.ColorDarkGreen,
		Secondary:  tcell.ColorDarkGray,
		Accent:     tcell.ColorTeal,
		Success:    tcell.ColorDarkGreen,
		Warning:    tcell.ColorOrange,
		Error:      tcell.ColorDarkRed,
	}
)

func GetTheme(themeName string) Theme {
	switch themeName {
	case "light":
		return LightTheme
	case "dark":
		fallthrough
	default:
		return DarkTheme
	}
}

// ApplyTheme sets the tview defaults with transparent backgrounds.
func ApplyTheme(theme Theme) {
	tview.Styles = tview.Theme{
		PrimitiveBackgroundColor:    tcell.ColorDefault,
		ContrastBackgroundColor:     tcell.ColorDefault,
		MoreContrastBackgroundColor: tcell.ColorDefault,
		BorderColor:                 theme.Border,
		TitleColor:                  theme.Title,
		GraphicsColor:               theme.Accent,
		PrimaryTextColor:            theme.Foreground,
		SecondaryTextColor:          theme.Secondary,
		TertiaryTextColor:           theme.Secondary,
		InverseTextColor:            theme.Foreground,
		ContrastSecondaryTextColor:  theme.Foreground,
	}
}

func ApplyThemeToTextView(tv *tview.TextView, theme Theme) {
	tv.SetBackgroundColor(tcell.ColorDefault)
	tv.SetTextColor(theme.Foreground)
	tv.SetBorderColor(theme.Border)
	tv.SetTitleColor(theme.Title)
}

func ApplyThemeToList(list *tview.List, theme Theme) {
	list.SetBackgroundColor(tcell.ColorDefault)
	list.SetBorderColor(theme.Border)
	list.SetTitleColor(theme.Title)
	list.SetMainTextColor(theme.Foreground)
	list.SetShortcutColor(theme.Accent)
	list.SetSelectedTextColor(theme.Foreground)
	list.SetSelectedBackgroundColor(theme.Highlight)
}

func ApplyThemeToForm(form *tview.Form, theme Theme) {
	form.SetBackgroundColor(tcell.ColorDefault)
	form.SetBorderColor(theme.Border)
	form.SetTitleColor(theme.Title)
	form.SetLabelColor(theme.Accent)
	form.SetFieldTextColor(theme.Foreground)
	form.SetFieldBackgroundColor(tcell.ColorDefault)
	form.SetButtonTextColor(theme.Foreground)
	form.SetButtonBackgroundColor(theme.Border)
}

const statsTemplate = `{{.LabelColor}}Contacts:{{.ValueColor}} {{.Stats.ContactCount}}{{.LabelColor}}
Notes:{{.ValueColor}} {{.Stats.NoteCount}}{{.LabelColor}}
Contact reads/writes:{{.ValueColor}} {{.Stats.ContactReads}}/{{.Stats.ContactWrites}}{{.LabelColor}}
Note reads/writes:{{.ValueColor}} {{.Stats.NoteReads}}/{{.Stats.NoteWrites}}{{.LabelColor}}
Failures:{{.ErrorColor}} {{.Stats.Failures}}{{.LabelColor}}
Last operation:{{.ValueColor}} {{.Stats.LastOperation}}{{.LabelColor}}
Uptime:{{.ValueColor}} {{.Uptime}}{{.LabelColor}}
Goroutines:{{.ValueColor}} {{.Stats.GoRoutines}}{{.LabelColor}}
Memory:{{.ValueColor}} {{.Stats.MemoryUsage}}{{.LabelColor}}
Updated:{{.SecondaryColor}} {{.LastUpdated}}[-]`

type StatsData struct {
	Stats          *telemetry.Stats
	Uptime         string
	LastUpdated    string
	LabelColor     string
	ValueColor     string
	ErrorColor     string
	SecondaryColor string
}

var statsTemplateParsed = template.Must(template.New("stats").Parse(statsTemplate))

type colorTags struct {
	label, value, secondary, header, error string
}

func themeColors(theme Theme) colorTags {
	if theme.Name == "light" {
		return colorTags{label: "[navy]", value: "[teal]", secondary: "[darkgray]", header: "[darkblue]", error: "[darkred]"}
	}
	return colorTags{label: "[white]", value: "[aqua]", secondary: "[gray]", header: "[yellow]", error: "[red]"}
}

func FormatStatsWithTheme(stats *telemetry.Stats, theme Theme) string {
	colors := themeColors(theme)

	data := StatsData{
		Stats:          stats,
		Uptime:         formatDuration(stats.Uptime),
		LastUpdated:    stats.LastUpdated.Format(time.TimeOnly),
		LabelColor:     colors.label,
		ValueColor:     colors.value,
		ErrorColor:     colors.error,
		SecondaryColor: colors.secondary,
	}

	var buf bytes.Buffer
	if err := statsTemplateParsed.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting stats: %v", err)
	}

	return buf.String()
}

// FormatOutputWithTheme colors an operation result for the output pane.
func FormatOutputWithTheme(title, text string, err error, theme Theme) string {
	colors := themeColors(theme)
	if err != nil {
		return fmt.Sprintf("%s%s[-]\n%s%s[-]\n", colors.header, tview.Escape(title), colors.error, tview.Escape(Describe(err)))
	}
	return fmt.Sprintf("%s%s[-]\n%s\n", colors.header, tview.Escape(title), tview.Escape(text))
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// FormatLogEntry converts any ANSI colors written by tint into tview tags.
func FormatLogEntry(entry telemetry.LogEntry) string {
	return tview.TranslateANSI(tview.Escape(entry.Message)) + "\n"
}
