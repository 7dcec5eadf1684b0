package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brunoscheufler/pim/constants"
	"github.com/brunoscheufler/pim/store"
	"github.com/brunoscheufler/pim/telemetry"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	welcomePage = "welcome"
	formPage    = "form"

	logQueueSize = 256
	fieldWidth   = 40
)

var menuItems = []struct {
	option   int
	label    string
	shortcut rune
}{
	{constants.OptionAddContact, "Add a contact", '1'},
	{constants.OptionSearchContacts, "Search for a contact", '2'},
	{constants.OptionEditContact, "Edit a contact", '3'},
	{constants.OptionDeleteContact, "Delete a contact", '4'},
	{constants.OptionAddNote, "Add a note", '5'},
	{constants.OptionSearchNotesByText, "Search for notes by text", '6'},
	{constants.OptionSearchNotesByTag, "Search for notes by tags", '7'},
	{constants.OptionEditNote, "Edit a note", '8'},
	{constants.OptionDeleteNote, "Delete a note", '9'},
	{constants.OptionUpcomingBirthdays, "Display upcoming birthdays", '0'},
}

type formField struct {
	label string
	value string
}

type CLIApp struct {
	app        *tview.Application
	menu       *tview.List
	pages      *tview.Pages
	outputView *tview.TextView
	statsView  *tview.TextView
	logView    *tview.TextView

	assistant *Assistant
	telemetry *telemetry.Telemetry
	options   CLIOptions
	theme     Theme

	formOpen bool
	logs     chan string

	ctx    context.Context
	cancel context.CancelFunc
}

func NewCLIApp(appConfig *AppConfig, options CLIOptions) *CLIApp {
	ctx, cancel := context.WithCancel(context.Background())

	if options.BirthdayDays <= 0 {
		options.BirthdayDays = constants.DefaultBirthdayDays
	}

	return &CLIApp{
		app:       tview.NewApplication(),
		assistant: NewAssistant(appConfig),
		telemetry: appConfig.Telemetry,
		options:   options,
		theme:     GetTheme(options.Theme),
		logs:      make(chan string, logQueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (c *CLIApp) Setup() {
	ApplyTheme(c.theme)

	// Menu (top left pane)
	c.menu = tview.NewList()
	c.menu.SetBorder(true)
	c.menu.SetTitle(" Menu ")
	c.menu.SetTitleAlign(tview.AlignLeft)
	for _, item := range menuItems {
		option := item.option
		c.menu.AddItem(fmt.Sprintf("%d: %s", item.option, item.label), "", item.shortcut, func() {
			c.open(option)
		})
	}
	c.menu.ShowSecondaryText(false)
	ApplyThemeToList(c.menu, c.theme)

	// Stats (bottom left pane)
	c.statsView = newPane(" Stats ", c.theme)

	// Forms (top right pane)
	welcome := newPane(" Personal Assistant ", c.theme)
	welcome.SetText(fmt.Sprintf("Hello, I am your %s.\n\nPick an option from the menu or press its number.\nEsc closes a form, Esc on the menu or Ctrl-C quits.", constants.AppName))
	c.pages = tview.NewPages()
	c.pages.AddPage(welcomePage, welcome, true, true)

	// Output (middle right pane)
	c.outputView = newPane(" Output ", c.theme)
	c.outputView.SetScrollable(true)

	// Logs (bottom right pane)
	c.logView = newPane(" Logs ", c.theme)
	c.logView.SetScrollable(true)
	c.logView.SetMaxLines(constants.DefaultLogBufferSize)

	leftFlex := tview.NewFlex()
	leftFlex.SetDirection(tview.FlexRow)
	leftFlex.AddItem(c.menu, len(menuItems)+2, 0, true)
	leftFlex.AddItem(c.statsView, 0, 1, false)

	rightFlex := tview.NewFlex()
	rightFlex.SetDirection(tview.FlexRow)
	rightFlex.AddItem(c.pages, 0, 2, false)
	rightFlex.AddItem(c.outputView, 0, 2, false)
	rightFlex.AddItem(c.logView, 0, 1, false)

	mainFlex := tview.NewFlex()
	mainFlex.SetDirection(tview.FlexColumn)
	mainFlex.AddItem(leftFlex, 0, 1, true)
	mainFlex.AddItem(rightFlex, 0, 2, false)

	c.app.SetRoot(mainFlex, true)
	c.app.SetFocus(c.menu)
	c.app.EnableMouse(true)

	c.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			c.Stop()
			return nil
		case tcell.KeyEscape:
			if c.formOpen {
				c.closeForm()
			} else {
				c.Stop()
			}
			return nil
		}
		return event
	})

	if c.telemetry != nil {
		c.telemetry.LogCapture.SetLogCallback(func(entry telemetry.LogEntry) {
			select {
			case c.logs <- FormatLogEntry(entry):
			default:
			}
		})
	}
}

func newPane(title string, theme Theme) *tview.TextView {
	tv := tview.NewTextView()
	tv.SetBorder(true)
	tv.SetTitle(title)
	tv.SetTitleAlign(tview.AlignLeft)
	tv.SetDynamicColors(true)
	tv.SetTextAlign(tview.AlignLeft)
	tv.SetWordWrap(true)
	ApplyThemeToTextView(tv, theme)
	return tv
}

func (c *CLIApp) Start() error {
	if c.telemetry != nil {
		go c.statsUpdateLoop()
		go c.logUpdateLoop()
		go c.loadExistingLogs()
	}

	return c.app.Run()
}

func (c *CLIApp) Stop() {
	if c.telemetry != nil {
		c.telemetry.LogCapture.SetLogCallback(nil)
	}
	c.cancel()
	c.app.Stop()
}

func (c *CLIApp) open(option int) {
	a := c.assistant
	ctx := c.ctx

	switch option {
	case constants.OptionAddContact:
		c.showForm("Add a contact", []formField{
			{label: "Name"},
			{label: "Address"},
			{label: "Phone number"},
			{label: "Email"},
			{label: "Birthday (YYYY-MM-DD)"},
		}, func(v []string) {
			out, err := a.AddContact(ctx, ContactInput{Name: v[0], Address: v[1], Phone: v[2], Email: v[3], Birthday: v[4]})
			c.finish("Add a contact", out, err)
		})

	case constants.OptionSearchContacts:
		c.showForm("Search for a contact", []formField{{label: "Search query"}}, func(v []string) {
			out, err := a.SearchContacts(ctx, v[0])
			c.finish("Contacts matching "+quote(v[0]), out, err)
		})

	case constants.OptionEditContact:
		c.showForm("Edit a contact", []formField{{label: "Name of the contact"}}, func(v []string) {
			contact, err := a.FindContact(ctx, v[0])
			if err != nil {
				c.finish("Edit a contact", "", err)
				return
			}
			c.editContactForm(*contact)
		})

	case constants.OptionDeleteContact:
		c.showForm("Delete a contact", []formField{{label: "Name of the contact"}}, func(v []string) {
			out, err := a.DeleteContact(ctx, v[0])
			c.finish("Delete a contact", out, err)
		})

	case constants.OptionAddNote:
		c.showForm("Add a note", []formField{
			{label: "Note text"},
			{label: "Tags (comma separated)"},
		}, func(v []string) {
			out, err := a.AddNote(ctx, v[0], v[1])
			c.finish("Add a note", out, err)
		})

	case constants.OptionSearchNotesByText:
		c.showForm("Search for notes by text", []formField{{label: "Search query"}}, func(v []string) {
			out, err := a.SearchNotesByText(ctx, v[0])
			c.finish("Notes containing "+quote(v[0]), out, err)
		})

	case constants.OptionSearchNotesByTag:
		c.showForm("Search for notes by tags", []formField{{label: "Tag"}}, func(v []string) {
			out, err := a.SearchNotesByTag(ctx, v[0])
			c.finish("Notes tagged "+quote(v[0]), out, err)
		})

	case constants.OptionEditNote:
		c.showNoteListing()
		c.showForm("Edit a note", []formField{
			{label: "Index (optional)"},
			{label: "Or text of the note"},
		}, func(v []string) {
			if strings.TrimSpace(v[0]) != "" {
				c.editNoteAtForm(v[0])
				return
			}
			c.matchNote(v[1])
		})

	case constants.OptionDeleteNote:
		c.showNoteListing()
		c.showForm("Delete a note", []formField{{label: "Index"}}, func(v []string) {
			out, err := a.DeleteNote(ctx, v[0])
			c.finish("Delete a note", out, err)
		})

	case constants.OptionUpcomingBirthdays:
		c.showForm("Display upcoming birthdays", []formField{
			{label: "Days", value: fmt.Sprint(c.options.BirthdayDays)},
		}, func(v []string) {
			out, err := a.UpcomingBirthdays(ctx, v[0])
			c.finish("Upcoming birthdays", out, err)
		})
	}
}

func (c *CLIApp) editContactForm(contact store.Contact) {
	c.show("Editing contact", FormatContact(contact), nil)
	c.showForm("Edit "+contact.Name+" (blank keeps current)", []formField{
		{label: "New name"},
		{label: "New address"},
		{label: "New phone number"},
		{label: "New email"},
		{label: "New birthday (YYYY-MM-DD)"},
	}, func(v []string) {
		out, err := c.assistant.EditContact(c.ctx, contact.Name, ContactInput{Name: v[0], Address: v[1], Phone: v[2], Email: v[3], Birthday: v[4]})
		c.finish("Edit a contact", out, err)
	})
}

func (c *CLIApp) editNoteAtForm(index string) {
	c.showForm("Edit note "+strings.TrimSpace(index), []formField{
		{label: "New text"},
		{label: "New tags (blank keeps current)"},
	}, func(v []string) {
		out, err := c.assistant.EditNoteAt(c.ctx, index, v[0], v[1])
		c.finish("Edit a note", out, err)
	})
}

func (c *CLIApp) matchNote(query string) {
	matches, err := c.assistant.MatchNotes(c.ctx, query)
	switch {
	case err != nil:
		c.finish("Edit a note", "", err)
	case len(matches) == 0:
		c.finish("Edit a note", "", store.ErrNoteNotFound)
	case len(matches) == 1:
		c.editNoteForm(matches[0])
	default:
		c.show("Multiple notes found", FormatMatches(matches), nil)
		c.showForm("Pick a note", []formField{{label: "Number of the note"}}, func(v []string) {
			note, err := c.assistant.SelectNote(matches, v[0])
			if err != nil {
				c.finish("Edit a note", "", err)
				return
			}
			c.editNoteForm(note)
		})
	}
}

func (c *CLIApp) editNoteForm(note store.Note) {
	c.show("Editing note", FormatNote(note), nil)
	c.showForm("Edit note", []formField{
		{label: "New text", value: note.Text},
		{label: "New tags", value: strings.Join(note.Tags, ", ")},
	}, func(v []string) {
		out, err := c.assistant.EditNote(c.ctx, note.ID, v[0], v[1])
		c.finish("Edit a note", out, err)
	})
}

func (c *CLIApp) showNoteListing() {
	out, err := c.assistant.ListNotes(c.ctx)
	c.show("Notes", out, err)
}

func (c *CLIApp) showForm(title string, fields []formField, submit func(values []string)) {
	form := tview.NewForm()
	for _, f := range fields {
		form.AddInputField(f.label, f.value, fieldWidth, nil, nil)
	}
	form.AddButton("OK", func() {
		values := make([]string, len(fields))
		for i := range fields {
			if input, ok := form.GetFormItem(i).(*tview.InputField); ok {
				values[i] = input.GetText()
			}
		}
		submit(values)
	})
	form.AddButton("Cancel", c.closeForm)
	form.SetBorder(true)
	form.SetTitle(" " + title + " ")
	form.SetTitleAlign(tview.AlignLeft)
	ApplyThemeToForm(form, c.theme)

	c.formOpen = true
	c.pages.AddAndSwitchToPage(formPage, form, true)
	c.app.SetFocus(form)
}

func (c *CLIApp) closeForm() {
	c.formOpen = false
	c.pages.SwitchToPage(welcomePage)
	c.pages.RemovePage(formPage)
	c.app.SetFocus(c.menu)
}

func (c *CLIApp) finish(title, out string, err error) {
	c.closeForm()
	c.show(title, out, err)
	go c.updateStats()
}

func (c *CLIApp) show(title, out string, err error) {
	c.outputView.SetText(FormatOutputWithTheme(title, out, err, c.theme))
	c.outputView.ScrollToBeginning()
}

func quote(s string) string {
	return fmt.Sprintf("%q", strings.TrimSpace(s))
}

func (c *CLIApp) statsUpdateLoop() {
	c.updateStats()

	ticker := time.NewTicker(constants.DefaultStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateStats()
		}
	}
}

func (c *CLIApp) updateStats() {
	stats, err := c.telemetry.StatsCollector.CollectStats(c.ctx)
	if err != nil {
		return
	}

	text := FormatStatsWithTheme(stats, c.theme)
	c.app.QueueUpdateDraw(func() {
		c.statsView.SetText(text)
	})
}

func (c *CLIApp) logUpdateLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case line := <-c.logs:
			c.app.QueueUpdateDraw(func() {
				fmt.Fprint(c.logView, line)
				c.logView.ScrollToEnd()
			})
		}
	}
}

func (c *CLIApp) loadExistingLogs() {
	logs := c.telemetry.LogCapture.GetRecentLogs(constants.DefaultLogBufferSize)
	colors := themeColors(c.theme)

	var logText strings.Builder
	if len(logs) == 0 {
		logText.WriteString(colors.secondary + "Waiting for logs...[-]\n")
	}
	for _, entry := range logs {
		logText.WriteString(FormatLogEntry(entry))
	}

	text := logText.String()
	c.app.QueueUpdateDraw(func() {
		c.logView.SetText(text + c.logView.GetText(false))
		c.logView.ScrollToEnd()
	})
}
