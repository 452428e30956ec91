package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/filelist"
	"folio/internal/log"
	"folio/internal/session"
	"folio/internal/tui/common"
	"folio/internal/tui/components"
	"folio/internal/tui/messages"
	"folio/internal/tui/views"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultSlideshowInterval is used when slideshow.interval is not set.
const DefaultSlideshowInterval = 3 * time.Second

// Model is the browse screen. bubbletea calls Update on one goroutine, which
// makes that goroutine the session consumer: queued events are dispatched
// from Update when the mailbox signals.
type Model struct {
	session *session.Session
	keys    KeyMap
	help    help.Model
	status  *components.StatusBar

	done      chan struct{}
	closeOnce sync.Once

	mode          common.Mode
	commandBuffer string
	lastKey       string
	prompt        string
	showHelp      bool
	height        int

	statusText string
	statusErr  bool
	reloaded   string
}

// New creates the model and its session.
func New(cfg *config.Config, logger *log.Logger) (*Model, error) {
	m := &Model{
		keys:   DefaultKeyMap(),
		help:   help.New(),
		status: components.NewStatusBar(),
		done:   make(chan struct{}),
		mode:   common.Normal,
	}
	s, err := session.New(session.Options{
		Config:   cfg,
		Renderer: session.RendererFunc(m.render),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	m.session = s
	return m, nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForEvents()}
	if interval := m.session.Config().Slideshow.Interval; interval > 0 {
		cmds = append(cmds, m.startSlideshow(interval))
	}
	return tea.Batch(cmds...)
}

// waitForEvents blocks off the UI goroutine until the mailbox has events.
func (m *Model) waitForEvents() tea.Cmd {
	ready := m.session.Queue().Ready()
	done := m.done
	return func() tea.Msg {
		select {
		case <-ready:
			return messages.QueueReadyMsg{}
		case <-done:
			return nil
		}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.QueueReadyMsg:
		m.session.Queue().Dispatch()
		return m, m.waitForEvents()
	case messages.OpenMsg:
		m.Open(msg.Path)
	case messages.ErrorMsg:
		m.setStatus(msg.Err.Error(), true)
	case tea.FocusMsg:
		m.session.SetActive(true)
	case tea.BlurMsg:
		m.session.SetActive(false)
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width
	case spinner.TickMsg:
		return m, m.status.Update(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case common.Command:
		return m.handleCommandMode(msg)
	case common.Prompt:
		return m.handlePromptKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.jump(1)
	case key.Matches(msg, m.keys.Up):
		m.jump(-1)
	case key.Matches(msg, m.keys.Last):
		m.jump(filelist.JumpLast)
	case key.Matches(msg, m.keys.First):
		if msg.String() == "home" || m.lastKey == "g" {
			m.jump(filelist.JumpFirst)
		}
	case key.Matches(msg, m.keys.Slideshow):
		cmd = m.toggleSlideshow()
	case key.Matches(msg, m.keys.Command):
		m.mode = common.Command
		m.commandBuffer = ":"
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}

	m.lastKey = msg.String()
	return m, cmd
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.session.AnswerPrompt(true)
	case key.Matches(msg, m.keys.No):
		m.session.AnswerPrompt(false)
		m.setStatus("kept current version", false)
	default:
		return m, nil
	}
	m.mode = common.Normal
	m.prompt = ""
	return m, nil
}

func (m *Model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = common.Normal
		m.commandBuffer = ""
		return m, nil
	case "enter":
		cmd := strings.TrimPrefix(m.commandBuffer, ":")
		m.mode = common.Normal
		m.commandBuffer = ""
		return m, m.executeCommand(cmd)
	case "backspace":
		if len(m.commandBuffer) > 1 {
			m.commandBuffer = m.commandBuffer[:len(m.commandBuffer)-1]
		}
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.commandBuffer += string(msg.Runes)
		case tea.KeySpace:
			m.commandBuffer += " "
		}
	}
	return m, nil
}

func (m *Model) executeCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "q", "quit":
		return tea.Quit
	case "o", "open":
		if len(fields) < 2 {
			m.setStatus("usage: open <path>", true)
			return nil
		}
		m.Open(strings.Join(fields[1:], " "))
	case "slideshow":
		interval := m.session.Config().Slideshow.Interval
		if len(fields) > 1 {
			d, err := time.ParseDuration(fields[1])
			if err != nil || d <= 0 {
				m.setStatus(fmt.Sprintf("invalid interval %q", fields[1]), true)
				return nil
			}
			interval = d
		}
		return m.startSlideshow(interval)
	case "stop":
		m.stopSlideshow()
	default:
		m.setStatus(fmt.Sprintf("unknown command %q", fields[0]), true)
	}
	return nil
}

// Open loads a folder or file into the session.
func (m *Model) Open(path string) {
	if err := m.session.Open(path); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("", false)
}

func (m *Model) jump(step int) {
	ix := m.session.Index()
	if ix.CurrentIndex() == filelist.Unset {
		switch step {
		case 1:
			step = filelist.JumpFirst
		case -1:
			step = filelist.JumpLast
		}
	}
	if err := m.session.Jump(step); err != nil {
		switch {
		case errors.IsInvalidState(err):
			m.setStatus("no files", true)
		case errors.IsOutOfRange(err):
			// Edge of the list
		default:
			m.setStatus(err.Error(), true)
		}
	}
}

func (m *Model) toggleSlideshow() tea.Cmd {
	if m.session.SlideshowRunning() {
		m.stopSlideshow()
		return nil
	}
	return m.startSlideshow(m.session.Config().Slideshow.Interval)
}

func (m *Model) startSlideshow(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		interval = DefaultSlideshowInterval
	}
	m.session.StartSlideshow(interval)
	m.setStatus("slideshow every "+interval.String(), false)
	return m.status.SetLoading(true)
}

func (m *Model) stopSlideshow() {
	m.session.StopSlideshow()
	m.status.SetLoading(false)
	m.setStatus("slideshow stopped", false)
}

// render receives session notices. It runs inside Update, during Dispatch.
func (m *Model) render(n session.Notice) {
	switch n.Kind {
	case session.NoticeList:
		if n.List.Kind == filelist.FolderUnwatched {
			m.setStatus("folder removed, showing the last known files", true)
		}
	case session.NoticeReload:
		m.reloaded = n.Name
		m.setStatus("reloaded "+n.Name, false)
	case session.NoticePrompt:
		m.mode = common.Prompt
		m.prompt = n.Message
	case session.NoticeRemoved:
		if m.mode == common.Prompt {
			m.mode = common.Normal
			m.prompt = ""
		}
		m.setStatus(n.Name+" was removed", true)
	case session.NoticeRenamed:
		m.setStatus(fmt.Sprintf("%s renamed to %s", n.Name, n.NewName), false)
	case session.NoticeStatus:
		m.setStatus(n.Message, true)
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusText = text
	m.statusErr = isErr
	m.status.SetText(text, isErr)
}

// Close stops the event wait and releases the session.
func (m *Model) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.done)
		err = m.session.Close()
	})
	return err
}

// Session returns the underlying session.
func (m *Model) Session() *session.Session {
	return m.session
}

// Getters
func (m *Model) Entries() []string {
	return m.session.Index().Entries()
}

func (m *Model) Cursor() int {
	return m.session.Index().CurrentIndex()
}

func (m *Model) Folder() string {
	return m.session.Index().Folder()
}

func (m *Model) Watched() bool {
	return m.session.Index().Watched()
}

func (m *Model) Mode() common.Mode {
	return m.mode
}

func (m *Model) CommandBuffer() string {
	return m.commandBuffer
}

func (m *Model) PromptText() string {
	return m.prompt
}

func (m *Model) StatusView() string {
	return m.status.View()
}

// Status returns the status line text and whether it reports a problem.
func (m *Model) Status() (string, bool) {
	return m.statusText, m.statusErr
}

// Reloaded returns the last file the renderer was asked to reload.
func (m *Model) Reloaded() string {
	return m.reloaded
}

func (m *Model) ShowHelp() bool {
	return m.showHelp
}

func (m *Model) HelpView() string {
	return m.help.View(m.keys)
}

// Height is the number of list rows that fit on screen; 0 means no limit.
func (m *Model) Height() int {
	const chrome = 10
	if m.height <= chrome {
		return 0
	}
	return m.height - chrome
}
