package common

type Mode int

const (
	Normal Mode = iota
	Command
	Prompt
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Entries() []string
	Cursor() int
	Folder() string
	Watched() bool
	Mode() Mode
	CommandBuffer() string
	PromptText() string
	StatusView() string
	ShowHelp() bool
	HelpView() string
	Height() int
}
