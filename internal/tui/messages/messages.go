package messages

// QueueReadyMsg reports that the session mailbox has pending events.
type QueueReadyMsg struct{}

type ErrorMsg struct {
	Err error
}

// OpenMsg asks the model to open a folder or file.
type OpenMsg struct {
	Path string
}
