// Package session wires the mailbox, the directory watcher and the file
// list into one browsing session.
//
// Everything except the Request* methods and the slideshow producer must be
// called on the consumer goroutine, the one that runs Dispatch or Run.
package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/filelist"
	"folio/internal/log"
	"folio/internal/mailbox"
	"folio/internal/watch"
)

// AdvanceMsg moves the open entry. Wrap restarts at the first entry when
// the step runs off the end.
type AdvanceMsg struct {
	Step int
	Wrap bool
}

// OpenMsg asks the session to open a file or folder.
type OpenMsg struct {
	Path string
}

// Options configures a Session.
type Options struct {
	Config   *config.Config
	Renderer Renderer
	Logger   *log.Logger
	// Input wakes Run when the caller's own event source has work.
	Input <-chan struct{}
}

// Session owns one file list and the plumbing that keeps it live.
type Session struct {
	cfg      *config.Config
	renderer Renderer
	logger   *log.Logger

	queue   *mailbox.Queue
	watcher *watch.Watcher
	index   *filelist.Index
	policy  *reloadPolicy

	changes mailbox.Tag[watch.Change]
	advance mailbox.Tag[AdvanceMsg]
	open    mailbox.Tag[OpenMsg]

	showMu     sync.Mutex
	showCancel context.CancelFunc
	showDone   chan struct{}
}

// New builds a session. Call Close to release the watcher.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sortBy, err := cfg.Sorter()
	if err != nil {
		return nil, err
	}

	base := opts.Logger
	if base == nil {
		base = log.Default()
	}
	s := &Session{
		cfg:      cfg,
		renderer: opts.Renderer,
		logger:   base.With(log.F("component", "session")),
	}
	if s.renderer == nil {
		s.renderer = nopRenderer{}
	}

	s.queue = mailbox.New(mailbox.WithLogger(base), mailbox.WithInputSource(opts.Input))
	if s.changes, err = mailbox.Register(s.queue, s.applyChange); err != nil {
		return nil, err
	}
	if s.advance, err = mailbox.Register(s.queue, s.applyAdvance); err != nil {
		return nil, err
	}
	if s.open, err = mailbox.Register(s.queue, s.applyOpen); err != nil {
		return nil, err
	}

	s.watcher, err = watch.New(s.changes, watch.Options{
		RenameWindow: cfg.Watch.RenameWindow,
		EmitNone:     cfg.Watch.EmitNone,
		Logger:       base,
	})
	if err != nil {
		s.queue.Close()
		return nil, err
	}

	s.policy = newReloadPolicy(cfg.Reload.Policy, s.renderer, s.logger)
	s.index = filelist.New(s.watcher, sortBy,
		filelist.WithHooks(s.policy),
		filelist.WithNotifier(filelist.NotifierFunc(func(e filelist.Event) {
			s.renderer.Render(Notice{Kind: NoticeList, List: e})
		})),
		filelist.WithExclude(cfg.Browse.Exclude...),
		filelist.WithLogger(base),
	)
	return s, nil
}

// Queue returns the session mailbox, for consumers that run their own
// event loop and call Dispatch themselves.
func (s *Session) Queue() *mailbox.Queue { return s.queue }

// Index returns the file list. Consumer goroutine only.
func (s *Session) Index() *filelist.Index { return s.index }

// Config returns the configuration the session was built with.
func (s *Session) Config() *config.Config { return s.cfg }

// Open loads a folder, or the parent folder of a file and selects the file.
func (s *Session) Open(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewFileError("cannot open path", path, errors.InvalidPath, err)
	}
	if info.IsDir() {
		return s.index.SetFolder(path, s.cfg.Browse.Extensions)
	}
	return s.OpenFile(path)
}

// OpenFile loads the folder containing path and opens path in it.
func (s *Session) OpenFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewFileError("cannot resolve file", path, errors.InvalidPath, err)
	}
	if err := s.index.SetFolder(filepath.Dir(abs), s.cfg.Browse.Extensions); err != nil {
		return err
	}
	name := filepath.Base(abs)
	if !s.index.SetCurrentIndexByElementName(name) {
		return errors.NewListError("file is not listed", name, errors.InvalidState, nil)
	}
	return nil
}

// Jump moves the open entry; see filelist.Index.JumpDelta.
func (s *Session) Jump(step int) error {
	return s.index.JumpDelta(step)
}

// RequestOpen queues an Open from any goroutine.
func (s *Session) RequestOpen(path string) {
	s.open.Push(OpenMsg{Path: path})
}

// RequestAdvance queues a move from any goroutine.
func (s *Session) RequestAdvance(step int, wrap bool) {
	s.advance.Push(AdvanceMsg{Step: step, Wrap: wrap})
}

// SetActive tells the session whether the UI has focus. A reload deferred
// while inactive is handled when the UI becomes active.
func (s *Session) SetActive(active bool) {
	s.policy.setActive(active)
}

// AnswerPrompt resolves a pending reload prompt and reports whether one
// was outstanding.
func (s *Session) AnswerPrompt(reload bool) bool {
	return s.policy.answer(reload)
}

func (s *Session) applyChange(c watch.Change) {
	err := s.index.ApplyChange(c)
	switch {
	case err == nil:
	case errors.IsDuplicateEntry(err):
		s.logger.WithError(err).Warn("skipping change for an entry that is already listed")
	default:
		s.logger.WithError(err).Error("failed to apply change")
	}
}

func (s *Session) applyAdvance(m AdvanceMsg) {
	err := s.index.JumpDelta(m.Step)
	if err == nil {
		return
	}
	if errors.IsOutOfRange(err) && m.Wrap {
		target := filelist.JumpFirst
		if m.Step < 0 {
			target = filelist.JumpLast
		}
		err = s.index.JumpDelta(target)
	}
	if err != nil && !errors.IsInvalidState(err) {
		s.renderer.Render(Notice{Kind: NoticeStatus, Message: err.Error()})
	}
}

func (s *Session) applyOpen(m OpenMsg) {
	if err := s.Open(m.Path); err != nil {
		s.logger.WithError(err).Warn("cannot open requested path")
		s.renderer.Render(Notice{Kind: NoticeStatus, Message: err.Error()})
	}
}

// Run dispatches queued events until ctx is done. It returns early with
// nil when the input source fires, so the caller can service it and call
// Run again.
func (s *Session) Run(ctx context.Context) error {
	for {
		reason, err := s.queue.WaitAndDispatch(ctx, 0)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if reason == mailbox.WokeInput {
			return nil
		}
	}
}

// StartSlideshow advances to the next entry every interval, wrapping at the
// end. Starting again replaces the running slideshow.
func (s *Session) StartSlideshow(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.StopSlideshow()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.showMu.Lock()
	s.showCancel = cancel
	s.showDone = done
	s.showMu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RequestAdvance(1, true)
			case <-ctx.Done():
				return
			}
		}
	}()
	s.logger.With(log.F("interval", interval.String())).Debug("slideshow started")
}

// StopSlideshow stops the slideshow producer and waits for it to exit.
func (s *Session) StopSlideshow() {
	s.showMu.Lock()
	cancel, done := s.showCancel, s.showDone
	s.showCancel, s.showDone = nil, nil
	s.showMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SlideshowRunning reports whether the slideshow producer is active.
func (s *Session) SlideshowRunning() bool {
	s.showMu.Lock()
	defer s.showMu.Unlock()
	return s.showCancel != nil
}

// Close stops producers, the watcher and the queue.
func (s *Session) Close() error {
	s.StopSlideshow()
	s.index.Close()
	err := s.watcher.Close()
	s.queue.Close()
	return err
}
