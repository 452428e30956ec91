package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"folio/internal/filelist"
	"folio/internal/log"
	"folio/internal/session"

	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		interactive bool
		slideshow   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Follow a folder and print list changes",
		Long: `Open a folder without the terminal browser and print every change to
the list and the open file. With --interactive, commands read from stdin
move through the list: next, prev, first, last, open <path>, list,
reload, keep and quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var (
				lines <-chan string
				input <-chan struct{}
			)
			if interactive {
				lines, input = readCommands(cmd.InOrStdin())
			}

			s, err := session.New(session.Options{
				Config:   a.cfg,
				Renderer: session.RendererFunc(func(n session.Notice) { fmt.Fprintln(out, formatNotice(n)) }),
				Logger:   log.Default(),
				Input:    input,
			})
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Open(a.pathArg(args)); err != nil {
				return err
			}
			fmt.Fprintln(out, infoText("Watching "+s.Index().Folder()+". Press Ctrl+C to stop."))

			if cmd.Flags().Changed("slideshow") {
				s.StartSlideshow(slideshow)
			} else if a.cfg.Slideshow.Interval > 0 {
				s.StartSlideshow(a.cfg.Slideshow.Interval)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatchLoop(ctx, s, lines, out)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read navigation commands from stdin")
	cmd.Flags().DurationVarP(&slideshow, "slideshow", "s", 0, "advance automatically at this interval")
	return cmd
}

// runWatchLoop dispatches session events and, between batches, the commands
// that woke the loop. It returns when ctx is done, stdin closes or a quit
// command arrives.
func runWatchLoop(ctx context.Context, s *session.Session, lines <-chan string, out io.Writer) error {
	for {
		if err := s.Run(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

	drain:
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if quit := runCommand(s, line, out); quit {
					return nil
				}
			default:
				break drain
			}
		}
	}
}

// readCommands forwards stdin lines and raises input for each one.
func readCommands(r io.Reader) (<-chan string, <-chan struct{}) {
	lines := make(chan string, 16)
	input := make(chan struct{}, 1)
	raise := func() {
		select {
		case input <- struct{}{}:
		default:
		}
	}

	go func() {
		defer func() {
			close(lines)
			raise()
		}()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
			raise()
		}
	}()
	return lines, input
}

// runCommand executes one interactive command and reports whether to quit.
func runCommand(s *session.Session, line string, out io.Writer) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error
	switch fields[0] {
	case "q", "quit":
		return true
	case "n", "next":
		err = step(s, 1)
	case "p", "prev":
		err = step(s, -1)
	case "first":
		err = s.Jump(filelist.JumpFirst)
	case "last":
		err = s.Jump(filelist.JumpLast)
	case "open":
		if len(fields) < 2 {
			err = fmt.Errorf("usage: open <path>")
			break
		}
		err = s.Open(strings.Join(fields[1:], " "))
	case "list":
		ix := s.Index()
		for i, name := range ix.Entries() {
			marker := "  "
			if i == ix.CurrentIndex() {
				marker = "> "
			}
			fmt.Fprintln(out, marker+name)
		}
	case "reload":
		if !s.AnswerPrompt(true) {
			err = fmt.Errorf("nothing to reload")
		}
	case "keep":
		if !s.AnswerPrompt(false) {
			err = fmt.Errorf("nothing to keep")
		}
	default:
		err = fmt.Errorf("unknown command %q", fields[0])
	}
	if err != nil {
		fmt.Fprintln(out, errorText(err.Error()))
	}
	return false
}

// step moves relative to the open entry, or selects an end when none is
// open.
func step(s *session.Session, delta int) error {
	if s.Index().CurrentIndex() == filelist.Unset {
		if delta > 0 {
			return s.Jump(filelist.JumpFirst)
		}
		return s.Jump(filelist.JumpLast)
	}
	return s.Jump(delta)
}

func formatNotice(n session.Notice) string {
	switch n.Kind {
	case session.NoticeList:
		e := n.List
		switch e.Kind {
		case filelist.ActiveChanged:
			return activeStyle.Render(fmt.Sprintf("open %s (%d/%d)", e.Name, e.Index+1, e.Size))
		case filelist.ListReloaded:
			return infoText(fmt.Sprintf("loaded %d files from %s", e.Size, e.Folder))
		case filelist.ListChanged:
			return fmt.Sprintf("changed %s, %d files", e.Name, e.Size)
		case filelist.FolderUnwatched:
			return warningText(e.Folder + " was removed, keeping the last known list")
		}
	case session.NoticeReload:
		return successText("reload " + n.Name)
	case session.NoticePrompt:
		return warningText(n.Message + " (reload/keep)")
	case session.NoticeRemoved:
		return warningText(n.Name + " was removed")
	case session.NoticeRenamed:
		return fmt.Sprintf("renamed %s to %s", n.Name, n.NewName)
	case session.NoticeStatus:
		return errorText(n.Message)
	}
	return n.String()
}
