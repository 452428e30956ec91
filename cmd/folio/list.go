package main

import (
	"fmt"
	"os"
	"path/filepath"

	"folio/internal/log"
	"folio/internal/session"
	"folio/internal/sorter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		sortMode string
		long     bool
	)

	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "Print the sorted file list of a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sort") {
				if _, err := sorter.New(sorter.Mode(sortMode), a.cfg.Browse.Locale); err != nil {
					return err
				}
				a.cfg.Browse.Sort = sortMode
			}

			s, err := session.New(session.Options{Config: a.cfg, Logger: log.Default()})
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Open(a.pathArg(args)); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ix := s.Index()
			for i, name := range ix.Entries() {
				line := name
				if long {
					line = describe(ix.Folder(), name)
				}
				if i == ix.CurrentIndex() {
					fmt.Fprintln(out, activeStyle.Render("> "+line))
					continue
				}
				fmt.Fprintln(out, "  "+line)
			}
			fmt.Fprintln(out, infoText(fmt.Sprintf("%d files in %s", ix.Len(), ix.Folder())))
			return nil
		},
	}

	cmd.Flags().StringVar(&sortMode, "sort", "", "sort order: natural, lexical or collate")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show size and modification time")
	return cmd
}

// describe formats name with its size and age. Files that vanished since the
// scan are shown as such.
func describe(folder, name string) string {
	info, err := os.Stat(filepath.Join(folder, name))
	if err != nil {
		return fmt.Sprintf("%-30s %s", name, "(gone)")
	}
	return fmt.Sprintf("%-30s %8s  %s", name, humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
}
