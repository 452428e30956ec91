package main

import (
	"fmt"
	"io"

	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/log"

	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands.
type app struct {
	cfgFile string
	debug   bool
	cfg     *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "Browse a folder of images that follows changes on disk",
		Long: `folio keeps a sorted list of the images in a folder and follows
additions, removals and renames while you browse it. When the open
image changes on disk it reloads, asks, or ignores it, as configured.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/folio/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(newBrowseCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// loadConfig reads the configuration and sets up logging. A missing or
// unreadable file falls back to defaults; an invalid one is an error.
func (a *app) loadConfig(stderr io.Writer) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadConfigFile(a.cfgFile)
	} else {
		a.cfg, err = config.LoadConfig()
	}
	if err != nil {
		if errors.IsInvalidConfig(err) {
			return err
		}
		fmt.Fprintln(stderr, warningText(fmt.Sprintf("Warning: %v", err)))
		fmt.Fprintln(stderr, infoText("Using default settings. Run 'folio config init' to create a config file."))
		a.cfg = config.New()
	}

	a.configureLogging(stderr)
	return nil
}

func (a *app) configureLogging(out io.Writer) {
	opts := []log.Option{log.WithOutput(out), log.WithLevel(a.cfg.Log.Level)}
	if a.cfg.Log.File != "" {
		opts = append(opts, log.WithFile(a.cfg.Log.File))
	}
	if a.cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	log.Configure(opts...)
	if a.debug {
		log.SetDebug(true)
	}
}

// pathArg returns the first argument or the configured folder.
func (a *app) pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Browse.Folder
}
