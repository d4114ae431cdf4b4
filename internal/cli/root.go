package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topochart/pkg/buildinfo"
	"github.com/matzehuels/topochart/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands
// registered.
//
// Before any subcommand runs, the config file is loaded (--config, or the
// XDG default when present), the log level is taken from the config unless
// --verbose forces debug, and the logger is attached to the command
// context where loggerFromContext finds it.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "topochart",
		Short: "Topochart lays out network topologies as force-directed charts",
		Long: `Topochart draws network topologies (routers, networks, ports and
connectors) as force-directed node-link charts. It renders static files,
serves live charts over HTTP and can watch a layout cool in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/topochart/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.helloCommand())
	root.AddCommand(c.exampleCommand())
	root.AddCommand(c.randomCommand())
	root.AddCommand(c.chartsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and prepares the logger.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, unknown, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)

	for _, key := range unknown {
		c.Logger.Warn("unknown config key", "key", key)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
