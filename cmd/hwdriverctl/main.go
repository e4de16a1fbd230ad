// hwdriverctl is an inspection and operations CLI over the hardware-driver
// subsystem: it loads the same hardware_driver/arista_driver configuration
// the controller process loads, and lets an operator see what the store
// currently holds, force a reconciliation tick, and see which drivers are
// configured — all without touching the controller's REST layer.
//
// Not named in spec.md, which has no CLI surface of its own; the teacher's
// whole cmd/newtron convention is a CLI front-end over its core packages,
// so this module gets a small one too.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/config"
	"github.com/aristahw/tor-hwdriver/pkg/util"
)

// App holds CLI state shared across subcommands.
type App struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

var app = &App{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "hwdriverctl",
	Short:         "Inspect and operate the hardware-driver subsystem",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `hwdriverctl loads the hardware_driver/arista_driver configuration and
lets an operator inspect the Provisioned-Net Store, force a reconciliation
tick against the switch, and see which drivers are active.

  hwdriverctl show                 # bound networks in the local store
  hwdriverctl sync                 # run one reconciliation tick now
  hwdriverctl drivers              # configured driver names`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if app.verbose {
			_ = util.SetLogLevel("debug")
		} else {
			_ = util.SetLogLevel("warn")
		}
		cfg, err := config.Load(app.configPath)
		if err != nil {
			return fmt.Errorf("loading config %s: %w", app.configPath, err)
		}
		app.cfg = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", "/etc/hwdriver/hwdriver.yaml", "path to hardware-driver config file")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
}
