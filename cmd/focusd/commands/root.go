package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "focusd",
		Short: "focusd - desktop focus and input activity monitor",
		Long: `focusd watches which window has focus and how actively the user is
typing, clicking and scrolling, and emits a structured event stream on
stdout, one JSON record per line.

Events:
  active-window   the focused window changed (metadata or null)
  new-pid         a process was seen for the first time
  input           periodic or boundary-triggered input counts`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/focusd/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("interval", 0, "input flush interval in seconds (default is 20)")
	rootCmd.PersistentFlags().Int("port", 0, "stream server port (enables the server)")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("flush_interval", rootCmd.PersistentFlags().Lookup("interval"))
	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}
