package cmd

import (
	"fmt"

	"github.com/gartfeo/navlink/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	log     = util.NewLogger("main")
	cfgFile string
)

// build details, overridden via ldflags on release builds
var (
	Version = "0.0.1-alpha"
	Commit  = ""
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "navlink",
	Version: fmt.Sprintf("%s (%s)", Version, Commit),
	Short:   "Tooling for the navlink MAVLink dialect",
	Long: `navlink works with the custom swarm message dialect carried by the
ArduPilot toolchain: it verifies message CRCs across installed dialect
implementations, injects test messages through mavlink-router, scans for
live simulation endpoints and bridges swarm traffic to MQTT.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.FATAL.Fatal(err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is ./navlink.yaml)")
	rootCmd.PersistentFlags().StringP("log", "l", "error", "Log level (fatal, error, warn, info, debug, trace)")
	bind(rootCmd.PersistentFlags(), "log")
}

// bind makes flag values available through viper
func bind(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("navlink")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("navlink")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// using config file is optional, a broken one is not
			log.FATAL.Fatal(fmt.Errorf("config: %w", err))
		}
	}
}

func configureLogging() {
	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))
}
