package cmd

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ramboll-max/wormhole/cmd/bridge"
)

// Version is injected by the linker.
var Version = "development"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tokenbridge",
	Short: "Wormhole token bridge devnet",
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("metricsFile")
		if path == "" {
			return nil
		}
		return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display binary version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tokenbridge.yaml)")
	pf.String("metricsFile", "", "Write prometheus metrics to this file after every command")
	bridge.AddPersistentFlags(pf)
	if err := viper.BindPFlags(pf); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(versionCmd)
	bridge.AddCommands(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".tokenbridge" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".tokenbridge")
	}

	// e.g. TOKENBRIDGE_DATADIR for --dataDir
	viper.SetEnvPrefix("tokenbridge")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
