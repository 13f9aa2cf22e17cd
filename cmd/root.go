package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aqlanhadi/stmtparse/extractor"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "stmtparse [filename]",
		Short: "Parse credit card statements into structured JSON",
		Long: `stmtparse extracts card identity, billing month, balances, reward points
and itemized transactions out of credit card statements.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				viper.Set("target", args[0])
				return parseHandler(cmd, []string{})
			}
			return cmd.Help()
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "pattern override file (default is ./.stmtparse.yaml or $HOME/.stmtparse.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringP("password", "p", "", "password for encrypted statements")
	rootCmd.PersistentFlags().Bool("pretty", false, "indent JSON output")
	viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	viper.BindPFlag("pretty", rootCmd.PersistentFlags().Lookup("pretty"))
}

func initLogging() {
	if !verbose {
		logrus.SetOutput(io.Discard)
		return
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
}

// initConfig loads the embedded pattern library and merges the user file,
// if any, on top of it.
func initConfig() {
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewReader(patterns.DefaultYAML)); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading embedded patterns: %v\n", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".stmtparse")
	}

	viper.SetEnvPrefix("stmtparse")
	viper.AutomaticEnv()

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func newFactory() (*extractor.Factory, error) {
	lib, err := patterns.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return extractor.NewDefaultFactory(lib), nil
}

// fail prints err as a JSON error object and hands it back to cobra.
func fail(cmd *cobra.Command, err error) error {
	printJSON(cmd.OutOrStdout(), extractor.ErrorOutput(err))
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	if viper.GetBool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
