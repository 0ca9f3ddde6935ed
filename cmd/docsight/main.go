// Command docsight runs the document analysis pipeline from the command
// line: outline extraction and persona-driven section ranking over a set of
// local files, without the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "docsight",
		Short: "Detect document structure and rank sections for a persona",
		Long: `docsight parses documents (pdf, docx, md, html, txt, csv), detects
their heading structure, and ranks the resulting sections against a persona
and a job to be done.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.docsight.yaml)")
	root.PersistentFlags().String("vocab", "", "persona vocabulary YAML file")
	root.PersistentFlags().Bool("pretty", false, "indent JSON output")
	viper.BindPFlag("vocab", root.PersistentFlags().Lookup("vocab"))
	viper.BindPFlag("pretty", root.PersistentFlags().Lookup("pretty"))

	cobra.OnInitialize(initConfig)

	root.AddCommand(newOutlineCmd())
	root.AddCommand(newRankCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".docsight")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("DOCSIGHT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}
