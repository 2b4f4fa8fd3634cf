// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file utilities",
	Long:  `Quickboard configuration file (quickboard.toml) utilities`,
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Scaffold a Quickboard configuration file",
	Long: `Create a Quickboard configuration file quickboard.toml in the current directory. Use the -c flag to specify another destination file.
All configuration parameters passed as environment variables or as flags will be set in the config file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfgFile, err := scaffoldConfig(viper.GetString("ConfigFileName"))
		if err != nil {
			log.Panic("Unable to write configuration file", "file", cfgFile, "error", err)
		}
		log.Info("Configuration file written", "file", cfgFile)
	},
}

// scaffoldConfig writes the current configuration to cfgFile, or to
// quickboard.toml in the working directory if cfgFile is empty. The
// session key is never written. It returns the path of the written file.
func scaffoldConfig(cfgFile string) (string, error) {
	if cfgFile == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		cfgFile = filepath.Join(cwd, "quickboard.toml")
	}
	settings := viper.AllSettings()
	if srv, ok := settings["server"].(map[string]interface{}); ok {
		delete(srv, "sessionkey")
	}
	scaffold := viper.New()
	if err := scaffold.MergeConfigMap(settings); err != nil {
		return cfgFile, err
	}
	return cfgFile, scaffold.WriteConfigAs(cfgFile)
}

func init() {
	QuickboardCmd.AddCommand(configCmd)
	configCmd.AddCommand(scaffoldCmd)
}
