// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hexya-erp/quickboard/src/tools/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log logging.Logger

// QuickboardCmd is the base 'quickboard' command of the commander
var QuickboardCmd = &cobra.Command{
	Use:   "quickboard",
	Short: "Quickboard generates dashboards from business models",
	Long: `Quickboard inspects the fields of business models and generates
a dashboard of counters, charts and top lists for them.`,
}

func init() {
	log = logging.GetLogger("init")
	cobra.OnInitialize(initConfig)

	QuickboardCmd.PersistentFlags().StringP("config", "c", "", "Alternate configuration file to read. Defaults to $HOME/.quickboard/")
	viper.BindPFlag("ConfigFileName", QuickboardCmd.PersistentFlags().Lookup("config"))

	QuickboardCmd.PersistentFlags().StringP("log-level", "L", "info", "Log level. Should be one of 'debug', 'info', 'warn', 'error' or 'crit'")
	viper.BindPFlag("LogLevel", QuickboardCmd.PersistentFlags().Lookup("log-level"))
	QuickboardCmd.PersistentFlags().String("log-file", "", "File to which the log will be written")
	viper.BindPFlag("LogFile", QuickboardCmd.PersistentFlags().Lookup("log-file"))
	QuickboardCmd.PersistentFlags().BoolP("log-stdout", "o", false, "Enable stdout logging. Use for development or debugging.")
	viper.BindPFlag("LogStdout", QuickboardCmd.PersistentFlags().Lookup("log-stdout"))
	QuickboardCmd.PersistentFlags().Bool("debug", false, "Enable server debug mode for development")
	viper.BindPFlag("Debug", QuickboardCmd.PersistentFlags().Lookup("debug"))

	QuickboardCmd.PersistentFlags().String("data-dir", "", "Path to the directory where Quickboard should store its data")
	viper.BindPFlag("DataDir", QuickboardCmd.PersistentFlags().Lookup("data-dir"))

	QuickboardCmd.PersistentFlags().String("db-driver", "postgres", "Database driver to use")
	viper.BindPFlag("DB.Driver", QuickboardCmd.PersistentFlags().Lookup("db-driver"))
	QuickboardCmd.PersistentFlags().String("db-sslmode", "disable", "Database driver sslmode")
	viper.BindPFlag("DB.SSLMode", QuickboardCmd.PersistentFlags().Lookup("db-sslmode"))
	QuickboardCmd.PersistentFlags().String("db-host", "/var/run/postgresql",
		"The database host to connect to. Values that start with / are for unix domain sockets directory")
	viper.BindPFlag("DB.Host", QuickboardCmd.PersistentFlags().Lookup("db-host"))
	QuickboardCmd.PersistentFlags().String("db-port", "5432", "Database port. Value is ignored if db-host is not set")
	viper.BindPFlag("DB.Port", QuickboardCmd.PersistentFlags().Lookup("db-port"))
	QuickboardCmd.PersistentFlags().String("db-user", "", "Database user. Defaults to current user")
	viper.BindPFlag("DB.User", QuickboardCmd.PersistentFlags().Lookup("db-user"))
	QuickboardCmd.PersistentFlags().String("db-password", "", "Database password. Leave empty when connecting through socket")
	viper.BindPFlag("DB.Password", QuickboardCmd.PersistentFlags().Lookup("db-password"))
	QuickboardCmd.PersistentFlags().String("db-name", "quickboard", "Database name")
	viper.BindPFlag("DB.Name", QuickboardCmd.PersistentFlags().Lookup("db-name"))

	QuickboardCmd.PersistentFlags().String("registry-file", "",
		"YAML file describing the models. When set, no database is used and items are kept in memory")
	viper.BindPFlag("Registry.File", QuickboardCmd.PersistentFlags().Lookup("registry-file"))
	QuickboardCmd.PersistentFlags().String("date-field", "create_date", "Field used to filter records by date in item data")
	viper.BindPFlag("Quickboard.DateField", QuickboardCmd.PersistentFlags().Lookup("date-field"))

	QuickboardCmd.PersistentFlags().StringSlice("kafka-brokers", []string{}, "Comma separated list of Kafka brokers to publish quickboard events to")
	viper.BindPFlag("Bus.Kafka.Brokers", QuickboardCmd.PersistentFlags().Lookup("kafka-brokers"))
	QuickboardCmd.PersistentFlags().String("kafka-topic", "quickboard", "Kafka topic of quickboard events")
	viper.BindPFlag("Bus.Kafka.Topic", QuickboardCmd.PersistentFlags().Lookup("kafka-topic"))
	QuickboardCmd.PersistentFlags().Duration("kafka-timeout", 0, "Timeout of each Kafka write. Defaults to 5s")
	viper.BindPFlag("Bus.Kafka.Timeout", QuickboardCmd.PersistentFlags().Lookup("kafka-timeout"))
}

func initConfig() {
	// Variables of a .env file in the working directory do not override the environment
	if err := godotenv.Load(); err == nil {
		log.Debug("Environment loaded from .env file")
	}
	viper.SetEnvPrefix("QUICKBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	cfgFile := viper.GetString("ConfigFileName")
	if runtime.GOOS != "windows" {
		viper.AddConfigPath("/etc/quickboard")
	}

	osUser, err := user.Current()
	if err != nil {
		log.Panic("Unable to retrieve current user", "error", err)
	}
	defaultQuickboardDir := filepath.Join(osUser.HomeDir, ".quickboard")
	viper.SetDefault("DataDir", defaultQuickboardDir)
	viper.AddConfigPath(defaultQuickboardDir)
	viper.AddConfigPath(".")

	viper.SetConfigName("quickboard")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	err = viper.ReadInConfig()
	if err != nil {
		log.Warn("Error while loading configuration file", "error", err)
	}
}
