// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/quickboard/src/bus"
	"github.com/hexya-erp/quickboard/src/controllers"
	"github.com/hexya-erp/quickboard/src/quickboard"
	"github.com/hexya-erp/quickboard/src/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Quickboard server",
	Long:  `Start the Quickboard HTTP server serving the dashboard routes.`,
	Run: func(cmd *cobra.Command, args []string) {
		StartServer(cmd.Context())
	},
}

// StartServer starts the Quickboard server.
func StartServer(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	setupLogger()
	env := openEnvironment(ctx)
	defer env.Close()

	localBus := bus.New()
	notifier, closeNotifier := setupNotifier(localBus)
	defer closeNotifier()

	srv := server.New(viper.GetString("Server.SessionKey"))
	setupDebug(srv)
	controllers.BootStrap(srv, &controllers.Services{
		Registry:  env.registry,
		Store:     env.store,
		Generator: quickboard.NewGenerator(env.registry, env.store, notifier),
		Data:      env.data,
		Bus:       localBus,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx, listenConfig()); err != nil {
		log.Panic("Quickboard server failed", "error", err)
	}
}

// listenConfig returns the server listening parameters from the configuration
func listenConfig() server.Listen {
	return server.Listen{
		Address:     fmt.Sprintf("%s:%s", viper.GetString("Server.Interface"), viper.GetString("Server.Port")),
		Certificate: viper.GetString("Server.Certificate"),
		PrivateKey:  viper.GetString("Server.PrivateKey"),
		Domain:      viper.GetString("Server.Domain"),
		CacheDir:    filepath.Join(viper.GetString("DataDir"), "autotls"),
	}
}

// setupDebug updates the server for debugging if Debug is enabled
func setupDebug(srv *server.Server) {
	if !viper.GetBool("Debug") {
		return
	}
	gin.SetMode(gin.DebugMode)
	pprof.Register(srv.Engine)
}

func init() {
	serverCmd.PersistentFlags().StringP("interface", "i", "", "Interface on which the server should listen. Empty string is all interfaces")
	viper.BindPFlag("Server.Interface", serverCmd.PersistentFlags().Lookup("interface"))
	serverCmd.PersistentFlags().StringP("port", "p", "8080", "Port on which the server should listen.")
	viper.BindPFlag("Server.Port", serverCmd.PersistentFlags().Lookup("port"))
	serverCmd.PersistentFlags().StringP("domain", "d", "", "Domain name of the server. When set, interface and port are set to 0.0.0.0:443 and it will automatically get an HTTPS certificate from Letsencrypt")
	viper.BindPFlag("Server.Domain", serverCmd.PersistentFlags().Lookup("domain"))
	serverCmd.PersistentFlags().StringP("certificate", "C", "", "Certificate file for HTTPS. If neither certificate nor domain is set, the server will run on plain HTTP. When certificate is set, private-key must also be set.")
	viper.BindPFlag("Server.Certificate", serverCmd.PersistentFlags().Lookup("certificate"))
	serverCmd.PersistentFlags().StringP("private-key", "K", "", "Private key file for HTTPS.")
	viper.BindPFlag("Server.PrivateKey", serverCmd.PersistentFlags().Lookup("private-key"))
	serverCmd.PersistentFlags().String("session-key", "", "Key authenticating session cookies. A random key is used if empty.")
	viper.BindPFlag("Server.SessionKey", serverCmd.PersistentFlags().Lookup("session-key"))
	QuickboardCmd.AddCommand(serverCmd)
}
