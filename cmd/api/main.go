package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title           Accounts API
// @version         1.0
// @description     User accounts: registration, sign-in and owner-only profile management.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token returned by /auth/signin.

func main() {
	rootCmd := &cobra.Command{
		Use:           "accounts-api",
		Short:         "User accounts REST API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}

	rootCmd.AddCommand(serveCmd, newMigrateCmd())

	// Allow running without subcommand (default to serve)
	rootCmd.RunE = serveCmd.RunE

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
