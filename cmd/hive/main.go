// Command hive hosts GraphQL and REST endpoints generated from the
// configured database workers, and runs task workers on demand.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/omnihive/backend/internal/infrastructure/config"
	"github.com/omnihive/backend/pkg/constants"
)

var (
	// Build information, set with -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	envFile      string
	settingsFile string
)

var rootCmd = &cobra.Command{
	Use:           "hive",
	Short:         "Hive GraphQL and REST host",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hive %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
		fmt.Printf("Go version: %s, OS/Arch: %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default .env, or OH_ENV_FILE)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "Path to the server settings file (overrides OH_SERVER_SETTINGS)")

	rootCmd.AddCommand(serverCmd, taskCmd, versionCmd)
}

// loadRuntime reads the env file and OH_ variables, then applies flags
func loadRuntime() (config.Runtime, error) {
	path := envFile
	if path == "" {
		path = os.Getenv(constants.EnvFile)
	}
	if err := config.LoadEnvFile(path); err != nil {
		return config.Runtime{}, fmt.Errorf("failed to load env file: %w", err)
	}
	rt := config.FromEnv()
	if settingsFile != "" {
		rt.SettingsFile = settingsFile
	}
	return rt, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
