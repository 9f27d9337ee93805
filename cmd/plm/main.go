package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ruminaider/plm/internal/logging"
	"github.com/ruminaider/plm/internal/paths"
)

var version = "0.1.0-dev"

// projectRoot is the --project persistent flag: the project-scoped
// directory tree components are placed under. Defaults to the working
// directory, matching the original implementation's project-scope
// resolution (the project-root is always the caller's cwd unless
// overridden).
var projectRoot string

var rootCmd = &cobra.Command{
	Use:   "plm",
	Short: "A package manager for AI-assistant plugins",
	Long:  "plm fetches, caches, and deploys plugins from GitHub repositories or curated marketplaces into the directory layouts Codex, Copilot, and other AI assistants expect.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plm %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project", "", "project root (defaults to the working directory)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(targetCmd)
	rootCmd.AddCommand(marketplaceCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(managedCmd)
}

// resolvedProjectRoot returns the --project flag value, or the working
// directory when unset.
func resolvedProjectRoot() (string, error) {
	if projectRoot != "" {
		return projectRoot, nil
	}
	return os.Getwd()
}

func main() {
	_ = godotenv.Load()

	if err := logging.Init(".plm"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: debug logging disabled: %v\n", err)
	}
	defer func() { _ = logging.Sync() }()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", describeErr(err))
		os.Exit(1)
	}
}

// describeErr appends the error taxonomy's remediation hint, when one of
// ours, to the bare message cobra would otherwise print alone.
func describeErr(err error) string {
	kind, ok := errKind(err)
	if !ok {
		return err.Error()
	}
	hint := errRemediation(kind)
	if hint == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s (%s)", err.Error(), hint)
}

// ensureRootDir creates ~/.plm (paths.RootDir) if it is missing; the
// install and target commands call it before writing beneath it.
func ensureRootDir() error {
	return os.MkdirAll(paths.RootDir(), 0o755)
}
