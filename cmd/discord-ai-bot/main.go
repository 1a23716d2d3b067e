// Package main is the entry point for the discord-ai-bot CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/furoxr/discord-ai-bot/internal/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "discord-ai-bot",
		Short:         "A Discord AI bot backed by a chat completion API and a Qdrant knowledge base",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.AddCommand(
		startCmd(),
		knowledgeCmd(),
		configCmd(),
		serviceCmd(),
		mcpCmd(),
		versionCmd(),
	)
	return root
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the Discord bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := configPath(cmd)
			if err != nil {
				return err
			}
			return app.Run(app.RunParams{
				ConfigPath: cfgPath,
				Version:    version,
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("discord-ai-bot %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// configPath returns the --config flag value or searches standard
// locations: $XDG_CONFIG_HOME/discord-ai-bot/config.yaml → ./config.yaml
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}

	var candidates []string
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "discord-ai-bot", "config.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "discord-ai-bot", "config.yaml"))
	}
	candidates = append(candidates, "config.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
