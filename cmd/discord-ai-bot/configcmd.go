package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/furoxr/discord-ai-bot/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Println("Configuration OK")
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Interactively create a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}

			var (
				discordToken string
				openaiKey    string
				model        = "gpt-3.5-turbo"
				qdrantHost   = "localhost"
			)

			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Discord bot token").
					EchoMode(huh.EchoModePassword).
					Value(&discordToken),
				huh.NewInput().
					Title("OpenAI API key").
					EchoMode(huh.EchoModePassword).
					Value(&openaiKey),
				huh.NewInput().
					Title("Completion model").
					Value(&model),
				huh.NewInput().
					Title("Qdrant host").
					Value(&qdrantHost),
			))
			if err := form.Run(); err != nil {
				return err
			}

			cfg := map[string]any{
				"log_level":     "info",
				"system_prompt": "You are a helpful assistant.",
				"discord":       map[string]any{"token": discordToken},
				"openai": map[string]any{
					"api_key": openaiKey,
					"model":   model,
				},
				"qdrant": map[string]any{"host": qdrantHost},
				"cache": map[string]any{
					"max_users":   256,
					"max_history": 20,
				},
			}
			raw, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}

			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o700); err != nil {
					return fmt.Errorf("creating %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(path, raw, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}
