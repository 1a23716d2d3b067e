package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/furoxr/discord-ai-bot/internal/config"
	"github.com/furoxr/discord-ai-bot/internal/knowledge"
	"github.com/furoxr/discord-ai-bot/internal/openai"
)

func knowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage the Qdrant knowledge base",
	}
	cmd.AddCommand(knowledgeUpdateCmd(), knowledgeQueryCmd(), knowledgeClearCmd())
	return cmd
}

func knowledgeUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <collection> <file>",
		Short: "Upsert a JSON knowledge record into a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, file := args[0], args[1]

			kb, cleanup, err := knowledgeClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			var payload knowledge.Payload
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}

			if err := kb.Upsert(cmd.Context(), collection, payload); err != nil {
				return err
			}
			fmt.Printf("Upserted %q into %s\n", payload.Title, collection)
			return nil
		},
	}
}

func knowledgeQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <collection> <question>",
		Short: "Query a collection for the closest knowledge record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, question := args[0], args[1]

			kb, cleanup, err := knowledgeClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			hit, err := kb.Search(cmd.Context(), collection, question)
			if err != nil {
				return err
			}
			if hit == nil {
				fmt.Println("No match found.")
				return nil
			}
			fmt.Printf("Title:   %s\nURL:     %s\nScore:   %.4f\nContent: %s\n",
				hit.Title, hit.URL, hit.Score, hit.Content)
			return nil
		},
	}
}

func knowledgeClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <collection>",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, cleanup, err := knowledgeClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := kb.Clear(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Cleared collection %s\n", args[0])
			return nil
		},
	}
}

// knowledgeClient builds a knowledge client (and its embedder) from the
// resolved configuration.
func knowledgeClient(cmd *cobra.Command) (*knowledge.Client, func(), error) {
	cfgPath, err := configPath(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, nil, fmt.Errorf("config: openai.api_key is required")
	}

	embedder := openai.NewClient(cfg.OpenAI)
	kb, err := knowledge.NewClient(cfg.Qdrant, embedder)
	if err != nil {
		return nil, nil, err
	}
	return kb, func() { _ = kb.Close() }, nil
}
