package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the knowledge base as an MCP stdio server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kb, cleanup, err := knowledgeClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			s := server.NewMCPServer("discord-ai-bot", version,
				server.WithToolCapabilities(false),
			)

			tool := mcp.NewTool("query_knowledge",
				mcp.WithDescription("Look up the knowledge-base fact closest to a question."),
				mcp.WithString("question",
					mcp.Required(),
					mcp.Description("The question to search for"),
				),
				mcp.WithString("collection",
					mcp.Description("Collection to search (defaults to the configured one)"),
				),
			)
			s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				question, err := req.RequireString("question")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				collection := req.GetString("collection", kb.Collection())

				hit, err := kb.Search(ctx, collection, question)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				if hit == nil {
					return mcp.NewToolResultText("No match found."), nil
				}
				return mcp.NewToolResultText(fmt.Sprintf(
					"Title: %s\nURL: %s\nScore: %.4f\n\n%s",
					hit.Title, hit.URL, hit.Score, hit.Content,
				)), nil
			})

			return server.ServeStdio(s)
		},
	}
}
