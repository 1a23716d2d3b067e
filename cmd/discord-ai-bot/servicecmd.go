package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/furoxr/discord-ai-bot/internal/app"
)

// program adapts the bot to the system service manager.
type program struct {
	configPath string
}

func (p *program) Start(service.Service) error {
	go func() {
		_ = app.Run(app.RunParams{ConfigPath: p.configPath, Version: version})
	}()
	return nil
}

func (p *program) Stop(service.Service) error {
	return nil
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "service <install|uninstall|start|stop|restart>",
		Short:     "Manage the bot as a system service",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"install", "uninstall", "start", "stop", "restart"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := configPath(cmd)
			if err != nil {
				return err
			}

			svcConfig := &service.Config{
				Name:        "discord-ai-bot",
				DisplayName: "Discord AI Bot",
				Description: "Discord AI bot backed by a chat completion API",
				Arguments:   []string{"start", "--config", cfgPath},
			}
			svc, err := service.New(&program{configPath: cfgPath}, svcConfig)
			if err != nil {
				return fmt.Errorf("creating service: %w", err)
			}

			if err := service.Control(svc, args[0]); err != nil {
				return fmt.Errorf("service %s: %w", args[0], err)
			}
			fmt.Printf("Service %s: done\n", args[0])
			return nil
		},
	}
	return cmd
}
