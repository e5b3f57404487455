package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/isdmx/questbox/config"
	"github.com/isdmx/questbox/engine"
	"github.com/isdmx/questbox/history"
	"github.com/isdmx/questbox/httpapi"
	"github.com/isdmx/questbox/logger"
	"github.com/isdmx/questbox/mcpserver"
	"github.com/isdmx/questbox/sandbox"
	"github.com/isdmx/questbox/validator"
)

func newServeCmd(c *cli) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the server on the configured transport",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if transport != "" {
				c.cfg.Server.Transport = transport
			}
			app := fx.New(appOptions(c.cfg))
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "", "override server.transport (stdio, http, rest)")
	return cmd
}

// appOptions builds the fx graph for the server.
func appOptions(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),

		fx.Provide(
			logger.NewFromConfig,
			validator.NewFromConfig,
			history.NewFromConfig,
			func(log *zap.Logger, cfg *config.Config) (sandbox.Runner, error) {
				return sandbox.NewRunner(log, cfg)
			},
			func(log *zap.Logger, cfg *config.Config) *sandbox.Sweeper {
				return sandbox.NewSweeper(log, cfg.Sandbox.ScratchDir, cfg.Sandbox.SweepSchedule, cfg.Sandbox.SweepMaxAge)
			},
			func(log *zap.Logger, cfg *config.Config, v *validator.Validator, r sandbox.Runner, h history.History) *engine.Engine {
				return engine.NewFromConfig(log, cfg, v, r, h)
			},
			func(cfg *config.Config, log *zap.Logger, eng *engine.Engine, h history.History) (*mcpserver.MCPServer, error) {
				return mcpserver.New(cfg, log, eng, h)
			},
			func(cfg *config.Config, log *zap.Logger, eng *engine.Engine, h history.History, mcp *mcpserver.MCPServer) *httpapi.Server {
				return httpapi.New(cfg, log, eng, h, httpapi.WithMCPHandler(mcp.Handler()))
			},
		),

		fx.Invoke(registerHooks),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

type hookParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     *zap.Logger
	History    history.History
	Sweeper    *sandbox.Sweeper
	MCP        *mcpserver.MCPServer
	REST       *httpapi.Server
}

func registerHooks(p hookParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error { return p.Sweeper.Start() },
		OnStop: func(context.Context) error {
			p.Sweeper.Stop()
			return nil
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error { return p.History.Close() },
	})

	// serve runs a blocking transport and shuts the app down when it ends.
	serve := func(name string, run func() error) {
		go func() {
			err := run()
			if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
				p.Logger.Error("transport stopped", zap.String("transport", name), zap.Error(err))
				_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				return
			}
			_ = p.Shutdowner.Shutdown()
		}()
	}

	switch p.Config.Server.Transport {
	case "stdio":
		stdioCtx, cancel := context.WithCancel(context.Background())
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(context.Context) error {
				serve("stdio", func() error { return p.MCP.ServeStdio(stdioCtx) })
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
	case "http":
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(context.Context) error {
				serve("http", p.MCP.ServeHTTP)
				return nil
			},
			OnStop: p.MCP.Shutdown,
		})
	case "rest":
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(context.Context) error {
				serve("rest", p.REST.Start)
				return nil
			},
			OnStop: p.REST.Shutdown,
		})
	}
}
