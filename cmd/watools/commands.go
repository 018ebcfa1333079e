package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Abraxas-365/watools/auth"
	"github.com/Abraxas-365/watools/configx"
	"github.com/Abraxas-365/watools/docx"
	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/serverx"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
	cfg     configx.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "watools",
		Short:         "WhatsApp messaging tools for AI agents",
		Long:          "watools exposes the WhatsApp Business send API as schema-validated tools over MCP stdio, HTTP or AWS Lambda.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.envFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path of the .env file to load")

	cmd.AddCommand(
		newStdioCmd(opts),
		newServeCmd(opts),
		newLambdaCmd(opts),
		newToolsCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newStdioCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve the tools as an MCP server on stdin/stdout (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(cmd.Context(), opts)
		},
	}
}

func runStdio(parent context.Context, opts *rootOptions) error {
	ctx, stop := signalContext(parent)
	defer stop()

	env, err := newToolEnv(ctx, opts.cfg)
	if err != nil {
		logx.Error("Failed to start: %v", err)
		return err
	}
	s, err := serverx.NewMCPServer(env.registry)
	if err != nil {
		return err
	}
	return serverx.ServeStdio(ctx, s)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			env, err := newToolEnv(ctx, opts.cfg)
			if err != nil {
				return err
			}

			httpCfg := serverx.HTTPConfig{Registry: env.registry, Metrics: env.metrics}
			if secret := opts.cfg.Get(keyJWTSecret).AsString(); secret != "" {
				tokens, err := auth.NewTokenService(secret, opts.cfg.Get(keyJWTTTL).AsDurationDefault(0))
				if err != nil {
					return err
				}
				httpCfg.Tokens = tokens
			} else {
				logx.Warn("%s is not set, tool routes are not authenticated", keyJWTSecret)
			}

			app, err := serverx.NewHTTPApp(httpCfg)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = opts.cfg.Get(keyHTTPAddr).AsStringDefault(":8080")
			}
			return serverx.ServeHTTP(ctx, app, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	return cmd
}

func newLambdaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an AWS Lambda function handler",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newToolEnv(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			serverx.StartLambda(env.registry)
			return nil
		},
	}
}

func newToolsCmd(opts *rootOptions) *cobra.Command {
	var format, baseURL string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newToolEnv(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}

			var defs any
			switch strings.ToLower(format) {
			case "json", "":
				defs = env.registry.Definitions()
			case "openai":
				defs = env.registry.OpenAITools()
			case "anthropic":
				defs = env.registry.AnthropicTools()
			case "curl":
				secured := opts.cfg.Get(keyJWTSecret).AsString() != ""
				md, err := docx.NewCurlGenerator(baseURL).GenerateMarkdown(docx.ToolsRouter(env.registry, secured))
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			default:
				return fmt.Errorf("unknown format %q (want json, openai, anthropic or curl)", format)
			}
			return writeJSON(cmd.OutOrStdout(), defs)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json, openai, anthropic or curl")
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "server URL used in curl examples")
	return cmd
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP host",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := auth.NewTokenService(opts.cfg.Get(keyJWTSecret).AsString(), opts.cfg.Get(keyJWTTTL).AsDurationDefault(0))
			if err != nil {
				return fmt.Errorf("%w: set %s", err, keyJWTSecret)
			}
			token, err := tokens.GenerateToken(subject, auth.ScopeTools)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "agent", "token subject")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
