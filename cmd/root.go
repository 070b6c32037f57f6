// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/scalpel-e2e/internal/artifacts"
	"github.com/xkilldash9x/scalpel-e2e/internal/config"
	"github.com/xkilldash9x/scalpel-e2e/internal/observability"
)

// annotationArtifacts marks commands that write screenshots and a log file.
const annotationArtifacts = "scalpel-e2e/artifacts"

type contextKey string

const runtimeKey contextKey = "runtime"

// runtime is what PersistentPreRunE resolves for the command being run.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *artifacts.Store
}

// flagBindings maps flag names to configuration keys. A binding applies only
// when the running command defines the flag.
var flagBindings = map[string]string{
	"log-level": "logger.level",
	"base-url":  "web.base_url",
	"browser":   "web.browser",
	"device":    "web.device",
	"headless":  "web.is_headless",
	"api-base":  "api.base_url",
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	var iniPath string

	root := &cobra.Command{
		Use:           "scalpel-e2e",
		Short:         "End-to-end checks for the cat-facts API and the mobile Twitch site.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			cfg, err := initializeConfig(cmd, v, iniPath)
			if err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			rt := &runtime{cfg: cfg, store: artifacts.NewStore(cfg.Artifacts.Dir)}
			if cmd.Annotations[annotationArtifacts] == "true" {
				if err := rt.store.EnsureDir(); err != nil {
					return err
				}
				if cfg.Logger.LogFile == "" {
					cfg.Logger.LogFile = rt.store.LogFilePath(time.Now())
				}
			}

			rt.logger = observability.New(cfg.Logger, zapcore.AddSync(cmd.ErrOrStderr()))
			rt.logger.Debug("Configuration resolved.",
				zap.String("command", cmd.Name()),
				zap.String("version", Version),
				zap.String("ini", iniPath),
				zap.String("artifacts", rt.store.Dir()),
			)

			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey, rt))
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	root.PersistentFlags().StringVarP(&iniPath, "ini-config", "c", "", "path to an ini configuration file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newURLCmd())
	root.AddCommand(newAPICmd())
	root.AddCommand(newWebCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// initializeConfig layers env, ini and flags over the defaults already set on v.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, iniPath string) (*config.Config, error) {
	if err := config.BindEnv(v); err != nil {
		return nil, err
	}

	for name, key := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	if flag := cmd.Flags().Lookup("window-size"); flag != nil && flag.Changed {
		width, height, err := config.ParseWindowSize(flag.Value.String())
		if err != nil {
			return nil, err
		}
		v.Set("web.width", width)
		v.Set("web.height", height)
	}

	return config.Load(v, iniPath)
}

// runtimeFrom returns the state resolved by the root command.
func runtimeFrom(cmd *cobra.Command) (*runtime, error) {
	rt, ok := cmd.Context().Value(runtimeKey).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("command runtime not initialized")
	}
	return rt, nil
}

// Execute runs the command tree with ctx and reports any failure on stderr.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		}
		return err
	}
	return nil
}
