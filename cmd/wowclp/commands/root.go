package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/livp123/wowclp/internal/config"
	"github.com/livp123/wowclp/internal/runtime"
	"github.com/livp123/wowclp/internal/utils/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel string
	envFiles []string
}

// app carries the state prepared by the root command for its children.
type app struct {
	flags globalFlags
	cfg   *config.Config
}

// NewRootCmd builds the command tree.
// NewRootCmd 构建命令树。
func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:   "wowclp",
		Short: "WoW 3.3.5 combat log parser",
		// Short: WoW 3.3.5 战斗日志解析器
		Long: `wowclp tokenizes and decodes World of Warcraft 3.3.5 combat logs
into structured events, as JSON lines or colored text.
wowclp 将 WoW 3.3.5 战斗日志分词并解码为结构化事件。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Config file path
	// 配置文件路径
	root.PersistentFlags().StringVarP(&runtime.ConfigPath, "config", "c", "", fmt.Sprintf("Path to configuration file (default: %s)", config.DefaultConfigPath))
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	root.PersistentFlags().StringSliceVar(&a.flags.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the config")
	root.PersistentFlags().BoolVar(&runtime.NoColor, "no-color", false, "Disable colored output")

	root.AddCommand(a.newParseCmd())
	root.AddCommand(a.newTailCmd())
	root.AddCommand(a.newSchemaCmd())
	root.AddCommand(a.newValidateCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(newVersionCmd())

	root.CompletionOptions.DisableDescriptions = true
	return root
}

// setup loads .env files and the config, then initializes logging.
// setup 加载 .env 与配置文件，并初始化日志。
func (a *app) setup(cmd *cobra.Command) error {
	config.LoadEnv(a.flags.envFiles...)
	if os.Getenv("NO_COLOR") != "" {
		runtime.NoColor = true
	}

	cm := config.NewConfigManager(config.ResolveConfigPath(runtime.ConfigPath))
	result, err := cm.LoadConfig()
	if err != nil {
		return err
	}
	cfg := cm.GetConfig()
	if a.flags.logLevel != "" {
		cfg.Logging.Level = a.flags.logLevel
	}

	logger.Init(cfg.Logging)
	log := logger.Get(context.Background())
	for _, w := range result.Warnings {
		log.Warnf("[WARN]  Config %s: %s (%v)", w.Field, w.Message, w.Value)
	}
	log.Debugf("[CONFIG] Loaded configuration from %s", cm.GetConfigPath())

	a.cfg = cfg
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
