package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/livp123/wowclp/internal/config"
	"github.com/livp123/wowclp/internal/runtime"
	"github.com/livp123/wowclp/internal/utils/logger"
	errs "github.com/livp123/wowclp/pkg/errors"
)

func (a *app) newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file",
		// Short: 写入配置文件
		Long: `Write the active configuration, defaults plus environment overrides,
to the --config path so it can be edited.`,
		// Long: 将当前配置（默认值加环境变量覆盖）写入 --config 路径以便编辑
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolveConfigPath(runtime.ConfigPath)
			if _, err := os.Stat(path); err == nil && !force {
				return errs.NewConfigError("path", fmt.Errorf("%s already exists, use --force to overwrite", path))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cm := config.NewConfigManager(path)
			cm.UpdateConfig(a.cfg)
			if err := cm.SaveConfig(); err != nil {
				return fmt.Errorf("failed to save config %s: %w", path, err)
			}
			logger.Get(cmd.Context()).Infof("[CONFIG] Wrote configuration to %s", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
