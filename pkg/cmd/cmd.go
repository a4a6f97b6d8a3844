// Package cmd 提供 xianshiji 命令行：启动服务、查看配置、数据库迁移与手动执行后台任务.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/xianshiji/pkg/configs"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "xianshiji",
		Short: "Household food inventory and recipe service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// serve 自行加载配置
			if cmd.Name() == serveCmd.Name() || cmd.Name() == versionCmd.Name() {
				return nil
			}

			return configs.InitConfig(configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print verbose output")

	registerServeCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
	registerJanitorCommands()
	registerVersionCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
