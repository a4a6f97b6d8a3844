package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/jobs"
	"github.com/yeisme/xianshiji/pkg/internal/storage"
	"github.com/yeisme/xianshiji/pkg/log"
)

var (
	janitorCmd = &cobra.Command{
		Use:   "janitor",
		Short: "background maintenance jobs",
	}

	janitorRunCmd = &cobra.Command{
		Use:   "run",
		Short: "reconcile persisted food statuses once",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Init()

			mgr, err := storage.Init(cmd.Context())
			if err != nil {
				return err
			}
			defer mgr.Close()

			report, err := jobs.RunStatusReconcile(cmd.Context(), mgr)
			if err != nil {
				return err
			}

			b, err := sonic.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	janitorTrashCmd = &cobra.Command{
		Use:   "trash",
		Short: "purge trash entries older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Init()

			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = configs.GetConfig().Janitor.TrashRetentionDays
			}

			if days <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "trash retention disabled")
				return nil
			}

			mgr, err := storage.Init(cmd.Context())
			if err != nil {
				return err
			}
			defer mgr.Close()

			n, err := jobs.RunTrashAutoClean(cmd.Context(), mgr, days)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "purged %d food items older than %d days\n", n, days)

			return nil
		},
	}
)

// registerJanitorCommands 注册后台任务命令.
func registerJanitorCommands() {
	janitorTrashCmd.Flags().Int("days", 0, "retention days, defaults to janitor.trash_retention_days")

	janitorCmd.AddCommand(janitorRunCmd, janitorTrashCmd)
	rootCmd.AddCommand(janitorCmd)
}
