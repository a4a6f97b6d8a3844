package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/yeisme/xianshiji/pkg/configs"
	mq "github.com/yeisme/xianshiji/pkg/internal/storage/mq"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/queue"
)

var (
	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "Message queue related commands",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered mq types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered mq types:")

			for _, t := range mq.GetRegisteredMQTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Topics:")

			for _, t := range queue.AllTopics {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+t)
			}
		},
	}

	mqTailCmd = &cobra.Command{
		Use:   "tail [topic...]",
		Short: "print domain events until interrupted, all topics by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Init()

			topics := args
			if len(topics) == 0 {
				topics = queue.AllTopics
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := mq.New(ctx, &configs.GetConfig().MQ)
			if err != nil {
				return err
			}
			defer client.Close()

			var wg conc.WaitGroup

			for _, topic := range topics {
				ch, err := client.Subscribe(ctx, topic)
				if err != nil {
					return fmt.Errorf("subscribe %s: %w", topic, err)
				}

				wg.Go(func() {
					for msg := range ch {
						env, err := queue.ParseWatermillMessage[map[string]any](msg)
						if err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "%s: undecodable message %s: %v\n", topic, msg.UUID, err)
						} else {
							fmt.Fprintf(cmd.OutOrStdout(), "%s %s %v\n",
								env.Header.OccurredAt.Format(time.RFC3339), topic, env.Payload)
						}

						msg.Ack()
					}
				})
			}

			wg.Wait()

			return nil
		},
	}
)

// registerMQCommands 注册 MQ 相关命令.
func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)
	mqCmd.AddCommand(mqListCmd, mqTailCmd)
}
