package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/whiskies/internal/app"
	"github.com/vladislavdragonenkov/whiskies/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/whiskies/internal/version"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd собирает CLI: без подкоманды запускается HTTP-сервис каталога.
func newRootCmd(stdout io.Writer) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "whisky-service",
		Short:        "Whisky catalog HTTP service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath, stdout)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv(app.EnvConfigPath),
		"path to YAML config (or set "+app.EnvConfigPath+")")

	rootCmd.AddCommand(newVersionCmd(), newEventsCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "whisky-service %s\n", version.String())
		},
	}
}

// newEventsCmd читает события каталога из Kafka и пишет их в лог.
func newEventsCmd() *cobra.Command {
	var (
		brokers       string
		groupID       string
		topic         string
		fromBeginning bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail catalog change events from Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := splitBrokers(brokers)
			if len(list) == 0 {
				return fmt.Errorf("--brokers or %s is required", app.EnvKafkaBrokers)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			consumer, err := kafka.NewConsumer(list, groupID, []string{topic}, fromBeginning,
				func(_ context.Context, event kafka.WhiskyEvent) error {
					return printEvent(out, event)
				})
			if err != nil {
				return err
			}
			if err := consumer.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return consumer.Stop()
		},
	}

	cmd.Flags().StringVar(&brokers, "brokers", os.Getenv(app.EnvKafkaBrokers), "comma-separated Kafka brokers")
	cmd.Flags().StringVar(&groupID, "group", "whisky-events-tail", "consumer group id")
	cmd.Flags().StringVar(&topic, "topic", kafka.TopicCatalogEvents, "topic with catalog events")
	cmd.Flags().BoolVar(&fromBeginning, "from-beginning", false, "read the topic from the oldest offset")
	return cmd
}

func serve(parent context.Context, configPath string, stdout io.Writer) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	closer, err := app.ConfigureLogging(log.StandardLogger(), cfg.Log, stdout)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() {
			if err := closer.Close(); err != nil {
				log.WithError(err).Warn("failed to close log file")
			}
		}()
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":      cfg.HTTPAddr,
		"storage_driver": cfg.StorageDriver,
		"version":        version.GetVersion(),
	}).Info("запускаем whisky-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("приложение завершилось с ошибкой")
		return err
	}

	log.Info("whisky-service остановлен")
	return nil
}

func printEvent(out io.Writer, event kafka.WhiskyEvent) error {
	_, err := fmt.Fprintf(out, "%s %s id=%d name=%q origin=%q event_id=%s\n",
		event.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), event.EventType,
		event.WhiskyID, event.Name, event.Origin, event.EventID)
	return err
}

func splitBrokers(raw string) []string {
	var result []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
