package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"injuryshield/internal/consumer"
	"injuryshield/internal/metrics"
	"injuryshield/internal/pipeline"
)

var consumeCommand = &cobra.Command{
	Use:   "consume",
	Short: "Consume frame reports from NSQ into the database",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()

		_, closeDB := openDB(conf)
		defer closeDB()

		c, err := consumer.NewConsumer(conf.NSQ, pipeline.StoreSink{}, metrics.New())
		if err != nil {
			logrus.Fatalf("failed to create consumer: %v", err)
		}
		if err := c.Start(); err != nil {
			logrus.Fatalf("failed to start consumer: %v", err)
		}

		termChan := make(chan os.Signal, 1)
		signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

		<-termChan
		logrus.Infof("consumer is shutting down...")
		c.Stop()
	},
}
