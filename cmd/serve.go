package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"injuryshield/internal/metrics"
	"injuryshield/internal/server"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

// @title InjuryShield API
// @version 0.1.0
// @description PPE compliance monitoring: compliance logs, violation events and analytics.
func runServe() {
	conf := loadConfig()
	logrus.Infof("listen on %s, database driver %s, work dir %s", conf.Addr, conf.DB.Driver, conf.WorkDir)

	_, closeDB := openDB(conf)
	defer closeDB()

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	srv, err := server.NewServer(ctx, conf, metrics.New())
	if err != nil {
		logrus.Fatalf("newServer error, %s", err.Error())
	}
	go srv.Start()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("server is shutting down...")
	srv.Shutdown()
}
