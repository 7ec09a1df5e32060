package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"injuryshield/internal/alert"
	"injuryshield/internal/config"
	"injuryshield/internal/detect"
	"injuryshield/internal/metrics"
	"injuryshield/internal/monitor"
	"injuryshield/internal/pipeline"
	"injuryshield/internal/ppe"
	"injuryshield/internal/spool"
	"injuryshield/internal/utils"
)

var monitorSource string

var monitorCommand = &cobra.Command{
	Use:   "monitor",
	Short: "Watch a camera or video file for PPE violations",
	Run: func(cmd *cobra.Command, args []string) {
		runMonitor()
	},
}

func init() {
	monitorCommand.Flags().StringVarP(&monitorSource, "source", "s", "", "Camera index or video file, overrides monitor.source")
}

// buildPolicy maps the configured PPE names onto categories. Aliases such
// as "hardhat" are accepted.
func buildPolicy(conf config.DetectionConfig) (ppe.Policy, error) {
	policy := ppe.DefaultPolicy()
	policy.MinConfidence = conf.ConfThreshold
	if conf.MinOverlap > 0 {
		policy.MinOverlap = conf.MinOverlap
	}
	if len(conf.RequiredPPE) > 0 {
		policy.Required = policy.Required[:0:0]
		for _, name := range conf.RequiredPPE {
			c := ppe.Category(ppe.NormalizeLabel(name))
			if !c.Valid() {
				return ppe.Policy{}, fmt.Errorf("unknown ppe category %q", name)
			}
			policy.Required = append(policy.Required, c)
		}
	}
	return policy, nil
}

func newDispatcher(conf config.AlertConfig) *alert.Dispatcher {
	cooldown := time.Duration(conf.CooldownSeconds) * time.Second
	return alert.NewDispatcher(alert.NewManager(cooldown, alert.SystemClock{}), alert.NewNotifier(conf))
}

// newSink returns where frame reports go and a func releasing whatever it
// opened. With the nsq sink reports are spooled locally and a background
// publisher drains the spool.
func newSink(ctx context.Context, conf *config.Config, wg *sync.WaitGroup) (pipeline.Sink, func(), error) {
	switch conf.Monitor.Sink {
	case "", "store":
		_, closeDB := openDB(conf)
		return pipeline.StoreSink{}, closeDB, nil
	case "nsq":
		sp, err := spool.Open(conf.SpoolDir())
		if err != nil {
			return nil, nil, fmt.Errorf("open spool: %w", err)
		}
		producer, err := nsq.NewProducer(conf.NSQ.NSQDAddr, nsq.NewConfig())
		if err != nil {
			sp.Close()
			return nil, nil, fmt.Errorf("create nsq producer: %w", err)
		}
		pub := spool.NewPublisher(sp, producer, conf.NSQ.Topic, time.Second)
		wg.Add(1)
		go func() {
			defer wg.Done()
			pub.Run(ctx)
		}()
		return sp, func() {
			producer.Stop()
			sp.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown monitor sink %q", conf.Monitor.Sink)
	}
}

func runMonitor() {
	conf := loadConfig()
	if monitorSource != "" {
		conf.Monitor.Source = monitorSource
	}

	labels, err := detect.LoadLabels(conf.Detection.Labels, conf.Detection.LabelsFile)
	if err != nil {
		logrus.Fatalf("load labels error, %v", err)
	}
	policy, err := buildPolicy(conf.Detection)
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	sink, release, err := newSink(ctx, conf, &wg)
	if err != nil {
		logrus.Fatal(err)
	}
	defer release()

	m := metrics.New()
	p := pipeline.New(pipeline.Config{
		Camera:              conf.Monitor.Camera,
		Policy:              policy,
		LogInterval:         time.Duration(conf.Monitor.LogIntervalSeconds) * time.Second,
		SaveSnapshot:        conf.Monitor.SaveSnapshot,
		SnapshotConsecutive: conf.Monitor.SnapshotConsecutive,
	}, newDispatcher(conf.Alert), sink, m)

	detector, err := monitor.NewTritonDetector(conf.Triton, labels, conf.Detection.ConfThreshold)
	if err != nil {
		logrus.Fatalf("create triton client error, %v", err)
	}

	var minioCli *minio.Client
	if conf.S3.Enabled {
		minioCli, err = utils.NewMinioClient(conf.S3)
		if err != nil {
			logrus.Fatalf("create minio client error, %v", err)
		}
		if err := utils.EnsureBucket(ctx, minioCli, conf.S3.Bucket, conf.S3.Region); err != nil {
			logrus.Fatalf("ensure bucket %s error, %v", conf.S3.Bucket, err)
		}
	}

	var preview *monitor.Preview
	if conf.Monitor.PreviewAddr != "" {
		preview = monitor.NewPreview(conf.Monitor.PreviewAddr, m)
		go preview.Start()
		defer preview.Shutdown()
	}

	mon, err := monitor.New(conf, detector, p, minioCli, preview, m)
	if err != nil {
		logrus.Fatalf("create monitor error, %v", err)
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-termChan
		logrus.Infof("monitor is shutting down...")
		cancel()
	}()

	if err := mon.Run(ctx); err != nil {
		logrus.Errorf("monitor stopped with error, %v", err)
	}
	cancel()
	wg.Wait()
}
