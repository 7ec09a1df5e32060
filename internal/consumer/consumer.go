// Package consumer persists compliance reports published by monitors.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"injuryshield/internal/config"
	"injuryshield/internal/dao"
	"injuryshield/internal/metrics"
	"injuryshield/internal/pipeline"
	"injuryshield/pkg/log"
)

// ErrMalformed marks messages that will never succeed and must not be
// requeued.
var ErrMalformed = errors.New("malformed report message")

type Consumer struct {
	conf     config.NSQConfig
	ctx      context.Context
	cancel   context.CancelFunc
	consumer *nsq.Consumer
	sink     pipeline.Sink
	metrics  *metrics.Metrics
	wg       sync.WaitGroup
	logger   *logrus.Entry
}

func NewConsumer(conf config.NSQConfig, sink pipeline.Sink, m *metrics.Metrics) (*Consumer, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger := log.GetLogger(ctx).WithField("component", "consumer")

	nsqConf := nsq.NewConfig()
	nsqConf.MsgTimeout = time.Minute
	nsqConf.MaxInFlight = 10
	nsqConf.MaxAttempts = 5

	consumer, err := nsq.NewConsumer(conf.Topic, conf.Channel, nsqConf)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}

	c := &Consumer{
		conf:     conf,
		ctx:      ctx,
		cancel:   cancel,
		consumer: consumer,
		sink:     sink,
		metrics:  m,
		logger:   logger,
	}

	consumer.AddHandler(c)

	return c, nil
}

// Handle decodes and stores one message body.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var r dao.FrameReport
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	c.logger.WithFields(logrus.Fields{
		"uuid":       r.Uuid,
		"camera":     r.Camera,
		"timestamp":  r.Timestamp,
		"violations": len(r.Violations),
	}).Debug("processing compliance report")

	err := c.sink.Write(ctx, &r)
	c.metrics.ReportResult(err)
	return err
}

func (c *Consumer) HandleMessage(message *nsq.Message) error {
	message.DisableAutoResponse()

	err := c.Handle(c.ctx, message.Body)
	switch {
	case err == nil:
		message.Finish()
	case errors.Is(err, ErrMalformed):
		c.logger.WithError(err).Errorf("drop message %s", message.ID)
		message.Finish()
	default:
		c.logger.WithError(err).Errorf("store report failed, requeue message %s", message.ID)
		message.Requeue(-1)
	}
	return nil
}

func (c *Consumer) Start() error {
	c.logger.Infof("starting NSQ consumer on topic %s", c.conf.Topic)

	err := c.consumer.ConnectToNSQDs(c.conf.NSQDAddrs)
	if err != nil {
		return fmt.Errorf("failed to connect to NSQs: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		c.consumer.Stop()
		<-c.consumer.StopChan
	}()

	return nil
}

func (c *Consumer) Stop() {
	c.cancel()
	c.wg.Wait()
}
