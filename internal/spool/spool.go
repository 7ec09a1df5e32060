// Package spool keeps compliance reports on local disk until they have been
// published to the message bus.
package spool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"injuryshield/internal/dao"
)

const reportKeyPrefix = "report:"

type Spool struct {
	db     *badger.DB
	logger *logrus.Entry
}

// Open opens the spool in dir; an empty dir keeps everything in memory.
func Open(dir string) (*Spool, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Spool{
		db:     db,
		logger: logrus.WithField("component", "spool"),
	}, nil
}

func (s *Spool) Close() error {
	return s.db.Close()
}

func reportKey(r *dao.FrameReport) []byte {
	// zero padded so keys sort by report time
	return []byte(fmt.Sprintf("%s%016d:%s", reportKeyPrefix, r.Timestamp, r.Uuid))
}

// Write implements pipeline.Sink by persisting r locally.
func (s *Spool) Write(ctx context.Context, r *dao.FrameReport) error {
	if err := r.Validate(); err != nil {
		return err
	}
	val, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(reportKey(r), val)
	})
}

type Entry struct {
	Key    []byte
	Report *dao.FrameReport
	Raw    []byte
}

// Pending returns up to limit spooled reports, oldest first. Entries that
// fail to decode are removed.
func (s *Spool) Pending(limit int) ([]Entry, error) {
	var entries []Entry
	var broken [][]byte
	prefix := []byte(reportKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			item := it.Item()
			key := item.KeyCopy(nil)
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			r := &dao.FrameReport{}
			if err := json.Unmarshal(raw, r); err != nil {
				s.logger.WithError(err).Errorf("unmarshal spooled report %s", key)
				broken = append(broken, key)
				continue
			}
			entries = append(entries, Entry{Key: key, Report: r, Raw: raw})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, k := range broken {
		if err := s.Delete(k); err != nil {
			s.logger.WithError(err).Errorf("delete broken report %s", k)
		}
	}
	return entries, nil
}

func (s *Spool) Delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (s *Spool) Len() (int, error) {
	n := 0
	prefix := []byte(reportKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Producer is the publishing half of an NSQ producer.
type Producer interface {
	Publish(topic string, body []byte) error
}

type Publisher struct {
	spool    *Spool
	producer Producer
	topic    string
	interval time.Duration
	logger   *logrus.Entry
}

func NewPublisher(s *Spool, producer Producer, topic string, interval time.Duration) *Publisher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Publisher{
		spool:    s,
		producer: producer,
		topic:    topic,
		interval: interval,
		logger:   logrus.WithField("component", "publisher"),
	}
}

// Flush publishes pending reports in order and deletes each one after the
// bus accepted it. It stops at the first publish error so ordering holds.
func (p *Publisher) Flush() (int, error) {
	entries, err := p.spool.Pending(100)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, e := range entries {
		if err := p.producer.Publish(p.topic, e.Raw); err != nil {
			return sent, fmt.Errorf("publish report %s: %w", e.Report.Uuid, err)
		}
		if err := p.spool.Delete(e.Key); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// Run flushes on every tick until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if n, err := p.Flush(); err != nil {
			p.logger.WithError(err).Errorf("flush spool failed")
		} else if n > 0 {
			p.logger.Infof("published %d reports to %s", n, p.topic)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
