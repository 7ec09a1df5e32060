package alert

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"injuryshield/internal/ppe"
)

// Dispatcher couples the cooldown manager with a notifier. For a given
// violation type the check, the send and the record happen under one lock,
// so concurrent frames cannot both alert inside the same cooldown window.
type Dispatcher struct {
	manager  *Manager
	notifier Notifier
	logger   *logrus.Entry

	mu    sync.Mutex
	locks map[ppe.ViolationType]*sync.Mutex
}

func NewDispatcher(manager *Manager, notifier Notifier) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		notifier: notifier,
		logger:   logrus.WithField("component", "alert"),
		locks:    make(map[ppe.ViolationType]*sync.Mutex),
	}
}

func (d *Dispatcher) lockFor(vt ppe.ViolationType) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[vt]
	if !ok {
		l = &sync.Mutex{}
		d.locks[vt] = l
	}
	return l
}

// Dispatch sends one alert for vt covering events. It returns true only
// when the notifier accepted the message; the cooldown is recorded in that
// case only. A suppressed alert returns false with a nil error.
func (d *Dispatcher) Dispatch(ctx context.Context, vt ppe.ViolationType, events []ppe.Candidate, frameTime time.Time) (bool, error) {
	l := d.lockFor(vt)
	l.Lock()
	defer l.Unlock()

	now := d.manager.Now()
	if !d.manager.ShouldSendAlert(vt, now) {
		d.logger.Debugf("cooldown active for %s", vt)
		return false, nil
	}

	body := FormatAlertMessage(events, frameTime)
	if err := d.notifier.Send(ctx, body); err != nil {
		d.logger.Warnf("send alert for %s failed, %v", vt, err)
		return false, err
	}

	d.manager.RecordAlertSent(vt, now)
	d.logger.Infof("alert sent for %s", vt)
	return true, nil
}
