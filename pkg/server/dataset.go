package server

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hayabusaracing/rig/pkg/events"
	"github.com/hayabusaracing/rig/pkg/metrics"
	"github.com/hayabusaracing/rig/pkg/thrust"
)

// dataset holds the thrust table served by /thrust/impulse. A failed reload
// keeps the previous table.
type dataset struct {
	hub *events.Hub

	mu       sync.RWMutex
	doc      *thrust.ImpulseDocument
	path     string
	loadedAt time.Time
}

func (d *dataset) reload(path string) error {
	t, err := thrust.LoadCSV(path)
	metrics.ObserveReload(rowsOf(t), err)
	if err != nil {
		d.hub.Publish(events.DatasetReloadFailed, events.DatasetReloadFailedEvent{
			Path:  path,
			Error: err.Error(),
			Ts:    time.Now().Unix(),
		})
		return err
	}
	doc := thrust.NewImpulseDocument(t, "")

	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc = doc
	d.path = path
	d.loadedAt = time.Now()

	d.hub.Publish(events.DatasetReloaded, events.DatasetReloadedEvent{
		Path:         path,
		Rows:         t.Len(),
		TotalImpulse: doc.TotalImpulse,
		Ts:           d.loadedAt.Unix(),
	})
	logrus.WithFields(logrus.Fields{
		"path": path,
		"rows": t.Len(),
	}).Debug("thrust dataset reloaded")
	return nil
}

func (d *dataset) current() (*thrust.ImpulseDocument, time.Time) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc, d.loadedAt
}

func rowsOf(t *thrust.Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}

// reloader runs a task on a cron schedule.
type reloader struct {
	c *cron.Cron
}

func newReloader(schedule string, task func() error) (*reloader, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))
	_, err := c.AddFunc(schedule, func() {
		if err := task(); err != nil {
			logrus.Errorf("scheduled reload failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return &reloader{c: c}, nil
}

func (r *reloader) Start() {
	r.c.Start()
}

// Stop stops the schedule and waits for a running reload to finish.
func (r *reloader) Stop() {
	<-r.c.Stop().Done()
}
