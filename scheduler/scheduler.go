// Package scheduler loads the reference data at startup and runs the
// background jobs: idle chat session purging and data monitoring.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/metrics"
	"github.com/cogitto/cogitto-api/validation"
	"github.com/go-co-op/gocron"
)

const (
	DefaultPurgeInterval   = 5 * time.Minute
	DefaultMonitorInterval = time.Hour
	loadTimeout            = 2 * time.Minute
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// SessionPurger drops chat sessions idle for longer than ttl
type SessionPurger interface {
	PurgeIdle(ttl time.Duration) int
}

type Options struct {
	SessionTTL      time.Duration
	PurgeInterval   time.Duration
	MonitorInterval time.Duration
}

// Scheduler handles the data load and the periodic jobs using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	loader    interfaces.Loader
	validator interfaces.DataValidator
	purger    SessionPurger
	opts      Options
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance. purger may be nil.
func NewScheduler(dataStore interfaces.DataStore, loader interfaces.Loader, purger SessionPurger, opts Options) *Scheduler {
	if opts.PurgeInterval <= 0 {
		opts.PurgeInterval = DefaultPurgeInterval
	}
	if opts.MonitorInterval <= 0 {
		opts.MonitorInterval = DefaultMonitorInterval
	}
	return &Scheduler{
		dataStore: dataStore,
		loader:    loader,
		validator: validation.NewDataValidator(),
		purger:    purger,
		opts:      opts,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial data load and schedules the background jobs
func (s *Scheduler) Start() error {
	if err := s.updateData(); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		return fmt.Errorf("initial data load failed: %w", err)
	}

	if s.purger != nil && s.opts.SessionTTL > 0 {
		_, err := s.scheduler.Every(s.opts.PurgeInterval).WaitForSchedule().Tag("session-purge").Do(s.purgeSessions)
		if err != nil {
			return fmt.Errorf("failed to schedule session purge: %w", err)
		}
	}

	_, err := s.scheduler.Every(s.opts.MonitorInterval).WaitForSchedule().Tag("data-monitor").Do(s.monitorData)
	if err != nil {
		return fmt.Errorf("failed to schedule data monitoring: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// updateData loads, validates and publishes a dataset
func (s *Scheduler) updateData() error {
	// Prevent concurrent updates
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info("Starting reference data load", "source", s.loader.Source())
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	dataset, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	report := s.validator.ReportDataQuality(dataset)
	if report.MedicationsWithoutWarnings > 0 || report.MedicationsWithoutBrands > 0 {
		logging.Warn("Medications with incomplete records",
			"without_warnings", report.MedicationsWithoutWarnings,
			"without_indications", report.MedicationsWithoutIndications,
			"without_brands", report.MedicationsWithoutBrands,
		)
	}

	if err := s.validator.ValidateDataIntegrity(dataset); err != nil {
		return fmt.Errorf("reference data failed validation: %w", err)
	}

	s.dataStore.UpdateData(dataset)
	metrics.ReferenceMedications.Set(float64(len(dataset.Medications)))

	logging.Info("Reference data load completed",
		"duration", time.Since(start).String(),
		"medication_count", len(dataset.Medications),
		"interaction_count", s.dataStore.GetInteractionCount(),
	)
	return nil
}

func (s *Scheduler) purgeSessions() {
	if removed := s.purger.PurgeIdle(s.opts.SessionTTL); removed > 0 {
		logging.Info("Purged idle chat sessions", "count", removed, "ttl", s.opts.SessionTTL.String())
	}
}

// monitorData warns when the catalogue is empty or an update is stuck
func (s *Scheduler) monitorData() {
	if len(s.dataStore.GetMedications()) == 0 {
		logging.Warn("Reference data is empty")
	}
	if s.dataStore.IsUpdating() {
		logging.Warn("Reference data update still running", "last_update", s.dataStore.GetLastUpdated())
	}
}
