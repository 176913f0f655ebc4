package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cogitto/cogitto-api/config"
	"github.com/cogitto/cogitto-api/data"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/metrics"
	"github.com/cogitto/cogitto-api/refdata"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	logging.InitLogger(logging.Options{Env: config.EnvTest})
}

// mockLoader returns a fixed dataset or error
type mockLoader struct {
	dataset *entities.Dataset
	err     error
	calls   atomic.Int32
}

func (m *mockLoader) Load(ctx context.Context) (*entities.Dataset, error) {
	m.calls.Add(1)
	return m.dataset, m.err
}

func (m *mockLoader) Source() string {
	return "mock"
}

// mockPurger counts purge calls
type mockPurger struct {
	calls atomic.Int32
	ttl   atomic.Int64
}

func (m *mockPurger) PurgeIdle(ttl time.Duration) int {
	m.calls.Add(1)
	m.ttl.Store(int64(ttl))
	return 2
}

func TestStartLoadsEmbeddedData(t *testing.T) {
	store := data.NewDataContainer()
	s := NewScheduler(store, refdata.NewLoader(""), nil, Options{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if len(store.GetMedications()) != 7 {
		t.Errorf("Expected 7 medications, got %d", len(store.GetMedications()))
	}
	if store.GetInteractionCount() != 4 {
		t.Errorf("Expected 4 interactions, got %d", store.GetInteractionCount())
	}
	if store.IsUpdating() {
		t.Error("Expected update flag to be cleared")
	}
	if testutil.ToFloat64(metrics.ReferenceMedications) != 7 {
		t.Error("Expected reference medications gauge to be set")
	}
}

func TestStartFailsOnLoadError(t *testing.T) {
	store := data.NewDataContainer()
	s := NewScheduler(store, &mockLoader{err: errors.New("unreachable")}, nil, Options{})

	err := s.Start()
	if err == nil || !strings.Contains(err.Error(), "unreachable") {
		t.Fatalf("Expected load error, got %v", err)
	}
	if store.IsUpdating() {
		t.Error("Expected update flag to be cleared after a failure")
	}
}

func TestStartFailsOnInvalidDataset(t *testing.T) {
	store := data.NewDataContainer()
	loader := &mockLoader{dataset: &entities.Dataset{
		Medications: []entities.Medication{{ID: "1", GenericName: "warfarin"}},
		Interactions: []entities.Interaction{
			{Medications: [2]string{"warfarin", "aspirin"}, Severity: entities.SeverityMajor},
		},
	}}
	s := NewScheduler(store, loader, nil, Options{})

	if err := s.Start(); err == nil || !strings.Contains(err.Error(), "failed validation") {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if len(store.GetMedications()) != 0 {
		t.Error("Invalid dataset must not be published")
	}
}

func TestUpdateSkippedWhileInProgress(t *testing.T) {
	store := data.NewDataContainer()
	loader := &mockLoader{dataset: &entities.Dataset{}}
	s := NewScheduler(store, loader, nil, Options{})

	if !store.BeginUpdate() {
		t.Fatal("BeginUpdate should succeed")
	}
	defer store.EndUpdate()

	if err := s.updateData(); err != nil {
		t.Errorf("Expected skipped update to return nil, got %v", err)
	}
	if loader.calls.Load() != 0 {
		t.Error("Loader must not run while another update holds the flag")
	}
}

func TestPurgeJob(t *testing.T) {
	purger := &mockPurger{}
	s := NewScheduler(data.NewDataContainer(), refdata.NewLoader(""), purger, Options{
		SessionTTL:    time.Hour,
		PurgeInterval: 50 * time.Millisecond,
	})

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for purger.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if purger.calls.Load() == 0 {
		t.Fatal("Expected the purge job to run")
	}
	if time.Duration(purger.ttl.Load()) != time.Hour {
		t.Errorf("Expected purge with the session TTL, got %v", time.Duration(purger.ttl.Load()))
	}
}

func TestDefaults(t *testing.T) {
	s := NewScheduler(data.NewDataContainer(), refdata.NewLoader(""), nil, Options{})
	if s.opts.PurgeInterval != DefaultPurgeInterval || s.opts.MonitorInterval != DefaultMonitorInterval {
		t.Errorf("Unexpected defaults %+v", s.opts)
	}

	// Runs synchronously and must not panic on an empty store
	s.monitorData()
}
