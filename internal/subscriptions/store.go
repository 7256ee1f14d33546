package subscriptions

import (
	"cvewatch/internal/models"
	"cvewatch/internal/providers"
	"cvewatch/internal/scheduler"
	"cvewatch/internal/structures"
	"cvewatch/internal/subscriptions/interfaces"
	"sort"
	"sync"
	"time"
)

// Store keeps one watermark per source file. Advances are staged during a cycle
// and only applied by Commit, after all concurrent work of the cycle has joined.
type Store struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	fileManager *FileManager
	location    *time.Location

	mu         sync.Mutex
	watermarks map[string]time.Time
	pending    map[string]time.Time
	held       map[string]struct{}
}

func NewStore(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, fileManager *FileManager) interfaces.StoreInterface {
	return &Store{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		fileManager: fileManager,
		location:    time.Local,
		watermarks:  map[string]time.Time{},
		pending:     map[string]time.Time{},
		held:        map[string]struct{}{},
	}
}

func (s *Store) Restore() error {
	raw, err := s.fileManager.LoadFromFile(s.config.Watermark.FilePath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for source, value := range raw {
		ts, err := time.ParseInLocation(models.WatermarkLayout, value, s.location)
		if err != nil {
			s.logger.Warnf(providers.TypeApp, "Ignoring watermark of %s: %s", source, err)
			continue
		}
		s.watermarks[source] = ts
	}
	s.logger.Infof(providers.TypeApp, "Restored %d watermarks from %s", len(s.watermarks), s.config.Watermark.FilePath)
	return nil
}

// LoadDue reads the job files and returns the subscriptions due at now, each
// carrying the watermark of its source. Without a watermark the window starts
// one interval before now.
func (s *Store) LoadDue(now time.Time) ([]*models.Subscription, []error) {
	defs, errs := LoadDir(s.config.Jobs.Dir, s.config.Jobs.Pattern)
	for _, err := range errs {
		s.logger.Errorf(providers.TypeApp, "Skipping subscription source: %s", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*models.Subscription, 0, len(defs))
	for _, d := range defs {
		sub := &models.Subscription{
			StartOffset:   d.StartOffset,
			IntervalHours: d.IntervalHours,
			FetchUpdates:  d.FetchUpdates,
			Recipient:     d.Recipient,
			Vendor:        d.Vendor,
			Products:      d.Products,
			SourceFile:    d.SourceFile,
			ExtraParams:   d.ExtraParams,
			LastRun:       s.lastRunLocked(d.SourceFile, d.IntervalHours, now),
		}
		if scheduler.IsDue(sub, now) {
			due = append(due, sub)
		}
	}
	return due, errs
}

func (s *Store) lastRunLocked(source string, intervalHours int, now time.Time) time.Time {
	if ts, ok := s.watermarks[source]; ok {
		return ts
	}
	return models.TruncateToMinute(now.In(s.location)).Add(-time.Duration(intervalHours) * time.Hour)
}

// Advance stages the watermark of source to ts, truncated to the minute.
func (s *Store) Advance(source string, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.held[source]; held {
		return
	}
	s.pending[source] = models.TruncateToMinute(ts.In(s.location))
}

// Hold keeps the watermark of source unchanged for the running cycle, even if
// other subscriptions of the same source advance it.
func (s *Store) Hold(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[source] = struct{}{}
	delete(s.pending, source)
}

// Commit applies the staged advances and starts a fresh staging area. It returns
// the sources that moved.
func (s *Store) Commit() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	advanced := make([]string, 0, len(s.pending))
	for source, ts := range s.pending {
		s.watermarks[source] = ts
		advanced = append(advanced, source)
	}
	sort.Strings(advanced)
	s.pending = map[string]time.Time{}
	s.held = map[string]struct{}{}
	return advanced
}

func (s *Store) Persist() error {
	start := time.Now()
	snapshot := s.Snapshot()
	err := s.fileManager.SaveToFile(s.config.Watermark.FilePath, snapshot)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting watermarks: %s", err)
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	s.logger.Debugf(providers.TypeApp, "Persisted %d watermarks to %s", len(snapshot), s.config.Watermark.FilePath)
	return nil
}

func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.watermarks))
	for source, ts := range s.watermarks {
		out[source] = ts.Format(models.WatermarkLayout)
	}
	return out
}
