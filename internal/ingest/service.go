package ingest

import (
	"context"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/vitalscope/vitalscope/internal/vitals"
)

// TopicIngested is published on the event bus after every successful
// ingestion.
const TopicIngested = "pagespeed:ingested"

// Event carries what a bus subscriber needs to react to an ingestion.
type Event struct {
	SiteId          int64
	Url             string
	DeviceType      string
	TestId          int64
	OverallCategory string
}

// Fetcher retrieves a raw snapshot from the upstream measurement API.
type Fetcher interface {
	Fetch(ctx context.Context, url, strategy string) (*vitals.Snapshot, error)
}

// Service orchestrates one ingestion: fetch, normalize, persist, publish.
type Service struct {
	fetcher Fetcher
	writer  *Writer
	bus     EventBus.Bus
}

// NewService creates the ingest service. The bus may be nil when no
// subscriber cares about ingestion events.
func NewService(fetcher Fetcher, writer *Writer, bus EventBus.Bus) *Service {
	return &Service{fetcher: fetcher, writer: writer, bus: bus}
}

// IngestURL fetches a fresh snapshot for a URL and persists it. The device
// type doubles as the upstream strategy parameter.
func (s *Service) IngestURL(ctx context.Context, url, deviceType string) (*Result, error) {
	snap, err := s.fetcher.Fetch(ctx, url, deviceType)
	if err != nil {
		return nil, err
	}
	return s.IngestSnapshot(ctx, snap, deviceType, 0)
}

// IngestSnapshot normalizes and persists an already-fetched snapshot.
// Ingesting the same snapshot twice deliberately creates two distinct
// tests: there is no deduplication on (url, device, timestamp).
func (s *Service) IngestSnapshot(ctx context.Context, snap *vitals.Snapshot, deviceType string, siteId int64) (*Result, error) {
	plan, err := vitals.Normalize(snap)
	if err != nil {
		return nil, err
	}

	result, err := s.writer.Persist(ctx, plan, deviceType)
	if err != nil {
		zap.L().Error("snapshot persist failed",
			zap.String("url", plan.Test.Url),
			zap.String("device_type", deviceType),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("snapshot ingested",
		zap.String("url", plan.Test.Url),
		zap.String("device_type", deviceType),
		zap.Int64("test_id", result.TestId),
		zap.Int("metrics", result.MetricsCount),
		zap.Int("distributions", result.DistributionsCount))

	if s.bus != nil {
		s.bus.Publish(TopicIngested, Event{
			SiteId:          siteId,
			Url:             plan.Test.Url,
			DeviceType:      deviceType,
			TestId:          result.TestId,
			OverallCategory: plan.Test.OverallCategory,
		})
	}
	return result, nil
}
