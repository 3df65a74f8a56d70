// Package discovery lists a channel's uploads and queues the ones newsroom
// has not seen yet.
package discovery

import (
	"context"
	"log/slog"
	"strings"

	"newsroom/internal/logging"
	"newsroom/internal/metrics"
	"newsroom/internal/services"
	"newsroom/internal/stage"
	"newsroom/internal/store"
)

// maxListWindow caps how far back a single Discover call looks.
const maxListWindow = 2000

// ChannelLister returns up to limit of a channel's most recent video ids,
// newest first. Fewer than limit means the listing is exhausted.
type ChannelLister interface {
	ListVideos(ctx context.Context, channelID string, limit int) ([]string, error)
}

// Service queues newly discovered videos.
type Service struct {
	store   *store.Store
	lister  ChannelLister
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New builds a discovery service.
func New(st *store.Store, lister ChannelLister, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:   st,
		lister:  lister,
		logger:  logging.NewComponentLogger(logger, "discovery"),
		metrics: m,
	}
}

// Discover lists channel and enqueues up to limit ids that are neither cached
// nor queued. The listing window doubles until limit unknown ids turn up or
// the channel runs out, so older uploads are reached once newer ones are
// known. Listing failures are returned as ErrDiscoverySource without retry;
// the lister already retries transient HTTP errors.
func (s *Service) Discover(ctx context.Context, channel string, limit int) (int, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return 0, services.Wrap(services.ErrConfiguration, "discovery", "discover",
			"channel id required (set youtube.channel_id)", nil)
	}
	if limit <= 0 {
		return 0, nil
	}
	ctx = services.WithStage(ctx, "discovery")
	logger := logging.WithContext(ctx, s.logger)

	var (
		ids    []string
		fresh  []string
		window = min(limit*2, maxListWindow)
	)
	for {
		var err error
		ids, err = s.lister.ListVideos(ctx, channel, window)
		if err != nil {
			return 0, services.Wrap(services.ErrDiscoverySource, "discovery", "list channel", channel, err)
		}
		fresh, err = s.store.FilterUnknown(ctx, ids)
		if err != nil {
			return 0, stage.Systemic(err)
		}
		// A short listing means the channel, or the lister's page budget,
		// has no older uploads left.
		if len(fresh) >= limit || len(ids) < window || window >= maxListWindow {
			break
		}
		window = min(window*2, maxListWindow)
	}
	if len(fresh) > limit {
		fresh = fresh[:limit]
	}
	added, err := s.store.Enqueue(ctx, channel, fresh...)
	if err != nil {
		return 0, stage.Systemic(err)
	}
	s.metrics.RecordDiscovered(added)
	if size, err := s.store.QueueSize(ctx); err == nil {
		s.metrics.SetQueueSize(size)
	}
	logger.Info("discovery completed",
		logging.String(logging.FieldEventType, "discovery_complete"),
		logging.String("channel", channel),
		logging.Int("listed", len(ids)),
		logging.Int("enqueued", added),
	)
	return added, nil
}
