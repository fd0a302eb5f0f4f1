package search

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	errx "github.com/zenese/server/internal/core/error"
	"github.com/zenese/server/internal/travel/model"
	logx "github.com/zenese/server/pkg/logger"
	"github.com/zenese/server/pkg/metrics"
)

// Provider is one upstream flight API behind the router.
type Provider struct {
	Name         string
	Priority     int // lower number wins
	MonthlyQuota int
	Searcher     Searcher
}

// ProviderSpec is a parsed name:priority:quota config entry.
type ProviderSpec struct {
	Name         string
	Priority     int
	MonthlyQuota int
}

// ParseProviders decodes the comma-separated "name:priority:quota" list from config.
func ParseProviders(spec string) ([]ProviderSpec, error) {
	var specs []ProviderSpec
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid provider entry %q", entry)
		}
		priority, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid priority in provider entry %q: %w", entry, err)
		}
		quota, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || quota < 0 {
			return nil, fmt.Errorf("invalid quota in provider entry %q", entry)
		}
		specs = append(specs, ProviderSpec{
			Name:         strings.TrimSpace(parts[0]),
			Priority:     priority,
			MonthlyQuota: quota,
		})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}
	return specs, nil
}

// QuotaCounter tracks per-provider monthly usage. Keys carry the month, so
// counts reset naturally when a new month starts.
type QuotaCounter interface {
	Used(ctx context.Context, key string) (int, error)
	Record(ctx context.Context, key string) error
}

// Router fans requests across providers in priority order, skipping any that
// exhausted their monthly free quota and failing over when a call errors.
// Usage is counted only after a successful call.
type Router struct {
	providers []Provider
	quotas    QuotaCounter
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewRouter builds a router over the given providers; metrics may be nil.
func NewRouter(providers []Provider, quotas QuotaCounter, m *metrics.Metrics) *Router {
	sorted := make([]Provider, len(providers))
	copy(sorted, providers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Router{
		providers: sorted,
		quotas:    quotas,
		metrics:   m,
		now:       time.Now,
	}
}

func (r *Router) usageKey(provider string) string {
	return fmt.Sprintf("quota:%s:%s", provider, r.now().Format("2006-01"))
}

// Search implements Searcher.
func (r *Router) Search(ctx context.Context, req model.SearchRequest) ([]model.FlightOffer, error) {
	for _, p := range r.providers {
		key := r.usageKey(p.Name)

		used, err := r.quotas.Used(ctx, key)
		if err != nil {
			// availability over strictness: an unreadable counter counts as zero
			logx.Warn().Err(err).Str("provider", p.Name).Msg("quota lookup failed, assuming zero usage")
			used = 0
		}
		if used >= p.MonthlyQuota {
			logx.Debug().
				Str("provider", p.Name).
				Int("used", used).
				Int("quota", p.MonthlyQuota).
				Msg("provider quota exhausted, skipping")
			continue
		}

		offers, err := p.Searcher.Search(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			logx.Warn().Err(err).Str("provider", p.Name).Msg("provider call failed, trying next")
			if r.metrics != nil {
				r.metrics.SearchRequests.WithLabelValues(p.Name, "error").Inc()
			}
			continue
		}

		if err := r.quotas.Record(ctx, key); err != nil {
			logx.Warn().Err(err).Str("provider", p.Name).Msg("failed to record quota usage")
		}
		if r.metrics != nil {
			r.metrics.SearchRequests.WithLabelValues(p.Name, "ok").Inc()
		}
		logx.Debug().
			Str("provider", p.Name).
			Int("offers", len(offers)).
			Msg("provider call succeeded")
		return offers, nil
	}

	return nil, errx.New(errx.ErrProvidersExhausted, http.StatusServiceUnavailable, errx.ProviderErrorMessage)
}

var _ Searcher = (*Router)(nil)
