// Package rates supplies EUR/USD to SRD exchange rates for the cash counter and
// foreign-currency journals. A quote is always returned: from cache, from the
// backend, or from configured fallback rates.
package rates

import (
	"context"
	"time"

	"facturatie/internal/core"
	"facturatie/internal/logger"

	"github.com/rs/zerolog"
)

// Source says where a quote came from.
type Source string

const (
	SourceBackend  Source = "backend"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
	// SourceRequest marks rates supplied by the caller.
	SourceRequest Source = "request"
)

const cacheKey = "facturatie:rates:current"

// Quote is a rate set with its provenance.
type Quote struct {
	Rates     core.ExchangeRateSet `json:"rates"`
	Source    Source               `json:"source"`
	FetchedAt time.Time            `json:"fetched_at"`
}

// Fetcher loads live rates; *backend.Client satisfies it.
type Fetcher interface {
	GetExchangeRates(ctx context.Context, token string) (core.ExchangeRateSet, error)
}

// Provider resolves the current quote.
type Provider struct {
	fetcher  Fetcher
	cache    Cache
	ttl      time.Duration
	fallback core.ExchangeRateSet
	now      func() time.Time
	log      zerolog.Logger
}

// NewProvider wires a provider. A nil cache disables caching.
func NewProvider(fetcher Fetcher, cache Cache, ttl time.Duration, fallback core.ExchangeRateSet) *Provider {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Provider{
		fetcher:  fetcher,
		cache:    cache,
		ttl:      ttl,
		fallback: fallback,
		now:      time.Now,
		log:      logger.WithComponent("rates"),
	}
}

// WithClock replaces the time source.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// Fallback returns the configured fallback rates.
func (p *Provider) Fallback() core.ExchangeRateSet {
	return p.fallback
}

// Current returns the freshest quote available. It never fails: cache and
// backend errors are logged and the configured fallback is used instead.
func (p *Provider) Current(ctx context.Context, token string) Quote {
	if q, ok, err := p.cache.Get(ctx, cacheKey); err != nil {
		p.log.Warn().Err(err).Msg("rates cache read failed")
	} else if ok && q.Rates.Valid() {
		q.Source = SourceCache
		return *q
	}

	if p.fetcher != nil && token != "" {
		set, err := p.fetcher.GetExchangeRates(ctx, token)
		if err == nil {
			q := Quote{Rates: set, Source: SourceBackend, FetchedAt: p.now().UTC()}
			if err := p.cache.Set(ctx, cacheKey, q, p.ttl); err != nil {
				p.log.Warn().Err(err).Msg("rates cache write failed")
			}
			return q
		}
		p.log.Warn().Err(err).Msg("fetching exchange rates failed, using fallback")
	}

	return Quote{Rates: p.fallback, Source: SourceFallback, FetchedAt: p.now().UTC()}
}
