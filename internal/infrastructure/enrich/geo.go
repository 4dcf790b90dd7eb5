// Package enrich adds derived fields to raw records before validation.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"github.com/bibbank/fraudscore/internal/domain/feature"
)

// Record fields read and written by the geo enricher.
const (
	FieldIPAddress       = "ip_address"
	FieldIPCountry       = "ip_country"
	FieldCountry         = "country"
	FieldCountryMismatch = "country_mismatch"
)

var errUnknownIP = errors.New("ip has no country")

// CountryLookup resolves an IP address to an ISO country code.
type CountryLookup interface {
	Country(ctx context.Context, ip net.IP) (string, error)
}

// CountryCache memoizes lookups per IP.
type CountryCache interface {
	Get(ctx context.Context, ip string) (country string, found bool, err error)
	Set(ctx context.Context, ip, country string) error
}

// MaxMind reads a GeoLite2 or GeoIP2 country/city database.
type MaxMind struct {
	db *geoip2.Reader
}

func OpenMaxMind(path string) (*MaxMind, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &MaxMind{db: db}, nil
}

func (m *MaxMind) Country(_ context.Context, ip net.IP) (string, error) {
	rec, err := m.db.Country(ip)
	if err != nil {
		return "", err
	}
	if rec.Country.IsoCode == "" {
		return "", errUnknownIP
	}
	return rec.Country.IsoCode, nil
}

func (m *MaxMind) Close() error {
	return m.db.Close()
}

// GeoEnricher sets ip_country from ip_address and, when the record does not
// carry one, country_mismatch from country vs ip_country. ip_country is not a
// scoring feature; normalization drops it, so it only matters through the
// mismatch flag and to callers that read the enriched record.
type GeoEnricher struct {
	lookup CountryLookup
	cache  CountryCache
	logger *slog.Logger
}

// NewGeoEnricher creates a GeoEnricher. cache may be nil.
func NewGeoEnricher(lookup CountryLookup, cache CountryCache, logger *slog.Logger) *GeoEnricher {
	return &GeoEnricher{lookup: lookup, cache: cache, logger: logger}
}

// Enrich returns raw unchanged when it has no usable IP or the lookup fails.
// Otherwise it returns a copy with the derived fields.
func (e *GeoEnricher) Enrich(ctx context.Context, raw feature.RawRecord) feature.RawRecord {
	addr, ok := raw[FieldIPAddress].(string)
	if !ok {
		return raw
	}
	addr = strings.TrimSpace(addr)
	ip := net.ParseIP(addr)
	if ip == nil {
		return raw
	}

	country, err := e.country(ctx, addr, ip)
	if err != nil {
		e.logger.Debug("geo lookup failed", "ip", addr, "error", err)
		return raw
	}

	out := make(feature.RawRecord, len(raw)+2)
	for k, v := range raw {
		out[k] = v
	}
	out[FieldIPCountry] = country

	if _, set := raw[FieldCountryMismatch]; !set {
		if declared, ok := raw[FieldCountry].(string); ok && strings.TrimSpace(declared) != "" {
			out[FieldCountryMismatch] = !strings.EqualFold(strings.TrimSpace(declared), country)
		}
	}
	return out
}

func (e *GeoEnricher) country(ctx context.Context, addr string, ip net.IP) (string, error) {
	if e.cache != nil {
		country, found, err := e.cache.Get(ctx, addr)
		if err != nil {
			e.logger.Warn("geo cache read failed", "error", err)
		} else if found {
			return country, nil
		}
	}

	country, err := e.lookup.Country(ctx, ip)
	if err != nil {
		return "", err
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, addr, country); err != nil {
			e.logger.Warn("geo cache write failed", "error", err)
		}
	}
	return country, nil
}
