package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when no GeoIP database is configured.
var ErrUnavailable = errors.New("geoip: database unavailable")

// DB wraps a MaxMind GeoIP2 country database for request enrichment.
type DB struct {
	reader *geoip2.Reader
}

// Open loads the database at path. An empty path yields a nil *DB, which is
// safe to call and always reports ErrUnavailable.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &DB{reader: reader}, nil
}

// Country returns the ISO 3166-1 country code for ip, or "" when unknown.
func (d *DB) Country(ip string) (string, error) {
	if d == nil || d.reader == nil {
		return "", ErrUnavailable
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := d.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup: %w", err)
	}
	if record == nil {
		return "", nil
	}
	return record.Country.IsoCode, nil
}

// Close releases the underlying reader.
func (d *DB) Close() error {
	if d == nil || d.reader == nil {
		return nil
	}
	return d.reader.Close()
}
