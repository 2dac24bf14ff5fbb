// Package geoip maps client IPs to coarse locations for analytics metadata.
package geoip

import (
	"net"

	"github.com/oschwald/maxminddb-golang"
	"go.uber.org/zap"
)

// Resolver looks up IPs in a MaxMind database. A Resolver without a database returns empty results.
type Resolver struct {
	db *maxminddb.Reader
}

type geoResult struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
}

// New opens the database at dbPath. A missing or unreadable file disables lookups.
func New(dbPath string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dbPath == "" {
		return &Resolver{}
	}
	db, err := maxminddb.Open(dbPath)
	if err != nil {
		logger.Warn("geoip database unavailable, geolocation disabled", zap.String("path", dbPath), zap.Error(err))
		return &Resolver{}
	}
	logger.Info("geoip database loaded", zap.String("path", dbPath))
	return &Resolver{db: db}
}

// Lookup returns the ISO country code and English city name for ipStr.
func (r *Resolver) Lookup(ipStr string) (country, city string) {
	if r == nil || r.db == nil || ipStr == "" {
		return "", ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "", ""
	}
	var result geoResult
	if err := r.db.Lookup(ip, &result); err != nil {
		return "", ""
	}
	return result.Country.ISOCode, result.City.Names["en"]
}

func (r *Resolver) Close() error {
	if r != nil && r.db != nil {
		return r.db.Close()
	}
	return nil
}
