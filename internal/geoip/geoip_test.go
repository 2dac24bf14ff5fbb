package geoip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_EmptyPath(t *testing.T) {
	r := New("", nil)

	country, city := r.Lookup("8.8.8.8")
	assert.Empty(t, country)
	assert.Empty(t, city)
}

func TestNew_InvalidPath(t *testing.T) {
	r := New("/nonexistent/path.mmdb", nil)

	country, city := r.Lookup("8.8.8.8")
	assert.Empty(t, country)
	assert.Empty(t, city)
}

func TestLookup_BadInput(t *testing.T) {
	r := New("", nil)

	for _, ip := range []string{"", "not-an-ip", "999.1.1.1"} {
		country, _ := r.Lookup(ip)
		assert.Empty(t, country, ip)
	}

	var nilResolver *Resolver
	country, _ := nilResolver.Lookup("8.8.8.8")
	assert.Empty(t, country)
}

func TestClose_NilDB(t *testing.T) {
	assert.NoError(t, New("", nil).Close())
}
