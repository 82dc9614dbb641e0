// Package calculations provides a TTL'd SQLite-backed cache for expensive
// numeric results (covariance matrices, aligned return series).
package calculations

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache TTLs per category.
const (
	TTLCovariance = 24 * time.Hour
	TTLReturns    = 24 * time.Hour
)

// Cache stores serialized calculation results in the calc_cache table.
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCache creates a new calculation cache
func NewCache(db *sql.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log.With().Str("component", "calc_cache").Logger(),
	}
}

// Get loads a cached value into out. Returns false on miss, expiry, or
// decode failure; a stale or corrupt entry is treated as a miss.
func (c *Cache) Get(category, key string, out interface{}) bool {
	var payload []byte
	var expiresAt int64

	err := c.db.QueryRow(
		`SELECT payload, expires_at FROM calc_cache WHERE category = ? AND cache_key = ?`,
		category, key,
	).Scan(&payload, &expiresAt)
	if err != nil {
		return false
	}

	if time.Now().Unix() > expiresAt {
		c.Delete(category, key)
		return false
	}

	if err := msgpack.Unmarshal(payload, out); err != nil {
		c.log.Warn().Err(err).Str("category", category).Msg("Failed to decode cached value, evicting")
		c.Delete(category, key)
		return false
	}
	return true
}

// Set stores a value under (category, key) with the given TTL.
func (c *Cache) Set(category, key string, value interface{}, ttl time.Duration) error {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}

	_, err = c.db.Exec(
		`INSERT INTO calc_cache (category, cache_key, payload, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (category, cache_key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at`,
		category, key, payload, time.Now().Add(ttl).Unix(),
	)
	return err
}

// Delete removes a cached entry.
func (c *Cache) Delete(category, key string) {
	if _, err := c.db.Exec(
		`DELETE FROM calc_cache WHERE category = ? AND cache_key = ?`,
		category, key,
	); err != nil {
		c.log.Warn().Err(err).Str("category", category).Msg("Failed to delete cache entry")
	}
}

// Prune removes all expired entries.
func (c *Cache) Prune() error {
	_, err := c.db.Exec(`DELETE FROM calc_cache WHERE expires_at < ?`, time.Now().Unix())
	return err
}
