package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/snap-point/fieldtrack/geo"
)

var ErrStaleReading = errors.New("stale location reading")

// Sensor error codes reported by the browser geolocation API.
const (
	SensorPermissionDenied = "permission_denied"
	SensorUnavailable      = "unavailable"
	SensorTimeout          = "timeout"
	SensorUnsupported      = "unsupported"
)

type SensorError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LocationReading is one location sample (or sensor failure) reported by a client.
// Seq is assigned by the client and grows with every request it issues.
type LocationReading struct {
	Seq        uint64        `json:"seq"`
	Point      *geo.GeoPoint `json:"point,omitempty"`
	Accuracy   float64       `json:"accuracy,omitempty"`
	CapturedAt time.Time     `json:"capturedAt"`
	Error      *SensorError  `json:"error,omitempty"`
}

// LocationCache keeps the latest reading per session.
type LocationCache interface {
	// Update stores r unless a reading with an equal or higher Seq was already seen.
	Update(ctx context.Context, sessionID string, r LocationReading) error
	// Current returns the latest reading, or nil if none is fresh.
	Current(ctx context.Context, sessionID string) (*LocationReading, error)
	// Consume drops the reading with sequence number seq but remembers the
	// sequence number. A newer reading stored since then is left alone.
	Consume(ctx context.Context, sessionID string, seq uint64) error
}

type memoryEntry struct {
	seq     uint64
	reading *LocationReading
}

type MemoryLocationCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	maxAge  time.Duration
	now     func() time.Time
}

func NewMemoryLocationCache(maxAge time.Duration) *MemoryLocationCache {
	return &MemoryLocationCache{
		entries: make(map[string]*memoryEntry),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

func (m *MemoryLocationCache) Update(ctx context.Context, sessionID string, r LocationReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[sessionID]
	if !ok {
		e = &memoryEntry{}
		m.entries[sessionID] = e
	}
	if r.Seq <= e.seq {
		return ErrStaleReading
	}
	e.seq = r.Seq
	e.reading = &r
	return nil
}

func (m *MemoryLocationCache) Current(ctx context.Context, sessionID string) (*LocationReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[sessionID]
	if !ok || e.reading == nil {
		return nil, nil
	}
	if expired(e.reading, m.maxAge, m.now()) {
		return nil, nil
	}
	r := *e.reading
	return &r, nil
}

func (m *MemoryLocationCache) Consume(ctx context.Context, sessionID string, seq uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[sessionID]; ok && e.seq == seq {
		e.reading = nil
	}
	return nil
}

func expired(r *LocationReading, maxAge time.Duration, now time.Time) bool {
	return maxAge > 0 && now.Sub(r.CapturedAt) > maxAge
}
