package services

import (
	"errors"
	"testing"
	"time"

	"github.com/snap-point/fieldtrack/geo"
)

func TestMemoryLocationCacheExpiry(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	c := NewMemoryLocationCache(time.Minute)
	c.now = func() time.Time { return now }

	p := geo.GeoPoint{Latitude: 1, Longitude: 2}
	if err := c.Update(ctx, "s1", LocationReading{Seq: 1, Point: &p, CapturedAt: now}); err != nil {
		t.Fatal(err)
	}
	if r, _ := c.Current(ctx, "s1"); r == nil {
		t.Fatal("fresh reading missing")
	}

	now = now.Add(2 * time.Minute)
	if r, _ := c.Current(ctx, "s1"); r != nil {
		t.Fatalf("expired reading returned: %+v", r)
	}

	// Expiry does not reset the sequence guard.
	if err := c.Update(ctx, "s1", LocationReading{Seq: 1, Point: &p, CapturedAt: now}); !errors.Is(err, ErrStaleReading) {
		t.Fatalf("err = %v, want ErrStaleReading", err)
	}
}

func TestMemoryLocationCacheConsumeKeepsSequence(t *testing.T) {
	ctx := t.Context()
	c := NewMemoryLocationCache(0)
	p := geo.GeoPoint{}

	if err := c.Update(ctx, "s1", LocationReading{Seq: 3, Point: &p}); err != nil {
		t.Fatal(err)
	}
	if err := c.Consume(ctx, "s1", 3); err != nil {
		t.Fatal(err)
	}
	if r, _ := c.Current(ctx, "s1"); r != nil {
		t.Fatalf("consumed reading returned: %+v", r)
	}
	if err := c.Update(ctx, "s1", LocationReading{Seq: 2, Point: &p}); !errors.Is(err, ErrStaleReading) {
		t.Fatalf("err = %v, want ErrStaleReading", err)
	}
	if err := c.Update(ctx, "s1", LocationReading{Seq: 4, Point: &p}); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryLocationCacheSessionsAreIndependent(t *testing.T) {
	ctx := t.Context()
	c := NewMemoryLocationCache(0)
	p := geo.GeoPoint{Latitude: 5}
	if err := c.Update(ctx, "a", LocationReading{Seq: 10, Point: &p}); err != nil {
		t.Fatal(err)
	}
	if err := c.Update(ctx, "b", LocationReading{Seq: 1, Point: &p}); err != nil {
		t.Fatalf("other session rejected: %v", err)
	}
}

func TestMemoryLocationCacheConsumeLeavesNewerReading(t *testing.T) {
	ctx := t.Context()
	c := NewMemoryLocationCache(0)
	p := geo.GeoPoint{Latitude: 1}
	q := geo.GeoPoint{Latitude: 2}

	if err := c.Update(ctx, "s1", LocationReading{Seq: 1, Point: &p}); err != nil {
		t.Fatal(err)
	}
	if err := c.Update(ctx, "s1", LocationReading{Seq: 2, Point: &q}); err != nil {
		t.Fatal(err)
	}
	if err := c.Consume(ctx, "s1", 1); err != nil {
		t.Fatal(err)
	}

	r, _ := c.Current(ctx, "s1")
	if r == nil || r.Seq != 2 || r.Point.Latitude != 2 {
		t.Fatalf("current = %+v, want the seq 2 reading", r)
	}
}
