package geo

import (
	"errors"
	"math"
	"testing"
)

func TestCheckEligibilityNoPriorUpload(t *testing.T) {
	for _, p := range []GeoPoint{{0, 0}, {45, 45}, {-12.5, 130}} {
		e, err := CheckEligibility(nil, p)
		if err != nil {
			t.Fatalf("CheckEligibility(nil, %v) error: %v", p, err)
		}
		if !e.Eligible {
			t.Errorf("CheckEligibility(nil, %v) not eligible", p)
		}
		if e.DistanceMeters != nil {
			t.Errorf("CheckEligibility(nil, %v) distance = %v, want nil", p, *e.DistanceMeters)
		}
	}
}

func TestCheckEligibilitySamePoint(t *testing.T) {
	a := GeoPoint{51.5074, -0.1278}
	e, err := CheckEligibility(&a, a)
	if err != nil {
		t.Fatal(err)
	}
	if e.Eligible {
		t.Fatal("re-upload at the same spot must not be eligible")
	}
	if e.DistanceMeters == nil || *e.DistanceMeters != 0 {
		t.Fatalf("distance = %v, want 0", e.DistanceMeters)
	}
	if e.RemainingMeters != MinUploadDistance {
		t.Fatalf("remaining = %v, want %v", e.RemainingMeters, MinUploadDistance)
	}
}

func TestCheckEligibilityFixtures(t *testing.T) {
	origin := GeoPoint{0, 0}

	far, err := CheckEligibility(&origin, GeoPoint{0, 0.00134989})
	if err != nil {
		t.Fatal(err)
	}
	if !far.Eligible {
		t.Fatalf("~150m fixture should be eligible, got %+v", far)
	}
	if math.Abs(*far.DistanceMeters-150) > 1 {
		t.Fatalf("~150m fixture distance = %v", *far.DistanceMeters)
	}
	if far.RemainingMeters != 0 {
		t.Fatalf("remaining = %v, want 0", far.RemainingMeters)
	}

	near, err := CheckEligibility(&origin, GeoPoint{0, 0.0005})
	if err != nil {
		t.Fatal(err)
	}
	if near.Eligible {
		t.Fatalf("~55m fixture should not be eligible, got %+v", near)
	}
	if math.Abs(near.RemainingMeters-94.4) > 0.1 {
		t.Fatalf("remaining = %v, want ~94.4", near.RemainingMeters)
	}
	if want := "55.60 meters from last upload (Need 94.40 more meters)"; near.Hint() != want {
		t.Fatalf("hint = %q, want %q", near.Hint(), want)
	}
}

// TestGateThresholdIsClosed pins the threshold to the exact computed distance so
// the comparison itself is exercised rather than floating point luck.
func TestGateThresholdIsClosed(t *testing.T) {
	a := GeoPoint{0, 0}
	b := GeoPoint{0.001, 0.001}
	d := Distance(a, b)

	at, err := Gate{MinDistance: d}.Check(&a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !at.Eligible {
		t.Fatalf("distance exactly at threshold must be eligible")
	}

	below, err := Gate{MinDistance: math.Nextafter(d, math.Inf(1))}.Check(&a, b)
	if err != nil {
		t.Fatal(err)
	}
	if below.Eligible {
		t.Fatalf("distance just below threshold must not be eligible")
	}
}

func TestGateRejectsInvalidCoordinates(t *testing.T) {
	last := GeoPoint{0, 0}
	if _, err := CheckEligibility(&last, GeoPoint{91, 0}); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("current out of range: err = %v", err)
	}
	if _, err := CheckEligibility(nil, GeoPoint{math.NaN(), 0}); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("NaN without prior: err = %v", err)
	}
	bad := GeoPoint{0, 200}
	if _, err := CheckEligibility(&bad, GeoPoint{0, 0}); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("last out of range: err = %v", err)
	}
}

func TestHintAndRejectionMessage(t *testing.T) {
	first := Eligibility{Eligible: true, MinimumMeters: MinUploadDistance}
	if got := first.Hint(); got != "First upload: no distance restriction" {
		t.Errorf("first hint = %q", got)
	}

	d := 200.0
	ok := Eligibility{DistanceMeters: &d, Eligible: true, MinimumMeters: MinUploadDistance}
	if got := ok.Hint(); got != "200.00 meters from last upload" {
		t.Errorf("eligible hint = %q", got)
	}

	d2 := 100.0
	blocked := Eligibility{DistanceMeters: &d2, RemainingMeters: 50, MinimumMeters: MinUploadDistance}
	want := "You must be at least 150 meters away from your last upload location (need 50.00 more meters)"
	if got := blocked.RejectionMessage(); got != want {
		t.Errorf("rejection = %q, want %q", got, want)
	}
}
