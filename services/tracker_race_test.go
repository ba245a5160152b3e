package services

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/snap-point/fieldtrack/geo"
	"github.com/snap-point/fieldtrack/models"
)

// hookFileStore runs beforePut ahead of every write to the wrapped store.
type hookFileStore struct {
	FileStore
	beforePut func()
}

func (h *hookFileStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if h.beforePut != nil {
		h.beforePut()
	}
	return h.FileStore.Put(ctx, key, contentType, body, size)
}

func TestSubmitUploadKeepsReadingRecordedDuringUpload(t *testing.T) {
	f := newTrackerFixture(t)
	f.at(t, 0, 0)

	newer := geo.GeoPoint{Latitude: 0, Longitude: 0.01}
	f.tracker.Files = &hookFileStore{
		FileStore: f.files,
		beforePut: func() {
			err := f.tracker.RecordLocation(t.Context(), f.session.ID, LocationReading{Seq: 99, Point: &newer})
			if err != nil {
				t.Errorf("record newer location: %v", err)
			}
		},
	}

	if _, err := f.upload(t, "first stop"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	r, err := f.tracker.Locations.Current(t.Context(), f.session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.Seq != 99 || *r.Point != newer {
		t.Fatalf("current = %+v, want the seq 99 reading", r)
	}
}

func TestSubmitUploadConcurrentSameSpot(t *testing.T) {
	f := newTrackerFixture(t)
	f.at(t, 10, 10)

	const attempts = 5
	headers := make([][]*multipart.FileHeader, attempts)
	for i := range headers {
		headers[i] = fileHeaders(t, testFile{"report.txt", []byte("soil sample notes")})
	}

	errs := make([]error, attempts)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.tracker.SubmitUpload(context.Background(), f.session.ID, headers[i], "")
		}(i)
	}
	close(start)
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNoLocation):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("%d uploads accepted, want 1", ok)
	}
}

// Trackers sharing one database stand in for several server instances: each
// has its own lock and location cache, so only the database can break the tie.
func TestSubmitUploadConcurrentInstances(t *testing.T) {
	db := newTestDB(t)
	rules := FileRules{
		MaxFileBytes:      10 * 1024 * 1024,
		MaxFiles:          10,
		AllowedExtensions: []string{".txt"},
	}

	const instances = 4
	trackers := make([]*Tracker, instances)
	for i := range trackers {
		trackers[i] = NewTracker(db, NewMemoryFileStore(), NewMemoryLocationCache(0), geo.Gate{}, rules, &recordingPublisher{})
	}
	session, err := trackers[0].CreateSession(t.Context(), "shared")
	if err != nil {
		t.Fatal(err)
	}

	p := geo.GeoPoint{Latitude: 10, Longitude: 10}
	headers := make([][]*multipart.FileHeader, instances)
	for i, tr := range trackers {
		if err := tr.RecordLocation(t.Context(), session.ID, LocationReading{Seq: 1, Point: &p}); err != nil {
			t.Fatal(err)
		}
		headers[i] = fileHeaders(t, testFile{"report.txt", []byte("soil sample notes")})
	}

	errs := make([]error, instances)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, tr := range trackers {
		wg.Add(1)
		go func(i int, tr *Tracker) {
			defer wg.Done()
			<-start
			_, errs[i] = tr.SubmitUpload(context.Background(), session.ID, headers[i], "")
		}(i, tr)
	}
	close(start)
	wg.Wait()

	var ok int
	for _, err := range errs {
		var gateErr *GateError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &gateErr), errors.Is(err, ErrUploadConflict):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("%d uploads accepted, want 1", ok)
	}

	var n int64
	db.Model(&models.Upload{}).Where("session_id = ?", session.ID).Count(&n)
	if n != 1 {
		t.Errorf("stored uploads = %d, want 1", n)
	}
}

func TestUploadSequenceIsUniquePerSession(t *testing.T) {
	db := newTestDB(t)
	session := &models.Session{}
	if err := db.Create(session).Error; err != nil {
		t.Fatal(err)
	}

	first := &models.Upload{SessionID: session.ID, Sequence: 1, Status: models.StatusPending}
	if err := db.Create(first).Error; err != nil {
		t.Fatal(err)
	}
	dup := &models.Upload{SessionID: session.ID, Sequence: 1, Latitude: 1, Status: models.StatusPending}
	if err := db.Create(dup).Error; err == nil {
		t.Fatal("duplicate sequence accepted")
	}
}
