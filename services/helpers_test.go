package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snap-point/fieldtrack/config"
	"github.com/snap-point/fieldtrack/geo"
	"github.com/snap-point/fieldtrack/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := config.ConnectDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type testFile struct {
	name string
	data []byte
}

// fileHeaders round-trips files through a multipart form so the headers behave
// exactly like the ones gin hands to controllers.
func fileHeaders(t *testing.T, files ...testFile) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(f.data)
	}
	w.Close()

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	return form.File["files"]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type trackerFixture struct {
	tracker   *Tracker
	files     *MemoryFileStore
	locations *MemoryLocationCache
	events    *recordingPublisher
	session   *models.Session
	seq       uint64
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()
	db := newTestDB(t)
	files := NewMemoryFileStore()
	locations := NewMemoryLocationCache(5 * time.Minute)
	events := &recordingPublisher{}
	rules := FileRules{
		MaxFileBytes:      10 * 1024 * 1024,
		MaxFiles:          10,
		AllowedExtensions: []string{".pdf", ".doc", ".docx", ".txt", ".jpg", ".jpeg", ".png"},
	}
	tracker := NewTracker(db, files, locations, geo.Gate{}, rules, events)

	session, err := tracker.CreateSession(t.Context(), "north field")
	if err != nil {
		t.Fatal(err)
	}
	return &trackerFixture{tracker: tracker, files: files, locations: locations, events: events, session: session}
}

func (f *trackerFixture) at(t *testing.T, lat, lon float64) {
	t.Helper()
	f.seq++
	p := geo.GeoPoint{Latitude: lat, Longitude: lon}
	if err := f.tracker.RecordLocation(t.Context(), f.session.ID, LocationReading{Seq: f.seq, Point: &p}); err != nil {
		t.Fatalf("record location: %v", err)
	}
}

func (f *trackerFixture) upload(t *testing.T, remark string) (*models.Upload, error) {
	t.Helper()
	return f.tracker.SubmitUpload(t.Context(), f.session.ID,
		fileHeaders(t, testFile{"report.txt", []byte("soil sample notes")}), remark)
}

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
