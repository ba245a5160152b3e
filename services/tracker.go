package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/snap-point/fieldtrack/geo"
	"github.com/snap-point/fieldtrack/models"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUploadNotFound  = errors.New("upload not found")
	ErrNoFiles         = errors.New("no files selected")
	ErrNoLocation      = errors.New("current location unavailable")
	// ErrUploadConflict means another writer took the session's next sequence number first.
	ErrUploadConflict = errors.New("concurrent upload for session")
)

// Messages shown to the field worker.
const (
	MsgNoFiles    = "Please select a file first"
	MsgNoLocation = "Unable to get your current location"
)

// GateError is returned when an upload is attempted too close to the previous one.
type GateError struct {
	Eligibility geo.Eligibility
}

func (e *GateError) Error() string {
	return e.Eligibility.RejectionMessage()
}

// LocationError carries a sensor failure reported by the client.
type LocationError struct {
	Sensor SensorError
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("location error (%s): %s", e.Sensor.Code, e.Sensor.Message)
}

// Message is the text shown on the upload screen.
func (e *LocationError) Message() string {
	return "Location error: " + e.Sensor.Message
}

func (e *LocationError) Unwrap() error {
	return ErrNoLocation
}

// Tracker owns the upload workflow: location intake, gating, file storage and review.
type Tracker struct {
	DB        *gorm.DB
	Files     FileStore
	Locations LocationCache
	Gate      geo.Gate
	Rules     FileRules
	Events    Publisher

	locks sync.Map // session id -> *sync.Mutex
	now   func() time.Time
}

func NewTracker(db *gorm.DB, files FileStore, locations LocationCache, gate geo.Gate, rules FileRules, events Publisher) *Tracker {
	return &Tracker{
		DB:        db,
		Files:     files,
		Locations: locations,
		Gate:      gate,
		Rules:     rules,
		Events:    events,
		now:       time.Now,
	}
}

func (t *Tracker) sessionLock(sessionID string) *sync.Mutex {
	l, _ := t.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (t *Tracker) publish(eventType string, u *models.Upload) {
	if t.Events == nil {
		return
	}
	t.Events.Publish(Event{Type: eventType, Upload: u, Timestamp: t.now().UTC()})
}

func (t *Tracker) CreateSession(ctx context.Context, label string) (*models.Session, error) {
	session := &models.Session{Label: label}
	if err := t.DB.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (t *Tracker) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := t.DB.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RecordLocation stores a location sample or a sensor failure for the session.
func (t *Tracker) RecordLocation(ctx context.Context, sessionID string, r LocationReading) error {
	if r.Point != nil {
		if err := r.Point.Validate(); err != nil {
			return err
		}
	}
	if r.CapturedAt.IsZero() {
		r.CapturedAt = t.now().UTC()
	}
	return t.Locations.Update(ctx, sessionID, r)
}

// LastUpload returns the most recent upload of the session, or nil.
func (t *Tracker) LastUpload(ctx context.Context, sessionID string) (*models.Upload, error) {
	return lastUpload(t.DB.WithContext(ctx), sessionID)
}

func lastUpload(db *gorm.DB, sessionID string) (*models.Upload, error) {
	var u models.Upload
	err := db.Where("session_id = ?", sessionID).Order("sequence DESC").First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EligibilityReport is what the upload screen shows before the user submits.
type EligibilityReport struct {
	CurrentLocation *LocationReading `json:"currentLocation"`
	LastLocation    *geo.GeoPoint    `json:"lastLocation"`
	geo.Eligibility
	Hint    string `json:"hint"`
	Message string `json:"message,omitempty"`
}

func (t *Tracker) Eligibility(ctx context.Context, sessionID string) (*EligibilityReport, error) {
	reading, err := t.Locations.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	last, err := t.LastUpload(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	report := &EligibilityReport{CurrentLocation: reading}
	var lastPoint *geo.GeoPoint
	if last != nil {
		p := last.Point()
		lastPoint = &p
		report.LastLocation = lastPoint
	}

	switch {
	case reading == nil:
		report.Eligibility = geo.Eligibility{MinimumMeters: t.minimum()}
		report.Message = MsgNoLocation
	case reading.Point == nil:
		report.Eligibility = geo.Eligibility{MinimumMeters: t.minimum()}
		if reading.Error != nil {
			report.Message = (&LocationError{Sensor: *reading.Error}).Message()
		} else {
			report.Message = MsgNoLocation
		}
	default:
		e, err := t.Gate.Check(lastPoint, *reading.Point)
		if err != nil {
			return nil, err
		}
		report.Eligibility = e
		report.Hint = e.Hint()
		if !e.Eligible {
			report.Message = e.RejectionMessage()
		}
	}
	return report, nil
}

func (t *Tracker) minimum() float64 {
	if t.Gate.MinDistance > 0 {
		return t.Gate.MinDistance
	}
	return geo.MinUploadDistance
}

// SubmitUpload gates, stores and records a new upload. files must already have
// passed Rules.Validate.
func (t *Tracker) SubmitUpload(ctx context.Context, sessionID string, files []*multipart.FileHeader, remark string) (*models.Upload, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	lock := t.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	reading, err := t.Locations.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, ErrNoLocation
	}
	if reading.Point == nil {
		if reading.Error != nil {
			return nil, &LocationError{Sensor: *reading.Error}
		}
		return nil, ErrNoLocation
	}

	last, err := t.LastUpload(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var lastPoint *geo.GeoPoint
	sequence := 1
	if last != nil {
		p := last.Point()
		lastPoint = &p
		sequence = last.Sequence + 1
	}

	e, err := t.Gate.Check(lastPoint, *reading.Point)
	if err != nil {
		return nil, err
	}
	if !e.Eligible {
		return nil, &GateError{Eligibility: e}
	}

	now := t.now().UTC()
	attachments, err := t.storeFiles(ctx, sessionID, files, now)
	if err != nil {
		return nil, err
	}

	upload := &models.Upload{
		SessionID:            sessionID,
		Sequence:             sequence,
		Latitude:             reading.Point.Latitude,
		Longitude:            reading.Point.Longitude,
		Accuracy:             reading.Accuracy,
		DistanceFromPrevious: e.DistanceMeters,
		Remark:               remark,
		Status:               models.StatusPending,
		Files:                attachments,
		CreatedAt:            now,
	}

	err = t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(upload).Error
	})
	if err != nil {
		t.discardFiles(attachments)
		if latest, lerr := t.LastUpload(ctx, sessionID); lerr == nil && latest != nil && latest.Sequence >= sequence {
			return nil, t.conflict(latest, *reading.Point)
		}
		return nil, fmt.Errorf("save upload: %w", err)
	}

	if err := t.Locations.Consume(ctx, sessionID, reading.Seq); err != nil {
		log.Printf("consume location for session %s: %v", sessionID, err)
	}

	log.Printf("Upload %d accepted for session %s (%d files)", upload.ID, sessionID, len(attachments))
	t.publish(EventUploadCreated, upload)
	return upload, nil
}

// conflict explains a lost race on the session sequence. When the winning upload
// is too close the caller gets the usual gate rejection.
func (t *Tracker) conflict(winner *models.Upload, current geo.GeoPoint) error {
	p := winner.Point()
	if e, err := t.Gate.Check(&p, current); err == nil && !e.Eligible {
		return &GateError{Eligibility: e}
	}
	return fmt.Errorf("%w: sequence %d already taken", ErrUploadConflict, winner.Sequence)
}

func (t *Tracker) storeFiles(ctx context.Context, sessionID string, files []*multipart.FileHeader, now time.Time) ([]models.FileAttachment, error) {
	attachments := make([]models.FileAttachment, 0, len(files))
	for i, fh := range files {
		a, err := t.storeFile(ctx, sessionID, fh, i, now)
		if err != nil {
			t.discardFiles(attachments)
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, nil
}

func (t *Tracker) storeFile(ctx context.Context, sessionID string, fh *multipart.FileHeader, index int, now time.Time) (models.FileAttachment, error) {
	f, err := fh.Open()
	if err != nil {
		return models.FileAttachment{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return models.FileAttachment{}, fmt.Errorf("detect type of %s: %w", fh.Filename, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return models.FileAttachment{}, fmt.Errorf("rewind %s: %w", fh.Filename, err)
	}

	key := GenerateFileKey(sessionID, fh.Filename, now)
	if err := t.Files.Put(ctx, key, mtype.String(), f, fh.Size); err != nil {
		return models.FileAttachment{}, fmt.Errorf("store %s: %w", fh.Filename, err)
	}

	return models.FileAttachment{
		FileName:    fh.Filename,
		StorageKey:  key,
		ContentType: mtype.String(),
		Size:        fh.Size,
		OrderIndex:  index,
	}, nil
}

func (t *Tracker) discardFiles(attachments []models.FileAttachment) {
	for _, a := range attachments {
		if err := t.Files.Delete(context.Background(), a.StorageKey); err != nil {
			log.Printf("cleanup %s: %v", a.StorageKey, err)
		}
	}
}

// UploadFilter narrows upload listings.
type UploadFilter struct {
	SessionID string
	Status    models.UploadStatus
	Page      int
	PageSize  int
}

func (f UploadFilter) apply(db *gorm.DB) *gorm.DB {
	if f.SessionID != "" {
		db = db.Where("session_id = ?", f.SessionID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	return db
}

// SessionUploads lists a session's uploads in the order they were made.
func (t *Tracker) SessionUploads(ctx context.Context, sessionID string, status models.UploadStatus) ([]models.Upload, error) {
	var uploads []models.Upload
	db := UploadFilter{SessionID: sessionID, Status: status}.apply(t.DB.WithContext(ctx).Model(&models.Upload{}))
	err := db.Preload("Files", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index")
	}).Order("sequence ASC").Find(&uploads).Error
	return uploads, err
}

// ListUploads is the admin listing, newest first, with the total row count.
func (t *Tracker) ListUploads(ctx context.Context, filter UploadFilter) ([]models.Upload, int64, error) {
	var total int64
	if err := filter.apply(t.DB.WithContext(ctx).Model(&models.Upload{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db := filter.apply(t.DB.WithContext(ctx).Model(&models.Upload{})).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index")
		}).
		Order("created_at DESC").Order("id DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var uploads []models.Upload
	if err := db.Find(&uploads).Error; err != nil {
		return nil, 0, err
	}
	return uploads, total, nil
}

func (t *Tracker) GetUpload(ctx context.Context, id uint) (*models.Upload, error) {
	var u models.Upload
	err := t.DB.WithContext(ctx).Preload("Files", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index")
	}).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Counts tallies uploads by status; an empty sessionID counts everything.
func (t *Tracker) Counts(ctx context.Context, sessionID string) (models.StatusCounts, error) {
	var rows []struct {
		Status models.UploadStatus
		Count  int64
	}
	db := UploadFilter{SessionID: sessionID}.apply(t.DB.WithContext(ctx).Model(&models.Upload{}))
	if err := db.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return models.StatusCounts{}, err
	}

	var counts models.StatusCounts
	for _, r := range rows {
		counts.Add(r.Status, r.Count)
	}
	return counts, nil
}

// Review applies an admin decision. Only pending uploads can be decided.
func (t *Tracker) Review(ctx context.Context, id uint, to models.UploadStatus, note string) (*models.Upload, error) {
	var reviewed *models.Upload
	err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.Upload
		if err := tx.First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUploadNotFound
			}
			return err
		}
		if err := u.Review(to, note, t.now().UTC()); err != nil {
			return err
		}

		res := tx.Model(&models.Upload{}).
			Where("id = ? AND status = ?", id, models.StatusPending).
			Updates(map[string]interface{}{
				"status":      u.Status,
				"review_note": u.ReviewNote,
				"reviewed_at": u.ReviewedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: upload %d was reviewed concurrently", models.ErrInvalidTransition, id)
		}
		reviewed = &u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := t.DB.WithContext(ctx).Where("upload_id = ?", id).Order("order_index").Find(&reviewed.Files).Error; err != nil {
		return nil, err
	}

	log.Printf("Upload %d %s", id, reviewed.Status)
	t.publish(EventUploadReviewed, reviewed)
	return reviewed, nil
}

// OpenFile returns the attachment record and a reader for its bytes.
func (t *Tracker) OpenFile(ctx context.Context, uploadID, fileID uint) (*models.FileAttachment, io.ReadCloser, error) {
	a, err := t.attachment(ctx, uploadID, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := t.Files.Open(ctx, a.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return a, rc, nil
}

// FileURL returns a direct download link for the attachment, or "" if the
// store cannot produce one.
func (t *Tracker) FileURL(ctx context.Context, uploadID, fileID uint) (string, error) {
	a, err := t.attachment(ctx, uploadID, fileID)
	if err != nil {
		return "", err
	}
	return t.Files.DownloadURL(ctx, a.StorageKey)
}

func (t *Tracker) attachment(ctx context.Context, uploadID, fileID uint) (*models.FileAttachment, error) {
	var a models.FileAttachment
	err := t.DB.WithContext(ctx).Where("id = ? AND upload_id = ?", fileID, uploadID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
