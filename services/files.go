package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/snap-point/fieldtrack/config"
)

// FileRejection explains why a selected file was left out of an upload.
type FileRejection struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Reason   string `json:"reason"`
}

// FileRules is the server-side copy of the file picker's constraints.
type FileRules struct {
	MaxFileBytes      int64
	MaxFiles          int
	AllowedExtensions []string
}

func NewFileRules(cfg config.UploadConfig) FileRules {
	return FileRules{
		MaxFileBytes:      cfg.MaxFileBytes,
		MaxFiles:          cfg.MaxFilesPerUpload,
		AllowedExtensions: cfg.AllowedExtensions,
	}
}

func (r FileRules) allowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range r.AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// SizeLimitMessage is the text shown for an oversized file.
func (r FileRules) SizeLimitMessage() string {
	return fmt.Sprintf("File size must be less than %s", humanize.Bytes(uint64(r.MaxFileBytes)))
}

// Validate splits the selection into files that may be uploaded and files that
// were excluded. Offending files never abort the whole selection.
func (r FileRules) Validate(files []*multipart.FileHeader) ([]*multipart.FileHeader, []FileRejection) {
	var accepted []*multipart.FileHeader
	var rejected []FileRejection

	for _, fh := range files {
		switch {
		case !r.allowed(fh.Filename):
			rejected = append(rejected, FileRejection{FileName: fh.Filename, Size: fh.Size,
				Reason: fmt.Sprintf("Unsupported file type; allowed: %s", strings.Join(r.AllowedExtensions, ", "))})
		case r.MaxFileBytes > 0 && fh.Size > r.MaxFileBytes:
			rejected = append(rejected, FileRejection{FileName: fh.Filename, Size: fh.Size, Reason: r.SizeLimitMessage()})
		case r.MaxFiles > 0 && len(accepted) >= r.MaxFiles:
			rejected = append(rejected, FileRejection{FileName: fh.Filename, Size: fh.Size,
				Reason: fmt.Sprintf("Maximum %d files allowed per upload", r.MaxFiles)})
		default:
			accepted = append(accepted, fh)
		}
	}
	return accepted, rejected
}
