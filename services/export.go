package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/snap-point/fieldtrack/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Uploads"

var exportHeader = []interface{}{
	"ID", "Session", "Sequence", "Created (UTC)", "Latitude", "Longitude",
	"Distance from previous (m)", "Status", "Reviewed (UTC)", "Review note", "Remark", "Files", "Total size",
}

// ExportUploads writes uploads as an XLSX workbook with one row per upload.
func ExportUploads(w io.Writer, uploads []models.Upload) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}

	for i, u := range uploads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		var distance interface{}
		if u.DistanceFromPrevious != nil {
			distance = fmt.Sprintf("%.2f", *u.DistanceFromPrevious)
		}
		var reviewed interface{}
		if u.ReviewedAt != nil {
			reviewed = u.ReviewedAt.UTC().Format(time.RFC3339)
		}

		names := make([]string, 0, len(u.Files))
		var total int64
		for _, file := range u.Files {
			names = append(names, file.FileName)
			total += file.Size
		}

		row := []interface{}{
			u.ID, u.SessionID, u.Sequence, u.CreatedAt.UTC().Format(time.RFC3339),
			u.Latitude, u.Longitude, distance, string(u.Status), reviewed, u.ReviewNote, u.Remark,
			strings.Join(names, ", "), humanize.Bytes(uint64(total)),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
