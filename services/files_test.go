package services

import (
	"mime/multipart"
	"strings"
	"testing"
)

func TestFileRulesValidate(t *testing.T) {
	rules := FileRules{
		MaxFileBytes:      10 * 1024 * 1024,
		MaxFiles:          2,
		AllowedExtensions: []string{".pdf", ".jpg", ".png", ".txt"},
	}
	files := []*multipart.FileHeader{
		{Filename: "site.JPG", Size: 2048},
		{Filename: "scan.pdf", Size: 11 * 1024 * 1024},
		{Filename: "macro.exe", Size: 10},
		{Filename: "notes.txt", Size: 10 * 1024 * 1024},
		{Filename: "extra.png", Size: 1},
	}

	accepted, rejected := rules.Validate(files)
	if len(accepted) != 2 || accepted[0].Filename != "site.JPG" || accepted[1].Filename != "notes.txt" {
		t.Fatalf("accepted = %v", accepted)
	}
	if len(rejected) != 3 {
		t.Fatalf("rejected = %+v", rejected)
	}

	wantReasons := map[string]string{
		"scan.pdf":  "File size must be less than 10 MB",
		"macro.exe": "Unsupported file type",
		"extra.png": "Maximum 2 files allowed per upload",
	}
	for _, r := range rejected {
		if !strings.HasPrefix(r.Reason, wantReasons[r.FileName]) {
			t.Errorf("%s: reason = %q, want prefix %q", r.FileName, r.Reason, wantReasons[r.FileName])
		}
	}
}

func TestGenerateFileKey(t *testing.T) {
	key := GenerateFileKey("abc", "Photo.JPEG", testNow)
	if !strings.HasPrefix(key, "uploads/abc/1717232400_") || !strings.HasSuffix(key, ".jpeg") {
		t.Fatalf("key = %q", key)
	}
}
