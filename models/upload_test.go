package models

import (
	"errors"
	"testing"
	"time"
)

func TestUploadReviewTransitions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		from    UploadStatus
		to      UploadStatus
		wantErr bool
	}{
		{"pending to approved", StatusPending, StatusApproved, false},
		{"pending to rejected", StatusPending, StatusRejected, false},
		{"approved is final", StatusApproved, StatusRejected, true},
		{"rejected is final", StatusRejected, StatusApproved, true},
		{"approved again", StatusApproved, StatusApproved, true},
		{"back to pending", StatusPending, StatusPending, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := &Upload{Status: tc.from}
			err := u.Review(tc.to, "checked", now)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Review(%s -> %s) err = %v, want ErrInvalidTransition", tc.from, tc.to, err)
				}
				if u.Status != tc.from {
					t.Fatalf("status changed to %s on failed review", u.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("Review(%s -> %s) unexpected error: %v", tc.from, tc.to, err)
			}
			if u.Status != tc.to || u.ReviewNote != "checked" || u.ReviewedAt == nil || !u.ReviewedAt.Equal(now) {
				t.Fatalf("unexpected upload after review: %+v", u)
			}
		})
	}
}

func TestStatusCounts(t *testing.T) {
	var c StatusCounts
	c.Add(StatusPending, 3)
	c.Add(StatusApproved, 2)
	c.Add(StatusRejected, 1)
	if c.Total != 6 || c.Pending != 3 || c.Approved != 2 || c.Rejected != 1 {
		t.Fatalf("counts = %+v", c)
	}
}

func TestUploadStatusValid(t *testing.T) {
	for _, s := range []UploadStatus{StatusPending, StatusApproved, StatusRejected} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if UploadStatus("archived").Valid() {
		t.Error("archived should not be valid")
	}
}
