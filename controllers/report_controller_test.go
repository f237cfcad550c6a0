package controllers

import (
	"testing"

	"go.uber.org/zap"

	"aishare/models"
)

func reportRowCount(t *testing.T, rc *ReportController, targetType string, targetID, reporterID uint) int64 {
	t.Helper()
	var n int64
	if err := rc.db.Model(&models.Report{}).
		Where("target_type = ? AND target_id = ? AND reporter_id = ?", targetType, targetID, reporterID).
		Count(&n).Error; err != nil {
		t.Fatalf("count reports: %v", err)
	}
	return n
}

func TestCreateReportAfterClosedReport(t *testing.T) {
	db := openTestDB(t)
	rc := NewReportController(db, zap.NewNop())

	post := models.Post{Title: "skyline", Content: "neon", Author: "alice", Status: models.StatusPublic}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	closed := models.Report{TargetType: models.TargetPost, TargetID: post.ID,
		ReporterID: 2, Reason: "spam", Status: models.ReportClosed}
	if err := db.Create(&closed).Error; err != nil {
		t.Fatalf("create closed report: %v", err)
	}

	// The unique index covers the target/reporter pair regardless of
	// status; re-filing must return the existing report, not a 500.
	w := invoke(t, rc.Create, "POST", map[string]interface{}{
		"target_type": models.TargetPost, "target_id": post.ID, "reason": "still spam",
	}, nil, &identity{id: 2, name: "bob", role: "user"})
	if w.Code != 200 {
		t.Fatalf("re-report after close: status = %d, body %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["duplicate"] != true {
		t.Fatalf("re-report data = %v, want duplicate flag", data)
	}
	if n := reportRowCount(t, rc, models.TargetPost, post.ID, 2); n != 1 {
		t.Fatalf("report rows = %d, want 1", n)
	}
}

func TestCreateReportDedupesOpenReport(t *testing.T) {
	db := openTestDB(t)
	rc := NewReportController(db, zap.NewNop())

	post := models.Post{Title: "skyline", Content: "neon", Author: "alice", Status: models.StatusPublic}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	bob := &identity{id: 2, name: "bob", role: "user"}
	body := map[string]interface{}{
		"target_type": models.TargetPost, "target_id": post.ID, "reason": "spam",
	}

	w := invoke(t, rc.Create, "POST", body, nil, bob)
	if w.Code != 200 {
		t.Fatalf("first report status = %d, body %s", w.Code, w.Body.String())
	}
	if data := decodeData(t, w); data["duplicate"] == true {
		t.Fatalf("first report flagged duplicate: %v", data)
	}

	w = invoke(t, rc.Create, "POST", body, nil, bob)
	if w.Code != 200 {
		t.Fatalf("second report status = %d, body %s", w.Code, w.Body.String())
	}
	if data := decodeData(t, w); data["duplicate"] != true {
		t.Fatalf("second report data = %v, want duplicate flag", data)
	}
	if n := reportRowCount(t, rc, models.TargetPost, post.ID, 2); n != 1 {
		t.Fatalf("report rows = %d, want 1", n)
	}

	// A different reporter still gets their own report.
	w = invoke(t, rc.Create, "POST", body, nil, &identity{id: 3, name: "carol", role: "user"})
	if w.Code != 200 {
		t.Fatalf("other reporter status = %d", w.Code)
	}
	if n := reportRowCount(t, rc, models.TargetPost, post.ID, 3); n != 1 {
		t.Fatalf("carol's report rows = %d, want 1", n)
	}
}
