package e2e

import (
	"archive/zip"
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/necfill/api/internal/testutil"
)

func sampleWorkbook(t *testing.T) []byte {
	t.Helper()
	headers := testutil.MappedHeaders()
	row := make([]string, len(headers))
	for i, h := range headers {
		switch h {
		case "RECIPIENT’S name":
			row[i] = "Jane Doe"
		case "FOR CALENDAR\nYEAR":
			row[i] = "2023"
		case "1 Nonemployee\ncompensation":
			row[i] = "1234.5"
		default:
			row[i] = "x"
		}
	}
	return testutil.BuildWorkbook(t, headers, [][]string{row})
}

func TestGenerateFlow_Success(t *testing.T) {
	ta := setupApp(t)

	req := createStartRequest(t, testPassword, sampleWorkbook(t))
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	jobID, _ := result["job_id"].(string)
	if jobID == "" {
		t.Fatal("expected 'job_id' in response")
	}
	if result["status"] != "Queued" {
		t.Errorf("expected status Queued, got %v", result["status"])
	}

	progress := pollUntilFinished(t, ta.app, jobID)
	if progress["error"] != nil {
		t.Fatalf("job failed: %v", progress["error"])
	}
	if progress["status"] != "Completed" {
		t.Errorf("expected status Completed, got %v", progress["status"])
	}
	if percent, _ := progress["percent"].(float64); percent != 100 {
		t.Errorf("expected percent 100, got %v", progress["percent"])
	}

	dl := doGet(t, ta.app, "/api/generate/download/"+jobID)
	assertStatus(t, dl, http.StatusOK)
	if ct := dl.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("expected Content-Type application/zip, got %q", ct)
	}
	if cd := dl.Header.Get("Content-Disposition"); !strings.Contains(cd, "1099_output.zip") {
		t.Errorf("expected attachment filename in %q", cd)
	}

	data, err := io.ReadAll(dl.Body)
	dl.Body.Close()
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("downloaded archive is not a zip: %v", err)
	}
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["1099 NEC - Jane Doe - 2023.pdf"] {
		t.Error("archive missing full copy entry")
	}
	if !names["Contractor's Copy/1099 NEC - Jane Doe - Contractor's Copy - 2023.pdf"] {
		t.Error("archive missing contractor copy entry")
	}
}

func TestGenerateStart_WrongPassword(t *testing.T) {
	ta := setupApp(t)

	req := createStartRequest(t, "wrong-password", sampleWorkbook(t))
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusForbidden)

	result := parseJSON(t, resp)
	errObj, _ := result["error"].(map[string]interface{})
	if errObj == nil || errObj["code"] != "FORBIDDEN" {
		t.Errorf("expected FORBIDDEN error, got %v", result)
	}
}

func TestGenerateStart_PasswordHeader(t *testing.T) {
	ta := setupApp(t)

	req := createStartRequest(t, "", sampleWorkbook(t))
	req.Header.Set("X-Portal-Password", testPassword)
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
}

func TestGenerateStart_MissingFile(t *testing.T) {
	ta := setupApp(t)

	req := createStartRequest(t, testPassword, nil)
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	errObj, _ := result["error"].(map[string]interface{})
	if errObj == nil || errObj["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", result)
	}
}

func TestGenerateFlow_MissingColumns(t *testing.T) {
	ta := setupApp(t)

	wb := testutil.BuildWorkbook(t, []string{"Name"}, [][]string{{"Jane"}})
	req := createStartRequest(t, testPassword, wb)
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
	jobID, _ := parseJSON(t, resp)["job_id"].(string)

	progress := pollUntilFinished(t, ta.app, jobID)
	if progress["status"] != "Error" {
		t.Errorf("expected status Error, got %v", progress["status"])
	}
	msg, _ := progress["error"].(string)
	if !strings.Contains(msg, "missing required columns") {
		t.Errorf("expected missing-columns error, got %q", msg)
	}

	dl := doGet(t, ta.app, "/api/generate/download/"+jobID)
	assertStatus(t, dl, http.StatusBadRequest)
	result := parseJSON(t, dl)
	errObj, _ := result["error"].(map[string]interface{})
	if errObj == nil || errObj["code"] != "JOB_FAILED" {
		t.Errorf("expected JOB_FAILED error, got %v", result)
	}
}

func TestGenerateProgress_UnknownJob(t *testing.T) {
	ta := setupApp(t)

	resp := doGet(t, ta.app, "/api/generate/progress/no-such-job")
	assertStatus(t, resp, http.StatusNotFound)

	result := parseJSON(t, resp)
	errObj, _ := result["error"].(map[string]interface{})
	if errObj == nil || errObj["code"] != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND error, got %v", result)
	}
}

func TestGenerateDownload_StillRunning(t *testing.T) {
	ta := setupApp(t)

	// Registered but never handed to the worker, so it stays unfinished.
	jobID := ta.jobs.CreateJob()

	resp := doGet(t, ta.app, "/api/generate/download/"+jobID)
	assertStatus(t, resp, http.StatusConflict)

	result := parseJSON(t, resp)
	errObj, _ := result["error"].(map[string]interface{})
	if errObj == nil || errObj["code"] != "CONFLICT" {
		t.Errorf("expected CONFLICT error, got %v", result)
	}
}

func TestDownloadTemplate(t *testing.T) {
	ta := setupApp(t)

	resp := doGet(t, ta.app, "/download-template")
	assertStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
		t.Errorf("expected workbook attachment, got %q", cd)
	}
	body := readBody(t, resp)
	if len(body) == 0 {
		t.Error("expected workbook bytes in response")
	}
}

func TestHealth(t *testing.T) {
	ta := setupApp(t)

	resp := doGet(t, ta.app, "/health")
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["status"] != "ok" {
		t.Errorf("expected status ok, got %v", result["status"])
	}
	services, _ := result["services"].(map[string]interface{})
	if services == nil || services["template"] != true {
		t.Errorf("expected template=true in health, got %v", result)
	}
}
