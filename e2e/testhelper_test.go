package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/necfill/api/internal/handler"
	"github.com/necfill/api/internal/middleware"
	"github.com/necfill/api/internal/service"
	"github.com/necfill/api/internal/testutil"
	"github.com/necfill/api/internal/worker"
)

const testPassword = "test-password"

// testApp holds all components needed for testing
type testApp struct {
	app  *fiber.App
	jobs *service.JobService
}

// setupApp creates a Fiber app wired like main.go, with a generated form
// template on disk so jobs run for real.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	dir := t.TempDir()
	templatePath := filepath.Join(dir, "1099 NEC FORM.pdf")
	if err := os.WriteFile(templatePath, testutil.BuildFormTemplate(), 0o644); err != nil {
		t.Fatalf("write form template: %v", err)
	}
	workbookPath := filepath.Join(dir, "1099 NEC Default Format.xlsx")
	wb := testutil.BuildWorkbook(t, testutil.MappedHeaders(), nil)
	if err := os.WriteFile(workbookPath, wb, 0o644); err != nil {
		t.Fatalf("write default workbook: %v", err)
	}

	jobService := service.NewJobService(30 * time.Minute)
	generateWorker := worker.NewGenerateWorker(jobService, templatePath, 4)

	generateHandler := handler.NewGenerateHandler(jobService, generateWorker)
	templateHandler := handler.NewTemplateHandler(workbookPath)
	passwordAuth := middleware.NewPasswordAuth(testPassword)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		_, tplErr := os.Stat(templatePath)
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"template": tplErr == nil,
				"jobs":     jobService.Depth(),
			},
		})
	})
	app.Get("/download-template", templateHandler.Download)

	api := app.Group("/api")
	gen := api.Group("/generate")
	gen.Post("/start", passwordAuth.Authenticate(), generateHandler.Start)
	gen.Get("/progress/:jobId", generateHandler.Progress)
	gen.Get("/download/:jobId", generateHandler.Download)

	return &testApp{app: app, jobs: jobService}
}

// createStartRequest builds the multipart upload that kicks off a job.
func createStartRequest(t *testing.T, password string, workbook []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if password != "" {
		_ = writer.WriteField("password", password)
	}
	if workbook != nil {
		part, err := writer.CreateFormFile("excel", "recipients.xlsx")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		_, _ = part.Write(workbook)
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, "/api/generate/start", &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// doGet performs a GET against the test app.
func doGet(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// pollUntilFinished polls the progress endpoint until the job reports
// finished, failing the test if it never does.
func pollUntilFinished(t *testing.T, app *fiber.App, jobID string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp := doGet(t, app, "/api/generate/progress/"+jobID)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("progress poll returned %d", resp.StatusCode)
		}
		result := parseJSON(t, resp)
		if finished, _ := result["finished"].(bool); finished {
			return result
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("job never finished")
	return nil
}
