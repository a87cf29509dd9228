package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/necfill/api/internal/archive"
	"github.com/necfill/api/internal/model"
	"github.com/necfill/api/internal/service"
	"github.com/necfill/api/internal/worker"
	"github.com/necfill/api/pkg/response"
)

type GenerateHandler struct {
	jobs   *service.JobService
	worker *worker.GenerateWorker
}

func NewGenerateHandler(jobs *service.JobService, w *worker.GenerateWorker) *GenerateHandler {
	return &GenerateHandler{
		jobs:   jobs,
		worker: w,
	}
}

// Start handles POST /api/generate/start
// @Summary      Start a generation job
// @Description  Upload a recipient workbook (.xlsx) and start filling forms in the background
// @Tags         Generate
// @Accept       multipart/form-data
// @Produce      json
// @Param        password formData string true "Portal password"
// @Param        excel    formData file   true "Recipient workbook (.xlsx)"
// @Success      202 {object} model.GenerateStartResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Router       /api/generate/start [post]
func (h *GenerateHandler) Start(c *fiber.Ctx) error {
	file, err := c.FormFile("excel")
	if err != nil {
		return response.ValidationError(c, "Excel file is required", nil)
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return response.ServiceError(c, "Failed to read upload")
	}
	if len(data) == 0 {
		return response.ValidationError(c, "Excel file upload was empty", nil)
	}

	jobID := h.jobs.CreateJob()
	h.worker.Enqueue(jobID, data)

	return response.Accepted(c, model.GenerateStartResponse{
		JobID:  jobID,
		Status: model.StatusQueued,
	})
}

// Progress handles GET /api/generate/progress/:jobId
// @Summary      Poll generation progress
// @Description  Per-recipient progress for a running or finished job. Jobs past the retention window come back 404 even if they completed.
// @Tags         Generate
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.GenerateProgressResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /api/generate/progress/{jobId} [get]
func (h *GenerateHandler) Progress(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.jobs.Progress(jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return response.NotFound(c, "Job not found (expired). Please start again.")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Download handles GET /api/generate/download/:jobId
// @Summary      Download the finished archive
// @Tags         Generate
// @Produce      application/zip
// @Param        jobId path string true "Job ID"
// @Success      200 {file} binary
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/generate/download/{jobId} [get]
func (h *GenerateHandler) Download(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	data, err := h.jobs.Result(jobID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			return response.NotFound(c, "Job not found (expired). Please start again.")
		case errors.Is(err, service.ErrJobRunning):
			return response.Conflict(c, "Job still running. Please wait.")
		case errors.Is(err, service.ErrJobFailed):
			return response.JobFailed(c, err.Error())
		default:
			return response.ServiceError(c, "ZIP not available")
		}
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+archive.OutputName+`"`)
	return c.Send(data)
}
