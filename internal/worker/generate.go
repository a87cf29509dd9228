package worker

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/semaphore"

	"github.com/necfill/api/internal/archive"
	"github.com/necfill/api/internal/form"
	"github.com/necfill/api/internal/service"
	"github.com/necfill/api/internal/sheet"
)

// GenerateWorker runs generation jobs in the background while clients poll
// the registry. A weighted semaphore bounds how many jobs run at once;
// submissions past the bound wait their turn in the queued state.
type GenerateWorker struct {
	jobs         *service.JobService
	templatePath string
	slots        *semaphore.Weighted
}

func NewGenerateWorker(jobs *service.JobService, templatePath string, maxConcurrent int) *GenerateWorker {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &GenerateWorker{
		jobs:         jobs,
		templatePath: templatePath,
		slots:        semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Enqueue schedules one job and returns immediately. Once started the job
// runs to completion or failure; there is no cancellation path.
func (w *GenerateWorker) Enqueue(jobID string, workbook []byte) {
	go func() {
		if err := w.slots.Acquire(context.Background(), 1); err != nil {
			w.jobs.Fail(jobID, err.Error())
			return
		}
		defer w.slots.Release(1)
		w.process(jobID, workbook)
	}()
}

// process runs the whole per-job pipeline. Any error aborts the batch and
// lands verbatim on the job record; nothing may escape unrecorded.
func (w *GenerateWorker) process(jobID string, workbook []byte) {
	log.Printf("Starting generation job: %s", jobID)
	if err := w.run(jobID, workbook); err != nil {
		log.Printf("Generation job %s failed: %v", jobID, err)
		w.jobs.Fail(jobID, err.Error())
		return
	}
	log.Printf("Generation job %s completed", jobID)
}

func (w *GenerateWorker) run(jobID string, workbook []byte) error {
	tpl, err := os.ReadFile(w.templatePath)
	if err != nil {
		return fmt.Errorf("missing template on server: %s", w.templatePath)
	}

	wb, err := sheet.Parse(workbook)
	if err != nil {
		return err
	}

	var missing []string
	for _, col := range form.RequiredColumns {
		if !wb.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("workbook missing required columns: %q; headers must match the default format exactly", missing)
	}

	rows := usableRows(wb)
	if len(rows) == 0 {
		return fmt.Errorf("no usable recipient rows found in workbook")
	}

	w.jobs.SetRunning(jobID, len(rows))

	filler := form.NewFiller(tpl)
	builder := archive.NewBuilder()
	for i, row := range rows {
		recipient := form.CleanFilename(row.Get(form.ColRecipient))
		year := form.SafeYear(row.Get(form.ColYear))
		w.jobs.SetStatus(jobID, fmt.Sprintf("Filling: %s (%d/%d)", recipient, i+1, len(rows)))

		full, err := filler.Fill(row)
		if err != nil {
			return fmt.Errorf("fill form for %s: %w", recipient, err)
		}
		contractor, err := form.ContractorCopy(full)
		if err != nil {
			return fmt.Errorf("derive contractor copy for %s: %w", recipient, err)
		}
		if err := builder.AddRecipient(recipient, year, full, contractor); err != nil {
			return err
		}
		w.jobs.RowDone(jobID, i+1)
	}

	out, err := builder.Close()
	if err != nil {
		return err
	}
	w.jobs.Complete(jobID, out)
	return nil
}

// usableRows drops rows where every column is blank.
func usableRows(wb *sheet.Workbook) []sheet.Row {
	rows := make([]sheet.Row, 0, len(wb.Rows))
	for _, row := range wb.Rows {
		if allBlank(row, wb.Columns) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func allBlank(row sheet.Row, columns []string) bool {
	for _, c := range columns {
		if c == "" {
			continue
		}
		if !form.IsBlank(row.Get(c)) {
			return false
		}
	}
	return true
}
