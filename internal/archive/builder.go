// Package archive assembles the downloadable zip for one generation job.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
)

const (
	formLabel        = "1099 NEC"
	contractorLabel  = "Contractor's Copy"
	contractorFolder = "Contractor's Copy"
)

// OutputName is the fixed attachment filename for the finished archive.
const OutputName = "1099_output.zip"

// Builder accumulates per-recipient document pairs. Entry names rely on
// recipient+year uniqueness; duplicates overwrite on extract, which is
// acceptable for this workload.
type Builder struct {
	buf bytes.Buffer
	zw  *zip.Writer
}

func NewBuilder() *Builder {
	b := &Builder{}
	b.zw = zip.NewWriter(&b.buf)
	return b
}

// AddRecipient appends the full form at the top level and the contractor
// copy under the contractor folder.
func (b *Builder) AddRecipient(recipient, year string, full, contractor []byte) error {
	fullName := fmt.Sprintf("%s - %s - %s.pdf", formLabel, recipient, year)
	if err := b.write(fullName, full); err != nil {
		return err
	}
	contractorName := fmt.Sprintf("%s/%s - %s - %s - %s.pdf",
		contractorFolder, formLabel, recipient, contractorLabel, year)
	return b.write(contractorName, contractor)
}

func (b *Builder) write(name string, data []byte) error {
	w, err := b.zw.Create(name)
	if err != nil {
		return fmt.Errorf("create archive entry %q: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write archive entry %q: %w", name, err)
	}
	return nil
}

// Close finalizes the archive and returns its bytes. The builder must not
// be reused afterwards.
func (b *Builder) Close() ([]byte, error) {
	if err := b.zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return b.buf.Bytes(), nil
}
