package form

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// The first two pages of the filled document belong to the regulatory
// copies and are omitted from the contractor's copy.
const regulatoryPages = 2

// ContractorCopy derives the contractor-facing document from a fully filled
// form. The whole document is duplicated and the leading regulatory pages
// removed. Page removal rewrites the document and the surviving fields come
// back with empty values, so the filled values are captured up front and
// written back onto every field that survives the trim. Documents with no
// pages beyond the regulatory ones are returned unchanged.
func ContractorCopy(full []byte) ([]byte, error) {
	conf := readConf()

	ctx, err := api.ReadContext(bytes.NewReader(full), conf)
	if err != nil {
		return nil, fmt.Errorf("read filled form: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validate filled form: %w", err)
	}
	if ctx.PageCount <= regulatoryPages {
		return full, nil
	}

	values, err := fieldValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture filled values: %w", err)
	}

	var trimmed bytes.Buffer
	if err := api.RemovePages(bytes.NewReader(full), &trimmed, []string{fmt.Sprintf("1-%d", regulatoryPages)}, conf); err != nil {
		return nil, fmt.Errorf("remove regulatory pages: %w", err)
	}

	ctx, err = api.ReadContext(bytes.NewReader(trimmed.Bytes()), conf)
	if err != nil {
		return nil, fmt.Errorf("reread contractor copy: %w", err)
	}

	fields, err := indexFields(ctx)
	if err != nil {
		return nil, err
	}
	for name, d := range fields {
		v, ok := values[name]
		if !ok {
			continue
		}
		lit, err := textLiteral(v)
		if err != nil {
			return nil, fmt.Errorf("encode value for %q: %w", name, err)
		}
		d["V"] = lit
	}

	// Viewers must rebuild appearances for the surviving fields as well.
	if err := forceNeedAppearances(ctx); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("write contractor copy: %w", err)
	}
	return out.Bytes(), nil
}

// PageCount reports how many pages a document has. Exists so callers and
// tests can check page structure without a viewer.
func PageCount(doc []byte) (int, error) {
	ctx, err := api.ReadContext(bytes.NewReader(doc), readConf())
	if err != nil {
		return 0, err
	}
	if err := api.ValidateContext(ctx); err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}
