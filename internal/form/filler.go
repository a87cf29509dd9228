package form

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Filler writes recipient values into every copy variant of the 1099-NEC
// template. The template bytes are parsed fresh for each row so one filled
// document never leaks state into the next.
type Filler struct {
	template []byte
	conf     *model.Configuration
}

func NewFiller(template []byte) *Filler {
	return &Filler{template: template, conf: readConf()}
}

func readConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Fill produces a fully filled multi-copy document for one recipient row.
// Amount columns are normalized to money strings, other columns trimmed.
// A mapped path absent from the template is skipped, so mapping/template
// drift never fails a row.
func (f *Filler) Fill(row map[string]string) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(f.template), f.conf)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validate template: %w", err)
	}
	if err := forceNeedAppearances(ctx); err != nil {
		return nil, err
	}

	fields, err := indexFields(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range Mappings {
		raw := row[m.Column]
		var val string
		switch {
		case m.Amount:
			val = NormalizeAmount(raw)
		case IsBlank(raw):
			val = ""
		default:
			val = strings.TrimSpace(raw)
		}
		lit, err := textLiteral(val)
		if err != nil {
			return nil, fmt.Errorf("encode value for %q: %w", m.Column, err)
		}
		for _, path := range FieldPaths(m.Column) {
			if d, ok := fields[path]; ok {
				d["V"] = lit
			}
		}
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("write filled form: %w", err)
	}
	return buf.Bytes(), nil
}

// textLiteral encodes cell text as a PDF string literal. Parentheses and
// backslashes in recipient data must be escaped or the written document is
// unreadable.
func textLiteral(s string) (types.StringLiteral, error) {
	esc, err := types.Escape(s)
	if err != nil {
		return "", err
	}
	return types.StringLiteral(*esc), nil
}

// FieldValues reads back every field's stored text keyed by full path.
// Fields without a value are omitted. Serves page-removal value transfer
// and lets tests observe a document's state without a viewer.
func FieldValues(doc []byte) (map[string]string, error) {
	ctx, err := api.ReadContext(bytes.NewReader(doc), readConf())
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return fieldValues(ctx)
}

func fieldValues(ctx *model.Context) (map[string]string, error) {
	fields, err := indexFields(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(fields))
	for name, d := range fields {
		o, found := d.Find("V")
		if !found {
			continue
		}
		v, err := nameString(ctx, o)
		if err != nil {
			continue
		}
		values[name] = v
	}
	return values, nil
}

// acroForm returns the document's interactive form dictionary.
func acroForm(ctx *model.Context) (types.Dict, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, err
	}
	o, found := rootDict.Find("AcroForm")
	if !found {
		return nil, fmt.Errorf("document has no interactive form")
	}
	return ctx.DereferenceDict(o)
}

// forceNeedAppearances makes viewers regenerate visible text from the
// stored /V values.
func forceNeedAppearances(ctx *model.Context) error {
	d, err := acroForm(ctx)
	if err != nil {
		return err
	}
	d["NeedAppearances"] = types.Boolean(true)
	return nil
}

// indexFields maps every fully qualified field name in the form's field
// tree to its dictionary.
func indexFields(ctx *model.Context) (map[string]types.Dict, error) {
	d, err := acroForm(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]types.Dict)
	o, found := d.Find("Fields")
	if !found {
		return index, nil
	}
	roots, err := ctx.DereferenceArray(o)
	if err != nil {
		return nil, err
	}
	if err := walkFields(ctx, roots, "", index); err != nil {
		return nil, err
	}
	return index, nil
}

func walkFields(ctx *model.Context, kids types.Array, prefix string, index map[string]types.Dict) error {
	for _, o := range kids {
		d, err := ctx.DereferenceDict(o)
		if err != nil {
			return err
		}
		if d == nil {
			continue
		}
		name := prefix
		if t, found := d.Find("T"); found {
			partial, err := nameString(ctx, t)
			if err != nil {
				return err
			}
			if name == "" {
				name = partial
			} else {
				name = name + "." + partial
			}
			index[name] = d
		}
		if k, found := d.Find("Kids"); found {
			sub, err := ctx.DereferenceArray(k)
			if err != nil {
				return err
			}
			if err := walkFields(ctx, sub, name, index); err != nil {
				return err
			}
		}
	}
	return nil
}

func nameString(ctx *model.Context, o types.Object) (string, error) {
	o, err := ctx.Dereference(o)
	if err != nil {
		return "", err
	}
	switch t := o.(type) {
	case types.StringLiteral:
		return types.StringLiteralToString(t)
	case types.HexLiteral:
		return types.HexLiteralToString(t)
	default:
		return "", fmt.Errorf("unexpected field name type %T", o)
	}
}
