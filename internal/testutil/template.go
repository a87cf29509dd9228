// Package testutil builds the PDF template and workbook fixtures the tests
// run against, so no binary files live in the repo.
package testutil

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/necfill/api/internal/form"
)

// The real template carries instruction pages after the copy pages; the
// fixture mirrors that so page-subset math is exercised.
const instructionPages = 2

// BuildFormTemplate returns a minimal PDF shaped like the 1099-NEC template:
// one page per copy variant, trailing instruction pages, and an AcroForm
// whose field tree replicates every mapped field path. Copy pages appear in
// form.Copies order, so the regulatory copies own the first two pages.
func BuildFormTemplate() []byte {
	w := newObjWriter()

	catalog := w.alloc()
	pages := w.alloc()
	font := w.alloc()
	contents := w.alloc()

	numPages := len(form.Copies) + instructionPages
	pageObjs := make([]int, numPages)
	for i := range pageObjs {
		pageObjs[i] = w.alloc()
	}

	// Field tree from the mapping table's replicated paths. The copy segment
	// decides which page hosts the terminal widget.
	root := newFieldNode("")
	for _, m := range form.Mappings {
		for i, p := range form.FieldPaths(m.Column) {
			root.insert(strings.Split(p, "."), i)
		}
	}

	annots := make(map[int][]int)
	var rootRefs []string
	for _, kid := range root.kids {
		n := buildField(w, kid, 0, pageObjs, annots)
		rootRefs = append(rootRefs, fmt.Sprintf("%d 0 R", n))
	}

	acro := w.alloc()
	w.set(acro, fmt.Sprintf(
		"<< /Fields [%s] /DA (/Helv 0 Tf 0 g) /DR << /Font << /Helv %d 0 R >> >> >>",
		strings.Join(rootRefs, " "), font))

	w.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /AcroForm %d 0 R >>", pages, acro))

	var kidRefs []string
	for _, p := range pageObjs {
		kidRefs = append(kidRefs, fmt.Sprintf("%d 0 R", p))
	}
	w.set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kidRefs, " "), numPages))
	w.set(font, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	w.set(contents, "<< /Length 0 >>\nstream\n\nendstream")

	for i, p := range pageObjs {
		extra := ""
		if refs := annots[i]; len(refs) > 0 {
			var rs []string
			for _, r := range refs {
				rs = append(rs, fmt.Sprintf("%d 0 R", r))
			}
			extra = fmt.Sprintf(" /Annots [%s]", strings.Join(rs, " "))
		}
		w.set(p, fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /Helv %d 0 R >> >> /Contents %d 0 R%s >>",
			pages, font, contents, extra))
	}

	return w.render()
}

type fieldNode struct {
	name  string
	kids  []*fieldNode
	byKey map[string]*fieldNode
	page  int
}

func newFieldNode(name string) *fieldNode {
	return &fieldNode{name: name, byKey: map[string]*fieldNode{}, page: -1}
}

func (n *fieldNode) insert(segs []string, page int) {
	if len(segs) == 0 {
		return
	}
	kid, ok := n.byKey[segs[0]]
	if !ok {
		kid = newFieldNode(segs[0])
		n.byKey[segs[0]] = kid
		n.kids = append(n.kids, kid)
	}
	if len(segs) == 1 {
		kid.page = page
		return
	}
	kid.insert(segs[1:], page)
}

// buildField allocates an object per field node. Terminal nodes are merged
// field/widget dictionaries hosted on their copy's page.
func buildField(w *objWriter, n *fieldNode, parent int, pageObjs []int, annots map[int][]int) int {
	num := w.alloc()
	parentRef := ""
	if parent != 0 {
		parentRef = fmt.Sprintf(" /Parent %d 0 R", parent)
	}

	if len(n.kids) == 0 {
		page := n.page
		if page < 0 {
			page = 0
		}
		annots[page] = append(annots[page], num)
		w.set(num, fmt.Sprintf(
			"<< /T (%s) /FT /Tx /Type /Annot /Subtype /Widget /Rect [36 700 288 714] /F 4 /P %d 0 R /DA (/Helv 0 Tf 0 g)%s >>",
			escapeName(n.name), pageObjs[page], parentRef))
		return num
	}

	var refs []string
	for _, kid := range n.kids {
		refs = append(refs, fmt.Sprintf("%d 0 R", buildField(w, kid, num, pageObjs, annots)))
	}
	w.set(num, fmt.Sprintf("<< /T (%s) /Kids [%s]%s >>", escapeName(n.name), strings.Join(refs, " "), parentRef))
	return num
}

var nameEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func escapeName(s string) string {
	return nameEscaper.Replace(s)
}

// objWriter assembles a classic cross-referenced PDF body. Object numbers
// are allocated up front so bodies can reference objects set later.
type objWriter struct {
	bodies map[int]string
	next   int
}

func newObjWriter() *objWriter {
	return &objWriter{bodies: map[int]string{}, next: 1}
}

func (w *objWriter) alloc() int {
	n := w.next
	w.next++
	return n
}

func (w *objWriter) set(num int, body string) {
	w.bodies[num] = body
}

func (w *objWriter) render() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, w.next)
	for n := 1; n < w.next; n++ {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, w.bodies[n])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", w.next)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n < w.next; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", w.next, xref)
	return buf.Bytes()
}
