package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dghofer/docsight/internal/fragment"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Heading depth maps
// onto the synthetic font scale so explicit markup survives the trip
// through fragments.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (fragment.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return fragment.Document{}, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var frags []fragment.TextFragment
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title == "" {
				continue
			}
			frags = append(frags, fragment.TextFragment{
				Text:     title,
				FontSize: headingSize(node.Level),
				Bold:     true,
			})
		default:
			if t := extractText(n, src); t != "" {
				frags = append(frags, fragment.TextFragment{Text: t, FontSize: sizeBody})
			}
		}
	}

	return fragment.Document{
		ID:    filename,
		Title: baseTitle(filename),
		Pages: singlePage(filename, frags),
	}, nil
}

// extractText gets the text content of a goldmark AST node. Blocks with
// children (paragraphs, lists) read through the child nodes; leaf blocks
// like fenced code carry their text in raw lines instead.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if c.Type() == ast.TypeBlock && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(extractText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
