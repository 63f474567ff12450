package session

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// The extractor below treats a record as a loose schema: one level-1
// title heading and named level-2 sections. It is lossy on purpose. Content
// it does not recognize is ignored rather than rejected, because the agent
// edits these files freely.

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

func parser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New()
	})
	return markdownParser
}

// Section is one level-2 heading and the raw markdown beneath it.
type Section struct {
	Name string
	Body string
}

// Sections is the ordered list of sections found in a record.
type Sections []Section

// Get returns the body of the named section (case-insensitive).
func (s Sections) Get(name string) (string, bool) {
	for _, sec := range s {
		if strings.EqualFold(sec.Name, name) {
			return sec.Body, true
		}
	}
	return "", false
}

// Title returns the record title from the first level-1 heading, with a
// leading "Session:" stripped. It returns "" when there is no such heading.
func Title(content string) string {
	source := []byte(content)
	doc := parser().Parser().Parse(text.NewReader(source))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			continue
		}
		title := strings.TrimSpace(inlineText(h, source))
		if rest, found := cutPrefixFold(title, "session:"); found {
			title = strings.TrimSpace(rest)
		}
		return title
	}
	return ""
}

// ExtractSections splits a record into its level-2 sections.
func ExtractSections(content string) Sections {
	source := []byte(content)
	doc := parser().Parser().Parse(text.NewReader(source))

	type mark struct {
		name      string
		lineStart int
		bodyStart int
	}
	var marks []mark

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level > 2 || h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		lineStart := bytes.LastIndexByte(source[:seg.Start], '\n') + 1
		bodyStart := len(source)
		if i := bytes.IndexByte(source[seg.Stop:], '\n'); i >= 0 {
			bodyStart = seg.Stop + i + 1
		}
		name := ""
		if h.Level == 2 {
			name = strings.TrimSpace(inlineText(h, source))
		}
		marks = append(marks, mark{name: name, lineStart: lineStart, bodyStart: bodyStart})
	}

	var out Sections
	for i, m := range marks {
		if m.name == "" {
			continue
		}
		end := len(source)
		if i+1 < len(marks) {
			end = marks[i+1].lineStart
		}
		if end < m.bodyStart {
			end = m.bodyStart
		}
		out = append(out, Section{
			Name: m.name,
			Body: strings.TrimSpace(string(source[m.bodyStart:end])),
		})
	}
	return out
}

// inlineText concatenates the literal text beneath an inline container.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(inlineText(c, source))
		}
	}
	return sb.String()
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
