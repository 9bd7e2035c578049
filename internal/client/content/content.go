// Package content converts between the canonical serialized document state
// of a post and its plain-text projection.
//
// A document is a Lexical-style JSON tree: a root node whose children are
// block nodes (paragraph, heading, listitem, quote) that eventually contain
// text runs. Nothing in this package returns an error; malformed input falls
// back to EmptyDocument or to an empty projection.
package content

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// EmptyDocument is the canonical representation of "no content": a root with
// one paragraph holding one empty text run.
const EmptyDocument = `{"root":{"children":[{"children":[{"text":"","type":"text"}],"type":"paragraph"}],"direction":"ltr","format":"","indent":0,"type":"root","version":1}}`

var newlineRuns = regexp.MustCompile(`\n{2,}`)

var blockTypes = map[string]struct{}{
	"paragraph": {},
	"heading":   {},
	"listitem":  {},
	"quote":     {},
}

// Normalize turns any representation of document state into its canonical
// serialized form.
func Normalize(raw any) string {
	switch v := raw.(type) {
	case nil:
		return EmptyDocument
	case string:
		return normalizeString(v)
	case []byte:
		return normalizeString(string(v))
	case json.RawMessage:
		return normalizeJSON(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return EmptyDocument
		}
		return normalizeJSON(b)
	}
}

func normalizeString(s string) string {
	if strings.TrimSpace(s) == "" {
		return EmptyDocument
	}
	return s
}

func normalizeJSON(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return EmptyDocument
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return EmptyDocument
		}
		return normalizeString(s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return EmptyDocument
	}
	return buf.String()
}

// IsEmpty reports whether canonical holds no fetched content, either blank
// or the canonical empty document.
func IsEmpty(canonical string) bool {
	return strings.TrimSpace(canonical) == "" || canonical == EmptyDocument
}

// ExtractPlainText derives the plain-text projection of canonical content.
// Every block that produced at least one text run ends with a line break;
// repeated line breaks collapse to one and the result is trimmed.
func ExtractPlainText(canonical string) string {
	var doc struct {
		Root struct {
			Children []any `json:"children"`
		} `json:"root"`
	}
	if err := json.Unmarshal([]byte(canonical), &doc); err != nil || doc.Root.Children == nil {
		return ""
	}

	var sb strings.Builder
	runs := 0
	for _, child := range doc.Root.Children {
		collect(child, &sb, &runs)
	}

	return strings.TrimSpace(newlineRuns.ReplaceAllString(sb.String(), "\n"))
}

func collect(node any, sb *strings.Builder, runs *int) {
	m, ok := node.(map[string]any)
	if !ok {
		return
	}
	typ, _ := m["type"].(string)

	if typ == "text" {
		if text, ok := m["text"].(string); ok {
			sb.WriteString(text)
			*runs++
			return
		}
	}

	children, ok := m["children"].([]any)
	if !ok {
		return
	}
	before := *runs
	for _, child := range children {
		collect(child, sb, runs)
	}
	if _, block := blockTypes[typ]; block && *runs > before {
		sb.WriteByte('\n')
		*runs++
	}
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

type textNode struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type paragraphNode struct {
	Children []textNode `json:"children"`
	Type     string     `json:"type"`
}

type rootNode struct {
	Children  []paragraphNode `json:"children"`
	Direction string          `json:"direction"`
	Format    string          `json:"format"`
	Indent    int             `json:"indent"`
	Type      string          `json:"type"`
	Version   int             `json:"version"`
}

// FromPlainText builds canonical content with one paragraph per non-blank
// line of text. Blank input yields EmptyDocument.
func FromPlainText(text string) string {
	var paragraphs []paragraphNode
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		paragraphs = append(paragraphs, paragraphNode{
			Children: []textNode{{Text: line, Type: "text"}},
			Type:     "paragraph",
		})
	}
	if len(paragraphs) == 0 {
		return EmptyDocument
	}

	doc := struct {
		Root rootNode `json:"root"`
	}{Root: rootNode{
		Children:  paragraphs,
		Direction: "ltr",
		Type:      "root",
		Version:   1,
	}}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return EmptyDocument
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
