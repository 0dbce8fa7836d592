// Package fileparse classifies generated text as either a fenced,
// filename-tagged multi-file payload or a single HTML document.
package fileparse

import (
	"regexp"
	"strings"
)

// File is one named file extracted from a generated payload.
type File struct {
	Language string `json:"language"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

var (
	// Fenced blocks tagged `language:filename` on the opening fence.
	blockPattern = regexp.MustCompile("(?s)```(\\w+):([^\n]+)\n(.*?)```")

	// A complete single document, DOCTYPE through the last closing tag.
	documentPattern = regexp.MustCompile(`(?is)<!DOCTYPE html>.*</html>`)

	// A document prefix for live partial rendering.
	partialPattern = regexp.MustCompile(`(?is)<!DOCTYPE html>.*`)
)

// Parse extracts files from generated text. Filename-tagged fenced
// blocks win; with none present the first complete HTML document
// becomes a single index.html entry. An empty result is a valid
// outcome, not an error. Duplicate filenames are kept in order of
// appearance; collapsing them is editor-state policy, not parse
// policy.
func Parse(content string) []File {
	var files []File
	for _, match := range blockPattern.FindAllStringSubmatch(content, -1) {
		files = append(files, File{
			Language: match[1],
			Filename: strings.TrimSpace(match[2]),
			Content:  strings.TrimSpace(match[3]),
		})
	}

	if len(files) == 0 {
		if doc, ok := ExtractDocument(content); ok {
			files = append(files, File{
				Language: "html",
				Filename: "index.html",
				Content:  doc,
			})
		}
	}

	return files
}

// Serialize renders files back into fenced `language:filename` blocks.
// Re-parsing the output reproduces the same files.
func Serialize(files []File) string {
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("```")
		b.WriteString(f.Language)
		b.WriteString(":")
		b.WriteString(f.Filename)
		b.WriteString("\n")
		b.WriteString(f.Content)
		b.WriteString("\n```")
	}
	return b.String()
}

// ExtractDocument returns the first complete HTML document in content.
func ExtractDocument(content string) (string, bool) {
	doc := documentPattern.FindString(content)
	return doc, doc != ""
}

// PartialDocument returns a best-effort renderable document from an
// incomplete stream, appending a synthetic closing tag when the real
// one has not arrived yet.
func PartialDocument(content string) (string, bool) {
	doc := partialPattern.FindString(content)
	if doc == "" {
		return "", false
	}
	if !strings.Contains(strings.ToLower(doc), "</html>") {
		doc += "\n</html>"
	}
	return doc, true
}
