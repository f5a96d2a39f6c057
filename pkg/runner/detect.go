package runner

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// xmlLanguages are the linguist languages whose files are XML documents.
//
//nolint:gochecknoglobals // Read-only lookup table.
var xmlLanguages = map[string]bool{
	"XML":                   true,
	"XML Property List":     true,
	"SVG":                   true,
	"XSLT":                  true,
	"XProc":                 true,
	"Maven POM":             true,
	"Ant Build System":      true,
	"Genshi":                true,
	"Web Ontology Language": true,
	"Collada":               true,
	"RDF":                   true,
}

// DefaultExtensions returns extensions that are XML even where language
// detection is ambiguous about them.
func DefaultExtensions() []string {
	return []string{".xml", ".xsd", ".xsl", ".xslt", ".svg", ".xhtml", ".plist", ".rss", ".atom"}
}

// IsXMLPath reports whether the file name alone identifies an XML
// document, either through extra or through language detection.
func IsXMLPath(path string, extra []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" && (slices.Contains(DefaultExtensions(), ext) || slices.Contains(extra, ext)) {
		return true
	}

	if lang, safe := enry.GetLanguageByFilename(path); safe {
		return xmlLanguages[lang]
	}
	// Ambiguous extensions such as ".ts" count only when every candidate
	// language is XML.
	langs := enry.GetLanguagesByExtension(path, nil, nil)
	if len(langs) == 0 {
		return false
	}
	for _, lang := range langs {
		if !xmlLanguages[lang] {
			return false
		}
	}
	return true
}

// IsXMLContent reports whether content looks like an XML document: text,
// starting with markup after optional whitespace and byte order mark.
func IsXMLContent(content []byte) bool {
	if enry.IsBinary(content) {
		return false
	}
	s := strings.TrimPrefix(string(content), "\ufeff")
	s = strings.TrimLeft(s, " \t\r\n")
	return strings.HasPrefix(s, "<")
}
