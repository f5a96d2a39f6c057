package runner

import (
	"testing"
)

func BenchmarkIsXMLPath(b *testing.B) {
	paths := []string{"pom.xml", "App.csproj", "icon.svg", "main.go", "Makefile", "index.ts"}
	b.ResetTimer()
	for range b.N {
		for _, p := range paths {
			IsXMLPath(p, nil)
		}
	}
}

func BenchmarkIsXMLContent(b *testing.B) {
	content := []byte("\ufeff<?xml version=\"1.0\"?>\n<project>\n  <modelVersion>4.0.0</modelVersion>\n</project>\n")
	b.ResetTimer()
	for range b.N {
		IsXMLContent(content)
	}
}
