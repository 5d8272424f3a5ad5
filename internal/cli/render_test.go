package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"dot only", "dot", []string{"dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"empty output strips input ext", "", "report.json", "report"},
		{"empty output with path", "", "/path/to/report.json", "/path/to/report"},
		{"output with svg ext", "out.svg", "report.json", "out"},
		{"output with dot ext", "out.dot", "report.json", "out"},
		{"output without ext", "output", "report.json", "output"},
		{"output with unknown ext", "out.txt", "report.json", "out.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output   string
		format   string
		multiple bool
		want     string
	}{
		{"", "svg", false, "report.svg"},
		{"graph.svg", "svg", false, "graph.svg"},
		{"graph.svg", "png", true, "graph.png"},
		{"graph", "dot", true, "graph.dot"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, "report.json", tt.format, tt.multiple); got != tt.want {
			t.Errorf("outputPath(%q, %q, %v) = %q, want %q", tt.output, tt.format, tt.multiple, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.json")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"dot": []byte("digraph G {}"), "json": []byte("{}")},
		formats:   []string{"dot", "json"},
		input:     input,
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error = %v", err)
	}
	for _, name := range []string{"report.dot", "report.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	err = writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{},
		formats:   []string{"svg"},
		input:     input,
	})
	if err == nil {
		t.Error("missing artifact should fail")
	}
}
