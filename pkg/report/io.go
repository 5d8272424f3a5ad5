package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lineagescope/pkg/errors"
)

// =============================================================================
// Decoding
// =============================================================================

// Read decodes a JSON report from r. It does not close r.
//
// Only malformed JSON is an error. A report that decodes but lacks a target
// or packages is returned as-is; use [Report.Validate] to reject it.
func Read(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "decode report")
	}
	return &rep, nil
}

// Parse decodes a JSON report held in memory.
func Parse(data []byte) (*Report, error) {
	return Read(bytes.NewReader(data))
}

// ReadFile reads and decodes the report at path.
func ReadFile(path string) (*Report, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// =============================================================================
// Encoding
// =============================================================================

// Write encodes r in canonical form: every group carries a references array
// and field aliases are folded into their primary names.
func Write(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the canonical JSON encoding of r.
func Marshal(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes r to path with 0644 permissions.
func WriteFile(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, r)
}
