package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SchemaMajor is the bundle format major version this build reads.
const SchemaMajor = "v1"

var ErrSchemaVersion = errors.New("unsupported bundle schema version")

// Bundle is the document exchanged by the CLI and the HTTP API: a worksheet,
// its questions and, for settlement, the graded results.
type Bundle struct {
	SchemaVersion string      `json:"schemaVersion"`
	Worksheet     *Worksheet  `json:"worksheet,omitempty"`
	Questions     []Question  `json:"questions"`
	Results       ResultState `json:"results,omitempty"`
}

// DecodeBundle reads a bundle, checks it against BundleSchema and the
// supported schema version, and validates every question.
func DecodeBundle(r io.Reader) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	sch, err := bundleValidator()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("bundle schema: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if err := checkSchemaVersion(b.SchemaVersion); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadBundle decodes the bundle stored at path.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()
	return DecodeBundle(f)
}

func checkSchemaVersion(v string) error {
	canonical := "v" + strings.TrimPrefix(v, "v")
	if !semver.IsValid(canonical) || semver.Major(canonical) != SchemaMajor {
		return fmt.Errorf("%w: %q (want %s.x)", ErrSchemaVersion, v, SchemaMajor)
	}
	return nil
}

// Validate runs question and worksheet checks.
func (b *Bundle) Validate() error {
	if b.Worksheet != nil {
		if err := b.Worksheet.Validate(); err != nil {
			return err
		}
	}
	for _, q := range b.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Ordered returns the questions in worksheet order. Ids the worksheet lists
// but the bundle does not carry are skipped; without a worksheet, or with an
// empty question list, the bundle order is kept.
func (b *Bundle) Ordered() []Question {
	if b.Worksheet == nil || len(b.Worksheet.Questions) == 0 {
		return b.Questions
	}
	byID := make(map[string]Question, len(b.Questions))
	for _, q := range b.Questions {
		byID[q.ID] = q
	}
	out := make([]Question, 0, len(b.Worksheet.Questions))
	for _, id := range b.Worksheet.Questions {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}
