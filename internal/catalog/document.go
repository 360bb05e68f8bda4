package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the document format major version this build reads.
const SupportedMajor = "v1"

//go:embed schema.json
var documentSchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Document is an importable catalog file. YAML and JSON are both accepted.
type Document struct {
	FormatVersion string    `json:"format_version"`
	Exams         []ExamDoc `json:"exams"`
}

// ExamDoc is one exam in a Document.
type ExamDoc struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Sections    []SectionDoc `json:"sections"`
}

// SectionDoc is one section in a Document.
type SectionDoc struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Questions   []QuestionDoc `json:"questions"`
}

// QuestionDoc is one question in a Document.
type QuestionDoc struct {
	Body        string               `json:"body"`
	Options     map[OptionKey]string `json:"options"`
	Answer      OptionKey            `json:"answer"`
	Explanation string               `json:"explanation"`
}

// ErrUnsupportedFormat is returned for documents whose format_version
// major differs from SupportedMajor.
var ErrUnsupportedFormat = errors.New("unsupported catalog format version")

// LoadFile reads and validates a catalog document from path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a YAML or JSON document, validates it against the embedded
// schema and checks its format version.
func Load(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	// YAML is a superset of JSON, so one decoder covers both.
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if tree == nil {
		return nil, errors.New("parse catalog: empty document")
	}

	// Round-trip through JSON so the validator and decoder see plain
	// JSON types.
	b, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("normalize catalog: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(b, &parsed); err != nil {
		return nil, fmt.Errorf("normalize catalog: %w", err)
	}

	sch, err := documentValidator()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("catalog schema validation failed: %w", err)
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := checkFormatVersion(doc.FormatVersion); err != nil {
		return nil, err
	}
	return &doc, nil
}

// QuestionCount returns the number of questions across all exams.
func (d *Document) QuestionCount() int {
	n := 0
	for _, e := range d.Exams {
		for _, s := range e.Sections {
			n += len(s.Questions)
		}
	}
	return n
}

func checkFormatVersion(v string) error {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedFormat, v)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w: %s (want %s.x)", ErrUnsupportedFormat, v, SupportedMajor)
	}
	return nil
}

func documentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal(documentSchema, &def); err != nil {
			compileErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://catalog.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}
