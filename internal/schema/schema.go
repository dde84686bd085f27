package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

//go:embed canonical.schema.json
var canonicalSchema []byte

// LintError lists every problem found in a document.
type LintError struct {
	Problems []string
}

func (e *LintError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Problems, "; "))
}

// Linter checks canonical documents against the embedded schema. Lint
// findings are advisory: consumers still have to tolerate partial entries.
type Linter struct {
	schema *jsonschema.Schema
}

func NewLinter() (*Linter, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	s, err := compiler.Compile(canonicalSchema)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Linter{
		schema: s,
	}, nil
}

// Lint returns nil for a conforming document and a *LintError otherwise.
func (l *Linter) Lint(doc []byte) error {
	result := l.schema.ValidateJSON(doc)
	if result.IsValid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors))
	for k, e := range result.Errors {
		problems = append(problems, fmt.Sprintf("%v: %v", k, e))
	}
	sort.Strings(problems)
	if len(problems) == 0 {
		problems = append(problems, "document does not match the canonical schema")
	}

	return &LintError{
		Problems: problems,
	}
}
