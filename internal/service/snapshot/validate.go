package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/371050/study-pwa/internal/domain"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Decode validates raw against the snapshot schema and decodes it. Every
// problem is reported in a *domain.FormatError.
func Decode(raw []byte) (*Snapshot, error) {
	sch, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot schema: %w", err)
	}

	result, err := sch.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// Not JSON at all.
		return nil, &domain.FormatError{Problems: []string{err.Error()}}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, &domain.FormatError{Problems: problems}
	}

	var snap Snapshot
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&snap); err != nil {
		return nil, &domain.FormatError{Problems: []string{err.Error()}}
	}
	for _, r := range snap.Reviews {
		if _, err := domain.ParseDate(r.DoneDate); err != nil {
			return nil, &domain.FormatError{Problems: []string{fmt.Sprintf("review %d: invalid doneDate %q", r.ID, r.DoneDate)}}
		}
	}
	return &snap, nil
}
