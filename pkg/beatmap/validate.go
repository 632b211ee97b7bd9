package beatmap

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationError is one finding of the document validation pipeline. It
// describes a broken input document, not a property of the map; those are
// reported by checks as issues.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s at %s", e.Phase, e.Message, e.Path)
	}
	return fmt.Sprintf("[%s] %s", e.Phase, e.Message)
}

func errorf(phase, path, msg string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    phase,
		Path:     path,
		Message:  fmt.Sprintf(msg, args...),
		Severity: "error",
	}
}

func warningf(phase, path, msg string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    phase,
		Path:     path,
		Message:  fmt.Sprintf(msg, args...),
		Severity: "warning",
	}
}

// HasErrors reports whether any finding is error-severity.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// ValidateFile runs the full 3-phase pipeline on a beatmapset file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (parser invariants the checks rely on)
func ValidateFile(path string) (*Set, []*ValidationError) {
	s, err := LoadFile(path)
	if err != nil {
		return nil, []*ValidationError{errorf("structural", "", "failed to load: %s", err)}
	}
	return s, Validate(s)
}

// Validate runs phases 2 and 3 on an already-loaded set. Domain rules are
// skipped when the document does not satisfy the schema.
func Validate(s *Set) []*ValidationError {
	errs := validateSemantic(s)
	if HasErrors(errs) {
		return errs
	}
	return append(errs, validateDomain(s)...)
}

var (
	compiledOnce   sync.Once
	compiledSchema *sjsonschema.Schema
	compileErr     error
)

func compiledSetSchema() (*sjsonschema.Schema, error) {
	compiledOnce.Do(func() {
		schemaJSON, err := GenerateJSONSchema()
		if err != nil {
			compileErr = fmt.Errorf("generate schema: %w", err)
			return
		}
		var schemaDoc any
		if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
			compileErr = fmt.Errorf("unmarshal schema: %w", err)
			return
		}
		c := sjsonschema.NewCompiler()
		if err := c.AddResource("beatmapset-v0.json", schemaDoc); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("beatmapset-v0.json")
	})
	return compiledSchema, compileErr
}

var messagePrinter = message.NewPrinter(language.English)

// validateSemantic validates the set against the generated JSON Schema.
func validateSemantic(s *Set) []*ValidationError {
	sch, err := compiledSetSchema()
	if err != nil {
		return []*ValidationError{errorf("semantic", "", "%s", err)}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return []*ValidationError{errorf("semantic", "", "marshal for schema validation: %v", err)}
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []*ValidationError{errorf("semantic", "", "unmarshal document: %v", err)}
	}

	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*sjsonschema.ValidationError)
		if !ok {
			return []*ValidationError{errorf("semantic", "", "%s", err)}
		}
		var errs []*ValidationError
		for _, cause := range flattenValidationErrors(ve) {
			errs = append(errs, errorf("semantic",
				strings.Join(cause.InstanceLocation, "/"),
				"%s", cause.ErrorKind.LocalizedString(messagePrinter)))
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// validateDomain checks the ordering and shape invariants the checks assume
// of parser output.
func validateDomain(s *Set) []*ValidationError {
	var errs []*ValidationError

	if len(s.Beatmaps) == 0 {
		return []*ValidationError{errorf("domain", "beatmaps", "a beatmapset needs at least one beatmap")}
	}

	versions := map[string]string{} // version → path
	for i, b := range s.Beatmaps {
		path := fmt.Sprintf("beatmaps[%d]", i)
		if b == nil {
			errs = append(errs, errorf("domain", path, "beatmap is empty"))
			continue
		}
		if prev, ok := versions[b.Metadata.Version]; ok {
			errs = append(errs, errorf("domain", path+".metadata.version", "duplicate version %q (first at %s)", b.Metadata.Version, prev))
		} else {
			versions[b.Metadata.Version] = path
		}
		errs = append(errs, validateTiming(b, path)...)
		errs = append(errs, validateHitObjects(b, path)...)
	}
	return errs
}

func validateTiming(b *Beatmap, path string) []*ValidationError {
	var errs []*ValidationError
	uninherited := 0
	for i, l := range b.TimingLines {
		lp := fmt.Sprintf("%s.timing_lines[%d]", path, i)
		if i > 0 && l.Offset < b.TimingLines[i-1].Offset {
			errs = append(errs, errorf("domain", lp+".offset", "timing lines must be ordered by offset (%v after %v)", l.Offset, b.TimingLines[i-1].Offset))
		}
		if !l.IsUninherited() {
			continue
		}
		uninherited++
		if l.MsPerBeat <= 0 {
			errs = append(errs, errorf("domain", lp+".ms_per_beat", "uninherited line needs a positive ms_per_beat"))
		}
		if l.Meter <= 0 {
			errs = append(errs, errorf("domain", lp+".meter", "uninherited line needs a positive meter"))
		}
	}
	if uninherited == 0 {
		errs = append(errs, errorf("domain", path+".timing_lines", "beatmap has no uninherited line"))
	}
	return errs
}

func validateHitObjects(b *Beatmap, path string) []*ValidationError {
	var errs []*ValidationError
	for i, h := range b.HitObjects {
		hp := fmt.Sprintf("%s.hit_objects[%d]", path, i)
		if i > 0 && h.Time < b.HitObjects[i-1].Time {
			errs = append(errs, errorf("domain", hp+".time", "hit objects must be ordered by time"))
		}
		switch h.Kind {
		case KindSpinner:
			if h.EndTime < h.Time {
				errs = append(errs, errorf("domain", hp+".end_time", "spinner ends before it starts"))
			}
		case KindCircle:
			if len(h.Nodes) > 0 {
				errs = append(errs, warningf("domain", hp+".nodes", "circle carries slider nodes; they are ignored"))
			}
		}
	}
	return errs
}
