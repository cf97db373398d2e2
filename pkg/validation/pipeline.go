package validation

import (
	"github.com/pkg/errors"

	"github.com/skillsmith/skillsmith/pkg/skill"
)

// Report is the outcome of one validation pass. Valid is derived purely from
// the absence of errors; ReadyToExport is the stricter terminal gate and is
// never inferred from Valid alone.
type Report struct {
	Valid         bool         `json:"valid"`
	ReadyToExport bool         `json:"ready_to_export"`
	Errors        []Issue      `json:"errors"`
	Warnings      []Issue      `json:"warnings"`
	Unresolved    Unresolved   `json:"unresolved"`
	Completeness  Completeness `json:"completeness"`
}

// Validate runs the full pipeline over a raw skill document: schema checks on
// the undecoded form, then reference resolution, completeness and security on
// the typed form, in that fixed order. Malformed content never produces a Go
// error; the only error return is the programmer-error boundary of a nil
// document. The input is not retained and never mutated.
func Validate(doc map[string]any) (*Report, error) {
	if doc == nil {
		return nil, errors.New("document must be a non-nil object")
	}

	issues := ValidateSchema(doc)

	// Shape problems were reported above; the partial decode is always usable.
	decoded, _ := skill.Decode(doc)

	unresolved := Unresolved{}
	refIssues, _ := ResolveReferences(decoded, &unresolved)
	issues = append(issues, refIssues...)

	completeness := CheckCompleteness(decoded)
	issues = append(issues, ValidateSecurity(decoded)...)

	return buildReport(issues, unresolved, completeness), nil
}

// QuickValidate runs only the schema stage, for interactive feedback while a
// document is being edited. Completeness and resolution state are zero-valued
// and ReadyToExport is always false.
func QuickValidate(doc map[string]any) (*Report, error) {
	if doc == nil {
		return nil, errors.New("document must be a non-nil object")
	}

	errs, warnings := Partition(ValidateSchema(doc))
	return &Report{
		Valid:      len(errs) == 0,
		Errors:     emptyIfNil(errs),
		Warnings:   emptyIfNil(warnings),
		Unresolved: Unresolved{Tools: []string{}, Workflows: []string{}, Intents: []string{}},
	}, nil
}

func buildReport(issues []Issue, unresolved Unresolved, completeness Completeness) *Report {
	errs, warnings := Partition(issues)

	report := &Report{
		Valid:        len(errs) == 0,
		Errors:       emptyIfNil(errs),
		Warnings:     emptyIfNil(warnings),
		Unresolved:   unresolved,
		Completeness: completeness,
	}
	if report.Unresolved.Tools == nil {
		report.Unresolved.Tools = []string{}
	}
	if report.Unresolved.Workflows == nil {
		report.Unresolved.Workflows = []string{}
	}
	if report.Unresolved.Intents == nil {
		report.Unresolved.Intents = []string{}
	}

	report.ReadyToExport = readyToExport(report)
	return report
}

// readyToExport applies the fixed export gate: no errors, no unresolved tool
// or workflow references, the required sections (problem, role, tools,
// security) complete, and every mock exercised.
func readyToExport(report *Report) bool {
	if len(report.Errors) > 0 {
		return false
	}
	if len(report.Unresolved.Tools) > 0 || len(report.Unresolved.Workflows) > 0 {
		return false
	}
	c := report.Completeness
	if !c.Problem || !c.Role || !c.Tools || !c.Security {
		return false
	}
	return c.MocksTested
}

func emptyIfNil(issues []Issue) []Issue {
	if issues == nil {
		return []Issue{}
	}
	return issues
}
