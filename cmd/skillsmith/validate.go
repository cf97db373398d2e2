package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skillsmith/skillsmith/pkg/defaults"
	"github.com/skillsmith/skillsmith/pkg/logger"
	"github.com/skillsmith/skillsmith/pkg/presenter"
	"github.com/skillsmith/skillsmith/pkg/validation"
)

// ValidateConfig holds configuration for the validate command
type ValidateConfig struct {
	Solution bool
	Quick    bool
	JSON     bool
	Watch    bool
}

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate skill or solution documents",
	Long: `Validate one or more skill documents (JSON or YAML). Runs the full
pipeline: schema checks, reference resolution, completeness, security
coverage and the export-readiness gate.

Use --solution to validate solution documents instead, --quick for
schema-only feedback, and --watch to re-validate on file changes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getValidateConfigFromFlags(cmd)
		return runValidateCommand(cmd.Context(), config, args)
	},
}

func init() {
	validateCmd.Flags().Bool("solution", false, "Validate solution documents instead of skills")
	validateCmd.Flags().Bool("quick", false, "Run schema checks only")
	validateCmd.Flags().Bool("json", false, "Print the full report as JSON")
	validateCmd.Flags().Bool("watch", false, "Re-validate whenever a file changes")
}

// getValidateConfigFromFlags extracts validate configuration from command flags
func getValidateConfigFromFlags(cmd *cobra.Command) *ValidateConfig {
	config := &ValidateConfig{}
	config.Solution, _ = cmd.Flags().GetBool("solution")
	config.Quick, _ = cmd.Flags().GetBool("quick")
	config.JSON, _ = cmd.Flags().GetBool("json")
	config.Watch, _ = cmd.Flags().GetBool("watch")
	return config
}

func runValidateCommand(ctx context.Context, config *ValidateConfig, files []string) error {
	if config.Watch {
		return watchAndValidate(ctx, config, files)
	}

	var result *multierror.Error
	allValid := true
	for _, file := range files {
		valid, err := validateFile(config, file)
		if err != nil {
			result = multierror.Append(result, errors.Wrap(err, file))
			allValid = false
			continue
		}
		if !valid {
			allValid = false
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	if !allValid {
		os.Exit(1)
	}
	return nil
}

// validateFile validates one document and renders its report. The boolean is
// the document's validity; the error covers I/O and parse failures only.
func validateFile(config *ValidateConfig, file string) (bool, error) {
	doc, err := loadDocument(file)
	if err != nil {
		return false, err
	}

	if config.Solution {
		doc = defaults.EnsureSolutionDefaults(doc)
		report, err := validation.ValidateSolution(doc, nil)
		if err != nil {
			return false, err
		}
		if config.JSON {
			return report.Valid, printJSON(report)
		}
		renderSolutionReport(file, report)
		return report.Valid, nil
	}

	doc = defaults.EnsureSkillDefaults(doc)

	var report *validation.Report
	if config.Quick {
		report, err = validation.QuickValidate(doc)
	} else {
		report, err = validation.Validate(doc)
	}
	if err != nil {
		return false, err
	}

	if config.JSON {
		return report.Valid, printJSON(report)
	}
	renderSkillReport(file, report, config.Quick)
	return report.Valid, nil
}

// loadDocument reads a JSON or YAML document into a raw map. YAML is detected
// by extension.
func loadDocument(file string) (map[string]any, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	var doc map[string]any
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to parse YAML")
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON")
		}
	}
	if doc == nil {
		return nil, errors.New("document must be an object")
	}
	return doc, nil
}

func printJSON(report any) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	fmt.Println(string(out))
	return nil
}

func renderSkillReport(file string, report *validation.Report, quick bool) {
	presenter.Section(file)
	renderIssues(report.Errors, report.Warnings)

	if len(report.Unresolved.Tools) > 0 {
		presenter.Warning(fmt.Sprintf("unresolved tool references: %s", strings.Join(report.Unresolved.Tools, ", ")))
	}
	if len(report.Unresolved.Workflows) > 0 {
		presenter.Warning(fmt.Sprintf("unresolved workflow references: %s", strings.Join(report.Unresolved.Workflows, ", ")))
	}

	if !quick {
		presenter.Info(fmt.Sprintf("sections complete: %s", completeSections(report.Completeness)))
	}

	switch {
	case !report.Valid:
		presenter.Error(errors.Errorf("%d error(s)", len(report.Errors)), "document is invalid")
	case report.ReadyToExport:
		presenter.Success("valid and ready to export")
	default:
		presenter.Success("valid (not yet ready to export)")
	}
}

func renderSolutionReport(file string, report *validation.SolutionReport) {
	presenter.Section(file)
	renderIssues(report.Errors, report.Warnings)

	presenter.Info(fmt.Sprintf("%d skill(s), %d grant(s), %d handoff(s), %d contract(s)",
		report.Summary.Skills, report.Summary.Grants, report.Summary.Handoffs, report.Summary.Contracts))
	if len(report.Summary.Orphans) > 0 {
		presenter.Warning(fmt.Sprintf("orphan skills: %s", strings.Join(report.Summary.Orphans, ", ")))
	}

	if report.Valid {
		presenter.Success("solution is valid")
	} else {
		presenter.Error(errors.Errorf("%d error(s)", len(report.Errors)), "solution is invalid")
	}
}

func renderIssues(errs, warnings []validation.Issue) {
	for _, issue := range errs {
		presenter.Error(errors.New(issue.Message), fmt.Sprintf("%s at %s", issue.Code, issue.Path))
		if issue.Suggestion != "" {
			presenter.Info("  suggestion: " + issue.Suggestion)
		}
	}
	for _, issue := range warnings {
		presenter.Warning(fmt.Sprintf("%s at %s: %s", issue.Code, issue.Path, issue.Message))
		if issue.Suggestion != "" {
			presenter.Info("  suggestion: " + issue.Suggestion)
		}
	}
}

func completeSections(c validation.Completeness) string {
	var done []string
	for _, section := range []struct {
		name string
		ok   bool
	}{
		{"problem", c.Problem},
		{"scenarios", c.Scenarios},
		{"role", c.Role},
		{"intents", c.Intents},
		{"tools", c.Tools},
		{"policy", c.Policy},
		{"engine", c.Engine},
		{"mocks_tested", c.MocksTested},
		{"identity", c.Identity},
		{"security", c.Security},
	} {
		if section.ok {
			done = append(done, section.name)
		}
	}
	if len(done) == 0 {
		return "none"
	}
	return strings.Join(done, ", ")
}

// watchAndValidate re-runs validation whenever one of the files changes.
func watchAndValidate(ctx context.Context, config *ValidateConfig, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", file)
		}
		watched[abs] = true
		// Watch the directory: editors replace files on save, which drops
		// per-file watches.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return errors.Wrapf(err, "failed to watch %s", file)
		}
	}

	validateAll := func() {
		for _, file := range files {
			if _, err := validateFile(config, file); err != nil {
				presenter.Error(err, file)
			}
		}
	}

	validateAll()
	presenter.Info("Watching for changes. Press Ctrl+C to stop.")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(event.Name)
			if !watched[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			validateAll()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(watchErr).Error("file watcher error")
		}
	}
}
