package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/skillsmith/skillsmith/pkg/solution"
)

// deprecatedLaunchPath is the legacy on-disk layout for connector servers.
// Connectors are deployed from the connectors/ tree now; launch args still
// pointing at mcp_servers/ will break at deploy time.
const deprecatedLaunchPath = "mcp_servers/"

// uiTools are the tools a UI-capable connector server must implement.
var uiTools = []string{"ui.listPlugins", "ui.getPlugin"}

var (
	requirePattern = regexp.MustCompile(`require\(['"]([^'"]+)['"]\)`)
	importPattern  = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w{}*,\s]+\s+from\s+)?['"]([^'"]+)['"]`)
)

// nodeBuiltins are modules that never need a package.json dependency entry.
var nodeBuiltins = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "crypto": true,
	"events": true, "fs": true, "http": true, "https": true, "net": true,
	"os": true, "path": true, "process": true, "readline": true,
	"stream": true, "url": true, "util": true, "zlib": true,
}

// validateConnectorBindings runs the extended checks that need full skill
// bodies, connector declarations and connector source code. Checks whose
// inputs are absent from ctx are skipped rather than failed.
func validateConnectorBindings(ctx *solution.Context) []Issue {
	var issues []Issue

	connectors := make(map[string]solution.Connector)
	for _, connector := range ctx.Connectors {
		connectors[connector.ID] = connector
	}

	issues = append(issues, checkToolBindings(ctx, connectors)...)
	issues = append(issues, checkConnectorSources(ctx, connectors)...)
	issues = append(issues, checkUIConnectors(ctx, connectors)...)

	return issues
}

// checkToolBindings verifies every mcp_bridge-sourced tool names a declared
// connector.
func checkToolBindings(ctx *solution.Context, connectors map[string]solution.Connector) []Issue {
	var issues []Issue
	if len(ctx.Skills) == 0 || len(connectors) == 0 {
		return issues
	}

	skillIDs := make([]string, 0, len(ctx.Skills))
	for id := range ctx.Skills {
		skillIDs = append(skillIDs, id)
	}
	sort.Strings(skillIDs)

	for _, skillID := range skillIDs {
		body := ctx.Skills[skillID]
		if body == nil {
			continue
		}
		for i, tool := range body.Tools {
			if tool.Source == nil || tool.Source.Type != "mcp_bridge" {
				continue
			}
			if _, declared := connectors[tool.Source.ConnectionID]; !declared {
				issues = append(issues, errorIssue(CodeConnectorNotFound,
					fmt.Sprintf("skills.%s.tools[%d].source.connection_id", skillID, i),
					"tool %q binds to undeclared connector %q", tool.Name, tool.Source.ConnectionID))
			}
		}
	}
	return issues
}

// checkConnectorSources verifies stdio connectors ship source code and scans
// that source for undeclared external dependencies and legacy launch paths.
func checkConnectorSources(ctx *solution.Context, connectors map[string]solution.Connector) []Issue {
	var issues []Issue

	ids := make([]string, 0, len(connectors))
	for id := range connectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		connector := connectors[id]
		path := "connectors." + id
		files := ctx.MCPStore[id]

		if connector.Transport == "stdio" && len(files) == 0 {
			issues = append(issues, errorIssue(CodeConnectorSourceMissing, path,
				"stdio connector %q has no source code in the store", id).
				withSuggestion("upload the connector's server source before deploying the solution"))
		}

		for _, arg := range connector.Args {
			if strings.Contains(arg, deprecatedLaunchPath) {
				issues = append(issues, errorIssue(CodeDeprecatedConnectorPath, path+".args",
					"connector %q launches from deprecated path %q", id, arg).
					withSuggestion("move the server under connectors/ and update the launch arguments"))
			} else if other := referencedConnectorID(arg, connectors); other != "" && other != id {
				issues = append(issues, warningIssue(CodeConnectorPathMismatch, path+".args",
					"connector %q launch argument %q references connector %q", id, arg, other))
			}
		}

		issues = append(issues, scanDependencies(id, files)...)
	}
	return issues
}

// referencedConnectorID reports which declared connector id, if any, appears
// as a path segment of a launch argument.
func referencedConnectorID(arg string, connectors map[string]solution.Connector) string {
	for _, segment := range strings.Split(arg, "/") {
		if _, ok := connectors[segment]; ok {
			return segment
		}
	}
	return ""
}

// scanDependencies is a naive static scan of JS connector source: every
// require/import of a non-builtin, non-relative module must be declared in an
// accompanying package.json. A missing manifest is an error; a manifest that
// omits the dependency is a warning.
func scanDependencies(connectorID string, files []solution.SourceFile) []Issue {
	var issues []Issue

	var manifest string
	hasManifest := false
	for _, file := range files {
		if file.Path == "package.json" || strings.HasSuffix(file.Path, "/package.json") {
			hasManifest = true
			manifest = file.Content
		}
	}

	reported := make(map[string]bool)
	for _, file := range files {
		if !strings.HasSuffix(file.Path, ".js") && !strings.HasSuffix(file.Path, ".mjs") {
			continue
		}
		for _, module := range externalImports(file.Content) {
			if reported[module] {
				continue
			}
			reported[module] = true

			path := fmt.Sprintf("connectors.%s.source.%s", connectorID, file.Path)
			if !hasManifest {
				issues = append(issues, errorIssue(CodeDependencyManifestMissing, path,
					"connector %q imports %q but ships no package.json", connectorID, module))
			} else if !strings.Contains(manifest, `"`+module+`"`) {
				issues = append(issues, warningIssue(CodeDependencyUndeclared, path,
					"connector %q imports %q which package.json does not declare", connectorID, module))
			}
		}
	}
	return issues
}

func externalImports(content string) []string {
	var modules []string
	seen := make(map[string]bool)

	collect := func(matches [][]string) {
		for _, match := range matches {
			module := match[1]
			if strings.HasPrefix(module, ".") || strings.HasPrefix(module, "/") {
				continue
			}
			module = strings.TrimPrefix(module, "node:")
			// Deep imports resolve to the package name; scoped packages keep
			// their @scope/name prefix.
			segments := strings.Split(module, "/")
			if strings.HasPrefix(module, "@") {
				if len(segments) > 2 {
					module = strings.Join(segments[:2], "/")
				}
			} else if len(segments) > 1 {
				module = segments[0]
			}
			if nodeBuiltins[module] || seen[module] {
				continue
			}
			seen[module] = true
			modules = append(modules, module)
		}
	}

	collect(requirePattern.FindAllStringSubmatch(content, -1))
	collect(importPattern.FindAllStringSubmatch(content, -1))
	return modules
}

// checkUIConnectors verifies connectors flagged UI-capable: stdio transport,
// both UI tools implemented, a plausible response shape and shipped UI
// assets. The response shape check is a heuristic; a bare array return near
// the listPlugins handler usually means the object wrapper was forgotten.
func checkUIConnectors(ctx *solution.Context, connectors map[string]solution.Connector) []Issue {
	var issues []Issue

	ids := make([]string, 0, len(connectors))
	for id := range connectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		connector := connectors[id]
		if !connector.UICapable {
			continue
		}
		path := "connectors." + id

		if connector.Transport != "stdio" {
			issues = append(issues, errorIssue(CodeUITransportInvalid, path+".transport",
				"UI-capable connector %q must use stdio transport, got %q", id, connector.Transport))
		}

		files := ctx.MCPStore[id]
		var source strings.Builder
		hasAssets := false
		for _, file := range files {
			source.WriteString(file.Content)
			source.WriteString("\n")
			if strings.HasPrefix(file.Path, "ui/") || strings.Contains(file.Path, "/ui/") ||
				strings.HasPrefix(file.Path, "assets/") || strings.Contains(file.Path, "/assets/") {
				hasAssets = true
			}
		}
		body := source.String()

		for _, tool := range uiTools {
			if !strings.Contains(body, tool) {
				issues = append(issues, errorIssue(CodeUIToolMissing, path,
					"UI-capable connector %q does not implement %q", id, tool))
			}
		}

		if strings.Contains(body, "ui.listPlugins") && bareArrayResponse(body) {
			issues = append(issues, warningIssue(CodeUIResponseShape, path,
				"connector %q appears to return a bare array from ui.listPlugins; wrap it in an object with a plugins key", id))
		}

		if len(files) > 0 && !hasAssets {
			issues = append(issues, warningIssue(CodeUIAssetsMissing, path,
				"UI-capable connector %q ships no ui/ or assets/ directory", id))
		}
	}
	return issues
}

var bareArrayPattern = regexp.MustCompile(`return\s*\[`)

func bareArrayResponse(body string) bool {
	idx := strings.Index(body, "ui.listPlugins")
	if idx < 0 {
		return false
	}
	// Look a short window past the registration for the handler's return.
	window := body[idx:]
	if len(window) > 600 {
		window = window[:600]
	}
	return bareArrayPattern.MatchString(window)
}
