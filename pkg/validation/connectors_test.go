package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsmith/skillsmith/pkg/skill"
	"github.com/skillsmith/skillsmith/pkg/solution"
)

func TestToolBindingToUndeclaredConnector(t *testing.T) {
	ctx := &solution.Context{
		Skills: map[string]*skill.Skill{
			"front-desk": {
				Tools: []skill.Tool{
					{
						ID:     "t1",
						Name:   "lookup_crm",
						Source: &skill.ToolSource{Type: "mcp_bridge", ConnectionID: "crm"},
					},
					{
						ID:     "t2",
						Name:   "search_kb",
						Source: &skill.ToolSource{Type: "mcp_bridge", ConnectionID: "ghost"},
					},
				},
			},
		},
		Connectors: []solution.Connector{
			{ID: "crm", Transport: "http"},
		},
	}

	issues := validateConnectorBindings(ctx)
	missing := byCode(issues, CodeConnectorNotFound)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, "ghost")
}

func TestStdioConnectorWithoutSource(t *testing.T) {
	ctx := &solution.Context{
		Connectors: []solution.Connector{
			{ID: "crm", Transport: "stdio", Command: "node", Args: []string{"connectors/crm/server.js"}},
		},
	}

	issues := validateConnectorBindings(ctx)
	assert.Len(t, byCode(issues, CodeConnectorSourceMissing), 1)
}

func TestDeprecatedLaunchPath(t *testing.T) {
	ctx := &solution.Context{
		Connectors: []solution.Connector{
			{ID: "crm", Transport: "stdio", Command: "node", Args: []string{"mcp_servers/crm/server.js"}},
		},
		MCPStore: map[string][]solution.SourceFile{
			"crm": {{Path: "server.js", Content: "console.log('ok')"}},
		},
	}

	issues := validateConnectorBindings(ctx)
	deprecated := byCode(issues, CodeDeprecatedConnectorPath)
	require.Len(t, deprecated, 1)
	assert.Equal(t, SeverityError, deprecated[0].Severity)
}

func TestConnectorPathMismatch(t *testing.T) {
	ctx := &solution.Context{
		Connectors: []solution.Connector{
			{ID: "crm", Transport: "stdio", Command: "node", Args: []string{"connectors/billing/server.js"}},
			{ID: "billing", Transport: "stdio", Command: "node", Args: []string{"connectors/billing/server.js"}},
		},
		MCPStore: map[string][]solution.SourceFile{
			"crm":     {{Path: "server.js", Content: "console.log('ok')"}},
			"billing": {{Path: "server.js", Content: "console.log('ok')"}},
		},
	}

	issues := validateConnectorBindings(ctx)
	mismatch := byCode(issues, CodeConnectorPathMismatch)
	require.Len(t, mismatch, 1)
	assert.Contains(t, mismatch[0].Path, "crm")
}

func TestDependencyScan(t *testing.T) {
	source := `
const axios = require('axios');
const fs = require('fs');
const helper = require('./helper');
import express from 'express';
import { z } from 'zod';
import crypto from 'node:crypto';
import sdk from '@modelcontextprotocol/sdk/server';
`

	t.Run("no manifest", func(t *testing.T) {
		ctx := &solution.Context{
			Connectors: []solution.Connector{{ID: "crm", Transport: "stdio"}},
			MCPStore: map[string][]solution.SourceFile{
				"crm": {{Path: "server.js", Content: source}},
			},
		}

		issues := validateConnectorBindings(ctx)
		// axios, express, zod and the scoped sdk; builtins and relative
		// imports are exempt.
		assert.Len(t, byCode(issues, CodeDependencyManifestMissing), 4)
	})

	t.Run("manifest missing one dependency", func(t *testing.T) {
		manifest := `{"dependencies": {"axios": "^1.0.0", "express": "^4.18.0", "@modelcontextprotocol/sdk": "^1.0.0"}}`
		ctx := &solution.Context{
			Connectors: []solution.Connector{{ID: "crm", Transport: "stdio"}},
			MCPStore: map[string][]solution.SourceFile{
				"crm": {
					{Path: "package.json", Content: manifest},
					{Path: "server.js", Content: source},
				},
			},
		}

		issues := validateConnectorBindings(ctx)
		undeclared := byCode(issues, CodeDependencyUndeclared)
		require.Len(t, undeclared, 1)
		assert.Contains(t, undeclared[0].Message, "zod")
	})
}

func TestUIConnectorChecks(t *testing.T) {
	t.Run("wrong transport", func(t *testing.T) {
		ctx := &solution.Context{
			Connectors: []solution.Connector{
				{ID: "widgets", Transport: "http", UICapable: true},
			},
		}
		issues := validateConnectorBindings(ctx)
		assert.Len(t, byCode(issues, CodeUITransportInvalid), 1)
	})

	t.Run("missing ui tools", func(t *testing.T) {
		ctx := &solution.Context{
			Connectors: []solution.Connector{
				{ID: "widgets", Transport: "stdio", UICapable: true},
			},
			MCPStore: map[string][]solution.SourceFile{
				"widgets": {{Path: "server.js", Content: "register('ui.listPlugins', () => ({plugins: []}))"}},
			},
		}
		issues := validateConnectorBindings(ctx)
		missing := byCode(issues, CodeUIToolMissing)
		require.Len(t, missing, 1)
		assert.Contains(t, missing[0].Message, "ui.getPlugin")
	})

	t.Run("bare array response", func(t *testing.T) {
		content := `
register('ui.listPlugins', () => {
  return [{id: 'p1'}];
});
register('ui.getPlugin', () => ({}));
`
		ctx := &solution.Context{
			Connectors: []solution.Connector{
				{ID: "widgets", Transport: "stdio", UICapable: true},
			},
			MCPStore: map[string][]solution.SourceFile{
				"widgets": {
					{Path: "server.js", Content: content},
					{Path: "ui/panel.html", Content: "<html></html>"},
				},
			},
		}
		issues := validateConnectorBindings(ctx)
		assert.Len(t, byCode(issues, CodeUIResponseShape), 1)
		assert.Empty(t, byCode(issues, CodeUIToolMissing))
		assert.Empty(t, byCode(issues, CodeUIAssetsMissing))
	})

	t.Run("missing assets", func(t *testing.T) {
		content := `
register('ui.listPlugins', () => ({plugins: []}));
register('ui.getPlugin', () => ({}));
`
		ctx := &solution.Context{
			Connectors: []solution.Connector{
				{ID: "widgets", Transport: "stdio", UICapable: true},
			},
			MCPStore: map[string][]solution.SourceFile{
				"widgets": {{Path: "server.js", Content: content}},
			},
		}
		issues := validateConnectorBindings(ctx)
		assert.Len(t, byCode(issues, CodeUIAssetsMissing), 1)
	})
}
