package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/skillsmith/skillsmith/pkg/skill"
	"github.com/skillsmith/skillsmith/pkg/solution"
)

var schemaCmd = &cobra.Command{
	Use:       "schema [skill|solution]",
	Short:     "Print the JSON Schema of the document model",
	Long:      `Print the JSON Schema of the skill or solution document model, for editor integration and client-side validation.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"skill", "solution"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := "skill"
		if len(args) > 0 {
			kind = args[0]
		}

		reflector := &jsonschema.Reflector{ExpandedStruct: true}

		var schema *jsonschema.Schema
		switch kind {
		case "skill":
			schema = reflector.Reflect(&skill.Skill{})
		case "solution":
			schema = reflector.Reflect(&solution.Solution{})
		default:
			return fmt.Errorf("unknown schema kind %q", kind)
		}

		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	},
}
