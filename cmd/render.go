package cmd

import (
	"fmt"
	"log"
	"os"

	"insight-rules/internal/formatters"
	"insight-rules/internal/publisher"

	"github.com/spf13/cobra"
)

var (
	renderInput  string
	renderOutput string
	renderCustom bool
	renderPretty bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a rule description to its wire JSON",
	Long: `Render a rule description file into the capitalized wire JSON consumed
by CloudWatch.

JSON descriptions are the default; files ending in .yaml or .yml are parsed
as YAML. With --custom the file content is shipped verbatim, for schema
versions this tool does not model.

Examples:
  # Render to stdout
  insight-rules render --input top-talkers.yaml --pretty

  # Render to a file
  insight-rules render --input top-talkers.json --out body.json

  # Pass an unmodelled rule body through untouched
  insight-rules render --input exotic-schema.json --custom`,
	Run: func(cmd *cobra.Command, args []string) {
		runRender()
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "input", "i", "", "Rule description file (JSON or YAML)")
	renderCmd.Flags().StringVar(&renderOutput, "out", "", "Write the wire JSON to this file instead of stdout")
	renderCmd.Flags().BoolVar(&renderCustom, "custom", false, "Skip defaulting/validation and ship the file content verbatim")
	renderCmd.Flags().BoolVar(&renderPretty, "pretty", false, "Indent the output")
}

func runRender() {
	if renderInput == "" {
		log.Fatal("Error: --input is required")
	}

	definition, err := publisher.RenderBody(publisher.DeployConfig{
		BodyFile: renderInput,
		Custom:   renderCustom,
	})
	if err != nil {
		log.Fatalf("Error rendering rule body: %v", err)
	}

	if renderPretty {
		definition, err = formatters.DefinitionPretty(definition)
		if err != nil {
			log.Fatalf("Error formatting rule body: %v", err)
		}
	}

	if renderOutput != "" {
		if err := os.WriteFile(renderOutput, []byte(definition+"\n"), 0600); err != nil {
			log.Fatalf("Error writing output file: %v", err)
		}
		fmt.Printf("Rule body written to %s\n", renderOutput)
	} else {
		fmt.Println(definition)
	}
}
