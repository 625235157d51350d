package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/DjordjeVuckovic/context-bench/internal/bench/suite"
	"github.com/DjordjeVuckovic/context-bench/pkg/schema"
)

func main() {
	outputDir := flag.String("output", "api", "Output directory for generated schemas")
	flag.Parse()

	if err := generate(*outputDir); err != nil {
		log.Fatal(err)
	}
}

func generate(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	schemaJSON, err := schema.NewGenerator().GenerateJSONSchema("Candidates", []suite.Candidate{})
	if err != nil {
		return fmt.Errorf("failed to generate schema for candidates: %w", err)
	}

	jsonFile := filepath.Join(outputDir, "candidates-v1.json")
	if err := os.WriteFile(jsonFile, []byte(schemaJSON+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write JSON schema: %w", err)
	}
	fmt.Printf("Generated JSON schema: %s\n", jsonFile)

	example, err := yaml.Marshal(exampleCandidates())
	if err != nil {
		return fmt.Errorf("failed to render YAML example: %w", err)
	}
	yamlFile := filepath.Join(outputDir, "candidates-example.yaml")
	content := "# Candidates dataset example, accepted by bench --candidates\n" + string(example)
	if err := os.WriteFile(yamlFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write YAML example: %w", err)
	}
	fmt.Printf("Generated YAML example: %s\n", yamlFile)

	return nil
}

func exampleCandidates() []suite.Candidate {
	files, languages := 1200, 3
	kind, difficulty := "symbol", "easy"
	reason := "the repository has no Kubernetes code"

	return []suite.Candidate{
		{
			Name:          "my-service",
			Path:          "~/src/my-service",
			Files:         &files,
			LanguageCount: &languages,
			Queries: []suite.Query{
				{
					Query:         "where are HTTP routes registered",
					RelevantFiles: []string{"internal/router/routes.go"},
					Type:          &kind,
					Difficulty:    &difficulty,
				},
			},
			NegativeExamples: []suite.NegativeQuery{
				{Query: "kubernetes operator reconcile loop", Reason: &reason},
			},
		},
	}
}
