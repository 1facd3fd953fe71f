package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-docrules/pkg/contenttypes"
	"github.com/goliatone/go-docrules/pkg/engine"
	"github.com/goliatone/go-docrules/pkg/testsupport"
)

func main() {
	var (
		typeName   = flag.String("type", contenttypes.Project, "document type to evaluate")
		inputPath  = flag.String("input", "pkg/engine/testdata/project_external.json", "document snapshot (JSON or YAML)")
		outputPath = flag.String("output", "pkg/engine/testdata/project_external.golden.json", "output path for the serialized result")
	)
	flag.Parse()

	snapshot, err := testsupport.LoadSnapshotFromPath(*inputPath)
	if err != nil {
		log.Fatalf("load snapshot: %v", err)
	}

	result, err := engine.New(engine.WithTokenSource(contenttypes.StaticTokens("golden"))).Evaluate(*typeName, snapshot)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("marshal result: %v", err)
	}
	payload = append(payload, '\n')
	if err := os.WriteFile(*outputPath, payload, 0o644); err != nil {
		log.Fatalf("write golden: %v", err)
	}
	fmt.Printf("wrote %s\n", *outputPath)
}
