package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/dineshkatamneni/aws-cdk/manifest"
	"github.com/dineshkatamneni/aws-cdk/verify"
)

func main() {
	var manifestPath = flag.String("manifest", "table.yaml", "path to the table manifest")
	var outPath = flag.String("out", "", "write the rendered properties to this file instead of stdout")
	var verifyTable = flag.String("verify", "", "compare the rendered definition against this live table instead of printing it")

	flag.Parse()

	m, err := manifest.LoadFile(*manifestPath)
	if err != nil {
		log.Fatalf("load manifest: %v", err)
	}

	table, err := m.Table()
	if err != nil {
		log.Fatalf("build table: %v", err)
	}

	rendered, err := table.Render()
	if err != nil {
		log.Fatalf("render table: %v", err)
	}

	if *verifyTable != "" {
		ctx := context.Background()
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("load aws config: %v", err)
		}
		client := dynamodb.NewFromConfig(cfg)

		report, err := verify.Diff(ctx, client, *verifyTable, rendered)
		if err != nil {
			if errors.Is(err, verify.ErrTableNotFound) {
				log.Fatalf("table %s does not exist", *verifyTable)
			}
			log.Fatalf("verify: %v", err)
		}
		if report.Clean() {
			log.Printf("table %s matches the manifest", *verifyTable)
			return
		}
		for _, finding := range report.Findings {
			fmt.Fprintln(os.Stderr, finding)
		}
		os.Exit(1)
	}

	bs, err := json.MarshalIndent(rendered, "", "  ")
	if err != nil {
		log.Fatalf("encode properties: %v", err)
	}
	bs = append(bs, '\n')

	if *outPath == "" {
		if _, err := os.Stdout.Write(bs); err != nil {
			log.Fatalf("write output: %v", err)
		}
		return
	}
	if err := os.WriteFile(*outPath, bs, 0o644); err != nil {
		log.Fatalf("write %s: %v", *outPath, err)
	}
}
