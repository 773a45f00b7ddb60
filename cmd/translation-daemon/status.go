package main

import (
	"context"
	"fmt"

	"github.com/biocycle/translation-pipeline/internal/pipeline"
)

// runStatus prints the coverage and queue report to stdout for the
// administrator; log lines stay out of the way of the tabular output.
func runStatus(p *pipeline.Pipeline) error {
	report, err := p.Status(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("Translation coverage:")
	for _, v := range report.Variants {
		fmt.Printf("  %-14s %4d entities, %5d/%5d records (%5.1f%%)",
			v.Variant, v.Entities, v.Records, v.Expected, v.CoveragePercent())
		if len(v.Quality) > 0 {
			fmt.Printf("  [draft=%d improved=%d verified=%d]",
				v.Quality["draft"], v.Quality["improved"], v.Quality["verified"])
		}
		fmt.Println()
	}

	fmt.Println("\nJob queue:")
	if len(report.Jobs) == 0 {
		fmt.Println("  empty")
		return nil
	}
	for _, j := range report.Jobs {
		fmt.Printf("  pass %d  %-10s %5d\n", j.Pass, j.Status, j.Count)
	}

	return nil
}
