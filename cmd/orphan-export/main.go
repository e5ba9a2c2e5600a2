package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/lexfiles_backend/config"
	"github.com/mmdatafocus/lexfiles_backend/docsync"
	"github.com/mmdatafocus/lexfiles_backend/utils"
)

func main() {
	firmID := flag.String("firm-id", "", "Required: firm id (uuid)")
	out := flag.String("out", "orphans.xlsx", "Output workbook path")
	sampleLimit := flag.Int("sample-limit", 10, "Max sample filenames per folder")
	flag.Parse()

	if strings.TrimSpace(*firmID) == "" {
		fmt.Fprintln(os.Stderr, "--firm-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := utils.SetFirmIdInContext(context.Background(), strings.TrimSpace(*firmID))

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := docsync.ExportOrphanReport(ctx, strings.TrimSpace(*firmID), *sampleLimit, f); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("orphan report written to %s\n", *out)
}
