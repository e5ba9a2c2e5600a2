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

	result, err := docsync.RescanUnmatched(ctx, strings.TrimSpace(*firmID))
	if err != nil {
		fmt.Fprintf(os.Stderr, "rescan failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("rescan complete: checked %d unmatched documents, matched %d\n", result.Checked, result.Matched)
}
