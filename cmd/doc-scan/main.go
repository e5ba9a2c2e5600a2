package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/lexfiles_backend/config"
	"github.com/mmdatafocus/lexfiles_backend/docsync"
	"github.com/mmdatafocus/lexfiles_backend/filestore"
	"github.com/mmdatafocus/lexfiles_backend/models"
	"github.com/mmdatafocus/lexfiles_backend/utils"
)

// Runs one reconciliation scan to completion from the command line. With
// --local-root the scan reads a local directory instead of the firm's GCS
// bucket, which is how we replay a scan against a copy of a share.
func main() {
	firmID := flag.String("firm-id", "", "Required: firm id (uuid)")
	localRoot := flag.String("local-root", "", "Optional: scan a local directory instead of the firm's bucket")
	manifest := flag.Bool("manifest", false, "Use the manifest-authoritative strategy")
	dryRun := flag.Bool("dry-run", false, "Run every step except the final writes")
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
	models.MigrateTable()

	factory := docsync.GCSStoreFactory
	if strings.TrimSpace(*localRoot) != "" {
		factory = func(ctx context.Context, firm *models.Firm) (filestore.RemoteStore, func(), error) {
			return filestore.NewLocalStore(strings.TrimSpace(*localRoot)), func() {}, nil
		}
	}

	svc := docsync.NewService(docsync.NewRegistry(), factory)

	ctx := utils.SetFirmIdInContext(context.Background(), strings.TrimSpace(*firmID))
	snap, err := svc.StartScan(ctx, strings.TrimSpace(*firmID), docsync.ScanOptions{
		DryRun:      *dryRun,
		UseManifest: *manifest,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed to start: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("scan %s started (dry_run=%v manifest=%v)\n", snap.JobId, *dryRun, *manifest)

	for {
		time.Sleep(2 * time.Second)
		snap = svc.GetStatus(ctx, strings.TrimSpace(*firmID))
		fmt.Printf("  %s %s: processed=%d matched=%d created=%d\n",
			snap.Status, snap.Phase, snap.Processed, snap.Matched, snap.Created)
		if snap.Status != docsync.ScanStatusRunning {
			break
		}
	}

	if snap.Status == docsync.ScanStatusError {
		fmt.Fprintf(os.Stderr, "scan failed: %s\n", snap.ErrorMessage)
		os.Exit(1)
	}
	fmt.Println(snap.Result)
	for _, de := range snap.DataErrors {
		fmt.Fprintf(os.Stderr, "data error: %s\n", de)
	}
}
