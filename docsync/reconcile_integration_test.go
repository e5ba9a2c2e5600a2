package docsync_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/lexfiles_backend/config"
	"github.com/mmdatafocus/lexfiles_backend/docsync"
	"github.com/mmdatafocus/lexfiles_backend/filestore"
	"github.com/mmdatafocus/lexfiles_backend/models"
	"github.com/mmdatafocus/lexfiles_backend/utils"
)

func localFactory(root string) docsync.StoreFactory {
	return func(ctx context.Context, firm *models.Firm) (filestore.RemoteStore, func(), error) {
		return filestore.NewLocalStore(root), func() {}, nil
	}
}

func waitForTerminal(t *testing.T, svc *docsync.Service, ctx context.Context, firmId string) docsync.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		snap := svc.GetStatus(ctx, firmId)
		if snap.Status != docsync.ScanStatusRunning {
			return snap
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("scan did not reach a terminal state")
	return docsync.JobSnapshot{}
}

func mustWrite(t *testing.T, root string, rel string, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "lexfiles_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	return context.Background()
}

func createFirm(t *testing.T, ctx context.Context, name string) (string, context.Context) {
	t.Helper()
	firm, err := models.CreateFirm(ctx, &models.NewFirm{
		Name:  name,
		Email: "owner@test.local",
	})
	if err != nil {
		t.Fatalf("CreateFirm: %v", err)
	}
	firmId := firm.ID.String()
	return firmId, utils.SetFirmIdInContext(ctx, firmId)
}

func TestManifestScanScenario(t *testing.T) {
	ctx := setupIntegration(t)
	firmId, ctx := createFirm(t, ctx, "Manifest Firm")
	db := config.GetDB()

	matter, err := models.CreateMatter(ctx, &models.NewMatter{Name: "Smith John Divorce"})
	if err != nil {
		t.Fatalf("CreateMatter: %v", err)
	}

	// Manifest knows A, B and C; the remote store only has A and C.
	for _, name := range []string{"A.pdf", "B.pdf", "C.pdf"} {
		entry := &models.ManifestEntry{
			FirmId:    firmId,
			Name:      name,
			SizeBytes: 3,
			MatterId:  matter.ID,
		}
		if err := db.WithContext(ctx).Create(entry).Error; err != nil {
			t.Fatalf("create manifest entry %s: %v", name, err)
		}
	}

	root := t.TempDir()
	mustWrite(t, root, "Smith/A.pdf", "aaa")
	mustWrite(t, root, "Smith/C.pdf", "ccc")

	svc := docsync.NewService(docsync.NewRegistry(), localFactory(root))

	snap, err := svc.StartScan(ctx, firmId, docsync.ScanOptions{UseManifest: true})
	if err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	if snap.Status != docsync.ScanStatusRunning {
		t.Fatalf("expected initial snapshot Running, got %s", snap.Status)
	}
	snap = waitForTerminal(t, svc, ctx, firmId)
	if snap.Status != docsync.ScanStatusCompleted {
		t.Fatalf("expected Completed, got %s (%s)", snap.Status, snap.ErrorMessage)
	}
	if snap.Created != 2 {
		t.Fatalf("expected 2 documents created, got %d", snap.Created)
	}

	count, err := models.CountFileDocuments(ctx, firmId)
	if err != nil {
		t.Fatalf("CountFileDocuments: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 persisted documents, got %d", count)
	}

	var entries []*models.ManifestEntry
	if err := db.WithContext(ctx).Where("firm_id = ?", firmId).Order("name").Find(&entries).Error; err != nil {
		t.Fatalf("load manifest entries: %v", err)
	}
	wantStatus := map[string]models.ManifestMatchStatus{
		"A.pdf": models.ManifestMatchMatched,
		"B.pdf": models.ManifestMatchNotFound,
		"C.pdf": models.ManifestMatchMatched,
	}
	for _, e := range entries {
		if e.MatchStatus != wantStatus[e.Name] {
			t.Fatalf("entry %s: expected %s, got %s", e.Name, wantStatus[e.Name], e.MatchStatus)
		}
		if e.MatchStatus == models.ManifestMatchMatched && e.MatchedPath == "" {
			t.Fatalf("entry %s: matched without a resolved path", e.Name)
		}
	}

	// Idempotence: replay the manifest with no external changes.
	if err := models.ResetManifestMatchStatus(ctx, firmId); err != nil {
		t.Fatalf("ResetManifestMatchStatus: %v", err)
	}
	if _, err := svc.StartScan(ctx, firmId, docsync.ScanOptions{UseManifest: true}); err != nil {
		t.Fatalf("second StartScan: %v", err)
	}
	snap = waitForTerminal(t, svc, ctx, firmId)
	if snap.Status != docsync.ScanStatusCompleted {
		t.Fatalf("second scan: expected Completed, got %s (%s)", snap.Status, snap.ErrorMessage)
	}
	if snap.Created != 0 {
		t.Fatalf("second scan must create nothing, got %d", snap.Created)
	}
	count, _ = models.CountFileDocuments(ctx, firmId)
	if count != 2 {
		t.Fatalf("document count changed on replay: %d", count)
	}
}

func TestHeuristicScanAndManualMatchSurvivesRescan(t *testing.T) {
	ctx := setupIntegration(t)
	firmId, ctx := createFirm(t, ctx, "Heuristic Firm")

	divorce, err := models.CreateMatter(ctx, &models.NewMatter{Name: "Smith John Divorce"})
	if err != nil {
		t.Fatalf("CreateMatter: %v", err)
	}
	probate, err := models.CreateMatter(ctx, &models.NewMatter{Name: "Brown Probate"})
	if err != nil {
		t.Fatalf("CreateMatter: %v", err)
	}

	root := t.TempDir()
	// Mangled folder name still matches through normalization.
	mustWrite(t, root, "Smith, John: Divorce?/petition.pdf", "x")
	mustWrite(t, root, "Unsorted/scan0001.pdf", "y")
	mustWrite(t, root, "Unsorted/scan0002.pdf", "z")

	svc := docsync.NewService(docsync.NewRegistry(), localFactory(root))
	if _, err := svc.StartScan(ctx, firmId, docsync.ScanOptions{}); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	snap := waitForTerminal(t, svc, ctx, firmId)
	if snap.Status != docsync.ScanStatusCompleted {
		t.Fatalf("expected Completed, got %s (%s)", snap.Status, snap.ErrorMessage)
	}
	if snap.Created != 3 {
		t.Fatalf("expected 3 documents, got %d", snap.Created)
	}
	if snap.Matched != 1 {
		t.Fatalf("expected 1 heuristic match, got %d", snap.Matched)
	}

	db := config.GetDB()
	var petition models.FileDocument
	if err := db.WithContext(ctx).Where("firm_id = ? AND name = ?", firmId, "petition.pdf").Take(&petition).Error; err != nil {
		t.Fatalf("load petition.pdf: %v", err)
	}
	if petition.MatterId == nil || *petition.MatterId != divorce.ID {
		t.Fatalf("petition.pdf should be matched to the divorce matter, got %v", petition.MatterId)
	}

	// Operator reassigns one orphan manually.
	var orphan models.FileDocument
	if err := db.WithContext(ctx).Where("firm_id = ? AND name = ?", firmId, "scan0001.pdf").Take(&orphan).Error; err != nil {
		t.Fatalf("load scan0001.pdf: %v", err)
	}
	updated, err := svc.ManualMatch(ctx, firmId, probate.ID, []int{orphan.ID}, "")
	if err != nil {
		t.Fatalf("ManualMatch: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 manual update, got %d", updated)
	}

	// A matter added after the scan that now matches the orphan folder. The
	// rescan must fill the remaining orphan and nothing else.
	if _, err := models.CreateMatter(ctx, &models.NewMatter{Name: "Unsorted"}); err != nil {
		t.Fatalf("CreateMatter: %v", err)
	}

	result, err := svc.Rescan(ctx, firmId)
	if err != nil {
		t.Fatalf("Rescan: %v", err)
	}
	if result.Checked != 1 {
		t.Fatalf("rescan should only examine unmatched documents, checked %d", result.Checked)
	}
	if result.Matched != 1 {
		t.Fatalf("rescan should fill the remaining orphan, got %d", result.Matched)
	}

	// The manual assignment must survive the rescan untouched.
	var after models.FileDocument
	if err := db.WithContext(ctx).Where("firm_id = ? AND id = ?", firmId, orphan.ID).Take(&after).Error; err != nil {
		t.Fatalf("reload scan0001.pdf: %v", err)
	}
	if after.MatterId == nil || *after.MatterId != probate.ID {
		t.Fatalf("manual match was overwritten: got %v", after.MatterId)
	}
}

func TestOrphanReportCountsSumToUnmatched(t *testing.T) {
	ctx := setupIntegration(t)
	firmId, ctx := createFirm(t, ctx, "Orphan Firm")

	root := t.TempDir()
	mustWrite(t, root, "Unsorted/a.pdf", "1")
	mustWrite(t, root, "Unsorted/b.pdf", "2")
	mustWrite(t, root, "Old Share/Misc/c.pdf", "3")

	svc := docsync.NewService(docsync.NewRegistry(), localFactory(root))
	if _, err := svc.StartScan(ctx, firmId, docsync.ScanOptions{}); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	snap := waitForTerminal(t, svc, ctx, firmId)
	if snap.Status != docsync.ScanStatusCompleted {
		t.Fatalf("expected Completed, got %s (%s)", snap.Status, snap.ErrorMessage)
	}

	report, err := svc.OrphanReport(ctx, firmId, 5)
	if err != nil {
		t.Fatalf("OrphanReport: %v", err)
	}
	var sum int64
	for _, folder := range report {
		sum += folder.FileCount
		if len(folder.SampleFiles) == 0 {
			t.Fatalf("folder %s has no sample files", folder.FolderPath)
		}
	}
	unmatched, err := models.CountUnmatchedFileDocuments(ctx, firmId)
	if err != nil {
		t.Fatalf("CountUnmatchedFileDocuments: %v", err)
	}
	if sum != unmatched {
		t.Fatalf("report counts sum to %d; %d documents are unmatched", sum, unmatched)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	ctx := setupIntegration(t)
	firmId, ctx := createFirm(t, ctx, "DryRun Firm")

	root := t.TempDir()
	mustWrite(t, root, "Unsorted/a.pdf", "1")
	mustWrite(t, root, "Unsorted/b.pdf", "2")

	svc := docsync.NewService(docsync.NewRegistry(), localFactory(root))
	if _, err := svc.StartScan(ctx, firmId, docsync.ScanOptions{DryRun: true}); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	snap := waitForTerminal(t, svc, ctx, firmId)
	if snap.Status != docsync.ScanStatusCompleted {
		t.Fatalf("expected Completed, got %s (%s)", snap.Status, snap.ErrorMessage)
	}
	if snap.Created != 2 {
		t.Fatalf("dry run must report the counts a live run would, got created=%d", snap.Created)
	}

	count, err := models.CountFileDocuments(ctx, firmId)
	if err != nil {
		t.Fatalf("CountFileDocuments: %v", err)
	}
	if count != 0 {
		t.Fatalf("dry run persisted %d documents", count)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("lexfiles-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("lexfiles-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=lexfiles_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
