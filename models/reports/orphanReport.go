package reports

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mmdatafocus/lexfiles_backend/config"
	"github.com/xuri/excelize/v2"
)

// OrphanFolder is one folder's worth of documents that no matcher could
// assign, with a capped sample of filenames for manual triage.
type OrphanFolder struct {
	FolderPath  string   `json:"folder_path"`
	FileCount   int64    `json:"file_count"`
	SampleFiles []string `json:"sample_files"`
}

type orphanFolderRow struct {
	FolderPath  string
	FileCount   int64
	SampleNames string
}

// GetOrphanFolderReport groups unmatched documents by folder path. The
// per-folder sample is capped in SQL so multi-million-row tables don't ship
// every filename back to the server.
func GetOrphanFolderReport(ctx context.Context, firmId string, sampleLimit int) ([]*OrphanFolder, error) {
	if sampleLimit <= 0 {
		sampleLimit = 10
	}

	sql := `
SELECT
	folder_path,
	COUNT(*) AS file_count,
	SUBSTRING_INDEX(GROUP_CONCAT(name ORDER BY name SEPARATOR '\n'), '\n', @sampleLimit) AS sample_names
FROM
	file_documents
WHERE
	firm_id = @firmId
	AND matter_id IS NULL
GROUP BY
	folder_path
ORDER BY
	file_count DESC
`

	var rows []*orphanFolderRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"firmId":      firmId,
		"sampleLimit": sampleLimit,
	}).Scan(&rows).Error; err != nil {
		return nil, err
	}

	report := make([]*OrphanFolder, 0, len(rows))
	for _, r := range rows {
		folder := &OrphanFolder{
			FolderPath: r.FolderPath,
			FileCount:  r.FileCount,
		}
		if r.SampleNames != "" {
			folder.SampleFiles = strings.Split(r.SampleNames, "\n")
		}
		report = append(report, folder)
	}
	return report, nil
}

// ExportOrphanExcel writes the orphan report as an xlsx workbook, one row per
// folder, samples joined into a single cell.
func ExportOrphanExcel(report []*OrphanFolder, w io.Writer) error {

	f := excelize.NewFile()
	_, err := f.NewSheet("Sheet1")
	if err != nil {
		return err
	}

	// Add headers
	f.SetCellValue("Sheet1", "A1", "FolderPath")
	f.SetCellValue("Sheet1", "B1", "FileCount")
	f.SetCellValue("Sheet1", "C1", "SampleFiles")

	// Add data
	for i, d := range report {
		f.SetCellValue("Sheet1", "A"+fmt.Sprint(i+2), d.FolderPath)
		f.SetCellValue("Sheet1", "B"+fmt.Sprint(i+2), d.FileCount)
		f.SetCellValue("Sheet1", "C"+fmt.Sprint(i+2), strings.Join(d.SampleFiles, ", "))
	}

	return f.Write(w)
}
