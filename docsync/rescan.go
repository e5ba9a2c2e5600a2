package docsync

import (
	"context"
	"errors"

	"github.com/mmdatafocus/lexfiles_backend/models"
	"github.com/mmdatafocus/lexfiles_backend/utils"
)

const rescanBatchSize = 500

type RescanResult struct {
	Checked int64 `json:"checked"`
	Matched int64 `json:"matched"`
}

// RescanUnmatched re-applies the heuristic matcher to every persisted
// document with no matter assigned. Used after new matters are added
// post-scan; it only ever fills a null matter_id, so prior automated or
// manual assignments are untouched even when the heuristic would now compute
// something different.
func RescanUnmatched(ctx context.Context, firmId string) (RescanResult, error) {
	var result RescanResult

	matters, err := models.GetMattersForIndex(ctx, firmId)
	if err != nil {
		return result, err
	}
	idx := BuildMatterIndex(matters)

	err = models.UnmatchedDocumentsInBatches(ctx, firmId, rescanBatchSize, func(docs []*models.FileDocument) error {
		for _, doc := range docs {
			result.Checked++
			matter := idx.MatchPath(doc.FolderPath)
			if matter == nil {
				continue
			}
			updated, err := models.FillMatterIfNull(ctx, firmId, doc.ID, matter.ID)
			if err != nil {
				return err
			}
			if updated {
				result.Matched++
			}
		}
		return nil
	})
	return result, err
}

// ManualMatch assigns a matter directly, bypassing the automated matchers:
// either to an explicit document id list (operator intent overrides existing
// assignments) or to every still-unmatched document under a folder prefix.
func ManualMatch(ctx context.Context, firmId string, matterId int, documentIds []int, folderPrefix string) (int64, error) {
	if err := utils.ValidateResourceId[models.Matter](ctx, firmId, matterId); err != nil {
		return 0, err
	}
	if len(documentIds) > 0 {
		return models.AssignMatterToDocuments(ctx, firmId, matterId, utils.UniqueSlice(documentIds))
	}
	if folderPrefix != "" {
		return models.AssignMatterToFolder(ctx, firmId, matterId, folderPrefix)
	}
	return 0, errors.New("either document ids or a folder path prefix is required")
}
