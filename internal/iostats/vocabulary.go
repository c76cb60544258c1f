package iostats

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
)

type vocabInfo struct {
	vocabularyID string
	conceptCode  string
}

// vocabularyMetadata bulk-fetches vocabulary_id and concept_code for
// a batch of concept ids from the concept dimension table. A lookup
// failure is isolated, not fatal: concepts absent from the returned
// map simply get null vocabulary fields in their records.
func (e *engine) vocabularyMetadata(
	ctx context.Context,
	conceptIDs []int64,
) map[int64]vocabInfo {
	res := make(map[int64]vocabInfo, len(conceptIDs))
	if len(conceptIDs) == 0 {
		return res
	}

	placeholders := make([]string, len(conceptIDs))
	args := make([]any, len(conceptIDs))
	for i, id := range conceptIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := e.operator.Rebind(`
		SELECT concept_id, vocabulary_id, concept_code
		FROM concept
		WHERE concept_id IN (` + strings.Join(placeholders, ", ") + `)
	`)

	rows, err := e.operator.DB().QueryContext(ctx, query, args...)
	if err != nil {
		slog.Warn("Vocabulary lookup failed, "+
			"records will have null vocabulary fields",
			"concepts", len(conceptIDs), "error", err)
		return res
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var vocabularyID, conceptCode sql.NullString
		if err = rows.Scan(&id, &vocabularyID, &conceptCode); err != nil {
			slog.Warn("Vocabulary scan failed", "error", err)
			return res
		}
		res[id] = vocabInfo{
			vocabularyID: vocabularyID.String,
			conceptCode:  conceptCode.String,
		}
	}
	if err = rows.Err(); err != nil {
		slog.Warn("Vocabulary lookup failed mid-scan", "error", err)
	}
	return res
}
