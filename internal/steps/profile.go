package steps

import (
	"context"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// BuildProfile asks the configured model for a prose summary of the
// extracted article metadata. Failures land in the result, never as a
// returned error, so the pipeline can keep going.
func BuildProfile(ctx context.Context, profiler interfaces.MetadataProfiler, extraction *models.ArticleExtraction) *models.ProfileResult {
	if extraction == nil || len(extraction.FormatsFound) == 0 {
		return &models.ProfileResult{Error: "no metadata to profile"}
	}

	summary, err := profiler.ProfileMetadata(ctx, extraction)
	if err != nil {
		return &models.ProfileResult{Error: err.Error()}
	}
	return &models.ProfileResult{Summary: summary}
}
