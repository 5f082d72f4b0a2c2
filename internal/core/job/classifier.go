package job

import "strings"

// FinishedMarker is the status text the extractor reports once every article
// has been processed. Seeing it hands the job over to the finalizer.
const FinishedMarker = "extract service finished successfully"

type rule struct {
	needles  []string
	stage    Stage
	progress int
}

// Rules are matched in order and the first hit wins. An "error" status that
// also mentions an earlier stage resolves to that earlier stage.
var rules = []rule{
	{needles: []string{"scraping started"}, stage: StageScraping, progress: 10},
	{needles: []string{"scraper completed", "dois resolving"}, stage: StageResolving, progress: 25},
	{needles: []string{"dois resolved", "extract service started"}, stage: StageExtracting, progress: 50},
	{needles: []string{FinishedMarker}, stage: StageAnalyzing, progress: 75},
	{needles: []string{"error"}, stage: StageError, progress: 0},
}

// Classify maps raw backend status text to a stage and progress percentage.
// Unknown text, including the gateway's "pending", maps to (scraping, 5).
func Classify(raw string) (Stage, int) {
	s := strings.ToLower(raw)
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(s, n) {
				return r.stage, r.progress
			}
		}
	}
	return StageScraping, 5
}

// ExtractionFinished reports whether raw carries the finished marker.
func ExtractionFinished(raw string) bool {
	return strings.Contains(strings.ToLower(raw), FinishedMarker)
}
