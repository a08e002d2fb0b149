package domain

// IngestOutcome is the result category of ingesting one document.
type IngestOutcome string

// Ingestion outcomes.
const (
	// OutcomeIngested means a parent and its chunks were committed.
	OutcomeIngested IngestOutcome = "ingested"

	// OutcomeSkippedDuplicate means the content hash already existed.
	OutcomeSkippedDuplicate IngestOutcome = "skipped-duplicate"

	// OutcomeRejected means the document failed validation (e.g. empty).
	OutcomeRejected IngestOutcome = "rejected"

	// OutcomeFailed means the document was aborted with no rows written.
	OutcomeFailed IngestOutcome = "failed"
)

// IngestResult describes what happened to one document.
type IngestResult struct {
	Filename    string
	ContentHash string
	VideoID     string
	Outcome     IngestOutcome
	Chunks      int
	Err         error
}

// IngestReport aggregates the results of one ingestion run.
type IngestReport struct {
	Results []IngestResult
}

// Add appends a result to the report.
func (r *IngestReport) Add(result IngestResult) {
	r.Results = append(r.Results, result)
}

// Count returns how many results had the given outcome.
func (r *IngestReport) Count(outcome IngestOutcome) int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Outcome == outcome {
			n++
		}
	}
	return n
}

// Failed returns the results that were aborted.
func (r *IngestReport) Failed() []IngestResult {
	var failed []IngestResult
	for i := range r.Results {
		if r.Results[i].Outcome == OutcomeFailed {
			failed = append(failed, r.Results[i])
		}
	}
	return failed
}
