package runner

type State string

const (
	StatePending          State = "PENDING"
	StateIndexing         State = "INDEXING"
	StateQuerying         State = "QUERYING"
	StateScoringNegatives State = "SCORING_NEGATIVES"
	StateSummarized       State = "SUMMARIZED"
	StateIndexFailed      State = "INDEX_FAILED"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateSummarized || s == StateIndexFailed
}
