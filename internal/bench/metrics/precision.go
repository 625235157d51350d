package metrics

type PrecisionResult struct {
	PrecisionAtK   float64
	Hits           []string
	TopFiles       []string
	RecallAtK      float64
	ReciprocalRank float64
}

// Precision scores the first k results against the relevant files. Both lists
// are normalized against root before comparison. An empty top-k list scores 0.
func Precision(results, relevantFiles []string, root string, k int) PrecisionResult {
	n := NewNormalizer(root)
	top := n.NormalizeAll(TopK(results, k))
	relevant := relevantSet(n.NormalizeAll(relevantFiles))

	hits := make([]string, 0, len(top))
	for _, f := range top {
		if _, ok := relevant[f]; ok {
			hits = append(hits, f)
		}
	}

	return PrecisionResult{
		PrecisionAtK:   PrecisionAtK(top, relevant),
		Hits:           hits,
		TopFiles:       top,
		RecallAtK:      RecallAtK(top, relevant),
		ReciprocalRank: ReciprocalRank(top, relevant),
	}
}

// TopK returns at most the first k results. It never pads and returns an
// empty list for k <= 0.
func TopK(results []string, k int) []string {
	if k <= 0 {
		return []string{}
	}
	n := min(k, len(results))
	top := make([]string, n)
	copy(top, results[:n])
	return top
}

// PrecisionAtK computes the fraction of the top list that is relevant.
// The denominator is the length of top, not k.
func PrecisionAtK(top []string, relevant map[string]struct{}) float64 {
	if len(top) == 0 {
		return 0
	}

	var hits int
	for _, f := range top {
		if _, ok := relevant[f]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(top))
}

// RecallAtK computes the fraction of distinct relevant files found in top.
func RecallAtK(top []string, relevant map[string]struct{}) float64 {
	if len(top) == 0 || len(relevant) == 0 {
		return 0
	}

	found := make(map[string]struct{}, len(relevant))
	for _, f := range top {
		if _, ok := relevant[f]; ok {
			found[f] = struct{}{}
		}
	}

	return float64(len(found)) / float64(len(relevant))
}

func relevantSet(files []string) map[string]struct{} {
	set := make(map[string]struct{}, len(files))
	for _, f := range files {
		set[f] = struct{}{}
	}
	return set
}
