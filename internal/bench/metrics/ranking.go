package metrics

// ReciprocalRank returns 1/rank of the first relevant file.
func ReciprocalRank(top []string, relevant map[string]struct{}) float64 {
	for i, f := range top {
		if _, ok := relevant[f]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

type NegativeResult struct {
	TopFiles      []string
	FalsePositive bool
}

// EvaluateNegative flags a false positive whenever a query that should match
// nothing returns any file in its top k.
func EvaluateNegative(results []string, root string, k int) NegativeResult {
	top := NewNormalizer(root).NormalizeAll(TopK(results, k))
	return NegativeResult{
		TopFiles:      top,
		FalsePositive: len(top) > 0,
	}
}
