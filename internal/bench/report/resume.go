package report

import "fmt"

// Mismatch describes one invocation parameter that differs from a loaded report.
type Mismatch struct {
	Field    string
	Previous string
	Current  string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: report has %s, invocation has %s", m.Field, m.Previous, m.Current)
}

// HeaderMismatches compares the scoring parameters of a loaded report with the
// current invocation. Records collected under different parameters are not
// comparable with new ones.
func (r *Report) HeaderMismatches(h Header) []Mismatch {
	var out []Mismatch
	add := func(field, prev, cur string) {
		if prev != cur {
			out = append(out, Mismatch{Field: field, Previous: prev, Current: cur})
		}
	}

	profile := h.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	prevProfile := r.Profile
	if prevProfile == "" {
		prevProfile = DefaultProfile
	}

	add("limit", fmt.Sprint(r.Limit), fmt.Sprint(h.Limit))
	add("k", fmt.Sprint(r.K), fmt.Sprint(h.K))
	add("profile", prevProfile, profile)
	add("embedding_model", optional(r.EmbeddingModel), optional(h.EmbeddingModel))
	return out
}

func optional(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
