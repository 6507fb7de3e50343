package templating

// MergeDetections combines the results of analyzing several templates into a
// single report. Variables are deduplicated by key and recommendations by
// exact text; in both cases the first occurrence wins and input order is kept.
func MergeDetections(results ...VariableDetectionResult) VariableDetectionResult {
	detected := newVariableSet()
	existing := newVariableSet()
	newVars := newVariableSet()

	seenRecs := make(map[string]struct{})
	recommendations := []string{}

	for _, r := range results {
		for _, v := range r.DetectedVariables {
			detected.add(v)
		}
		for _, v := range r.ExistingVariables {
			existing.add(v)
		}
		for _, v := range r.NewVariables {
			newVars.add(v)
		}
		for _, rec := range r.Recommendations {
			if _, dup := seenRecs[rec]; dup {
				continue
			}
			seenRecs[rec] = struct{}{}
			recommendations = append(recommendations, rec)
		}
	}

	return VariableDetectionResult{
		DetectedVariables: detected.values(),
		ExistingVariables: existing.values(),
		NewVariables:      newVars.values(),
		Recommendations:   recommendations,
	}
}
