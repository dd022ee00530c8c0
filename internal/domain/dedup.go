package domain

// findingIdentity is the dedup key for findings: two findings with the
// same id at the same path and start line are the same finding,
// regardless of how their text differs.
type findingIdentity struct {
	id        string
	path      string
	startLine int
}

func identityOf(f Finding) findingIdentity {
	ident := findingIdentity{id: f.ID}
	if f.Location != nil {
		ident.path = f.Location.Path
		ident.startLine = f.Location.StartLine
	}
	return ident
}

// DeduplicateFindings collapses repeated findings to one entry per
// distinct identity. The first occurrence wins and relative order is
// otherwise preserved, so the operation is idempotent.
func DeduplicateFindings(findings []Finding) []Finding {
	seen := make(map[findingIdentity]struct{}, len(findings))
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		ident := identityOf(f)
		if _, dup := seen[ident]; dup {
			continue
		}
		seen[ident] = struct{}{}
		out = append(out, f)
	}
	return out
}
