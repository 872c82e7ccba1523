package basket

// CandidateGroup is the set of substitutes offered by one source version.
type CandidateGroup struct {
	Source VersionKey
	Label  string
	Items  []Product
}

// FindCandidates collects, for every version other than target, the items of
// the same section whose name is not in exclude. Versions without eligible
// items are left out. Source item order is preserved.
func FindCandidates(versions Snapshot, target VersionKey, section SectionName, exclude []string) []CandidateGroup {
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	var groups []CandidateGroup
	for _, k := range VersionKeys {
		if k == target {
			continue
		}
		v, ok := versions[k]
		if !ok {
			continue
		}
		var items []Product
		for _, p := range v.Sections[section] {
			if _, excluded := skip[p.Name]; excluded {
				continue
			}
			items = append(items, p)
		}
		if len(items) == 0 {
			continue
		}
		label := v.Label
		if label == "" {
			label = k.Label()
		}
		groups = append(groups, CandidateGroup{Source: k, Label: label, Items: items})
	}
	return groups
}

// ItemNames returns the names of items, in order.
func ItemNames(items []Product) []string {
	names := make([]string, len(items))
	for i, p := range items {
		names[i] = p.Name
	}
	return names
}
