package usage

// Merge folds records in submission order. When two records carry the same month,
// the later one wins; values are never summed or reconciled.
func Merge(records ...Record) Record {
	out := Record{}
	for _, r := range records {
		for m, v := range r {
			out[m] = v
		}
	}
	return out
}
