package enrich

import "github.com/justlist/facility-finder/internal/model"

// mergeResults applies source results onto the facility in precedence
// order. For each field the first source supplying a non-empty value
// wins and is never overwritten; the rating field is the one
// exception, where a strictly greater value from any later source
// replaces the current one. Returns the contributing source names in
// precedence order.
func mergeResults(fac *model.Facility, results map[string]*model.SourceResult, precedence []string) []string {
	var used []string
	for _, name := range precedence {
		res := results[name]
		if res.Empty() {
			continue
		}
		used = append(used, name)

		for key, val := range res.Fields {
			if model.IsEmptyValue(val) {
				continue
			}
			if key == model.FieldRating {
				if r, ok := toFloat(val); ok && r > fac.Rating {
					fac.Rating = r
				}
				continue
			}
			if model.IsEmptyValue(fac.Field(key)) {
				fac.SetField(key, val)
			}
		}
	}
	return used
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
