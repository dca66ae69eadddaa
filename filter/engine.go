package filter

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/datapages/irw-go/warehouse"
)

// Engine evaluates filter specs against a table listing.
type Engine struct {
	logger *zap.SugaredLogger
}

// NewEngine creates an engine. A nil logger disables warning output.
func NewEngine(logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{logger: logger}
}

// Apply returns the sorted names of tables matching every active predicate
// in the spec. Predicate order does not affect the result; each is an
// independent per-row test.
func (e *Engine) Apply(rows []warehouse.TableInfo, spec Spec) []string {
	kept := make([]warehouse.TableInfo, len(rows))
	copy(kept, rows)

	numeric := []struct {
		name string
		rng  *Range
	}{
		{"n_responses", spec.NResponses},
		{"n_categories", spec.NCategories},
		{"n_participants", spec.NParticipants},
		{"n_items", spec.NItems},
		{"responses_per_participant", spec.ResponsesPerParticipant},
		{"responses_per_item", spec.ResponsesPerItem},
	}
	for _, f := range numeric {
		kept = applyNumeric(kept, f.name, f.rng)
	}

	if spec.Density != nil {
		before := len(kept)
		kept = applyNumeric(kept, "density", spec.Density)
		if removed := before - len(kept); removed > 0 && isDefaultDensity(spec.Density) {
			e.logger.Warnf(
				"default density filter (%.1f-%.0f) removed %d dataset(s); clear Density to disable",
				DefaultDensityMin, DefaultDensityMax, removed)
		}
	}

	kept = applyVar(kept, spec.Var)

	categorical := []struct {
		name   string
		values []string
	}{
		{"age_range", spec.AgeRange},
		{"child_age", spec.ChildAge},
		{"construct_type", spec.ConstructType},
		{"construct_name", spec.ConstructName},
		{"sample", spec.Sample},
		{"measurement_tool", spec.MeasurementTool},
		{"item_format", spec.ItemFormat},
		{"language", spec.Language},
		{"license", spec.License},
	}
	for _, f := range categorical {
		kept = applyCategorical(kept, f.name, f.values)
	}

	if spec.Longitudinal != nil {
		kept = keepIf(kept, func(info *warehouse.TableInfo) bool {
			return info.Longitudinal != nil && *info.Longitudinal == *spec.Longitudinal
		})
	}

	names := make([]string, 0, len(kept))
	for i := range kept {
		names = append(names, kept[i].Name)
	}
	sort.Strings(names)
	return names
}

func keepIf(rows []warehouse.TableInfo, pred func(*warehouse.TableInfo) bool) []warehouse.TableInfo {
	out := rows[:0]
	for i := range rows {
		if pred(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}

// applyNumeric keeps rows whose field is non-null and inside the range.
func applyNumeric(rows []warehouse.TableInfo, name string, rng *Range) []warehouse.TableInfo {
	if rng == nil {
		return rows
	}
	return keepIf(rows, func(info *warehouse.TableInfo) bool {
		v := numericField(name, info)
		return v != nil && rng.contains(*v)
	})
}

// applyCategorical keeps rows where any comma-delimited token of the cell
// equals any filter value. Null cells never match.
func applyCategorical(rows []warehouse.TableInfo, name string, values []string) []warehouse.TableInfo {
	if len(values) == 0 {
		return rows
	}
	return keepIf(rows, func(info *warehouse.TableInfo) bool {
		cell := categoricalField(name, info)
		if cell == nil {
			return false
		}
		for _, token := range splitTags(*cell) {
			for _, want := range values {
				if token == want {
					return true
				}
			}
		}
		return false
	})
}

// applyVar keeps rows whose variables cell contains every requested
// variable. A request token containing an underscore is a prefix match,
// with any trailing underscore stripped first; otherwise an exact token
// match. Matching is case-insensitive. Null cells fail unconditionally.
func applyVar(rows []warehouse.TableInfo, requested []string) []warehouse.TableInfo {
	if len(requested) == 0 {
		return rows
	}
	return keepIf(rows, func(info *warehouse.TableInfo) bool {
		if info.Variables == nil {
			return false
		}
		have := splitVariables(*info.Variables)
		for _, want := range requested {
			if !matchVariable(have, strings.ToLower(want)) {
				return false
			}
		}
		return true
	})
}

func matchVariable(have []string, want string) bool {
	if strings.Contains(want, "_") {
		prefix := strings.TrimRight(want, "_")
		for _, v := range have {
			if strings.HasPrefix(v, prefix) {
				return true
			}
		}
		return false
	}
	for _, v := range have {
		if v == want {
			return true
		}
	}
	return false
}

// splitTags splits a comma-delimited multi-value cell, trimming whitespace
// and dropping empty tokens.
func splitTags(cell string) []string {
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitVariables splits the pipe-delimited variables cell into lowercased
// tokens.
func splitVariables(cell string) []string {
	parts := strings.Split(cell, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
