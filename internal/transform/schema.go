package transform

import (
	"delivery-eta-service/internal/apperr"
	"delivery-eta-service/internal/domain"
	"fmt"
	"slices"
	"strings"
)

// Schema fixes which columns go through which sub-pipeline, and the ordered
// vocabulary of every categorical column.
type Schema struct {
	Numeric     []string
	Categorical []domain.Vocabulary
}

// DefaultSchema is the delivery trip schema: five numeric columns and six
// ordinal categorical columns.
func DefaultSchema() Schema {
	return Schema{
		Numeric:     domain.NumericColumns(),
		Categorical: domain.Vocabularies(),
	}
}

// Columns returns all feature columns in output order.
func (s Schema) Columns() []string {
	cols := slices.Clone(s.Numeric)
	for _, v := range s.Categorical {
		cols = append(cols, v.Column)
	}
	return cols
}

// Width is the number of columns a transformed matrix has.
func (s Schema) Width() int { return len(s.Numeric) + len(s.Categorical) }

func (s Schema) clone() Schema {
	out := Schema{Numeric: slices.Clone(s.Numeric)}
	for _, v := range s.Categorical {
		out.Categorical = append(out.Categorical, domain.Vocabulary{Column: v.Column, Values: slices.Clone(v.Values)})
	}
	return out
}

// Validate reports malformed schemas as configuration errors.
func (s Schema) Validate() error {
	const op = "transform.Schema.Validate"

	if s.Width() == 0 {
		return apperr.Errorf(apperr.KindConfig, op, "schema has no columns")
	}

	seen := make(map[string]struct{}, s.Width())
	for _, col := range s.Columns() {
		if strings.TrimSpace(col) == "" {
			return apperr.Errorf(apperr.KindConfig, op, "empty column name")
		}
		if _, ok := seen[col]; ok {
			return apperr.Errorf(apperr.KindConfig, op, "column %q listed twice", col)
		}
		seen[col] = struct{}{}
	}

	for _, v := range s.Categorical {
		if len(v.Values) == 0 {
			return apperr.Errorf(apperr.KindConfig, op, "column %q has an empty vocabulary", v.Column)
		}
		vals := make(map[string]struct{}, len(v.Values))
		for _, val := range v.Values {
			if val == "" {
				return apperr.Errorf(apperr.KindConfig, op, "column %q vocabulary contains an empty value", v.Column)
			}
			if _, ok := vals[val]; ok {
				return apperr.Errorf(apperr.KindConfig, op, "column %q vocabulary repeats %q", v.Column, val)
			}
			vals[val] = struct{}{}
		}
	}

	return nil
}

// equal reports whether two schemas name the same columns in the same roles
// and order, with identical vocabularies.
func (s Schema) equal(o Schema) error {
	if !slices.Equal(s.Numeric, o.Numeric) {
		return fmt.Errorf("numeric columns %v do not match %v", o.Numeric, s.Numeric)
	}
	if len(s.Categorical) != len(o.Categorical) {
		return fmt.Errorf("got %d categorical columns, want %d", len(o.Categorical), len(s.Categorical))
	}
	for i := range s.Categorical {
		a, b := s.Categorical[i], o.Categorical[i]
		if a.Column != b.Column {
			return fmt.Errorf("categorical column %d is %q, want %q", i, b.Column, a.Column)
		}
		if !slices.Equal(a.Values, b.Values) {
			return fmt.Errorf("vocabulary of %q is %v, want %v", a.Column, b.Values, a.Values)
		}
	}
	return nil
}
