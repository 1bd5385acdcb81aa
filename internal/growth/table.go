package growth

import "fmt"

// Row is one entry of a transition table: a plant at From is replaced by an
// entity of Kind and moves to To.
type Row struct {
	From Stage
	Kind string
	To   Stage
}

// Table is the ordered stage-transition table. Row i starts at Stage(i) and
// advances exactly one stage; the stage after the last row is terminal.
type Table struct {
	rows []Row
}

// NewTable builds a table from rows in stage order.
func NewTable(rows ...Row) Table {
	return Table{rows: append([]Row(nil), rows...)}
}

// DefaultTable is the seed-to-large-tomato sequence using the stock prefab IDs.
func DefaultTable() Table {
	return NewTable(
		Row{From: StageSeed, Kind: "plant_small", To: StageSmall},
		Row{From: StageSmall, Kind: "plant_medium", To: StageMedium},
		Row{From: StageMedium, Kind: "tomato_medium", To: StageTomatoMedium},
		Row{From: StageTomatoMedium, Kind: "tomato_large", To: StageTomatoLarge},
	)
}

// Lookup returns the row leaving stage s. ok is false for the terminal stage.
func (t Table) Lookup(s Stage) (row Row, ok bool) {
	if s < 0 || int(s) >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[s], true
}

// Terminal returns the stage no row leaves.
func (t Table) Terminal() Stage {
	return Stage(len(t.rows))
}

// Rows returns a copy of the table's rows.
func (t Table) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

// Kinds returns the prefab kinds the table spawns, in order.
func (t Table) Kinds() []string {
	kinds := make([]string, len(t.rows))
	for i, r := range t.rows {
		kinds[i] = r.Kind
	}
	return kinds
}

func (t Table) validate(required int) error {
	if len(t.rows) != required {
		return &ConfigError{
			Field:  "Table",
			Reason: fmt.Sprintf("has %d rows, want %d", len(t.rows), required),
		}
	}
	for i, r := range t.rows {
		switch {
		case r.From != Stage(i):
			return &ConfigError{Field: "Table", Reason: fmt.Sprintf("row %d starts at %s, want %s", i, r.From, Stage(i))}
		case r.To != r.From+1:
			return &ConfigError{Field: "Table", Reason: fmt.Sprintf("row %s advances to %s, want %s", r.From, r.To, r.From+1)}
		case r.Kind == "":
			return &ConfigError{Field: "Table", Reason: fmt.Sprintf("row %s has no prefab kind", r.From)}
		}
	}
	return nil
}
