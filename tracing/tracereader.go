package tracing

import (
	"context"

	"github.com/sarchlab/phasesim/datarecording"
	"github.com/sarchlab/phasesim/sim/timing"
)

// TableSize is the number of rows of one table of a recording.
type TableSize struct {
	Table string
	Rows  int
}

// TraceReader reads back what a DBTracer recorded.
type TraceReader struct {
	reader datarecording.DataReader
}

// NewTraceReader maps the tables of a DBTracer on the data reader.
func NewTraceReader(reader datarecording.DataReader) *TraceReader {
	reader.MapTable(TimeTable, TimeEntry{})
	reader.MapTable(StateTable, StateEntry{})
	reader.MapTable(DelayTable, DelayEntry{})
	reader.MapTable(MemberTable, MemberEntry{})
	reader.MapTable(DispatchTable, DispatchEntry{})

	return &TraceReader{reader: reader}
}

// TableSizes counts the rows of every table, sorted by table name.
func (r *TraceReader) TableSizes(ctx context.Context) ([]TableSize, error) {
	var sizes []TableSize

	for _, table := range r.reader.ListTables() {
		n, err := r.reader.Count(ctx, table, datarecording.QueryParams{})
		if err != nil {
			return nil, err
		}

		sizes = append(sizes, TableSize{Table: table, Rows: n})
	}

	return sizes, nil
}

func simulationFilter(simID string) []datarecording.Filter {
	if simID == "" {
		return nil
	}

	return []datarecording.Filter{datarecording.Equal("Simulation", simID)}
}

// StateHistory returns the state changes of a simulation in the order they
// were recorded. An empty ID selects every simulation.
func (r *TraceReader) StateHistory(
	ctx context.Context,
	simID string,
) ([]StateEntry, error) {
	rows, err := r.reader.Query(ctx, StateTable, datarecording.QueryParams{
		Filters: simulationFilter(simID),
		OrderBy: "Seq",
	})
	if err != nil {
		return nil, err
	}

	entries := make([]StateEntry, len(rows))
	for i, row := range rows {
		entries[i] = *row.(*StateEntry)
	}

	return entries, nil
}

// LastTime returns the last time a simulation reached. It returns false if
// the simulation never advanced.
func (r *TraceReader) LastTime(
	ctx context.Context,
	simID string,
) (timing.Time, bool, error) {
	rows, err := r.reader.Query(ctx, TimeTable, datarecording.QueryParams{
		Filters:    simulationFilter(simID),
		OrderBy:    "Seq",
		Descending: true,
		Limit:      1,
	})
	if err != nil || len(rows) == 0 {
		return timing.Time{}, false, err
	}

	e := rows[0].(*TimeEntry)

	return timing.Time{Tick: e.Tick, Phase: timing.Phase(e.Phase)}, true, nil
}

// Dispatches returns the phases a component handled between two ticks,
// both included.
func (r *TraceReader) Dispatches(
	ctx context.Context,
	component string,
	from, to timing.VTick,
) ([]DispatchEntry, error) {
	rows, err := r.reader.Query(ctx, DispatchTable, datarecording.QueryParams{
		Filters: []datarecording.Filter{
			datarecording.Equal("Component", component),
			datarecording.AtLeast("Tick", from),
			datarecording.AtMost("Tick", to),
		},
		OrderBy: "Seq",
	})
	if err != nil {
		return nil, err
	}

	entries := make([]DispatchEntry, len(rows))
	for i, row := range rows {
		entries[i] = *row.(*DispatchEntry)
	}

	return entries, nil
}
