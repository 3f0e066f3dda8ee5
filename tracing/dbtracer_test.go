package tracing

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/phasesim/datarecording"
	"github.com/sarchlab/phasesim/sim/modeling"
	"github.com/sarchlab/phasesim/sim/simulation"
	"github.com/sarchlab/phasesim/sim/termination"
	"github.com/sarchlab/phasesim/sim/timing"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		tracer   *DBTracer
		s        *simulation.Simulation
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)
		backend.EXPECT().CreateTable(gomock.Any(), gomock.Any()).Times(5)
		tracer = NewDBTracer(backend)
		s = simulation.MakeBuilder().WithID("Sim").Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record time changes", func() {
		backend.EXPECT().InsertData(TimeTable, TimeEntry{
			Seq:        1,
			Simulation: "Sim",
			Tick:       4,
			Phase:      "Update",
		})

		tracer.TimeChanged(s, timing.Time{Tick: 4, Phase: timing.PhaseUpdate})
	})

	It("should record state changes and flush when finished", func() {
		gomock.InOrder(
			backend.EXPECT().InsertData(StateTable, StateEntry{
				Seq: 1, Simulation: "Sim", Phase: "Prepare", State: "Ready",
			}),
			backend.EXPECT().InsertData(StateTable, StateEntry{
				Seq: 2, Simulation: "Sim", Phase: "Prepare", State: "Finished",
			}),
			backend.EXPECT().Flush(),
		)

		tracer.StateChanged(s, simulation.StateReady)
		tracer.StateChanged(s, simulation.StateFinished)
	})

	It("should record tick delay changes", func() {
		backend.EXPECT().InsertData(DelayTable, DelayEntry{
			Seq: 1, Simulation: "Sim", Phase: "Prepare", DelayNS: 2000,
		})

		tracer.TickDelayChanged(s, 2*time.Microsecond)
	})

	It("should record membership and trace new components", func() {
		comp := modeling.NewComponentBase("Comp", nil, nil, nil)
		tracer.EnablePhaseTracing()
		gomock.InOrder(
			backend.EXPECT().InsertData(MemberTable, MemberEntry{
				Seq: 1, Simulation: "Sim", Phase: "Prepare",
				Component: "Comp", Event: "added",
			}),
			backend.EXPECT().InsertData(MemberTable, MemberEntry{
				Seq: 2, Simulation: "Sim", Phase: "Prepare",
				Component: "Comp", Event: "removed",
			}),
			backend.EXPECT().InsertData(MemberTable, MemberEntry{
				Seq: 3, Simulation: "Sim", Phase: "Prepare",
				Component: "Comp", Event: "added",
			}),
		)

		tracer.ComponentAdded(s, comp)
		tracer.ComponentRemoved(s, comp)
		tracer.ComponentAdded(s, comp)

		Expect(IsTraced(comp, tracer)).To(BeTrue())
		Expect(comp.NumHooks()).To(Equal(1))
	})

	It("should not trace components without phase tracing", func() {
		comp := modeling.NewComponentBase("Comp", nil, nil, nil)
		backend.EXPECT().InsertData(MemberTable, gomock.Any())

		tracer.ComponentAdded(s, comp)

		Expect(comp.NumHooks()).To(BeZero())
	})

	It("should record dispatched phases", func() {
		wallNow := time.Unix(0, 0)
		tracer.clock = func() time.Time { return wallNow }
		now := timing.Time{Tick: 1, Phase: timing.PhaseCalculate}
		backend.EXPECT().InsertData(DispatchTable, DispatchEntry{
			Seq: 1, Component: "Comp", Tick: 1, Phase: "Calculate", WallNS: 500,
		})

		tracer.StartPhase("Comp", now)
		wallNow = wallNow.Add(500 * time.Nanosecond)
		tracer.EndPhase("Comp", now)
	})
})

var _ = Describe("DBTracer with SQLite", func() {
	It("should write one time row per phase advance", func() {
		db, err := sql.Open("sqlite3",
			filepath.Join(GinkgoT().TempDir(), "trace.sqlite3"))
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		recorder := datarecording.NewWithDB(db)
		defer recorder.Close()

		tracer := NewDBTracer(recorder)
		tracer.EnablePhaseTracing()

		s := simulation.MakeBuilder().WithID("Sim").Build()
		s.AddListener(tracer)
		Expect(s.AddComponent(
			modeling.NewComponentBase("Idle", nil, nil, nil))).To(Succeed())
		Expect(s.AddComponent(
			termination.NewTickTerminator("Timer", s.Clock(), 2))).To(Succeed())

		Expect(s.Init()).To(Succeed())
		Expect(s.Run()).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(s.Wait(ctx)).To(Succeed())
		tracer.Flush()

		count := func(table string) int {
			var n int
			err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
			Expect(err).NotTo(HaveOccurred())
			return n
		}

		Expect(count(TimeTable)).To(Equal(12))
		Expect(count(DispatchTable)).To(Equal(24))
		Expect(count(MemberTable)).To(Equal(2))
		Expect(count(StateTable)).To(Equal(3))

		var tick uint64
		var phase string
		err = db.QueryRow("SELECT Tick, Phase FROM " + TimeTable +
			" ORDER BY Seq DESC LIMIT 1").Scan(&tick, &phase)
		Expect(err).NotTo(HaveOccurred())
		Expect(tick).To(Equal(uint64(3)))
		Expect(phase).To(Equal("Prepare"))

		traces := NewTraceReader(datarecording.NewReaderWithDB(db))

		sizes, err := traces.TableSizes(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sizes).To(Equal([]TableSize{
			{Table: DispatchTable, Rows: 24},
			{Table: MemberTable, Rows: 2},
			{Table: StateTable, Rows: 3},
			{Table: DelayTable, Rows: 0},
			{Table: TimeTable, Rows: 12},
		}))

		history, err := traces.StateHistory(ctx, "Sim")
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(3))
		Expect(history[0].State).To(Equal("Ready"))
		Expect(history[1].State).To(Equal("Running"))
		Expect(history[2].State).To(Equal("Finished"))

		history, err = traces.StateHistory(ctx, "Other")
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(BeEmpty())

		last, found, err := traces.LastTime(ctx, "Sim")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(last).To(Equal(timing.Time{Tick: 3, Phase: timing.PhasePrepare}))

		_, found, err = traces.LastTime(ctx, "Other")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())

		dispatches, err := traces.Dispatches(ctx, "Idle", 1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(dispatches).To(HaveLen(4))
		for i, p := range timing.StandardPhases().Phases() {
			Expect(dispatches[i].Tick).To(Equal(uint64(1)))
			Expect(dispatches[i].Phase).To(Equal(string(p)))
		}
	})
})
