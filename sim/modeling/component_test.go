package modeling

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/phasesim/sim/hooking"
	"github.com/sarchlab/phasesim/sim/timing"
)

type recordingComp struct {
	*ComponentBase

	calculated []timing.Time
	custom     []timing.Time
	received   []Delivery
}

func newRecordingComp(name string, sources, targets []Key) *recordingComp {
	c := &recordingComp{}
	c.ComponentBase = NewComponentBase(name, c, sources, targets)

	return c
}

func (c *recordingComp) Calculate(now timing.Time) error {
	c.calculated = append(c.calculated, now)
	return nil
}

func (c *recordingComp) HandlePhase(now timing.Time) error {
	c.custom = append(c.custom, now)
	return nil
}

func (c *recordingComp) Receive(target Key, source Address, value any) error {
	c.received = append(c.received,
		Delivery{Target: target, Source: source, Value: value})

	return nil
}

type preparingComp struct {
	*ComponentBase

	prepared int
}

func (c *preparingComp) Prepare(_ timing.Time) error {
	c.prepared++
	return nil
}

var _ = Describe("ComponentBase", func() {
	var (
		mockCtrl *gomock.Controller
		comp     *recordingComp
		source   *recordingComp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		comp = newRecordingComp("Comp", []Key{"Out"}, []Key{"In", "Aux"})
		source = newRecordingComp("Source", []Key{"Value"}, nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("declaration", func() {
		It("should keep declared keys in order", func() {
			Expect(comp.SourceKeys()).To(Equal([]Key{"Out"}))
			Expect(comp.TargetKeys()).To(Equal([]Key{"In", "Aux"}))
			Expect(comp.HasTargetKey("Aux")).To(BeTrue())
			Expect(comp.HasTargetKey("Out")).To(BeFalse())
			Expect(comp.HasSourceKey("Out")).To(BeTrue())
		})

		It("should not expose internal key slices", func() {
			keys := comp.TargetKeys()
			keys[0] = "Changed"

			Expect(comp.TargetKeys()).To(Equal([]Key{"In", "Aux"}))
		})

		It("should panic on duplicated keys", func() {
			Expect(func() {
				NewComponentBase("Comp", nil, []Key{"A", "A"}, nil)
			}).To(Panic())
		})

		It("should panic on keys with separators", func() {
			Expect(func() {
				NewComponentBase("Comp", nil, nil, []Key{"A:B"})
			}).To(Panic())
		})

		It("should panic on invalid names", func() {
			Expect(func() {
				NewComponentBase("", nil, nil, nil)
			}).To(Panic())
		})
	})

	Context("reading", func() {
		It("should read exposed values", func() {
			_, found := comp.Read("Out")
			Expect(found).To(BeFalse())

			comp.Expose("Out", 42)

			v, found := comp.Read("Out")
			Expect(found).To(BeTrue())
			Expect(v).To(Equal(42))
		})

		It("should not read undeclared keys", func() {
			_, found := comp.Read("In")

			Expect(found).To(BeFalse())
		})

		It("should panic when exposing undeclared keys", func() {
			Expect(func() { comp.Expose("In", 1) }).To(Panic())
		})
	})

	Context("delivering", func() {
		It("should pass valid deliveries to the receiver", func() {
			Expect(comp.Deliver("In", At(source, "Value"), 3)).To(Succeed())

			Expect(comp.received).To(Equal([]Delivery{
				{Target: "In", Source: At(source, "Value"), Value: 3},
			}))
		})

		It("should reject undeclared keys", func() {
			err := comp.Deliver("Out", At(source, "Value"), 3)

			Expect(err).To(MatchError(ErrUndeclaredKey))
			Expect(errors.Is(err, ErrInvariantViolation)).To(BeTrue())
			Expect(comp.received).To(BeEmpty())
		})

		It("should enforce the non-nil policy", func() {
			Expect(comp.Deliver("In", At(source, "Value"), nil)).To(Succeed())

			comp.RequireNonNil("In")

			Expect(comp.Deliver("In", At(source, "Value"), nil)).
				To(MatchError(ErrNilValue))
			Expect(comp.received).To(HaveLen(1))
		})

		It("should enforce the declared type", func() {
			comp.RequireType("In", 0)

			Expect(comp.Deliver("In", At(source, "Value"), 7)).To(Succeed())
			Expect(comp.Deliver("In", At(source, "Value"), "7")).
				To(MatchError(ErrValueType))
			Expect(comp.Deliver("In", At(source, "Value"), nil)).To(Succeed())
		})

		It("should panic on policies for undeclared keys", func() {
			Expect(func() { comp.RequireNonNil("Nope") }).To(Panic())
			Expect(func() { comp.RequireType("Nope", 1) }).To(Panic())
		})
	})

	Context("borders", func() {
		It("should attach a border once", func() {
			border := NewMockBorder(mockCtrl)

			comp.AttachBorder(border)
			comp.AttachBorder(border)

			Expect(comp.Borders()).To(HaveLen(1))

			comp.DetachBorder(border)
			Expect(comp.Borders()).To(BeEmpty())
		})

		It("should pull borders during prepare by default", func() {
			border1 := NewMockBorder(mockCtrl)
			border2 := NewMockBorder(mockCtrl)
			comp.AttachBorder(border1)
			comp.AttachBorder(border2)

			q1 := border1.EXPECT().Query(comp).Return([]Delivery{
				{Target: "In", Source: At(source, "Value"), Value: 1},
				{Target: "Aux", Source: At(source, "Value"), Value: 2},
			}, nil)
			border2.EXPECT().Query(comp).Return([]Delivery{
				{Target: "In", Source: At(source, "Value"), Value: 3},
			}, nil).After(q1)

			err := comp.Dispatch(timing.Time{Phase: timing.PhasePrepare})

			Expect(err).NotTo(HaveOccurred())
			Expect(comp.received).To(HaveLen(3))
			Expect(comp.received[0].Value).To(Equal(1))
			Expect(comp.received[1].Target).To(Equal(Key("Aux")))
			Expect(comp.received[2].Value).To(Equal(3))
		})

		It("should stop at the first failing delivery", func() {
			border := NewMockBorder(mockCtrl)
			comp.AttachBorder(border)
			border.EXPECT().Query(comp).Return([]Delivery{
				{Target: "Out", Source: At(source, "Value"), Value: 1},
				{Target: "In", Source: At(source, "Value"), Value: 2},
			}, nil)

			err := comp.Dispatch(timing.Time{Phase: timing.PhasePrepare})

			Expect(err).To(MatchError(ErrUndeclaredKey))
			Expect(comp.received).To(BeEmpty())
		})

		It("should return border errors", func() {
			border := NewMockBorder(mockCtrl)
			comp.AttachBorder(border)
			border.EXPECT().Query(comp).Return(nil, errors.New("broken"))

			err := comp.Dispatch(timing.Time{Phase: timing.PhasePrepare})

			Expect(err).To(MatchError("broken"))
		})

		It("should let a Preparer replace the pull", func() {
			c := &preparingComp{}
			c.ComponentBase = NewComponentBase("Preparing", c, nil, []Key{"In"})
			c.AttachBorder(NewMockBorder(mockCtrl))

			Expect(c.Dispatch(timing.Time{Phase: timing.PhasePrepare})).
				To(Succeed())
			Expect(c.prepared).To(Equal(1))
		})
	})

	Context("dispatching", func() {
		It("should route phases to the owner", func() {
			now := timing.Time{Tick: 2, Phase: timing.PhaseCalculate}

			Expect(comp.Dispatch(now)).To(Succeed())
			Expect(comp.Dispatch(timing.Time{Tick: 2, Phase: timing.PhaseUpdate})).
				To(Succeed())
			Expect(comp.Dispatch(timing.Time{Tick: 2, Phase: "Render"})).
				To(Succeed())

			Expect(comp.calculated).To(Equal([]timing.Time{now}))
			Expect(comp.custom).To(Equal([]timing.Time{{Tick: 2, Phase: "Render"}}))
		})

		It("should invoke hooks around the phase", func() {
			hook := NewMockHook(mockCtrl)
			comp.AcceptHook(hook)
			now := timing.Time{Tick: 1, Phase: timing.PhaseCalculate}

			before := hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(Equal(hooking.HookPosBeforePhase))
				Expect(ctx.Domain).To(BeIdenticalTo(comp))
				Expect(ctx.Item).To(Equal(now))
				Expect(comp.calculated).To(BeEmpty())
			})
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(Equal(hooking.HookPosAfterPhase))
				Expect(ctx.Detail).To(Equal(timing.PhaseCalculate))
				Expect(comp.calculated).To(HaveLen(1))
			}).After(before)

			Expect(comp.Dispatch(now)).To(Succeed())
		})
	})
})
