package modeling

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Address", func() {
	var a, b *recordingComp

	BeforeEach(func() {
		a = newRecordingComp("A", []Key{"X", "Y"}, nil)
		b = newRecordingComp("B", []Key{"X"}, nil)
	})

	It("should match every key of its component when the key is unset", func() {
		addr := AnyKeyOf(a)

		Expect(addr.Matches(a, "X")).To(BeTrue())
		Expect(addr.Matches(a, "Y")).To(BeTrue())
		Expect(addr.Matches(b, "X")).To(BeFalse())
	})

	It("should match everything when nothing is set", func() {
		addr := Address{}

		Expect(addr.Matches(a, "X")).To(BeTrue())
		Expect(addr.Matches(b, "Z")).To(BeTrue())
		Expect(addr.Matches(nil, "")).To(BeTrue())
	})

	It("should match one key of any component when only the key is set", func() {
		addr := Address{Key: "X"}

		Expect(addr.Matches(a, "X")).To(BeTrue())
		Expect(addr.Matches(b, "X")).To(BeTrue())
		Expect(addr.Matches(a, "Y")).To(BeFalse())
	})

	It("should match exactly when concrete", func() {
		addr := At(a, "X")

		Expect(addr.IsConcrete()).To(BeTrue())
		Expect(addr.Matches(a, "X")).To(BeTrue())
		Expect(addr.Matches(a, "Y")).To(BeFalse())
		Expect(addr.Matches(b, "X")).To(BeFalse())
	})

	It("should render wildcards", func() {
		Expect(At(a, "X").String()).To(Equal("A:X"))
		Expect(AnyKeyOf(b).String()).To(Equal("B:*"))
		Expect(Address{}.String()).To(Equal("*:*"))
	})

	It("should be usable as a map key", func() {
		m := map[Address]int{At(a, "X"): 1}
		m[At(a, "X")]++

		Expect(m).To(HaveLen(1))
		Expect(m[At(a, "X")]).To(Equal(2))
	})
})
