package lottery

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Selection", func() {
	drawDate := time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC)

	Describe("ToggleMain", func() {
		var (
			selection []int
			number    int
			lottery   LotteryType
			result    []int
			err       error
		)

		BeforeEach(func() {
			selection = []int{3, 17}
			lottery = MegaMillions
		})

		JustBeforeEach(func() {
			result, err = ToggleMain(selection, number, lottery)
		})

		When("the number is not selected", func() {
			BeforeEach(func() {
				number = 22
			})

			It("should add it", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result).To(Equal([]int{3, 17, 22}))
			})

			It("should not modify the input", func() {
				Expect(selection).To(Equal([]int{3, 17}))
			})

			It("should restore the original selection when toggled again", func() {
				again, err := ToggleMain(result, number, lottery)
				Expect(err).NotTo(HaveOccurred())
				Expect(again).To(Equal(selection))
			})
		})

		When("the number is already selected", func() {
			BeforeEach(func() {
				number = 3
			})

			It("should remove it", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result).To(Equal([]int{17}))
			})

			It("should hold the same numbers when toggled again", func() {
				again, err := ToggleMain(result, number, lottery)
				Expect(err).NotTo(HaveOccurred())
				Expect(again).To(ConsistOf(selection))
			})
		})

		When("five numbers are already selected", func() {
			BeforeEach(func() {
				selection = []int{3, 17, 22, 45, 70}
				number = 8
			})

			It("should leave the selection unchanged", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result).To(Equal(selection))
			})
		})

		When("removing from a full selection", func() {
			BeforeEach(func() {
				selection = []int{3, 17, 22, 45, 70}
				number = 45
			})

			It("should always be allowed", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result).To(Equal([]int{3, 17, 22, 70}))
			})
		})

		When("the number is outside the Powerball pool", func() {
			BeforeEach(func() {
				lottery = Powerball
				number = 70
			})

			It("should leave the selection unchanged", func() {
				Expect(result).To(Equal(selection))
			})

			It("should return an out of range error", func() {
				var rangeErr *OutOfRangeError
				Expect(err).To(BeAssignableToTypeOf(rangeErr))
				Expect(err.(*OutOfRangeError).Pool).To(Equal(PoolMain))
				Expect(err.(*OutOfRangeError).Range).To(Equal(Range{Min: 1, Max: 69}))
			})
		})

		When("the number is zero", func() {
			BeforeEach(func() {
				number = 0
			})

			It("should reject it", func() {
				Expect(result).To(Equal(selection))
				Expect(IsSelectionError(err)).To(BeTrue())
			})
		})
	})

	Describe("ToggleSpecial", func() {
		It("should set the ball when none is selected", func() {
			special, err := ToggleSpecial(NoSpecialBall, 25, MegaMillions)
			Expect(err).NotTo(HaveOccurred())
			Expect(special).To(Equal(25))
		})

		It("should replace a different ball", func() {
			special, err := ToggleSpecial(4, 9, MegaMillions)
			Expect(err).NotTo(HaveOccurred())
			Expect(special).To(Equal(9))
		})

		It("should clear the ball when toggled twice", func() {
			special, err := ToggleSpecial(9, 9, MegaMillions)
			Expect(err).NotTo(HaveOccurred())
			Expect(special).To(Equal(NoSpecialBall))
		})

		It("should reject a Mega Ball above 25", func() {
			special, err := ToggleSpecial(4, 26, MegaMillions)
			Expect(special).To(Equal(4))
			Expect(err).To(BeAssignableToTypeOf(&OutOfRangeError{}))
		})

		It("should accept a Power Ball of 26", func() {
			special, err := ToggleSpecial(NoSpecialBall, 26, Powerball)
			Expect(err).NotTo(HaveOccurred())
			Expect(special).To(Equal(26))
		})
	})

	Describe("IsComplete", func() {
		It("should be true only with five numbers and a special ball", func() {
			Expect(IsComplete([]int{1, 2, 3, 4, 5}, 1)).To(BeTrue())
			Expect(IsComplete([]int{1, 2, 3, 4, 5}, NoSpecialBall)).To(BeFalse())
		})

		It("should be false for every smaller selection", func() {
			numbers := []int{1, 2, 3, 4, 5}
			for n := 0; n < MainNumberCount; n++ {
				Expect(IsComplete(numbers[:n], 1)).To(BeFalse())
			}
		})
	})

	Describe("Validate", func() {
		It("should reject duplicate main numbers", func() {
			err := Validate([]int{3, 3, 22, 45, 70}, 25, MegaMillions)
			Expect(err).To(Equal(&DuplicateSelectionError{Number: 3}))
		})

		It("should reject an out of range special ball", func() {
			err := Validate([]int{3, 17, 22, 45, 69}, 27, Powerball)
			Expect(err).To(BeAssignableToTypeOf(&OutOfRangeError{}))
			Expect(err.(*OutOfRangeError).Pool).To(Equal(PoolSpecial))
		})

		It("should reject an incomplete selection", func() {
			err := Validate([]int{3, 17, 22}, 25, MegaMillions)
			Expect(err).To(Equal(&IncompleteSelectionError{MainCount: 3, HasSpecial: true}))
		})

		It("should reject unknown lottery types", func() {
			err := Validate([]int{3, 17, 22, 45, 70}, 25, LotteryType("keno"))
			Expect(err).To(MatchError(ErrUnknownLotteryType))
		})

		It("should not cross-check the special ball against main numbers", func() {
			Expect(Validate([]int{3, 17, 22, 25, 70}, 25, MegaMillions)).To(Succeed())
		})
	})

	Describe("ValidatePartial", func() {
		It("should accept a selection still being picked", func() {
			Expect(ValidatePartial([]int{}, NoSpecialBall, Powerball)).To(Succeed())
			Expect(ValidatePartial([]int{3, 17}, NoSpecialBall, Powerball)).To(Succeed())
			Expect(ValidatePartial([]int{3, 17, 22, 45, 69}, 26, Powerball)).To(Succeed())
		})

		It("should reject more than five main numbers", func() {
			err := ValidatePartial([]int{1, 2, 3, 4, 5, 6}, NoSpecialBall, Powerball)
			Expect(err).To(MatchError(ErrTooManyNumbers))
			Expect(IsSelectionError(err)).To(BeTrue())
		})

		It("should reject repeated main numbers", func() {
			err := ValidatePartial([]int{1, 1, 1, 1, 1}, 6, Powerball)
			Expect(err).To(Equal(&DuplicateSelectionError{Number: 1}))
		})

		It("should reject numbers outside the pools", func() {
			err := ValidatePartial([]int{3, 70}, NoSpecialBall, Powerball)
			Expect(err).To(Equal(&OutOfRangeError{Type: Powerball, Pool: PoolMain, Number: 70, Range: Range{Min: 1, Max: 69}}))

			err = ValidatePartial([]int{3}, 27, Powerball)
			Expect(err).To(BeAssignableToTypeOf(&OutOfRangeError{}))
			Expect(err.(*OutOfRangeError).Pool).To(Equal(PoolSpecial))
		})

		It("should reject unknown lottery types", func() {
			Expect(ValidatePartial(nil, NoSpecialBall, LotteryType("keno"))).To(MatchError(ErrUnknownLotteryType))
		})
	})

	Describe("Commit", func() {
		var (
			sel    *Selection
			ticket *Ticket
			err    error
		)

		BeforeEach(func() {
			sel = NewSelection(MegaMillions)
		})

		JustBeforeEach(func() {
			ticket, err = sel.Commit(drawDate)
		})

		When("the selection is complete", func() {
			BeforeEach(func() {
				for _, n := range []int{3, 17, 22, 45, 70} {
					Expect(sel.ToggleMain(n)).To(Succeed())
				}
				Expect(sel.ToggleSpecial(25)).To(Succeed())
				Expect(sel.IsComplete()).To(BeTrue())
			})

			It("should build a pending ticket with the picked numbers", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(ticket.MainNumbers).To(Equal([]int{3, 17, 22, 45, 70}))
				Expect(ticket.SpecialBall).To(Equal(25))
				Expect(ticket.Type).To(Equal(MegaMillions))
				Expect(ticket.DrawDate).To(Equal(drawDate))
				Expect(ticket.Status).To(Equal(StatusPending))
			})

			It("should assign an identifier", func() {
				Expect(ticket.ID).NotTo(BeEmpty())
			})

			It("should reset the working selection", func() {
				Expect(sel.Main).To(BeEmpty())
				Expect(sel.Special).To(Equal(NoSpecialBall))
				Expect(sel.Type).To(Equal(MegaMillions))
			})
		})

		When("numbers were picked out of order", func() {
			BeforeEach(func() {
				for _, n := range []int{45, 3, 70, 22, 17} {
					Expect(sel.ToggleMain(n)).To(Succeed())
				}
				Expect(sel.ToggleSpecial(1)).To(Succeed())
			})

			It("should store them sorted", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(ticket.MainNumbers).To(Equal([]int{3, 17, 22, 45, 70}))
			})
		})

		When("the special ball is missing", func() {
			BeforeEach(func() {
				for _, n := range []int{3, 17, 22, 45, 70} {
					Expect(sel.ToggleMain(n)).To(Succeed())
				}
			})

			It("should fail with an incomplete selection error", func() {
				Expect(err).To(Equal(&IncompleteSelectionError{MainCount: 5, HasSpecial: false}))
				Expect(ticket).To(BeNil())
			})

			It("should keep the working selection", func() {
				Expect(sel.Main).To(HaveLen(5))
			})
		})

		When("nothing is selected", func() {
			It("should fail without building a ticket", func() {
				Expect(IsSelectionError(err)).To(BeTrue())
				Expect(ticket).To(BeNil())
			})
		})

		It("should generate distinct identifiers", func() {
			seen := map[string]bool{}
			for i := 0; i < 50; i++ {
				s := &Selection{Type: Powerball, Main: []int{1, 2, 3, 4, 5}, Special: 6}
				t, err := s.Commit(drawDate)
				Expect(err).NotTo(HaveOccurred())
				Expect(seen).NotTo(HaveKey(t.ID))
				seen[t.ID] = true
			}
		})
	})
})
