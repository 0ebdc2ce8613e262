package ticket

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/lotto-tracker/internal/lottery"
)

var _ = Describe("Filter", func() {
	var ticket *lottery.Ticket

	BeforeEach(func() {
		ticket = &lottery.Ticket{
			ID:          "t1",
			Type:        lottery.MegaMillions,
			MainNumbers: []int{4, 18, 27, 33, 61},
			SpecialBall: 12,
			DrawDate:    time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC),
			Status:      lottery.StatusPending,
		}
	})

	DescribeTable("Match",
		func(f Filter, want bool) {
			Expect(f.Match(ticket)).To(Equal(want))
		},
		Entry("empty filter", Filter{}, true),
		Entry("matching type", Filter{Type: lottery.MegaMillions}, true),
		Entry("other type", Filter{Type: lottery.Powerball}, false),
		Entry("all statuses", Filter{Status: lottery.StatusAll}, true),
		Entry("matching status", Filter{Status: lottery.StatusPending}, true),
		Entry("other status", Filter{Status: lottery.StatusWinner}, false),
		Entry("main number", Filter{Search: "27"}, true),
		Entry("special ball", Filter{Search: "12"}, true),
		Entry("several numbers", Filter{Search: "4, 61"}, true),
		Entry("number not played", Filter{Search: "5"}, false),
		Entry("game name", Filter{Search: "mega"}, true),
		Entry("status word", Filter{Search: "Pending"}, true),
		Entry("ISO draw date", Filter{Search: "2024-03-22"}, true),
		Entry("month name", Filter{Search: "mar"}, true),
		Entry("unrelated text", Filter{Search: "powerball"}, false),
		Entry("combined", Filter{Type: lottery.MegaMillions, Status: lottery.StatusPending, Search: "mega 33"}, true),
	)

	Describe("MatchAlert", func() {
		var alert *Alert

		BeforeEach(func() {
			alert = &Alert{
				Type:        lottery.Powerball,
				Status:      lottery.StatusWinner,
				MainNumbers: []int{3, 17, 22, 45, 69},
				SpecialBall: 5,
				Message:     "Powerball ticket 03 17 22 45 69 + 05 for 2024-03-20 is a winner (Jackpot)",
			}
		})

		It("should match on message text", func() {
			Expect(Filter{Search: "jackpot"}.MatchAlert(alert)).To(BeTrue())
			Expect(Filter{Search: "expired"}.MatchAlert(alert)).To(BeFalse())
		})

		It("should match numeric terms against the ticket numbers only", func() {
			Expect(Filter{Search: "3"}.MatchAlert(alert)).To(BeTrue())
			Expect(Filter{Search: "05"}.MatchAlert(alert)).To(BeTrue())
			Expect(Filter{Search: "17, 69"}.MatchAlert(alert)).To(BeTrue())
			// 13 and 2024 only show up inside other numbers in the message
			Expect(Filter{Search: "13"}.MatchAlert(alert)).To(BeFalse())
			Expect(Filter{Search: "2024"}.MatchAlert(alert)).To(BeFalse())
		})

		It("should honor type and status", func() {
			Expect(Filter{Type: lottery.MegaMillions}.MatchAlert(alert)).To(BeFalse())
			Expect(Filter{Status: lottery.StatusExpired}.MatchAlert(alert)).To(BeFalse())
			Expect(Filter{Type: lottery.Powerball, Status: lottery.StatusWinner}.MatchAlert(alert)).To(BeTrue())
		})
	})
})
