package ticket

import (
	"time"

	"github.com/zombor/lotto-tracker/internal/lottery"
)

// Alert records a status change the user should hear about
type Alert struct {
	ID          string               `json:"id"`
	TicketID    string               `json:"ticket_id"`
	Type        lottery.LotteryType  `json:"type"`
	Status      lottery.TicketStatus `json:"status"` // Status the ticket moved to
	MainNumbers []int                `json:"main_numbers"`
	SpecialBall int                  `json:"special_ball"`
	Message     string               `json:"message"`
	CreatedAt   time.Time            `json:"created_at"`
}
