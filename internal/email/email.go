package email

import (
	"context"

	"github.com/Domenick1991/flytau/internal/kafka"
	"github.com/Domenick1991/flytau/pkg/logger"
)

type Sender struct {
	log logger.Logger
}

func NewSender(log logger.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.OrderEvent) error {
	s.log.Info("send notification email",
		"to", event.Email,
		"type", event.Type,
		"flight", event.FlightNum,
		"order", event.OrderID,
		"seats", event.SeatCount)
	return nil
}
