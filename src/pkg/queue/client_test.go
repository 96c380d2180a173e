package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/tuumbleweed/xerr"

	"permit-report/src/pkg/report"
)

type fakeAcknowledger struct {
	acked    []uint64
	nacked   []uint64
	requeued []bool
}

func (ack *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	ack.acked = append(ack.acked, tag)
	return nil
}

func (ack *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	ack.nacked = append(ack.nacked, tag)
	ack.requeued = append(ack.requeued, requeue)
	return nil
}

func (ack *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return ack.Nack(tag, false, requeue)
}

func requestBody(t *testing.T) []byte {
	t.Helper()
	message := &ExportRequestMessage{
		JobID:  "job-1",
		Kind:   report.KindClearance,
		Format: "pdf",
		Criteria: report.FilterCriteria{
			SelectedIslands:  []string{"Luzon"},
			DateRange:        report.DateRange{Start: "2024-01", End: "2024-03"},
			SelectedDateType: report.DateTypeMonth,
		},
	}
	body, err := message.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestHandleDelivery(t *testing.T) {
	tests := []struct {
		name       string
		body       []byte
		handlerErr bool
		want       outcome
	}{
		{name: "success", want: outcomeAcked},
		{name: "handler failure", handlerErr: true, want: outcomeRequeued},
		{name: "bad body", body: []byte("{not json"), want: outcomeDropped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if body == nil {
				body = requestBody(t)
			}
			ack := &fakeAcknowledger{}
			delivery := amqp091.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: body}

			var received *ExportRequestMessage
			handler := func(ctx context.Context, message *ExportRequestMessage) (e *xerr.Error) {
				received = message
				if tt.handlerErr {
					e = xerr.NewError(errors.New("boom"), "handle export request", message.JobID)
				}
				return e
			}

			if got := handleDelivery(context.Background(), delivery, handler); got != tt.want {
				t.Fatalf("outcome = %s, want %s", got, tt.want)
			}

			switch tt.want {
			case outcomeAcked:
				if len(ack.acked) != 1 || received.JobID != "job-1" || received.Criteria.SelectedIslands[0] != "Luzon" {
					t.Errorf("ack = %+v, received = %+v", ack, received)
				}
			case outcomeRequeued:
				if len(ack.nacked) != 1 || !ack.requeued[0] {
					t.Errorf("expected requeue, got %+v", ack)
				}
			case outcomeDropped:
				if len(ack.nacked) != 1 || ack.requeued[0] || received != nil {
					t.Errorf("expected drop, got %+v", ack)
				}
			}
		})
	}
}

func TestConsumeLoopStopsOnCancel(t *testing.T) {
	deliveries := make(chan amqp091.Delivery, 1)
	ack := &fakeAcknowledger{}
	deliveries <- amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: requestBody(t)}

	ctx, cancel := context.WithCancel(context.Background())
	handled := make(chan struct{})
	handler := func(ctx context.Context, message *ExportRequestMessage) (e *xerr.Error) {
		close(handled)
		return e
	}

	done := make(chan *xerr.Error)
	go func() { done <- consumeLoop(ctx, deliveries, handler) }()

	<-handled
	cancel()
	select {
	case e := <-done:
		if e != nil {
			t.Error("cancelled loop returned error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consume loop did not stop")
	}
}

func TestConsumeLoopClosedChannel(t *testing.T) {
	deliveries := make(chan amqp091.Delivery)
	close(deliveries)
	handler := func(ctx context.Context, message *ExportRequestMessage) (e *xerr.Error) { return e }
	if e := consumeLoop(context.Background(), deliveries, handler); e == nil {
		t.Error("expected error when the delivery channel closes")
	}
}

func TestMessageRoundTripKeepsCriteria(t *testing.T) {
	decoded, err := ExportRequestMessageFromJSON(requestBody(t))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Criteria.Mode() != report.DateTypeMonth || decoded.Criteria.DateLabel() != "January 2024 - March 2024" {
		t.Errorf("criteria = %+v", decoded.Criteria)
	}
}
