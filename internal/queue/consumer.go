package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded event.  Returning an error asks for one
// redelivery; a second failure drops the message.
type Handler func(ctx context.Context, ev BookingConfirmedEvent) error

// StartBookingConsumer keeps a consumer attached to the booking.confirmed
// queue until ctx is cancelled, reconnecting with exponential backoff when
// the broker goes away.
func StartBookingConsumer(ctx context.Context, url string, handle Handler, logger *log.Logger) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            logger.Warnf("booking-consumer: dial failed: %v; retrying in %s", err, backoff)
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, handle, logger)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logger.Warnf("booking-consumer: consume loop ended: %v; reconnecting", err)
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, handle Handler, logger *log.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logger.Warnf("booking-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            ack, requeue := dispose(ctx, d.Body, d.Redelivered, handle, logger)
            if ack {
                _ = d.Ack(false)
            } else {
                _ = d.Nack(false, requeue)
            }
        }
    }
}

// dispose decides what happens to a delivery.  Undecodable bodies are
// rejected outright; handler failures get one more attempt.
func dispose(ctx context.Context, body []byte, redelivered bool, handle Handler, logger *log.Logger) (ack, requeue bool) {
    var ev BookingConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        logger.Errorf("booking-consumer: unmarshal: %v", err)
        return false, false
    }
    if err := handle(ctx, ev); err != nil {
        logger.Errorj(log.JSON{
            "msg":         "booking-consumer: handler failed",
            "booking_id":  ev.Booking.BookingID,
            "redelivered": redelivered,
            "error":       err.Error(),
        })
        return false, !redelivered
    }
    logger.Infoj(log.JSON{"msg": "booking confirmation sent", "booking_id": ev.Booking.BookingID, "user_id": ev.UserID})
    return true, false
}
