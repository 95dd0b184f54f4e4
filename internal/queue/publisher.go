package queue

import (
    "context"
    "encoding/json"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends booking events to RabbitMQ.  It dials per publish: the
// volume is one message per checkout and a short-lived connection never
// goes stale between requests.
type Publisher struct {
    url    string
    logger *log.Logger
}

func NewPublisher(url string, logger *log.Logger) *Publisher {
    return &Publisher{url: url, logger: logger}
}

// PublishBookingConfirmed declares the queue (idempotent) and publishes the
// event as a persistent JSON message.  Errors are logged and returned; the
// caller decides whether they matter.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
    body, err := json.Marshal(event)
    if err != nil {
        p.logger.Errorf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
    if err != nil {
        p.logger.Errorf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.logger.Errorf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // durable so messages survive broker restarts
    if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
        p.logger.Errorf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    msg := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    // default exchange, routing key = queue name
    if err := ch.PublishWithContext(ctx, "", BookingConfirmedQueue, false, false, msg); err != nil {
        p.logger.Errorf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}
