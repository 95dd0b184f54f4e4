package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinema-booking/internal/model"
)

type BlastStore interface {
	ListDue(ctx context.Context, clock string) ([]model.Promotion, error)
	MarkSent(ctx context.Context, id uint64) (bool, error)
}

type SubscriberReader interface {
	ListSubscribed(ctx context.Context) ([]model.User, error)
}

type PromotionMailer interface {
	SendPromotion(ctx context.Context, to model.User, p model.Promotion) error
}

// PromotionBlast mails each promotion once to subscribed users, on the day
// its send time first passes.  It is independent of redemption.
type PromotionBlast struct {
	store  BlastStore
	users  SubscriberReader
	mailer PromotionMailer
	logger *log.Logger
	every  time.Duration
	now    func() time.Time
	sched  gocron.Scheduler
}

func NewPromotionBlast(store BlastStore, users SubscriberReader, mailer PromotionMailer, every time.Duration, logger *log.Logger) *PromotionBlast {
	if every <= 0 {
		every = time.Minute
	}
	return &PromotionBlast{store: store, users: users, mailer: mailer, logger: logger, every: every, now: time.Now}
}

// Start schedules RunOnce every interval.  Runs never overlap.
func (b *PromotionBlast) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("promotion blast scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(b.every),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), b.every)
			defer cancel()
			if _, err := b.RunOnce(ctx); err != nil {
				b.logger.Errorf("promotion blast: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("promotion blast job: %w", err)
	}
	s.Start()
	b.sched = s
	return nil
}

func (b *PromotionBlast) Stop() error {
	if b.sched == nil {
		return nil
	}
	return b.sched.Shutdown()
}

// RunOnce sends every promotion that is due and returns how many mails went
// out.  A promotion is marked sent before mailing so a second instance never
// sends it again; a mail that fails is logged, not retried.
func (b *PromotionBlast) RunOnce(ctx context.Context) (int, error) {
	due, err := b.store.ListDue(ctx, b.now().Format("15:04:05"))
	if err != nil || len(due) == 0 {
		return 0, err
	}

	var subscribers []model.User
	loaded := false
	sent := 0
	for _, p := range due {
		claimed, err := b.store.MarkSent(ctx, p.ID)
		if err != nil {
			return sent, err
		}
		if !claimed {
			continue
		}
		if !loaded {
			if subscribers, err = b.users.ListSubscribed(ctx); err != nil {
				return sent, err
			}
			loaded = true
		}
		for _, u := range subscribers {
			if err := b.mailer.SendPromotion(ctx, u, p); err != nil {
				b.logger.Warnj(log.JSON{"msg": "promotion mail failed", "promotion_id": p.ID, "user_id": u.ID, "error": err.Error()})
				continue
			}
			sent++
		}
		b.logger.Infoj(log.JSON{"msg": "promotion blast sent", "promotion_id": p.ID, "code": p.Description, "recipients": len(subscribers)})
	}
	return sent, nil
}
