package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Notifier delivers notifications to their recipients. Delivery transports
// (email rendering, push) live behind this interface; the core only requires
// best-effort semantics.
type Notifier interface {
	NotifyConfirmation(ctx context.Context, task Task) error
	NotifyCancellation(ctx context.Context, task Task) error
	NotifyWaitlistJoin(ctx context.Context, task Task) error
	NotifySpotAvailable(ctx context.Context, task Task) error
	NotifyInstructorOfCancellation(ctx context.Context, task Task) error
}

// LogNotifier records deliveries in the service log. It stands in for the
// external delivery collaborator.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) deliver(task Task, msg string) error {
	n.logger.Info(msg,
		zap.String("kind", string(task.Kind)),
		zap.String("session_id", task.SessionID),
		zap.String("user_id", task.UserID),
		zap.String("booking_id", task.BookingID),
	)
	return nil
}

// NotifyConfirmation announces a confirmed seat.
func (n *LogNotifier) NotifyConfirmation(ctx context.Context, task Task) error {
	return n.deliver(task, "booking confirmed notification")
}

// NotifyCancellation announces a cancelled booking.
func (n *LogNotifier) NotifyCancellation(ctx context.Context, task Task) error {
	return n.deliver(task, "booking cancelled notification")
}

// NotifyWaitlistJoin announces a waitlist position.
func (n *LogNotifier) NotifyWaitlistJoin(ctx context.Context, task Task) error {
	return n.deliver(task, "waitlist joined notification")
}

// NotifySpotAvailable announces a promotion from the waitlist.
func (n *LogNotifier) NotifySpotAvailable(ctx context.Context, task Task) error {
	return n.deliver(task, "spot available notification")
}

// NotifyInstructorOfCancellation tells the instructor how many seats freed up.
func (n *LogNotifier) NotifyInstructorOfCancellation(ctx context.Context, task Task) error {
	n.logger.Info("instructor cancellation notification",
		zap.String("session_id", task.SessionID),
		zap.String("instructor_id", task.UserID),
		zap.Int("spots_freed", task.SpotsFreed),
	)
	return nil
}

// Dispatch routes a task to the matching Notifier method.
func Dispatch(ctx context.Context, n Notifier, task Task) error {
	switch task.Kind {
	case KindBookingConfirmed:
		return n.NotifyConfirmation(ctx, task)
	case KindBookingCancelled:
		return n.NotifyCancellation(ctx, task)
	case KindWaitlistJoined:
		return n.NotifyWaitlistJoin(ctx, task)
	case KindSpotAvailable:
		return n.NotifySpotAvailable(ctx, task)
	case KindInstructorCancellation:
		return n.NotifyInstructorOfCancellation(ctx, task)
	default:
		return fmt.Errorf("notify: unknown task kind %q", task.Kind)
	}
}
