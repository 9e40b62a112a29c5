package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cerven-ot/internal/employee"
	"cerven-ot/internal/events"
	"cerven-ot/internal/shared/contextutil"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// ErrNoRecipient marks an event the notifier can never deliver.
var ErrNoRecipient = errors.New("notification recipient not found")

type ProfileLookup interface {
	FindProfile(ctx context.Context, companyID, employeeID string) (*employee.Profile, error)
}

type Notifier interface {
	NotifyApprovalDecided(ctx context.Context, event events.ApprovalDecidedEvent) error
}

type notifier struct {
	profiles ProfileLookup
	provider Provider
	logger   *zap.Logger
}

func NewNotifier(profiles ProfileLookup, provider Provider, logger ...*zap.Logger) Notifier {
	l := zap.L().Named("notification.notifier")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.notifier")
	}
	return &notifier{profiles: profiles, provider: provider, logger: l}
}

func (n *notifier) NotifyApprovalDecided(ctx context.Context, event events.ApprovalDecidedEvent) error {
	log := contextutil.GetLogger(ctx, n.logger)

	profile, err := n.profiles.FindProfile(ctx, event.CompanyID, event.RequesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: employee %s", ErrNoRecipient, event.RequesterID)
		}
		return err
	}
	if strings.TrimSpace(profile.Email) == "" {
		return fmt.Errorf("%w: employee %s has no email", ErrNoRecipient, event.RequesterID)
	}

	msg := composeMessage(profile, event)
	if err := n.provider.Send(ctx, msg); err != nil {
		return err
	}

	log.Info("approval notification sent",
		zap.String("kind", event.Kind),
		zap.String("entity_id", event.EntityID),
		zap.String("recipient", profile.Email),
	)
	return nil
}

var kindLabels = map[string]string{
	events.KindOvertime:    "overtime request",
	events.KindLeave:       "leave request",
	events.KindCashAdvance: "cash advance",
	events.KindLiquidation: "liquidation",
}

func composeMessage(profile *employee.Profile, event events.ApprovalDecidedEvent) Message {
	label, ok := kindLabels[event.Kind]
	if !ok {
		label = strings.ReplaceAll(event.Kind, "_", " ")
	}
	status := event.FinalStatus
	if status == "" {
		status = event.Decision
	}
	status = strings.ToLower(status)

	title := cases.Title(language.English)
	subject := fmt.Sprintf("%s %s", title.String(label), status)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", profile.FullName)
	fmt.Fprintf(&b, "Your %s (%s) was %s", label, event.EntityID, status)
	if event.Level > 0 {
		fmt.Fprintf(&b, " at level %d", event.Level)
	}
	b.WriteString(".\n")
	if event.Comment != "" {
		fmt.Fprintf(&b, "\nComment: %s\n", event.Comment)
	}

	return Message{Recipient: profile.Email, Subject: subject, Body: b.String()}
}
