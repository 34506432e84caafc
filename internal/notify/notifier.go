// Package notify publishes application lifecycle events so downstream
// consumers (mailers, dashboards) can react without coupling to the
// request path.
package notify

import (
	"context"
	"encoding/json"

	"github.com/jobportal/apiserver/internal/mq"
	"github.com/jobportal/apiserver/types"
	"go.uber.org/zap"
)

// EventChannel is the broker channel application events are published to.
const EventChannel = "application-events"

// Event kinds.
const (
	EventApplicationCreated  = "application.created"
	EventApplicationReviewed = "application.reviewed"
)

// ApplicationEvent is the JSON payload published for a lifecycle event.
type ApplicationEvent struct {
	Kind          string                  `json:"kind"`
	ApplicationID int                     `json:"applicationId"`
	JobID         int                     `json:"jobId"`
	CandidateID   int                     `json:"candidateId"`
	CompanyID     int                     `json:"companyId"`
	Status        types.ApplicationStatus `json:"status"`
}

// Notifier publishes application events to a broker. Publishing is
// best-effort: failures are logged and never surfaced to the request.
type Notifier struct {
	mq     *mq.MQ
	logger *zap.Logger
}

func New(broker *mq.MQ, logger *zap.Logger) *Notifier {
	return &Notifier{mq: broker, logger: logger}
}

// ApplicationCreated publishes a created event.
func (n *Notifier) ApplicationCreated(ctx context.Context, detail types.ApplicationDetail) {
	n.publish(ctx, EventApplicationCreated, detail)
}

// ApplicationReviewed publishes a reviewed event.
func (n *Notifier) ApplicationReviewed(ctx context.Context, detail types.ApplicationDetail) {
	n.publish(ctx, EventApplicationReviewed, detail)
}

func (n *Notifier) publish(ctx context.Context, kind string, detail types.ApplicationDetail) {
	event := ApplicationEvent{
		Kind:          kind,
		ApplicationID: detail.ID,
		JobID:         detail.JobID,
		CandidateID:   detail.CandidateID,
		CompanyID:     detail.CompanyID,
		Status:        detail.Status,
	}
	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to encode application event", zap.String("kind", kind), zap.Error(err))
		return
	}
	if _, err := n.mq.Publish(ctx, EventChannel, data, map[string]string{"kind": kind}); err != nil {
		n.logger.Warn("failed to publish application event",
			zap.String("kind", kind),
			zap.Int("application_id", detail.ID),
			zap.Error(err),
		)
	}
}
