package bot

import (
	"context"
	"fmt"
	"strconv"

	"warble/internal/queue"
)

// Deliverer returns job outcomes to the originating chat. Jobs store the
// chat identifier in RequesterRef.
type Deliverer struct {
	client *Client
}

// NewDeliverer wraps a client for outcome delivery.
func NewDeliverer(client *Client) *Deliverer {
	return &Deliverer{client: client}
}

func chatIDFor(job queue.Job) (int64, error) {
	id, err := strconv.ParseInt(job.RequesterRef, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("job %d has no usable requester reference %q", job.ID, job.RequesterRef)
	}
	return id, nil
}

// DeliverResult uploads the rendered audio back to the requester.
func (d *Deliverer) DeliverResult(ctx context.Context, job queue.Job, resultPath string) error {
	chatID, err := chatIDFor(job)
	if err != nil {
		return err
	}
	return d.client.SendAudio(ctx, chatID, resultPath, "✅ Effect applied 🎵")
}

// DeliverFailure sends the sanitized failure text to the requester.
func (d *Deliverer) DeliverFailure(ctx context.Context, job queue.Job, message string) error {
	chatID, err := chatIDFor(job)
	if err != nil {
		return err
	}
	_, err = d.client.SendMessage(ctx, chatID, "❌ "+message, nil)
	return err
}
