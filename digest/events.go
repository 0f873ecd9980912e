package digest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/etnz/signalist"
)

// Event names.
const (
	UserCreated   = "app/user.created"
	SendDailyNews = "app/send.daily.news"
)

// ErrUnknownEvent is returned by Handle for an event it does not know.
var ErrUnknownEvent = errors.New("unknown event")

// Event triggers a job.
type Event struct {
	Name string          `json:"name" validate:"required"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Handle runs the job of e.
func (j *Job) Handle(ctx context.Context, e Event) error {
	switch e.Name {
	case UserCreated:
		var p signalist.UserProfile
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return fmt.Errorf("invalid %s data: %w", e.Name, err)
		}
		if p.Email == "" {
			return &signalist.ValidationError{Field: "email", Reason: "is required"}
		}
		return j.Welcome(ctx, p)
	case SendDailyNews:
		_, err := j.Run(ctx)
		return err
	default:
		return fmt.Errorf("%q: %w", e.Name, ErrUnknownEvent)
	}
}
