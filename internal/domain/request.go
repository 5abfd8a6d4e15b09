package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RenderRequest carries one resume through validation and rendering. It only
// lives for the duration of a single call.
type RenderRequest struct {
	ID         uuid.UUID              `json:"id"`
	Resume     map[string]interface{} `json:"resume"`
	Theme      string                 `json:"theme,omitempty"`
	ReceivedAt time.Time              `json:"received_at"`
}

func NewRenderRequest(resume map[string]interface{}, theme string) *RenderRequest {
	return &RenderRequest{
		ID:         uuid.New(),
		Resume:     resume,
		Theme:      theme,
		ReceivedAt: time.Now(),
	}
}

// Filename is the attachment name offered to the client.
func (r *RenderRequest) Filename() string {
	return fmt.Sprintf("resume-%d.pdf", r.ReceivedAt.UnixMilli())
}

// WorkDirPattern is the os.MkdirTemp pattern for this request's scratch
// directory. The id keeps concurrent requests apart even within the same
// millisecond.
func (r *RenderRequest) WorkDirPattern() string {
	return fmt.Sprintf("resume-%d-%s-", r.ReceivedAt.UnixMilli(), r.ID.String())
}
