package archive

import (
	"context"
	"encoding/json"
	"fmt"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// Publisher delivers a message body to destination.
type Publisher interface {
	Publish(ctx context.Context, destination string, body []byte) (string, error)
}

// Notifier announces finished runs to a webhook through a message queue.
type Notifier struct {
	publisher   Publisher
	destination string
}

var _ contractx.ArchiveIndex = (*Notifier)(nil)

func NewNotifier(publisher Publisher, destination string) *Notifier {
	return &Notifier{publisher: publisher, destination: destination}
}

func (n *Notifier) Record(ctx context.Context, rec contractx.ArchiveRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode archive record: %v", contractx.ErrStorage, err)
	}

	id, err := n.publisher.Publish(ctx, n.destination, body)
	if err != nil {
		return fmt.Errorf("%w: publish run %s: %v", contractx.ErrStorage, rec.Identity.BaseName(), err)
	}

	logx.Debug().Str("run", rec.Identity.BaseName()).Str("message_id", id).Msg("run notification queued")
	return nil
}
