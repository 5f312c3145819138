package poller

import (
	"fmt"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
)

// Kind distinguishes success and failure notifications.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "success"
}

// Notification is a user-facing message about a finished job.
type Notification struct {
	Kind        Kind
	ItemID      string
	Title       string
	Description string
}

// Notifier is a fire-and-forget presentation sink.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

const genericFailure = "Não foi possível gerar a grade horária. Tente novamente."

func completedNotification(item Item) Notification {
	return Notification{
		Kind:        KindSuccess,
		ItemID:      item.ID,
		Title:       "Grade gerada com sucesso",
		Description: fmt.Sprintf("A grade %q está pronta.", item.displayName()),
	}
}

func failedNotification(item Item, status gradeapi.GenerationStatus) Notification {
	desc := status.FirstError()
	if desc == "" {
		desc = genericFailure
	}
	return Notification{
		Kind:        KindError,
		ItemID:      item.ID,
		Title:       fmt.Sprintf("Erro ao gerar a grade %q", item.displayName()),
		Description: desc,
	}
}
