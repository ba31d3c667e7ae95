package event

type Type string

const (
	TypeNotifySuccess Type = "notify.success"
	TypeNotifyInfo    Type = "notify.info"
	TypeNotifyWarning Type = "notify.warning"
	TypeNotifyError   Type = "notify.error"
	TypeSessionLogin  Type = "session.login"
	TypeSessionLogout Type = "session.logout"
	TypeNavigate      Type = "navigate"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Message   string `json:"message,omitempty"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (e Event) IsNotification() bool {
	switch e.Type {
	case TypeNotifySuccess, TypeNotifyInfo, TypeNotifyWarning, TypeNotifyError:
		return true
	default:
		return false
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe(types ...Type) (<-chan Event, func())
}
