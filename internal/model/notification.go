package model

// NotificationKind classifies a stored notification.
type NotificationKind string

const (
	KindBudgetWarning  NotificationKind = "budget_warning"
	KindBudgetExceeded NotificationKind = "budget_exceeded"
	KindLowBalance     NotificationKind = "low_balance"
	KindWalletAdded    NotificationKind = "wallet_added"
	KindDailyReminder  NotificationKind = "daily_reminder"
	KindDailySummary   NotificationKind = "daily_summary"
	KindBackupReminder NotificationKind = "backup_reminder"
)

// Notification is an entry in the in-app notification list.
type Notification struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Detail    string           `json:"detail,omitempty"`
	Kind      NotificationKind `json:"kind,omitempty"`
	Timestamp int64            `json:"timestamp"`
	IsRead    bool             `json:"isRead"`
}

// NotificationFilter selects which notifications a listing shows.
type NotificationFilter int

const (
	FilterAll NotificationFilter = iota
	FilterUnread
	FilterRead
)

func (f NotificationFilter) String() string {
	switch f {
	case FilterUnread:
		return "Unread"
	case FilterRead:
		return "Read"
	default:
		return "All"
	}
}

// Keep reports whether n passes the filter.
func (f NotificationFilter) Keep(n Notification) bool {
	switch f {
	case FilterUnread:
		return !n.IsRead
	case FilterRead:
		return n.IsRead
	default:
		return true
	}
}
