package store

// Namespaces.
const (
	NSWallet       = "wallet_prefs"
	NSNotification = "notification_prefs"
	NSUser         = "user_prefs"
	NSProfile      = "profile_prefs"
)

// Keys in NSWallet.
const (
	KeyWallets          = "wallets"
	KeyMonthly          = "monthly_transactions"
	KeyCurrentWallet    = "current_wallet"
	KeyLastProcessedDay = "last_processed_day"
	KeyDataChanged      = "transaction_data_changed"
	KeyLastUpdate       = "last_transaction_update"
)

// Keys in NSNotification.
const (
	KeyNotifications = "notifications"
	KeyAlertState    = "budget_alert_state"
)

// Keys in NSUser and NSProfile.
const (
	KeyUserEmail            = "user_email"
	KeyUserPassword         = "user_password"
	KeyLoggedIn             = "is_logged_in"
	KeyNotificationsEnabled = "notifications_enabled"
	KeyProfileImage         = "profile_image"
)

const transactionsPrefix = "transactions_"

// TransactionsKey is the NSWallet key holding a wallet's transactions.
func TransactionsKey(wallet string) string {
	return transactionsPrefix + wallet
}
