package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/notify"
)

var (
	flagNotifFilter string
	flagNotifDetail bool
	flagNotifYes    bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif", "inbox"},
	Short:   "Show and manage notifications",
	RunE:    runNotificationsList,
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE:  runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Mark one notification read, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNotificationsRead,
}

var notificationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsDelete,
}

var notificationsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every notification",
	RunE:  runNotificationsClear,
}

func init() {
	for _, c := range []*cobra.Command{notificationsCmd, notificationsListCmd} {
		c.Flags().StringVarP(&flagNotifFilter, "filter", "f", "all", "all, unread or read")
		c.Flags().BoolVar(&flagNotifDetail, "detail", false, "Show the detail text")
	}
	notificationsClearCmd.Flags().BoolVarP(&flagNotifYes, "yes", "y", false, "Skip the confirmation")

	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd, notificationsDeleteCmd, notificationsClearCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func runNotificationsList(_ *cobra.Command, _ []string) error {
	filter, err := notify.ParseFilter(flagNotifFilter)
	if err != nil {
		return err
	}
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.center.List(filter)
	if err != nil {
		return err
	}
	unread, err := a.center.UnreadCount()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("NOTIFICATIONS  %d unread", unread)))
	fmt.Println()
	if enabled, err := a.center.Enabled(); err == nil && !enabled {
		fmt.Printf("  %s\n\n", cli.Muted("Notifications are turned off. Enable them with `fintrack profile --notifications=on`."))
	}
	if len(list) == 0 {
		fmt.Printf("  No %s notifications.\n", filter)
		return nil
	}

	now := a.ledger.Now()
	rows := make([][]string, 0, len(list))
	for _, n := range list {
		title := n.Title
		if !n.IsRead {
			title = cli.Header(title)
		}
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			title,
			n.Message,
			notify.Relative(model.MillisTime(n.Timestamp), now),
		})
		if flagNotifDetail && n.Detail != "" {
			rows = append(rows, []string{"", "", cli.Muted(n.Detail), ""})
		}
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"ID", "Title", "Message", "When"},
		Rows:      rows,
		LeftAlign: []int{1, 2},
	}))
	return nil
}

func parseNotificationID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q", notify.ErrNotFound, arg)
	}
	return id, nil
}

func runNotificationsRead(_ *cobra.Command, args []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		n, err := a.center.MarkAllRead()
		if err != nil {
			return err
		}
		fmt.Printf("  Marked %d notification(s) read\n", n)
		return nil
	}
	id, err := parseNotificationID(args[0])
	if err != nil {
		return err
	}
	if err := a.center.MarkRead(id); err != nil {
		return err
	}
	fmt.Println("  Marked read")
	return nil
}

func runNotificationsDelete(_ *cobra.Command, args []string) error {
	id, err := parseNotificationID(args[0])
	if err != nil {
		return err
	}
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.center.Delete(id); err != nil {
		return err
	}
	fmt.Println("  Deleted")
	return nil
}

func runNotificationsClear(_ *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := confirm("Delete every notification?", flagNotifYes)
	if err != nil || !ok {
		return err
	}
	if err := a.center.Clear(); err != nil {
		return err
	}
	fmt.Println("  All notifications cleared")
	return nil
}
