package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sogoba/jokko/internal/app"
	"github.com/sogoba/jokko/internal/chat"
	"github.com/sogoba/jokko/internal/profile"
	"github.com/sogoba/jokko/internal/store"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	userFlag := flag.String("user", "", "current user id (overrides env/config)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	// A .env next to the binary may carry JOKKO_PROFILE / JOKKO_USER_ID.
	_ = godotenv.Load()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var svc *chat.Service
	application := fx.New(
		app.Module(app.Params{Profile: profileName, UserID: *userFlag}),
		fx.NopLogger,
		fx.Populate(&svc),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot open profile %q: %v\n", profileName, err)
		os.Exit(1)
	}
	defer func() { _ = application.Stop(context.Background()) }()

	switch args[0] {
	case "conversations":
		cmdConversations(svc, *jsonFlag)
	case "messages":
		requireArgs(args, 2, "jokko messages <conversation-id>")
		cmdMessages(svc, args[1], *jsonFlag)
	case "send":
		requireArgs(args, 3, "jokko send <conversation-id> <text>")
		cmdSend(svc, args[1], strings.Join(args[2:], " "), *jsonFlag)
	case "book":
		requireArgs(args, 6, "jokko book <conversation-id> <service> <date> <time> <price>")
		cmdBook(svc, args[1], args[2], args[3], args[4], args[5], false, *jsonFlag)
	case "confirm":
		requireArgs(args, 6, "jokko confirm <conversation-id> <service> <date> <time> <price>")
		cmdBook(svc, args[1], args[2], args[3], args[4], args[5], true, *jsonFlag)
	case "pay":
		requireArgs(args, 4, "jokko pay <conversation-id> <amount> <service>")
		cmdPay(svc, args[1], args[2], strings.Join(args[3:], " "), *jsonFlag)
	case "read":
		requireArgs(args, 2, "jokko read <conversation-id>")
		cmdRead(svc, args[1])
	case "unread":
		cmdUnread(svc, *jsonFlag)
	case "archive":
		requireArgs(args, 2, "jokko archive <conversation-id>")
		run(svc.ArchiveConversation(args[1]), "archived")
	case "block":
		requireArgs(args, 2, "jokko block <conversation-id>")
		run(svc.BlockUser(args[1]), "blocked")
	case "delete":
		requireArgs(args, 2, "jokko delete <conversation-id>")
		run(svc.DeleteConversation(args[1]), "deleted")
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: jokko [--profile <name>] [--user <id>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  conversations                                List conversations")
	fmt.Fprintln(os.Stderr, "  messages <conv-id>                           List messages in a conversation")
	fmt.Fprintln(os.Stderr, "  send <conv-id> <text>                        Send a text message")
	fmt.Fprintln(os.Stderr, "  book <conv-id> <service> <date> <time> <price>     Send a booking request")
	fmt.Fprintln(os.Stderr, "  confirm <conv-id> <service> <date> <time> <price>  Confirm a booking")
	fmt.Fprintln(os.Stderr, "  pay <conv-id> <amount> <service>             Request a payment")
	fmt.Fprintln(os.Stderr, "  read <conv-id>                               Mark a conversation as read")
	fmt.Fprintln(os.Stderr, "  unread                                       Show the global unread count")
	fmt.Fprintln(os.Stderr, "  archive <conv-id>                            Archive a conversation")
	fmt.Fprintln(os.Stderr, "  block <conv-id>                              Block the counterpart")
	fmt.Fprintln(os.Stderr, "  delete <conv-id>                             Delete a conversation and its messages")
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "usage: %s\n", usage)
		os.Exit(1)
	}
}

func run(err error, verb string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(verb)
}

func cmdConversations(svc *chat.Service, jsonOut bool) {
	convs, err := svc.Conversations()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(convs)
		return
	}
	if len(convs) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, c := range convs {
		unread := ""
		if c.UnreadCount > 0 {
			unread = fmt.Sprintf(" [%d]", c.UnreadCount)
		}
		fmt.Printf("%s  %-10s %-20s %s%s\n",
			c.ID, c.Status, c.Counterpart.Name, c.LastMessagePreview, unread)
	}
}

func cmdMessages(svc *chat.Service, conversationID string, jsonOut bool) {
	msgs, err := svc.Messages(conversationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(msgs)
		return
	}
	for _, m := range msgs {
		ts := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04")
		fmt.Printf("%s  %-12s %-22s %s\n", ts, m.Kind, m.SenderID, m.Content)
	}
}

func cmdSend(svc *chat.Service, conversationID, text string, jsonOut bool) {
	msg, err := svc.SendText(conversationID, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(msg)
		return
	}
	fmt.Printf("sent %s\n", msg.ID)
}

func cmdBook(svc *chat.Service, conversationID, service, date, hour, price string, confirm, jsonOut bool) {
	amount, err := strconv.ParseInt(price, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid price %q\n", price)
		os.Exit(1)
	}
	details := store.BookingDetails{Service: service, Date: date, Time: hour, Price: amount}
	var msg *store.Message
	if confirm {
		msg, err = svc.ConfirmBooking(conversationID, details)
	} else {
		msg, err = svc.SendBookingRequest(conversationID, details)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(msg)
		return
	}
	fmt.Printf("sent %s (%s)\n", msg.ID, msg.Kind)
}

func cmdPay(svc *chat.Service, conversationID, amountArg, service string, jsonOut bool) {
	amount, err := strconv.ParseInt(amountArg, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid amount %q\n", amountArg)
		os.Exit(1)
	}
	msg, err := svc.RequestPayment(conversationID, store.PaymentDetails{Amount: amount, Service: service})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(msg)
		return
	}
	fmt.Printf("sent %s (%s)\n", msg.ID, msg.Kind)
}

func cmdRead(svc *chat.Service, conversationID string) {
	flipped, err := svc.MarkMessagesAsRead(conversationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d message(s) marked read\n", flipped)
}

func cmdUnread(svc *chat.Service, jsonOut bool) {
	n, err := svc.UnreadCount()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(map[string]int{"unread": n})
		return
	}
	fmt.Printf("Unread: %d\n", n)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
