package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"portal-chat/internal/api"
	"portal-chat/internal/chat"
	"portal-chat/internal/config"
	"portal-chat/internal/logger"
	"portal-chat/internal/models"
	"portal-chat/internal/ws"
)

// consoleNotifier renders cues and failure notices on the terminal.
type consoleNotifier struct{}

func (consoleNotifier) MessageSent()     { fmt.Println("* sent") }
func (consoleNotifier) MessageReceived() { fmt.Println("* new message") }
func (consoleNotifier) Failure(msg string) {
	fmt.Printf("! %s\n", msg)
}

func main() {
	// Define command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	userID := flag.String("user", "", "Portal user id for this session")
	privileged := flag.Bool("privileged", false, "Session user holds elevated privilege")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging first
	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	if *userID == "" {
		log.Fatal("-user is required")
	}
	token := os.Getenv(cfg.Server.TokenEnv)
	if token == "" {
		log.Fatalf("Session token not found in environment variable %s", cfg.Server.TokenEnv)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := chat.NewSession(*userID, token, *privileged, consoleNotifier{})
	apiClient := api.NewClient(&cfg.Server, token)

	store := chat.NewStore(*userID, session.Notifier)
	tracker := chat.NewTypingTracker(cfg.Chat.TypingTTL)
	throttle := chat.NewTypingThrottle(cfg.Chat.TypingSendThrottle)
	directory := chat.NewDirectory(apiClient, session, cfg.Chat.DirectoryPollInterval, func(room models.Room) {
		logger.Debugf("Active room %s resynced: online=%v last_seen=%v", room.ID, room.Online, room.LastSeen)
	})
	readstate := chat.NewReadStatePropagator(apiClient, store, session)
	coordinator := chat.NewDeletionCoordinator(apiClient, store, session,
		cfg.Chat.UndoCountdownSeconds, cfg.Chat.UndoTickInterval, cfg.Chat.DeleteEveryoneWindow)
	coordinator.OnTick = func(remaining int) {
		fmt.Printf("* undo available for %ds\n", remaining)
	}

	manager := ws.NewManager(cfg.Server.PushURL)
	dispatcher := chat.NewDispatcher(store, tracker, directory, readstate)
	manager.OnEvent(dispatcher.Handle)

	engine := chat.NewEngine(manager, apiClient, store, readstate, throttle, session)

	// Keep the push channel alive for the session lifetime
	supervisor := ws.NewSupervisor(manager, token, cfg.Chat.ReconnectBaseBackoff, cfg.Chat.ReconnectMaxBackoff)
	go supervisor.Run(ctx)

	if err := directory.Refresh(); err != nil {
		logger.Warningf("Initial room directory fetch failed: %v", err)
	}
	directory.Start(ctx)

	go commandLoop(engine, coordinator, directory, store, tracker, session, apiClient, cancel)

	// Create a channel for receiving OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v, shutting down...", sig)
	case <-ctx.Done():
	}

	cancel()
	tracker.Close()
	log.Println("Chat session closed")
}

// commandLoop drives the engine from stdin. This is a debugging front
// end; the portal UI talks to the same surfaces.
func commandLoop(engine *chat.Engine, coordinator *chat.DeletionCoordinator,
	directory *chat.Directory, store *chat.Store, tracker *chat.TypingTracker,
	session *chat.Session, apiClient *api.Client, quit context.CancelFunc) {

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: rooms | open <room> | close | send <text> | typing | timeline | who | readinfo <id> | del <id...> | delall <id...> | undo | quit")

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "rooms":
			for _, room := range directory.Rooms() {
				fmt.Printf("%s [%s] %s (unread %d)\n", room.ID, room.Kind, room.Name, room.UnreadCount)
			}
			fmt.Printf("total unread: %d\n", directory.UnreadTotal())

		case "open":
			if len(fields) < 2 {
				fmt.Println("usage: open <room>")
				continue
			}
			if err := engine.OpenRoom(fields[1]); err == nil {
				fmt.Printf("opened %s\n", fields[1])
			}

		case "close":
			engine.CloseRoom()

		case "send":
			room := session.ActiveRoom()
			if room == "" || len(fields) < 2 {
				fmt.Println("open a room first, then: send <text>")
				continue
			}
			engine.SendMessage(room, strings.Join(fields[1:], " "), models.MessageTypeText, "")

		case "typing":
			if room := session.ActiveRoom(); room != "" {
				engine.ComposeTyping(room)
			}

		case "timeline":
			for _, msg := range store.Timeline(session.ActiveRoom()) {
				marker := " "
				if msg.Deleted {
					marker = "x"
				}
				fmt.Printf("%s %s %s: %s\n", marker, msg.ID, msg.SenderID, msg.Content)
			}

		case "who":
			if names := tracker.IsTyping(session.ActiveRoom()); len(names) > 0 {
				fmt.Printf("typing: %s\n", strings.Join(names, ", "))
			}

		case "readinfo":
			if len(fields) < 2 {
				fmt.Println("usage: readinfo <id>")
				continue
			}
			info, err := apiClient.FetchReadInfo(fields[1])
			if err != nil {
				fmt.Printf("! %v\n", err)
				continue
			}
			for _, r := range info.Readers {
				fmt.Printf("%s (%s) read at %s\n", r.UserName, r.UserID, r.ReadAt.Format("15:04:05"))
			}

		case "del", "delall":
			room := session.ActiveRoom()
			if room == "" || len(fields) < 2 {
				fmt.Println("open a room first, then: del <id...>")
				continue
			}
			if err := coordinator.BeginSelection(room, fields[1:]); err != nil {
				fmt.Printf("! %v\n", err)
				continue
			}
			scope := models.DeleteScopeMe
			if fields[0] == "delall" {
				scope = models.DeleteScopeEveryone
			}
			if err := coordinator.Confirm(scope); err != nil {
				fmt.Printf("! %v\n", err)
				coordinator.ClearSelection()
			}

		case "undo":
			if err := coordinator.Undo(); err != nil {
				fmt.Printf("! %v\n", err)
			}

		case "quit":
			quit()
			return

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}
