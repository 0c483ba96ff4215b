package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cwrk-planet/logger/pkg/logger"
	"github.com/timebank/chat-client/config"
	"github.com/timebank/chat-client/internal/auth"
	"github.com/timebank/chat-client/internal/domain"
	"github.com/timebank/chat-client/internal/rest"
	"github.com/timebank/chat-client/internal/session"
	"github.com/timebank/chat-client/internal/transport/ws"
)

func main() {
	userID := flag.Int64("id", 0, "your user id")
	username := flag.String("user", "", "your username")
	otherID := flag.Int64("with", 0, "open a private chat with this user id")
	groupID := flag.Int64("group", 0, "open this group chat")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})

	if *userID <= 0 || *username == "" {
		log.Fatal("both -id and -user are required")
	}
	if (*otherID == 0) == (*groupID == 0) {
		log.Fatal("pass exactly one of -with or -group")
	}

	token := cfg.Auth.Token
	if token == "" {
		if cfg.Auth.DevSecret == "" {
			log.Fatal("no auth.token and no auth.devSecret to mint one")
		}
		token, err = auth.GenerateToken(cfg.Auth.DevSecret, *userID, *username, 24*time.Hour)
		if err != nil {
			log.Fatalf("mint dev token: %v", err)
		}
		slog.Debug("using dev token")
	}

	self := domain.User{ID: *userID, Username: *username}
	api := rest.NewClient(cfg.API.BaseURL, token)
	manager := ws.NewManager(cfg.WS.BaseURL, token)

	var ctrl *session.Controller
	ctrl = session.NewController(self, api, manager, func() {
		msgs := ctrl.Messages()
		if len(msgs) == 0 {
			return
		}
		render(self, msgs[len(msgs)-1])
	})

	target := session.Target{Kind: domain.RoomUser, OtherUserID: *otherID}
	if *groupID != 0 {
		target = session.Target{Kind: domain.RoomGroup, GroupID: *groupID}
	}

	ctx := context.Background()
	if err := ctrl.Open(ctx, target); err != nil {
		log.Fatalf("open session: %v", err)
	}
	defer ctrl.Close()

	if err := ctrl.HistoryErr(); err != nil {
		fmt.Println("! history unavailable, type /reload to retry")
	}
	fmt.Printf("room %s — type a message, /chats, /reload or /quit\n", ctrl.Room().String())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/reload":
			if err := ctrl.ReloadHistory(ctx); err != nil {
				fmt.Println("! reload failed:", err)
			}
		case line == "/chats":
			printConversations(ctx, api)
		default:
			if err := ctrl.SendUserMessage(line); err != nil {
				fmt.Println("! not sent:", err)
			}
		}
	}
}

func render(self domain.User, m domain.Message) {
	who := m.Sender.Username
	if m.Sender.ID == self.ID {
		who = "you"
	}
	mark := ""
	if m.Optimistic {
		mark = " …"
	}
	fmt.Printf("[%s] %s: %s%s\n", m.CreatedAt.Format("15:04:05"), who, m.Body, mark)
}

func printConversations(ctx context.Context, api *rest.Client) {
	convs, err := api.PrivateConversations(ctx)
	if err != nil {
		fmt.Println("! chats unavailable:", err)
		return
	}
	if len(convs) == 0 {
		fmt.Println("no conversations yet")
		return
	}
	for _, c := range convs {
		preview := c.LastMessage
		if len(preview) > 40 {
			preview = preview[:40] + "…"
		}
		fmt.Printf("%d %-12s %s\n", c.OtherUser.ID, c.OtherUser.Username, preview)
	}
}
