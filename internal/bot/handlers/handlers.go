package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/elsisiem/muthaker-bot/internal/quran"
	"github.com/elsisiem/muthaker-bot/internal/scheduler"
)

type Handlers struct {
	api     *tgbotapi.BotAPI
	sched   *scheduler.Scheduler
	adminID int64
	loc     *time.Location
}

func New(api *tgbotapi.BotAPI, sched *scheduler.Scheduler, adminID int64, loc *time.Location) *Handlers {
	return &Handlers{
		api:     api,
		sched:   sched,
		adminID: adminID,
		loc:     loc,
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	// When an admin is configured, everyone else is ignored.
	if h.adminID != 0 && msg.From.ID != h.adminID {
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(msg)
	case "help":
		h.handleHelp(msg)
	case "schedule":
		h.handleSchedule(msg)
	case "status":
		h.handleStatus(msg)
	case "pages":
		h.handlePages(msg)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command, use /help")
	}
}

func (h *Handlers) handleStart(msg *tgbotapi.Message) {
	h.sendMessage(msg.Chat.ID, "Bot is running. Use /schedule to manually trigger scheduling.")
}

func (h *Handlers) handleHelp(msg *tgbotapi.Message) {
	h.sendMessage(msg.Chat.ID, strings.Join([]string{
		"/schedule - re-plan today's posts",
		"/status - show pending posts",
		"/pages - show today's quran pages",
	}, "\n"))
}

func (h *Handlers) handleSchedule(msg *tgbotapi.Message) {
	h.sched.Notify()
	h.sendMessage(msg.Chat.ID, "Daily tasks have been re-scheduled.")
}

func (h *Handlers) handleStatus(msg *tgbotapi.Message) {
	pending := h.sched.Pending()
	if len(pending) == 0 {
		h.sendMessage(msg.Chat.ID, "No pending posts.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Pending posts:\n")
	for _, task := range pending {
		sb.WriteString(fmt.Sprintf("• %s at %s", task.Label, task.FireAt.Format("2006-01-02 15:04")))
		if task.Pages != nil {
			sb.WriteString(fmt.Sprintf(" (pages %d-%d)", task.Pages.Low, task.Pages.High))
		}
		sb.WriteString("\n")
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handlePages(msg *tgbotapi.Message) {
	low, high := quran.PagesFor(time.Now().In(h.loc))
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("Today's quran pages: %d and %d", low, high))
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	if _, err := h.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}
