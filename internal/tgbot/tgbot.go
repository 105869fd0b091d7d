package tgbot

import (
	"fmt"
	"log/slog"

	"github.com/KotFed0t/wealth_tracker/config"
	"github.com/KotFed0t/wealth_tracker/internal/converter/telebotConverter"
	"github.com/KotFed0t/wealth_tracker/internal/transport/telegram"
	customMW "github.com/KotFed0t/wealth_tracker/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot         *tele.Bot
	ctrl        *telegram.Controller
	ownerChatID int64
}

func New(cfg *config.Config, ctrl *telegram.Controller) (*TGBot, error) {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("tele.NewBot: %w", err)
	}

	return &TGBot{bot: b, ctrl: ctrl, ownerChatID: cfg.Telegram.OwnerChatID}, nil
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger(), customMW.OwnerOnly(b.ownerChatID))

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/help", b.ctrl.Start)
	b.bot.Handle("/add", b.ctrl.Add)
	b.bot.Handle("/history", b.ctrl.History)
	b.bot.Handle("/delete", b.ctrl.Delete)
	b.bot.Handle("/portfolio", b.ctrl.Portfolio)
	b.bot.Handle("/performance", b.ctrl.Performance)
	b.bot.Handle("/report", b.ctrl.Report)

	b.bot.Handle(&telebotConverter.BtnPortfolio, b.ctrl.Portfolio)
	b.bot.Handle(&telebotConverter.BtnPerformance, b.ctrl.Performance)
	b.bot.Handle(&telebotConverter.BtnReport, b.ctrl.Report)

	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		return c.Send("unknown command, see /help")
	})
}
