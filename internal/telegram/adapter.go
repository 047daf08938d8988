package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pocketguide/internal/tour"
)

const (
	msgInstruction = "📖 Вы выбираете экскурсию → следуете маршруту → слушаете аудиогид."
	msgFailure     = "⚠️ Произошла ошибка, попробуйте позже."
)

// Adapter связывает движок экскурсий с Telegram: превращает входящие
// обновления в действия движка, а события движка — в сообщения бота.
// Ошибки доставки логируются и не влияют на состояние сессии: переход
// уже зафиксирован к моменту отправки.
type Adapter struct {
	bot    *tgbotapi.BotAPI
	engine *tour.Engine
	log    *zap.Logger
}

// NewAdapter создает адаптер доставки.
func NewAdapter(bot *tgbotapi.BotAPI, engine *tour.Engine, log *zap.Logger) *Adapter {
	return &Adapter{bot: bot, engine: engine, log: log}
}

// Run запускает цикл обработки обновлений long polling. Каждое обновление
// обрабатывается в своей горутине; действия одного диалога сериализует
// хранилище сессий, поэтому двойные нажатия не теряют переходов.
func (a *Adapter) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go a.handleUpdate(ctx, update)
		}
	}
}

func (a *Adapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if cq := update.CallbackQuery; cq != nil {
		a.handleCallback(ctx, cq)
		return
	}
	if msg := update.Message; msg != nil && msg.IsCommand() {
		a.handleCommand(ctx, msg)
	}
}

func (a *Adapter) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := a.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		a.log.Warn("не удалось подтвердить callback", zap.Error(err))
	}
	if cq.Message == nil {
		return
	}
	act, ok := tour.ParseToken(cq.Data)
	if !ok {
		a.log.Warn("неизвестные callback-данные", zap.String("data", cq.Data))
		return
	}
	a.dispatch(ctx, cq.Message.Chat.ID, act)
}

func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		a.log.Info("пользователь запустил бота", zap.Int64("chat", chatID))
		a.dispatch(ctx, chatID, tour.Action{Kind: tour.ActionReturnHome})
	case "instruction":
		a.send(tgbotapi.NewMessage(chatID, msgInstruction))
	case "get_trips":
		a.dispatch(ctx, chatID, tour.Action{Kind: tour.ActionListCities})
	}
}

func (a *Adapter) dispatch(ctx context.Context, chatID int64, act tour.Action) {
	events, err := a.engine.Handle(ctx, chatID, act)
	if err != nil {
		a.log.Error("действие не обработано",
			zap.Int64("chat", chatID),
			zap.Stringer("action", act.Kind),
			zap.Error(err),
		)
		a.send(tgbotapi.NewMessage(chatID, msgFailure))
		return
	}
	a.deliver(chatID, events)
}

// deliver отправляет события движка по порядку.
func (a *Adapter) deliver(chatID int64, events []tour.Event) {
	for _, ev := range events {
		switch ev := ev.(type) {
		case tour.ShowText:
			msg := tgbotapi.NewMessage(chatID, ev.Body)
			msg.ParseMode = tgbotapi.ModeMarkdown
			a.send(msg)
		case tour.ShowLocation:
			a.send(tgbotapi.NewLocation(chatID, ev.Lat, ev.Lng))
		case tour.ShowMedia:
			a.sendMedia(chatID, ev)
		case tour.ShowChoices:
			msg := tgbotapi.NewMessage(chatID, ev.Prompt)
			msg.ParseMode = tgbotapi.ModeMarkdown
			msg.ReplyMarkup = keyboard(ev.Options)
			a.send(msg)
		}
	}
}

func (a *Adapter) sendMedia(chatID int64, ev tour.ShowMedia) {
	file := tgbotapi.FilePath(ev.Ref)
	switch ev.Kind {
	case tour.MediaImage:
		a.send(tgbotapi.NewPhoto(chatID, file))
	case tour.MediaAudio:
		a.send(tgbotapi.NewAudio(chatID, file))
	case tour.MediaVideo:
		a.send(tgbotapi.NewVideo(chatID, file))
	}
}

func (a *Adapter) send(c tgbotapi.Chattable) {
	if _, err := a.bot.Send(c); err != nil {
		a.log.Error("не удалось отправить сообщение", zap.Error(err))
	}
}

// keyboard собирает inline-клавиатуру: по одной кнопке в строке,
// как в исходной раскладке выбора городов и экскурсий.
func keyboard(options []tour.Option) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, len(options))
	for i, opt := range options {
		rows[i] = tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt.Label, opt.Token),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
