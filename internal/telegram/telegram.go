package telegram

import (
	"net/http"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type Settings struct {
	Token  string
	Client *http.Client
	// URL 为空时使用官方 Bot API 地址，可指向自建的 Bot API 服务
	URL string
	// Offline 创建时不请求 getMe
	Offline bool
}

// Telegram 只负责推送消息，不接收更新
type Telegram struct {
	logger   *zap.Logger
	settings Settings
	client   *tele.Bot
}

type Option func(telegram *Telegram)

func NewTelegram(logger *zap.Logger, settings Settings, options ...Option) (*Telegram, error) {
	client, err := tele.NewBot(tele.Settings{
		URL:       settings.URL,
		ParseMode: tele.ModeMarkdownV2,
		Token:     settings.Token,
		Client:    settings.Client,
		Offline:   settings.Offline,
	})
	if err != nil {
		return nil, err
	}

	bot := &Telegram{
		logger:   logger,
		settings: settings,
		client:   client,
	}

	for _, option := range options {
		option(bot)
	}

	return bot, nil
}

// Notify 发送 MarkdownV2 消息，msg 中的动态内容需先经 EscapeMarkdownV2 转义
func (r *Telegram) Notify(chatId, msg string) error {
	_chatId := cast.ToInt64(chatId)
	_, err := r.client.Send(tele.ChatID(_chatId), msg, &tele.SendOptions{ParseMode: tele.ModeMarkdownV2})
	if err != nil {
		r.logger.Warn("telegram notify failed", zap.Int64("chat_id", _chatId), zap.Error(err))
	}
	return err
}
