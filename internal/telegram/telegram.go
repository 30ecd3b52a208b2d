// Package telegram implements the outbound messaging capability over the
// Telegram Bot API.
package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Client struct {
	api *tgbotapi.BotAPI
}

func New(api *tgbotapi.BotAPI) *Client {
	return &Client{api: api}
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, imageURL, caption string) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(imageURL))
	photo.Caption = caption
	msg, err := c.api.Send(photo)
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendAlbum posts the images as one media group, with the caption on the
// last item.
func (c *Client) SendAlbum(ctx context.Context, chatID int64, imageURLs []string, caption string) ([]int, error) {
	media := make([]interface{}, 0, len(imageURLs))
	for i, imageURL := range imageURLs {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(imageURL))
		if i == len(imageURLs)-1 {
			photo.Caption = caption
		}
		media = append(media, photo)
	}

	messages, err := c.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media))
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(messages))
	for i, msg := range messages {
		ids[i] = msg.MessageID
	}
	return ids, nil
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	msg, err := c.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// DeleteMessage removes a message. A message that is already gone counts
// as deleted.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "message to delete not found") {
			return nil
		}
		return err
	}
	return nil
}
