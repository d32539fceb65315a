// Package parser loads the yaml message catalog and renders texts and
// inline keyboards from it.
package parser

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-telegram/bot/models"
	"gopkg.in/yaml.v3"

	"studygate-bot/pkg/config"
)

type Button struct {
	Text     string `yaml:"text"`
	Callback string `yaml:"callback,omitempty"`
	URL      string `yaml:"url,omitempty"`
}

type message struct {
	Text    string     `yaml:"text"`
	Buttons [][]Button `yaml:"buttons,omitempty"`
}

var (
	messages map[string]message
	loadOnce sync.Once
)

func load() {
	raw, err := os.ReadFile(config.MessagesFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to read messages file: %v", err))
	}
	if err := yaml.Unmarshal(raw, &messages); err != nil {
		panic(fmt.Sprintf("Failed to parse messages file: %v", err))
	}
}

// GetMessage renders the catalog entry for key, substituting {placeholder}
// occurrences in the text, button labels and callback data. An unknown key
// renders as the key itself so a missing entry is visible, not fatal.
func GetMessage(key string, data map[string]string) (string, *models.InlineKeyboardMarkup) {
	loadOnce.Do(load)

	msg, ok := messages[key]
	if !ok {
		return key, nil
	}

	text := substitute(msg.Text, data)
	if len(msg.Buttons) == 0 {
		return text, nil
	}

	rows := make([][]Button, len(msg.Buttons))
	for i, row := range msg.Buttons {
		rows[i] = make([]Button, len(row))
		for j, btn := range row {
			rows[i][j] = Button{
				Text:     substitute(btn.Text, data),
				Callback: substitute(btn.Callback, data),
				URL:      substitute(btn.URL, data),
			}
		}
	}

	return text, BuildInlineKeyboard(rows)
}

// BuildInlineKeyboard converts button rows into a Telegram reply markup.
func BuildInlineKeyboard(rows [][]Button) *models.InlineKeyboardMarkup {
	keyboard := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]models.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			line = append(line, models.InlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.Callback,
				URL:          btn.URL,
			})
		}
		keyboard = append(keyboard, line)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func substitute(s string, data map[string]string) string {
	for k, v := range data {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}
