// Package flow owns the conversation: it maps user actions to catalog
// lookups and renders the next view. There is no per-user session store;
// the inline keyboard of the message a button press arrived on is the only
// carrier of conversational context.
package flow

import (
	"strings"

	"dealsbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Action tags attached to inline buttons. The tag plus its payload is all
// the information a future press carries back, so category tags must embed
// the slug verbatim.
const (
	ActionCategory = "category"
	ActionProduct  = "product"
	ActionBack     = "back"
	ActionDeals    = "deals"
	ActionLookup   = "lookup"
	ActionHelp     = "help"
)

// Button describes one inline button of a rendered view.
type Button struct {
	Label   string
	Action  string
	Payload string
}

// Snapshot is the rendered state shown to the user: a text body plus an
// ordered button sequence, optionally an image. Snapshots are immutable
// values; a new one is produced on every transition.
type Snapshot struct {
	Text     string
	Buttons  []Button
	ImageURL string
}

// RecoverCategory reconstructs the active category slug from the view the
// user is currently looking at. The first button embedding a slug wins:
// a category-selection button directly, otherwise a back button, which
// carries the slug of the list it leads away from. Returns false when the
// view embeds no category at all.
func RecoverCategory(s Snapshot) (string, bool) {
	for _, b := range s.Buttons {
		if b.Action == ActionCategory && b.Payload != "" {
			return b.Payload, true
		}
	}
	for _, b := range s.Buttons {
		if b.Action == ActionBack && b.Payload != "" {
			return b.Payload, true
		}
	}
	return "", false
}

// Markup renders the snapshot's buttons as an inline keyboard with up to
// perRow buttons per row.
func Markup(s Snapshot, perRow int) *tele.ReplyMarkup {
	if len(s.Buttons) == 0 {
		return nil
	}
	btns := make([]keyboard.InlineBtn, 0, len(s.Buttons))
	for _, b := range s.Buttons {
		btns = append(btns, keyboard.InlineBtn{
			Text:   b.Label,
			Unique: b.Action,
			Data:   b.Payload,
		})
	}
	return keyboard.InlineButtonsNPerRow(btns, perRow)
}

// FromMessage rebuilds a snapshot from a delivered message, decoding the
// \f<unique>|<payload> callback data of its inline keyboard. This is the
// inverse of Markup for the fields context recovery needs.
func FromMessage(msg *tele.Message) Snapshot {
	if msg == nil {
		return Snapshot{}
	}
	s := Snapshot{Text: msg.Text}
	if msg.ReplyMarkup == nil {
		return s
	}
	for _, row := range msg.ReplyMarkup.InlineKeyboard {
		for _, btn := range row {
			action, payload := decodeTag(btn)
			if action == "" {
				continue
			}
			s.Buttons = append(s.Buttons, Button{
				Label:   btn.Text,
				Action:  action,
				Payload: payload,
			})
		}
	}
	return s
}

func decodeTag(btn tele.InlineButton) (string, string) {
	if btn.Unique != "" {
		return btn.Unique, btn.Data
	}
	raw := strings.TrimPrefix(btn.Data, "\f")
	if raw == "" {
		return "", ""
	}
	action, payload, _ := strings.Cut(raw, "|")
	return action, payload
}
