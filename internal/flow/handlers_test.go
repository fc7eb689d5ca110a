package flow

import (
	"errors"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type sentItem struct {
	what any
	opts []any
}

// sendStubContext records outbound sends and can fail photo deliveries.
// The embedded interface covers the methods this package never touches.
type sendStubContext struct {
	tele.Context
	photoErr error
	sent     []sentItem
	store    map[string]any
}

func (c *sendStubContext) Send(what interface{}, opts ...interface{}) error {
	if _, isPhoto := what.(*tele.Photo); isPhoto && c.photoErr != nil {
		return c.photoErr
	}
	c.sent = append(c.sent, sentItem{what: what, opts: opts})
	return nil
}

func (c *sendStubContext) Get(key string) interface{} { return c.store[key] }

func (c *sendStubContext) Set(key string, val interface{}) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = val
}

func (c *sendStubContext) Update() tele.Update { return tele.Update{ID: 7} }
func (c *sendStubContext) Sender() *tele.User  { return &tele.User{ID: 42} }
func (c *sendStubContext) Chat() *tele.Chat    { return &tele.Chat{ID: 42} }

func detailSnapshot() Snapshot {
	return Snapshot{
		Text:     "Phone A\n\nPrice: 9,876 (20% off, was 12,345)\nhttps://shop.example/dkp-111/",
		Buttons:  []Button{{Label: "Back", Action: ActionBack, Payload: "mobile"}},
		ImageURL: "https://img.example/111.jpg",
	}
}

func TestSendPhotoFailureFallsBackToText(t *testing.T) {
	h := NewHandlers(newTestController(&fakeCatalog{}))
	snap := detailSnapshot()
	c := &sendStubContext{photoErr: errors.New("telegram: wrong file identifier (400)")}

	if err := h.send(c, snap, listPerRow, CategorySelected); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(c.sent) != 1 {
		t.Fatalf("sent %d messages, want 1 text fallback", len(c.sent))
	}
	text, ok := c.sent[0].what.(string)
	if !ok {
		t.Fatalf("fallback sent %T, want string", c.sent[0].what)
	}
	if !strings.Contains(text, "(image failed to load)") {
		t.Errorf("fallback text %q lacks image-failed note", text)
	}
	if !strings.Contains(text, "Phone A") || !strings.Contains(text, "9,876") {
		t.Errorf("fallback text %q lost the detail body", text)
	}

	if len(c.sent[0].opts) != 1 {
		t.Fatalf("fallback sent with %d options, want 1", len(c.sent[0].opts))
	}
	opts, ok := c.sent[0].opts[0].(*tele.SendOptions)
	if !ok || opts.ReplyMarkup == nil {
		t.Fatalf("fallback options = %+v, want reply markup preserved", c.sent[0].opts[0])
	}
	restored := FromMessage(&tele.Message{Text: text, ReplyMarkup: opts.ReplyMarkup})
	if slug, found := RecoverCategory(restored); !found || slug != "mobile" {
		t.Errorf("fallback markup lost category context: (%q, %v)", slug, found)
	}
}

func TestSendPhotoSuccessSkipsFallback(t *testing.T) {
	h := NewHandlers(newTestController(&fakeCatalog{}))
	snap := detailSnapshot()
	c := &sendStubContext{}

	if err := h.send(c, snap, listPerRow, CategorySelected); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(c.sent) != 1 {
		t.Fatalf("sent %d messages, want 1 photo", len(c.sent))
	}
	photo, ok := c.sent[0].what.(*tele.Photo)
	if !ok {
		t.Fatalf("sent %T, want *tele.Photo", c.sent[0].what)
	}
	if photo.Caption != snap.Text {
		t.Errorf("caption = %q, want snapshot text", photo.Caption)
	}
	if strings.Contains(photo.Caption, "image failed to load") {
		t.Error("successful photo send must not carry the failure note")
	}
}

func TestSendTextOnlySnapshot(t *testing.T) {
	h := NewHandlers(newTestController(&fakeCatalog{}))
	c := &sendStubContext{}

	snap := Snapshot{Text: "Usage: /deals <category>"}
	if err := h.send(c, snap, listPerRow, Browsing); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(c.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(c.sent))
	}
	if text, ok := c.sent[0].what.(string); !ok || text != snap.Text {
		t.Fatalf("sent %v, want plain snapshot text", c.sent[0].what)
	}
}
