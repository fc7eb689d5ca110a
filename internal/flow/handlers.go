package flow

import (
	"log/slog"
	"strings"

	"dealsbot/core/logger"
	tg "dealsbot/core/telegram"
	"dealsbot/core/telegram/callbacks"
	"dealsbot/core/telegram/commands"
	tghelpers "dealsbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const (
	menuPerRow = 2
	listPerRow = 1
)

// Handlers adapts the controller to the Telegram registry. It also serves
// as the fallback provider for unknown text and callbacks.
type Handlers struct {
	ctrl *Controller
}

// NewHandlers wires a controller into transport-facing handlers.
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{ctrl: ctrl}
}

// Register binds all commands and callbacks to the registry.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.startCmd,
		Description: "Show the category menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.helpCmd,
		Description: "List available commands",
	})
	reg.RegisterCommand("/deals", commands.Command{
		Handler:     h.dealsCmd,
		Description: "Top discounted products of a category",
	})
	reg.RegisterCommand("/product", commands.Command{
		Handler:     h.productCmd,
		Description: "Look up one product by identifier",
	})

	_ = reg.RegisterCallback(ActionCategory, h.categoryPressed)
	_ = reg.RegisterCallback(ActionProduct, h.productPressed)
	_ = reg.RegisterCallback(ActionBack, h.backPressed)
	_ = reg.RegisterCallback(ActionDeals, h.dealsShortcut)
	_ = reg.RegisterCallback(ActionLookup, h.lookupShortcut)
	_ = reg.RegisterCallback(ActionHelp, h.helpCmd)

	reg.SetTextFallback(h.UnknownText())
	reg.SetCallbackNotFound(h.UnknownCallback())
}

func (h *Handlers) startCmd(c tele.Context) error {
	snap, state := h.ctrl.MainMenu()
	return h.send(c, snap, menuPerRow, state)
}

func (h *Handlers) helpCmd(c tele.Context) error {
	return h.send(c, h.ctrl.Help(), listPerRow, Browsing)
}

func (h *Handlers) dealsCmd(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	snap := h.ctrl.Deals(ctx, firstArg(c))
	return h.send(c, snap, listPerRow, Browsing)
}

func (h *Handlers) productCmd(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	snap := h.ctrl.Lookup(ctx, firstArg(c))
	return h.send(c, snap, listPerRow, Browsing)
}

func (h *Handlers) categoryPressed(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	slug := callbacks.CallbackPayload(c)
	snap, state := h.ctrl.OpenCategory(ctx, slug)
	logger.Debug(ctx, "flow", "category.open",
		slog.String("slug", slug),
		slog.String("state", state.String()),
		slog.Int("products", len(snap.Buttons)),
	)
	return h.send(c, snap, listPerRow, state)
}

// productPressed resolves the active category from the keyboard of the
// message the press arrived on, then fetches the product directly.
func (h *Handlers) productPressed(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	dkp := callbacks.CallbackPayload(c)
	current := FromMessage(c.Message())
	snap, state := h.ctrl.SelectProduct(ctx, current, dkp)
	logger.Debug(ctx, "flow", "product.select",
		slog.String("dkp", dkp),
		slog.String("state", state.String()),
	)
	return h.send(c, snap, listPerRow, state)
}

func (h *Handlers) backPressed(c tele.Context) error {
	snap, state := h.ctrl.Back()
	return h.send(c, snap, menuPerRow, state)
}

func (h *Handlers) dealsShortcut(c tele.Context) error {
	return h.send(c, h.ctrl.DealsPrompt(), listPerRow, Browsing)
}

func (h *Handlers) lookupShortcut(c tele.Context) error {
	return h.send(c, h.ctrl.LookupPrompt(), listPerRow, Browsing)
}

// UnknownText hints at the command set when free text matches nothing.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, "I only understand commands. Try /start or /help.")
	}
}

// UnknownCallback answers presses on buttons this build no longer knows.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		_ = c.Respond(&tele.CallbackResponse{Text: "This button is no longer supported"})
		return tghelpers.SendText(c, "That action is no longer available. Start over with /start.")
	}
}

// send renders a snapshot. Photo sends stay synchronous so a delivery
// failure can fall back to text without losing the transition.
func (h *Handlers) send(c tele.Context, snap Snapshot, perRow int, state State) error {
	markup := Markup(snap, perRow)

	if snap.ImageURL != "" {
		photo := &tele.Photo{
			File:    tele.FromURL(snap.ImageURL),
			Caption: snap.Text,
		}
		err := c.Send(photo, &tele.SendOptions{ReplyMarkup: markup})
		if err == nil {
			return nil
		}
		ctx := tghelpers.BuildContext(c)
		logger.Warn(ctx, "flow", "photo.fallback",
			slog.String("state", state.String()),
			slog.String("image_url", logger.SanitizeLimit(snap.ImageURL, 128)),
			slog.String("err", err.Error()),
		)
		snap.Text += "\n\n(image failed to load)"
	}

	opts := &tele.SendOptions{ReplyMarkup: markup}
	return tghelpers.SendText(c, snap.Text, opts)
}

func firstArg(c tele.Context) string {
	args := c.Args()
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}
