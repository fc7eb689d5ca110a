// Package app assembles the bot: configuration to catalog client to
// conversation handlers to the Telegram run loop.
package app

import (
	"context"
	"time"

	coreconfig "dealsbot/core/config"
	"dealsbot/core/logger"
	tg "dealsbot/core/telegram"
	"dealsbot/core/telegram/router"
	"dealsbot/core/telegram/ui"
	"dealsbot/internal/catalog"
	"dealsbot/internal/flow"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Run wires all components and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *coreconfig.Config) error {
	startedAt := time.Now()

	client := catalog.NewClient(catalog.Config{
		BaseURL:    cfg.Catalog.BaseURL,
		Token:      cfg.Catalog.Token,
		Timeout:    time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second,
		PageBudget: cfg.Catalog.DealsPageBudget,
	})
	if !client.Configured() {
		logger.Warn(ctx, "app", "catalog.unconfigured",
			slog.String("hint", "catalog commands will answer with a configuration error"),
		)
	}

	ctrl := flow.NewController(client, cfg.Bot.Name)
	handlers := flow.NewHandlers(ctrl)

	reg := tg.NewRegistry()
	handlers.Register(reg)

	var fallbacks ui.FallbackProvider = handlers

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fallbacks.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{
		UnknownText: fallbacks.UnknownText(),
	})...)

	onLimited := func(c tele.Context) error {
		_ = c.Respond(&tele.CallbackResponse{Text: "Too fast, try again in a moment"})
		return nil
	}

	return tg.RunTelegram(ctx, tg.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(cfg, onLimited),
		Routes:      routes,
		OnStart: func(ctx context.Context, _ tg.Runtime) error {
			logger.Info(ctx, "app", "ready",
				slog.String("bot_name", cfg.Bot.Name),
				slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
			)
			return nil
		},
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			logger.Info(ctx, "app", "shutdown")
			return nil
		},
	})
}
