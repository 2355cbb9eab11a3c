package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/taraskit/quest-bot/internal/bot/handlers"
	"github.com/taraskit/quest-bot/internal/bot/keyboard"
	"github.com/taraskit/quest-bot/internal/bot/payload"
	apperrors "github.com/taraskit/quest-bot/internal/errors"
	"github.com/taraskit/quest-bot/internal/gamefile"
	"github.com/taraskit/quest-bot/internal/middleware"
	"github.com/taraskit/quest-bot/internal/session"
	"github.com/taraskit/quest-bot/internal/stage"
	"github.com/taraskit/quest-bot/pkg/config"
)

// Bot wraps telebot.Bot with the application dependencies required for handling updates.
type Bot struct {
	telebot     *telebot.Bot
	log         *slog.Logger
	cfg         config.Config
	stages      stage.Machine
	session     *session.State
	store       *gamefile.Store
	rateLimitMw *middleware.RateLimitMiddleware
	router      *Router
	dispatcher  *Dispatcher
	keyboard    *keyboard.Builder
	errHandler  *apperrors.Handler
	admin       *handlers.Admin
	user        *handlers.User
	entry       *handlers.Entry
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	stages stage.Machine,
	sess *session.State,
	store *gamefile.Store,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	token, err := cfg.Token()
	if err != nil {
		return nil, fmt.Errorf("load bot token: %w", err)
	}

	settings := telebot.Settings{
		Token: token,
		Poller: &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	dispatcher := NewDispatcher(stages, log)
	router := NewRouter(dispatcher, log)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	admin := handlers.NewAdmin(stages, sess, store, kb, log)
	user := handlers.NewUser(stages, sess, store, kb, log)
	entry := handlers.NewEntry(cfg.IsAdmin, admin, user, stages, log)

	b := &Bot{
		telebot:     tb,
		log:         log,
		cfg:         cfg,
		stages:      stages,
		session:     sess,
		store:       store,
		rateLimitMw: rateLimitMw,
		router:      router,
		dispatcher:  dispatcher,
		keyboard:    kb,
		errHandler:  errHandler,
		admin:       admin,
		user:        user,
		entry:       entry,
	}

	b.setupRouter()
	b.setupDispatcher()

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Metrics)

	b.router.RegisterCommand(CommandStart, b.entry.Start)
	b.router.RegisterCommand(CommandEnd, b.entry.End)
}

// setupDispatcher binds every conversation stage to the callbacks and text
// it accepts. Anything outside these registrations goes to the fallback.
func (b *Bot) setupDispatcher() {
	if b.dispatcher == nil {
		return
	}

	b.dispatcher.SetFallback(handlers.NewWrongQueryHandler(b.stages, b.log))

	menu := stage.StageAwaitingAdminMenu
	b.dispatcher.RegisterAction(menu, payload.KindMenuNewGame, asAction(b.admin.NewGame))
	b.dispatcher.RegisterAction(menu, payload.KindMenuStartGame, asAction(b.admin.StartGame))
	b.dispatcher.RegisterAction(menu, payload.KindMenuStopGame, asAction(b.admin.StopGame))
	b.dispatcher.RegisterAction(menu, payload.KindMenuLoadGame, asAction(b.admin.LoadGame))
	b.dispatcher.RegisterAction(menu, payload.KindMenuDeleteGame, asAction(b.admin.DeleteGame))
	b.dispatcher.RegisterAction(menu, payload.KindMenuShowQuests, asAction(b.admin.ShowQuests))
	b.dispatcher.RegisterAction(menu, payload.KindMenuDeleteQuest, asAction(b.admin.DeleteQuest))
	b.dispatcher.RegisterAction(menu, payload.KindMenuAddQuest, asAction(b.admin.AddQuest))

	b.dispatcher.RegisterAction(stage.StageAwaitingGameToLoad, payload.KindLoadGame, b.admin.LoadGameTarget)
	b.dispatcher.RegisterAction(stage.StageAwaitingGameToLoad, payload.KindBack, asAction(b.admin.Back))

	b.dispatcher.RegisterAction(stage.StageAwaitingGameToDelete, payload.KindDeleteGame, b.admin.DeleteGameTarget)
	b.dispatcher.RegisterAction(stage.StageAwaitingGameToDelete, payload.KindBack, asAction(b.admin.Back))

	b.dispatcher.RegisterAction(stage.StageAwaitingQuestToDelete, payload.KindDeleteQuest, b.admin.DeleteQuestTarget)
	b.dispatcher.RegisterAction(stage.StageAwaitingQuestToDelete, payload.KindBack, asAction(b.admin.Back))

	b.dispatcher.RegisterAction(stage.StageAwaitingRoomSelection, payload.KindSelectRoom, b.user.SelectRoom)

	b.dispatcher.RegisterText(stage.StageAwaitingNewGameName, b.admin.NewGameName)
	b.dispatcher.RegisterText(stage.StageAwaitingNewQuestText, b.admin.NewQuestText)
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

// asAction adapts a plain handler to the ActionHandler signature for
// callbacks that carry no arguments beyond their kind.
func asAction(h handlers.Handler) ActionHandler {
	return func(c telebot.Context, _ payload.Action) error {
		return h(c)
	}
}
