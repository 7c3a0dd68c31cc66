package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/app"
	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
)

// Bot is the Telegram front end. The polling loop handles one inbound
// update at a time for control flow; each fetch job runs on its own
// goroutine so the loop never blocks on network or subprocess I/O.
type Bot struct {
	api      *tgbotapi.BotAPI
	config   *domain.Config
	registry *app.URLRegistry
	runner   *app.FetchRunner
	packager *app.AlbumPackager
	repo     domain.JobRepository
	logger   *zap.Logger

	wg sync.WaitGroup
}

// New connects to the Telegram API and builds the bot
func New(
	config *domain.Config,
	registry *app.URLRegistry,
	runner *app.FetchRunner,
	packager *app.AlbumPackager,
	repo domain.JobRepository,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Telegram.Token)
	if err != nil {
		return nil, err
	}

	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	return &Bot{
		api:      api,
		config:   config,
		registry: registry,
		runner:   runner,
		packager: packager,
		repo:     repo,
		logger:   logger,
	}, nil
}

// Run registers the bot commands and consumes updates until ctx is
// cancelled, then drains the in-flight job goroutines.
func (b *Bot) Run(ctx context.Context) error {
	b.registerCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Listening for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) registerCommands() {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the bot 🚀"},
		tgbotapi.BotCommand{Command: "album", Description: "Download a whole album or playlist"},
	)
	if _, err := b.api.Request(cmds); err != nil {
		b.logger.Warn("Failed to register bot commands", zap.Error(err))
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		if !b.isAllowed(update.Message.From) {
			b.logger.Debug("Ignoring message from disallowed user",
				zap.Int64("user_id", update.Message.From.ID))
			return
		}
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		if !b.isAllowed(update.CallbackQuery.From) {
			return
		}
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// isAllowed checks the optional user allowlist. An empty list allows
// everyone.
func (b *Bot) isAllowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if len(b.config.Telegram.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.config.Telegram.AllowedUserIDs {
		if from.ID == id {
			return true
		}
	}
	return false
}

// spawn runs a fetch job on its own goroutine, tracked so shutdown can
// drain it. A panicking job is logged and never takes the process down.
func (b *Bot) spawn(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Job goroutine panicked", zap.Any("panic", r))
			}
		}()
		fn()
	}()
}

// recordJob persists a job state transition. History is observability
// only, so store errors are logged and swallowed.
func (b *Bot) recordJob(job *domain.Job, create bool) {
	if b.repo == nil {
		return
	}
	var err error
	if create {
		err = b.repo.Create(job)
	} else {
		err = b.repo.Update(job)
	}
	if err != nil {
		b.logger.Warn("Failed to record job history",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
}
