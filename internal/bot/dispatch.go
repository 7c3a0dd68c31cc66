package bot

import (
	"context"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/app"
	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
)

const welcomeText = "👋 Hi!\n\n" +
	"📥 I download photos, videos and audio from YouTube, TikTok, Instagram, Pinterest and SoundCloud.\n\n" +
	"🚀 Send me a link and I will fetch it for you!"

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if msg.Text == "" {
		return
	}
	b.handleLink(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		reply := tgbotapi.NewMessage(msg.Chat.ID, welcomeText)
		reply.ReplyToMessageID = msg.MessageID
		b.send(reply)
	case "album":
		url := strings.TrimSpace(msg.CommandArguments())
		if url == "" {
			b.sendText(msg.Chat.ID, "Usage: /album <link to an album or playlist>")
			return
		}
		status := b.postStatus(msg.Chat.ID, "⏳ Downloading album… this can take a few minutes.")
		b.spawn(func() { b.runAlbumJob(ctx, msg.Chat.ID, url, status) })
	default:
		b.sendText(msg.Chat.ID, "Unknown command.")
	}
}

// handleLink classifies inbound text and routes it. Text that matches no
// platform is silently ignored.
func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message) {
	url := strings.TrimSpace(msg.Text)
	match, ok := domain.Classify(url)
	if !ok {
		b.logger.Debug("Text matched no platform", zap.String("text", url))
		return
	}

	switch {
	case match.Platform == domain.PlatformSoundCloud && match.Collection:
		token := b.registry.Put(url)
		prompt := tgbotapi.NewMessage(msg.Chat.ID, "💿 That looks like an album or playlist. What should I download?")
		prompt.ReplyMarkup = collectionKeyboard(token)
		b.send(prompt)

	case match.Platform == domain.PlatformYouTube:
		token := b.registry.Put(url)
		prompt := tgbotapi.NewMessage(msg.Chat.ID, "Choose a format:")
		prompt.ReplyMarkup = tierKeyboard(token)
		b.send(prompt)

	case match.Platform == domain.PlatformSoundCloud:
		status := b.postStatus(msg.Chat.ID, "⏳ Downloading track…")
		b.spawn(func() { b.runTrackJob(ctx, msg.Chat.ID, url, status) })

	default:
		status := b.postStatus(msg.Chat.ID, "⏳ Downloading…")
		b.spawn(func() { b.runDirectJob(ctx, msg.Chat.ID, url, match.Platform, status) })
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Debug("Failed to answer callback", zap.Error(err))
	}
	if q.Message == nil {
		return
	}
	chatID := q.Message.Chat.ID
	statusID := q.Message.MessageID

	action, err := parseCallbackPayload(q.Data)
	if err != nil {
		b.logger.Warn("Bad callback payload", zap.String("data", q.Data))
		return
	}

	url, ok := b.registry.Get(action.Token)
	if !ok {
		b.editMessage(chatID, statusID, "This link has expired. Send the URL again.")
		return
	}

	switch action.Kind {
	case payloadAlbum:
		b.editMessage(chatID, statusID, "⏳ Downloading album… this can take a while.")
		b.spawn(func() { b.runAlbumJob(ctx, chatID, url, statusID) })
	case payloadTrack:
		b.editMessage(chatID, statusID, "⏳ Downloading track…")
		b.spawn(func() { b.runTrackJob(ctx, chatID, url, statusID) })
	case payloadTiered:
		b.editMessage(chatID, statusID, "⏳ Downloading in "+string(action.Tier)+"…")
		b.spawn(func() { b.runTieredJob(ctx, chatID, url, action.Tier, statusID) })
	}
}

// runTrackJob fetches a single audio track, normalized to mp3
func (b *Bot) runTrackJob(ctx context.Context, chatID int64, url string, statusID int) {
	req := app.FetchRequest{
		URL:            url,
		Options:        domain.OptionsForTier(domain.TierMP3),
		Timeout:        b.config.Download.TrackTimeout,
		NormalizeToMP3: true,
	}
	b.runFetchJob(ctx, chatID, url, domain.PlatformSoundCloud, domain.TierMP3, req, statusID)
}

// runTieredJob fetches a single item at the quality the user picked
func (b *Bot) runTieredJob(ctx context.Context, chatID int64, url string, tier domain.Tier, statusID int) {
	req := app.FetchRequest{
		URL:     url,
		Options: domain.OptionsForTier(tier),
		Timeout: b.config.Download.VideoTimeout,
	}
	if tier == domain.TierMP3 {
		req.Timeout = b.config.Download.TrackTimeout
		req.NormalizeToMP3 = true
	}
	b.runFetchJob(ctx, chatID, url, domain.PlatformYouTube, tier, req, statusID)
}

// runDirectJob fetches a URL that needs no format prompt. Instagram and
// Pinterest posts can carry several items, so their output is located by
// directory scan.
func (b *Bot) runDirectJob(ctx context.Context, chatID int64, url string, platform domain.Platform, statusID int) {
	req := app.FetchRequest{
		URL:       url,
		Options:   domain.OptionsForTier(domain.TierBest),
		Timeout:   b.config.Download.VideoTimeout,
		MultiItem: platform == domain.PlatformInstagram || platform == domain.PlatformPinterest,
	}
	b.runFetchJob(ctx, chatID, url, platform, domain.TierBest, req, statusID)
}

// runFetchJob executes a single-item fetch, delivers the outcome and
// cleans up the status message on every terminal branch
func (b *Bot) runFetchJob(ctx context.Context, chatID int64, url string, platform domain.Platform, tier domain.Tier, req app.FetchRequest, statusID int) {
	defer b.deleteMessage(chatID, statusID)

	job := domain.NewJob(url, platform, tier)
	b.recordJob(job, true)
	job.MarkProcessing()
	b.recordJob(job, false)

	result, err := b.runner.Fetch(ctx, req)
	if err != nil {
		b.logger.Warn("Fetch job failed",
			zap.String("job_id", job.ID),
			zap.String("url", url),
			zap.Error(err))
		job.MarkFailed(err)
		b.recordJob(job, false)
		b.sendText(chatID, failureText(err))
		return
	}

	job.FallbackUsed = result.FallbackUsed
	if b.deliverFiles(chatID, result.Files) {
		job.MarkCompleted(result.Path(), result.Kind)
	} else {
		job.MarkFailed(domain.Failuref(domain.FailureDownstream, "upload to chat failed"))
		b.sendText(chatID, "Download succeeded but I could not upload the file.")
	}
	b.recordJob(job, false)
}

// runAlbumJob fetches a whole collection and delivers the archive
func (b *Bot) runAlbumJob(ctx context.Context, chatID int64, url string, statusID int) {
	defer b.deleteMessage(chatID, statusID)

	job := domain.NewJob(url, domain.PlatformSoundCloud, domain.TierMP3)
	b.recordJob(job, true)
	job.MarkProcessing()
	b.recordJob(job, false)

	bundle, err := b.packager.FetchAlbum(ctx, url, b.config.Download.AlbumTimeout)
	if err != nil {
		b.logger.Warn("Album job failed",
			zap.String("job_id", job.ID),
			zap.String("url", url),
			zap.Error(err))
		job.MarkFailed(err)
		b.recordJob(job, false)
		b.sendText(chatID, failureText(err))
		return
	}

	caption := "💿 Album downloaded! " + b.config.Telegram.Caption
	if bundle.Partial {
		caption = "⏱ Deadline hit, here are the tracks that finished. " + b.config.Telegram.Caption
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(bundle.ArchivePath))
	doc.Caption = strings.TrimSpace(caption)
	_, sendErr := b.api.Send(doc)
	os.Remove(bundle.ArchivePath)

	if sendErr != nil {
		b.logger.Error("Failed to upload album archive", zap.Error(sendErr))
		job.MarkFailed(sendErr)
		b.recordJob(job, false)
		b.sendText(chatID, "Download succeeded but I could not upload the archive.")
		return
	}

	if bundle.Partial {
		job.MarkPartial(bundle.ArchivePath)
	} else {
		job.MarkCompleted(bundle.ArchivePath, domain.KindDocument)
	}
	b.recordJob(job, false)
}

// deliverFiles uploads each result file with the sender matching its
// media kind, deleting the local file afterwards. Returns false when any
// upload failed.
func (b *Bot) deliverFiles(chatID int64, files []string) bool {
	caption := strings.TrimSpace("✅ Downloaded! " + b.config.Telegram.Caption)
	delivered := true
	for _, path := range files {
		var msg tgbotapi.Chattable
		switch domain.InferMediaKind(path) {
		case domain.KindVideo:
			v := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
			v.Caption = caption
			msg = v
		case domain.KindAudio:
			a := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
			a.Caption = caption
			msg = a
		case domain.KindImage:
			p := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
			p.Caption = caption
			msg = p
		default:
			d := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
			d.Caption = caption
			msg = d
		}
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("Failed to upload file", zap.String("path", path), zap.Error(err))
			delivered = false
		}
		os.Remove(path)
	}
	return delivered
}

// postStatus posts a progress message and returns its ID, or 0 when the
// post itself failed
func (b *Bot) postStatus(chatID int64, text string) int {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		b.logger.Debug("Failed to post status message", zap.Error(err))
		return 0
	}
	return sent.MessageID
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	if messageID == 0 {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Debug("Failed to edit status message", zap.Error(err))
	}
}

// deleteMessage removes a status message; errors are swallowed, cleanup
// never escalates
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug("Failed to delete status message", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}
