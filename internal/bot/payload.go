package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
)

// Callback payload prefixes. Payloads carry a registry token instead of
// the URL itself because Telegram caps callback data at 64 bytes.
const (
	payloadAlbum  = "a"
	payloadTrack  = "t"
	payloadTiered = "yt"
)

// CallbackAction is a parsed callback payload
type CallbackAction struct {
	Kind  string // payloadAlbum, payloadTrack or payloadTiered
	Token string
	Tier  domain.Tier // set for payloadTiered only
}

// encodeAlbumPayload builds the "whole album" callback payload
func encodeAlbumPayload(token string) string {
	return payloadAlbum + ":" + token
}

// encodeTrackPayload builds the "first track only" callback payload
func encodeTrackPayload(token string) string {
	return payloadTrack + ":" + token
}

// encodeTierPayload builds a quality-choice callback payload
func encodeTierPayload(token string, tier domain.Tier) string {
	return fmt.Sprintf("%s:%s:%s", payloadTiered, token, tier)
}

// parseCallbackPayload decodes a callback payload back into an action
func parseCallbackPayload(data string) (CallbackAction, error) {
	parts := strings.Split(data, ":")
	switch {
	case len(parts) == 2 && (parts[0] == payloadAlbum || parts[0] == payloadTrack):
		return CallbackAction{Kind: parts[0], Token: parts[1]}, nil
	case len(parts) == 3 && parts[0] == payloadTiered:
		return CallbackAction{Kind: payloadTiered, Token: parts[1], Tier: domain.Tier(parts[2])}, nil
	}
	return CallbackAction{}, fmt.Errorf("unrecognized callback payload %q", data)
}

// collectionKeyboard is the whole-album vs first-track choice shown for
// collection-shaped audio URLs
func collectionKeyboard(token string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Whole album", encodeAlbumPayload(token)),
			tgbotapi.NewInlineKeyboardButtonData("🎵 First track", encodeTrackPayload(token)),
		),
	)
}

// tierKeyboard is the quality choice shown for video-platform URLs
func tierKeyboard(token string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("360p", encodeTierPayload(token, domain.Tier360)),
			tgbotapi.NewInlineKeyboardButtonData("720p", encodeTierPayload(token, domain.Tier720)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("MP3", encodeTierPayload(token, domain.TierMP3)),
		),
	)
}

// failureText maps a job failure to the user-facing reply. Failures are
// always converted to text here; nothing propagates out of the dispatch
// layer.
func failureText(err error) string {
	switch domain.KindOf(err) {
	case domain.FailureTimeout:
		return "⏱ Download timed out. Try again later."
	case domain.FailureEmptyCollection:
		return "Could not download any items from that collection."
	case domain.FailureMissingOutput:
		return "The download finished but produced no usable file."
	case domain.FailureStaleReference:
		return "This link has expired. Send the URL again."
	default:
		return fmt.Sprintf("Download failed: %v", err)
	}
}
