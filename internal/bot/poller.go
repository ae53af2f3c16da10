// Package bot implements the chat transport front end: a long-poll update
// loop, effect selection over inline keyboards, and delivery of rendered
// audio back to the requester.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"warble/internal/config"
	"warble/internal/effects"
	"warble/internal/intake"
	"warble/internal/jobs"
	"warble/internal/logging"
	"warble/internal/queue"
)

type pendingUpload struct {
	fileID     string
	fileName   string
	fileSize   int64
	receivedAt time.Time
}

// Poller drives the update loop for one bot account.
type Poller struct {
	client      *Client
	adapter     *intake.Adapter
	registry    *effects.Registry
	health      func(ctx context.Context) (queue.HealthSummary, error)
	logger      *slog.Logger
	pollTimeout int
	maxBytes    int64

	mu      sync.Mutex
	pending map[int64]pendingUpload
}

// NewPoller wires the transport front end together.
func NewPoller(client *Client, adapter *intake.Adapter, registry *effects.Registry, manager *jobs.Manager, cfg *config.Config, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Poller{
		client:      client,
		adapter:     adapter,
		registry:    registry,
		health:      manager.Health,
		logger:      logging.NewComponentLogger(logger, "bot"),
		pollTimeout: cfg.Bot.PollTimeout,
		maxBytes:    cfg.Jobs.MaxInputBytes,
		pending:     make(map[int64]pendingUpload),
	}
}

// Run long-polls for updates until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("update poll failed", logging.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.handleUpdate(ctx, update)
		}
	}
}

func (p *Poller) handleUpdate(ctx context.Context, update Update) {
	switch {
	case update.CallbackQuery != nil:
		p.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		p.handleMessage(ctx, update.Message)
	}
}

func (p *Poller) handleMessage(ctx context.Context, msg *Message) {
	if upload, ok := uploadFromMessage(msg); ok {
		p.handleUpload(ctx, msg.Chat.ID, upload)
		return
	}

	switch command(msg.Text) {
	case "/start":
		p.reply(ctx, msg.Chat.ID, startText)
	case "/help":
		p.reply(ctx, msg.Chat.ID, helpText)
	case "/queue":
		p.handleQueueCommand(ctx, msg.Chat.ID)
	default:
		if strings.TrimSpace(msg.Text) != "" {
			p.reply(ctx, msg.Chat.ID, "Send me an audio file and I'll show you the effect menu. Try /help.")
		}
	}
}

func uploadFromMessage(msg *Message) (pendingUpload, bool) {
	switch {
	case msg.Audio != nil:
		name := msg.Audio.FileName
		if name == "" {
			name = "audio.mp3"
		}
		return pendingUpload{fileID: msg.Audio.FileID, fileName: name, fileSize: msg.Audio.FileSize, receivedAt: time.Now()}, true
	case msg.Voice != nil:
		return pendingUpload{fileID: msg.Voice.FileID, fileName: "voice.ogg", fileSize: msg.Voice.FileSize, receivedAt: time.Now()}, true
	case msg.Document != nil:
		name := msg.Document.FileName
		if name == "" {
			name = "upload.bin"
		}
		return pendingUpload{fileID: msg.Document.FileID, fileName: name, fileSize: msg.Document.FileSize, receivedAt: time.Now()}, true
	default:
		return pendingUpload{}, false
	}
}

func (p *Poller) handleUpload(ctx context.Context, chatID int64, upload pendingUpload) {
	// Reject obviously oversized files before downloading anything. The
	// pipeline re-checks against the actual byte count.
	if p.maxBytes > 0 && upload.fileSize > p.maxBytes {
		p.reply(ctx, chatID, fmt.Sprintf("❌ File too large! Maximum size is %dMB.", p.maxBytes/(1024*1024)))
		return
	}

	p.mu.Lock()
	p.pending[chatID] = upload
	p.mu.Unlock()

	if _, err := p.client.SendMessage(ctx, chatID, "✅ Got it!\n\n🎨 Choose an effect:", effectsKeyboard(p.registry)); err != nil {
		p.logger.Warn("failed to send effect menu", logging.Error(err))
	}
}

func (p *Poller) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if err := p.client.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		p.logger.Debug("failed to answer callback", logging.Error(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	effectID := strings.TrimPrefix(cb.Data, callbackPrefix)
	effect, ok := p.registry.Lookup(effectID)
	if !ok {
		p.editOrReply(ctx, chatID, cb.Message.MessageID, "❌ Invalid effect!")
		return
	}

	p.mu.Lock()
	upload, hasUpload := p.pending[chatID]
	delete(p.pending, chatID)
	p.mu.Unlock()
	if !hasUpload {
		p.editOrReply(ctx, chatID, cb.Message.MessageID, "❌ No files waiting! Send an audio file first.")
		return
	}

	p.editOrReply(ctx, chatID, cb.Message.MessageID,
		fmt.Sprintf("🎨 Effect selected: %s\n⏳ Starting processing...", effect.DisplayName))

	job, cold, err := p.submitUpload(ctx, chatID, effectID, upload)
	if err != nil {
		p.logger.Warn("failed to submit upload", logging.Error(err))
		p.reply(ctx, chatID, "❌ Error receiving file. Please try again!")
		return
	}
	if cold {
		p.reply(ctx, chatID, "💤 I've been idle for a while, so this first one may take a little longer to start.")
	}
	if !job.IsTerminal() {
		p.reply(ctx, chatID, fmt.Sprintf("📥 Queued as job %d. I'll send the result here.", job.ID))
	}
}

// submitUpload downloads the upload into a scratch directory and hands it to
// the pipeline. The scratch copy is removed either way; the pipeline stages
// its own copy.
func (p *Poller) submitUpload(ctx context.Context, chatID int64, effectID string, upload pendingUpload) (queue.Job, bool, error) {
	file, err := p.client.GetFile(ctx, upload.fileID)
	if err != nil {
		return queue.Job{}, false, err
	}

	scratch, err := os.MkdirTemp("", "warble-upload-")
	if err != nil {
		return queue.Job{}, false, err
	}
	defer os.RemoveAll(scratch)

	localPath := filepath.Join(scratch, filepath.Base(upload.fileName))
	if err := p.client.DownloadFile(ctx, file.FilePath, localPath); err != nil {
		return queue.Job{}, false, err
	}

	return p.adapter.Accept(ctx, jobs.SubmitRequest{
		EffectID:     effectID,
		SourcePath:   localPath,
		OriginalName: upload.fileName,
		RequesterRef: strconv.FormatInt(chatID, 10),
	})
}

func (p *Poller) handleQueueCommand(ctx context.Context, chatID int64) {
	summary, err := p.health(ctx)
	if err != nil {
		p.logger.Warn("failed to read queue health", logging.Error(err))
		p.reply(ctx, chatID, "❌ Couldn't read the queue right now.")
		return
	}
	if summary.Waiting == 0 && summary.Processing == 0 {
		p.reply(ctx, chatID, "📭 The queue is empty!")
		return
	}
	p.reply(ctx, chatID, fmt.Sprintf(
		"📊 Queue Status:\nWaiting: %d\nProcessing: %d\nCompleted: %d\nFailed: %d",
		summary.Waiting, summary.Processing, summary.Completed, summary.Failed))
}

func (p *Poller) reply(ctx context.Context, chatID int64, text string) {
	if _, err := p.client.SendMessage(ctx, chatID, text, nil); err != nil {
		p.logger.Warn("failed to send message", logging.Error(err))
	}
}

func (p *Poller) editOrReply(ctx context.Context, chatID, messageID int64, text string) {
	if err := p.client.EditMessageText(ctx, chatID, messageID, text); err != nil {
		p.reply(ctx, chatID, text)
	}
}

func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	if idx := strings.IndexAny(text, " @"); idx > 0 {
		text = text[:idx]
	}
	return strings.ToLower(text)
}

const startText = `🎵 Welcome to the Audio Effects Bot! 🎵

I can apply effects to your audio files:

🔇 Muffled (Light/Medium/Heavy)
🌊 Underwater
📞 Phone/Radio
🔊 Echo
🎭 Reverb
⚡ Speed Up/Down
⬆️⬇️ Pitch Shift
👻 Nightmare Mode

📤 How to use:
1. Send me an audio file
2. Choose an effect from the menu
3. Wait for processing
4. Get your processed audio!`

const helpText = `🎵 Audio Effects Bot - Help 🎵

Available Effects:

🔇 Muffled - Sound through a wall (3 intensity levels)
🌊 Underwater - Deep underwater effect
📞 Phone/Radio - Old telephone or radio sound
🔊 Echo - Classic echo effect
🎭 Reverb - Concert hall reverb
⚡ Speed - Speed up or slow down
🎶 Pitch - Change pitch higher or lower
👻 Nightmare - Creepy horror effect

Commands:
/start - Start the bot
/help - Show this help
/queue - Check queue status

Supports: MP3, WAV, OGG, M4A, FLAC
Max file size: 20MB`
