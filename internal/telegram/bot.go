package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"family-meal-planner/internal/config"
	"family-meal-planner/internal/importer"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/settings"
	"family-meal-planner/internal/shopping"
	"family-meal-planner/internal/weekly"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🍽 Family meal planner

plan — generate this week's plan
swap 2 5 7 — preview new suggestions for those days (also: swap tue fri sun)
confirm — save the previewed plan
cancel — discard the preview
current — show this week's plan and preview
shop — shopping list (shop recipes for a per-recipe list)
list [query] — browse recipes
add Title | ingredients | tags — add a recipe
Send a recipe URL to import it.`

// Bot wraps the Telegram API around the weekly plan engine.
type Bot struct {
	api          *tgbotapi.BotAPI
	engine       *weekly.Engine
	recipeRepo   *recipe.Repository
	settingsRepo *settings.Repository
	shop         *shopping.Service
	importer     *importer.Service
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	engine *weekly.Engine,
	recipeRepo *recipe.Repository,
	settingsRepo *settings.Repository,
	shop *shopping.Service,
	imp *importer.Service,
	metricsStore *metrics.Store,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		engine:       engine,
		recipeRepo:   recipeRepo,
		settingsRepo: settingsRepo,
		shop:         shop,
		importer:     imp,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}
	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	if err := b.settingsRepo.SetLastChatID(ctx, msg.Chat.ID); err != nil {
		log.Printf("failed to record chat id: %v", err)
	}

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleImport(ctx, msg.Chat.ID, text, msg.From.ID)
		return
	}

	cmd, args := splitCommand(text)
	switch cmd {
	case "plan":
		b.handlePlan(ctx, msg.Chat.ID)
	case "swap":
		b.handleSwap(ctx, msg.Chat.ID, args)
	case "confirm":
		b.handleConfirm(ctx, msg.Chat.ID)
	case "cancel":
		b.handleCancel(ctx, msg.Chat.ID)
	case "current", "week":
		b.handleCurrent(ctx, msg.Chat.ID)
	case "shop":
		b.handleShop(ctx, msg.Chat.ID, args)
	case "list":
		b.handleList(ctx, msg.Chat.ID, strings.Join(args, " "))
	case "add":
		b.handleAdd(ctx, msg.Chat.ID, strings.Join(args, " "), msg.From.ID)
	case "metrics":
		b.handleMetrics(ctx, msg.Chat.ID, msg.From.ID)
	case "help", "start":
		b.send(msg.Chat.ID, helpText)
	default:
		b.send(msg.Chat.ID, "Unknown command. Send `help` for the command list.")
	}
}

// splitCommand normalizes "/swap@BotName 2 5" and "swap 2 5" to the
// same form.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	cmd := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd, fields[1:]
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64) {
	plan, err := b.engine.GeneratePlan(ctx)
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	payload, err := weekly.BuildPlanPayload(ctx, b.recipeRepo, plan.Days)
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	b.send(chatID, payload.Message)
	b.maybeAutoSendShop(ctx, chatID)
}

func (b *Bot) handleSwap(ctx context.Context, chatID int64, args []string) {
	days, err := ParseSwapDays(args)
	if err != nil {
		b.send(chatID, "❌ "+err.Error())
		return
	}

	draft, warnings, err := b.engine.PreviewSwap(ctx, days)
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	payload, err := weekly.BuildDraftPayload(ctx, b.recipeRepo, draft, warnings)
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	b.send(chatID, payload.Message)
}

func (b *Bot) handleConfirm(ctx context.Context, chatID int64) {
	plan, err := b.engine.Confirm(ctx)
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	payload, err := weekly.BuildPlanPayload(ctx, b.recipeRepo, plan.Days)
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	b.send(chatID, "✅ Plan confirmed.\n\n"+payload.Message)
	b.maybeAutoSendShop(ctx, chatID)
}

// handleCancel is idempotent so a double-tap never produces an error.
func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	err := b.engine.Cancel(ctx)
	if errors.Is(err, weekly.ErrNoDraftToCancel) {
		b.send(chatID, "Nothing to cancel.")
		return
	}
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	b.send(chatID, "🗑 Preview cancelled. The saved plan is unchanged.")
}

func (b *Bot) handleCurrent(ctx context.Context, chatID int64) {
	plan, draft, err := b.engine.GetCurrent(ctx)
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	if plan == nil && draft == nil {
		b.send(chatID, "No plan for this week yet. Send `plan` to generate one.")
		return
	}

	if plan != nil {
		payload, err := weekly.BuildPlanPayload(ctx, b.recipeRepo, plan.Days)
		if err != nil {
			b.sendEngineError(chatID, err)
			return
		}
		b.send(chatID, payload.Message)
	}
	if draft != nil {
		payload, err := weekly.BuildDraftPayload(ctx, b.recipeRepo, draft, nil)
		if err != nil {
			b.sendEngineError(chatID, err)
			return
		}
		b.send(chatID, payload.Message)
	}
}

func (b *Bot) handleShop(ctx context.Context, chatID int64, args []string) {
	mode := shopping.ModeConsolidated
	if len(args) > 0 && strings.EqualFold(args[0], "recipes") {
		mode = shopping.ModePerRecipe
	}

	payload, err := b.shop.Build(ctx, mode)
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	b.send(chatID, payload.Message)
}

func (b *Bot) handleList(ctx context.Context, chatID int64, query string) {
	recipes, err := b.recipeRepo.List(ctx, 30, strings.TrimSpace(query))
	if err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	if len(recipes) == 0 {
		b.send(chatID, "No recipes found. Add one with `add Title | ingredients | tags`.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📖 Recipes (%d):\n", len(recipes)))
	for _, rec := range recipes {
		sb.WriteString("• " + rec.Title)
		if len(rec.Tags) > 0 {
			sb.WriteString(" [" + strings.Join(rec.Tags, ", ") + "]")
		}
		sb.WriteString("\n")
	}
	b.send(chatID, strings.TrimRight(sb.String(), "\n"))
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string, userID int64) {
	rec, err := ParseAddCommand(args)
	if err != nil {
		b.send(chatID, "❌ "+err.Error())
		return
	}
	rec.CreatedBy = fmt.Sprintf("telegram:%d", userID)

	if err := b.recipeRepo.Create(ctx, rec); err != nil {
		b.sendEngineError(chatID, err)
		return
	}
	b.send(chatID, fmt.Sprintf("✅ Added %q (%d ingredients).", rec.Title, len(rec.Ingredients)))
}

func (b *Bot) handleImport(ctx context.Context, chatID int64, url string, userID int64) {
	status := b.sendReturning(chatID, "✂️ Importing recipe...")

	rec, err := b.importer.Confirm(ctx, url, recipe.Update{}, fmt.Sprintf("telegram:%d", userID))
	var finalText string
	if err != nil {
		log.Printf("Error importing recipe: %v", err)
		finalText = "❌ Import failed: " + err.Error()
	} else {
		finalText = fmt.Sprintf("✅ Imported %q (%d ingredients).", rec.Title, len(rec.Ingredients))
	}

	if status != nil {
		edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, finalText)
		b.api.Send(edit)
		return
	}
	b.send(chatID, finalText)
}

func (b *Bot) handleMetrics(ctx context.Context, chatID int64, userID int64) {
	if userID != b.cfg.AdminTelegramID {
		b.send(chatID, "⛔ Access denied: admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		b.send(chatID, "❌ Error fetching metrics.")
		return
	}
	health := metrics.GetSysHealth(b.cfg.DatabasePath)

	var sb strings.Builder
	sb.WriteString("📊 Usage & Health Report\n\n")
	sb.WriteString("🗓 Recent AI activity\n")
	if len(usage) == 0 {
		sb.WriteString("No data yet\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• %s: %d tokens (%d calls)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}
	sb.WriteString("\n🧠 System health\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk data: %s\n", health.DataDiskSize))

	b.send(chatID, sb.String())
}

// maybeAutoSendShop pushes the shopping list after a plan change when
// the auto-send setting is on.
func (b *Bot) maybeAutoSendShop(ctx context.Context, chatID int64) {
	tg, err := b.settingsRepo.GetTelegram(ctx)
	if err != nil || !tg.AutoSendShop {
		return
	}
	payload, err := b.shop.Build(ctx, shopping.ModeConsolidated)
	if err != nil {
		log.Printf("auto-send shop failed: %v", err)
		return
	}
	b.send(chatID, payload.Message)
}

func (b *Bot) sendEngineError(chatID int64, err error) {
	switch {
	case errors.Is(err, weekly.ErrNoRecipesAvailable):
		b.send(chatID, "❌ No recipes yet. Add some with `add` or send a recipe URL first.")
	case errors.Is(err, weekly.ErrNoPlanToSwap):
		b.send(chatID, "❌ No plan for this week. Send `plan` first.")
	case errors.Is(err, weekly.ErrNoDraftToConfirm):
		b.send(chatID, "❌ Nothing to confirm. Use `swap` to preview changes first.")
	case errors.Is(err, weekly.ErrNoPlanForShop):
		b.send(chatID, "❌ No plan for this week. Send `plan` first.")
	case errors.Is(err, weekly.ErrInvalidDaySelection):
		b.send(chatID, "❌ "+err.Error())
	case errors.Is(err, weekly.ErrConcurrentModification):
		b.send(chatID, "❌ The plan changed while I was working. Try again.")
	default:
		log.Printf("bot error: %v", err)
		b.send(chatID, "❌ Something went wrong. Try again.")
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) sendReturning(chatID int64, text string) *tgbotapi.Message {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		log.Printf("failed to send message: %v", err)
		return nil
	}
	return &sent
}
