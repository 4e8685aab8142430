package runner

import (
	"context"

	"signal_bot/internal/models"
	threecommas "signal_bot/internal/modules/threecommas/service"
)

// TradingAPI — операции 3commas, нужные координатору.
// *threecommas.Client реализует интерфейс; тесты подставляют фейк.
type TradingAPI interface {
	ListBots(ctx context.Context, limit int) ([]threecommas.Bot, error)
	CreateBot(ctx context.Context, payload threecommas.BotPayload) (threecommas.Bot, error)
	UpdateBot(ctx context.Context, id int64, payload threecommas.BotPayload) (threecommas.Bot, error)
	EnableBot(ctx context.Context, id int64) (threecommas.Bot, error)
	DisableBot(ctx context.Context, id int64) (threecommas.Bot, error)
	DeleteBot(ctx context.Context, id int64) error
	StartNewDeal(ctx context.Context, id int64, pair string) error
	ListActiveDeals(ctx context.Context, botID int64) ([]threecommas.Deal, error)
}

// Coordinator держит конфигурацию удалённых ботов консистентной
// с историей сигналов. Две реализации: один multi-pair бот
// либо множество single-pair ботов; выбор один раз на старте.
type Coordinator interface {
	// Identify резолвит бота по id/имени. Ошибки конфигурации фатальны.
	Identify(ctx context.Context) error
	// Trigger обрабатывает START/STOP одного сигнала.
	Trigger(ctx context.Context, sig *models.Signal) error
	// ApplyRanked пересобирает список пар из ранкед-листа.
	ApplyRanked(ctx context.Context, ranked models.RankedPairList) error
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

// Notifier шлёт уведомления о важных переходах (telegram либо stdout).
type Notifier interface {
	Sendf(ctx context.Context, format string, args ...any)
}

// Journal пишет историю сигналов и переключений гейта.
// Ошибки записи журнал логирует сам, обработку сигналов они не рвут.
type Journal interface {
	RecordSignal(ctx context.Context, sig *models.Signal, accepted bool, reason string)
	RecordGate(ctx context.Context, allowed bool, profile models.DCAProfile)
}

// RankedRequester запрашивает свежий ранкед-лист у фида.
type RankedRequester interface {
	RequestRanked(ctx context.Context) error
}
