package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	apiKeyENV         = "THREECOMMAS_KEY"
	apiSecretENV      = "THREECOMMAS_SECRET"
	journalDSNENV     = "JOURNAL_DSN"
)

// ProfileRange — диапазон индекса настроения, при котором активен профиль.
// Min == Max == 0 означает "не настроен".
type ProfileRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (r ProfileRange) Configured() bool { return !(r.Min == 0 && r.Max == 0) }

func (r ProfileRange) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// Config ...
type Config struct {
	Debug bool `yaml:"debug"`

	// источник сигналов: telegram | websocket
	SignalSource string `yaml:"signal_source"`

	Telegram struct {
		Token      string `yaml:"token"`
		SignalChat int64  `yaml:"signal_chat"` // чат, из которого читаем сигналы
		NotifyChat int64  `yaml:"notify_chat"` // куда слать уведомления, 0 = не слать
		RankedCmd  string `yaml:"ranked_cmd"`  // команда запроса ранкед-листа
	} `yaml:"telegram"`

	SignalWS struct {
		URL string `yaml:"url"`
	} `yaml:"signal_ws"`

	ThreeCommas struct {
		Key         string  `yaml:"key"`
		Secret      string  `yaml:"secret"`
		TradeMode   string  `yaml:"trade_mode"` // real | paper
		AccountName string  `yaml:"account_name"`
		Timeout     float64 `yaml:"timeout"`
		Retries     int     `yaml:"retries"`
		RetryDelay  float64 `yaml:"retry_delay"`
		BotLimit    int     `yaml:"bot_limit"` // сколько ботов листать максимум
	} `yaml:"threecommas"`

	Trading struct {
		Market     string `yaml:"market"`      // котируемая валюта: USDT, BTC, ...
		SingleMode bool   `yaml:"single"`      // single-pair боты вместо одного multi-pair
		BotID      int64  `yaml:"botid"`       // id multi-pair бота, 0 = искать по имени
		Prefix     string `yaml:"prefix"`      // части вычисляемого имени бота
		Subprefix  string `yaml:"subprefix"`
		Suffix     string `yaml:"suffix"`
		// внешнее переключение: включением бота управляет сторонний сигнал
		ExtBotSwitch     bool `yaml:"ext_botswitch"`
		ContinuousUpdate bool `yaml:"continuous_update"`
		RandomPair       bool `yaml:"random_pair"`
		// single-mode потолки
		SingleBotLimit int  `yaml:"single_bot_limit"` // максимум включённых single-ботов
		DeleteSingle   bool `yaml:"delete_single"`    // удалять бота по STOP без сделок
		// обрезать ранкед-лист до mad
		LimitPairsToMad bool `yaml:"limit_pairs_to_mad"`
	} `yaml:"trading"`

	Filters struct {
		SignalKinds     string   `yaml:"signal_kinds"` // через запятую, либо "all"
		Whitelist       []string `yaml:"whitelist"`
		Denylist        []string `yaml:"denylist"`
		VolatilityMin   float64  `yaml:"volatility_min"`
		VolatilityMax   float64  `yaml:"volatility_max"`
		PriceActionMin  float64  `yaml:"price_action_min"`
		PriceActionMax  float64  `yaml:"price_action_max"`
		RankMin         int      `yaml:"rank_min"`
		RankMax         int      `yaml:"rank_max"`
		TopcoinEnabled  bool     `yaml:"topcoin"`
		TopcoinLimit    int      `yaml:"topcoin_limit"`
		TopcoinVolume   string   `yaml:"topcoin_volume"` // минимальный суточный объём в BTC, суффиксы k/M
		TopcoinExchange string   `yaml:"topcoin_exchange"`
	} `yaml:"filters"`

	Gate struct {
		BTCPulse      bool `yaml:"btc_pulse"`
		Sentiment     bool `yaml:"sentiment"`
		TradeRangeMin int  `yaml:"trade_range_min"`
		TradeRangeMax int  `yaml:"trade_range_max"`
		EMAFast       int  `yaml:"ema_fast"`
		EMASlow       int  `yaml:"ema_slow"`

		BenchmarkSymbol string        `yaml:"benchmark_symbol"`
		PollInterval    time.Duration `yaml:"poll_interval"`    // btc-pulse
		SwitchInterval  time.Duration `yaml:"switch_interval"`  // реконсиляция гейта
		ProfileInterval time.Duration `yaml:"profile_interval"` // пересмотр DCA-профиля
	} `yaml:"gate"`

	// DCA-параметры: default обязателен, три профильных — опциональны.
	DCA struct {
		Default    models.DCAParams `yaml:"default"`
		Defensive  models.DCAParams `yaml:"defensive"`
		Moderate   models.DCAParams `yaml:"moderate"`
		Aggressive models.DCAParams `yaml:"aggressive"`

		DefensiveRange  ProfileRange `yaml:"defensive_range"`
		ModerateRange   ProfileRange `yaml:"moderate_range"`
		AggressiveRange ProfileRange `yaml:"aggressive_range"`
	} `yaml:"dca"`

	Pairs struct {
		RefreshInterval time.Duration `yaml:"refresh_interval"`
	} `yaml:"pairs"`

	Journal struct {
		DSN string `yaml:"dsn"` // пусто = журнал в памяти
	} `yaml:"journal"`

	Health struct {
		Addr string `yaml:"addr"`
	} `yaml:"health"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, errors.Wrap(err, "open config file")
	}

	defer func() {
		_ = file.Close()
	}()

	config := Config{
		SignalSource: getenvDefault("SIGNAL_SOURCE", "telegram"),
	}
	config.Telegram.RankedCmd = "/symrank"
	config.ThreeCommas.TradeMode = "paper"
	config.ThreeCommas.Timeout = 3
	config.ThreeCommas.Retries = 5
	config.ThreeCommas.RetryDelay = 2.0
	config.ThreeCommas.BotLimit = 300
	config.Trading.Market = "USDT"
	config.Trading.Prefix = "3CQSBOT"
	config.Trading.Subprefix = "MULTI"
	config.Trading.Suffix = "dcabot"
	config.Trading.SingleBotLimit = intFromEnv("SINGLE_BOT_LIMIT", 10)
	config.Filters.SignalKinds = "all"
	config.Filters.VolatilityMin = 0.1
	config.Filters.VolatilityMax = 100
	config.Filters.PriceActionMin = 0.1
	config.Filters.PriceActionMax = 100
	config.Filters.RankMin = 1
	config.Filters.RankMax = 100
	config.Filters.TopcoinLimit = 3500
	config.Filters.TopcoinExchange = "binance"
	config.Gate.TradeRangeMin = 0
	config.Gate.TradeRangeMax = 100
	config.Gate.EMAFast = 9
	config.Gate.EMASlow = 50
	config.Gate.BenchmarkSymbol = "BTCUSDT"
	config.Gate.PollInterval = durationFromEnv("BTC_PULSE_INTERVAL", "5m")
	config.Gate.SwitchInterval = durationFromEnv("SWITCH_INTERVAL", "60s")
	config.Gate.ProfileInterval = durationFromEnv("PROFILE_INTERVAL", "1h")
	config.Pairs.RefreshInterval = durationFromEnv("PAIRS_REFRESH_INTERVAL", "6h")
	config.Health.Addr = getenvDefault("HEALTH_ADDR", ":8080")

	if err = yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "decode config file")
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if key := os.Getenv(apiKeyENV); key != "" {
		config.ThreeCommas.Key = key
	}
	if secret := os.Getenv(apiSecretENV); secret != "" {
		config.ThreeCommas.Secret = secret
	}
	if dsn := os.Getenv(journalDSNENV); dsn != "" {
		config.Journal.DSN = dsn
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate ловит несовместимые комбинации до старта циклов.
// Продолжать с ними нельзя: это путь к дублям ботов и расползанию капитала.
func (c *Config) validate() error {
	if c.ThreeCommas.AccountName == "" {
		return errors.New("threecommas.account_name is mandatory")
	}
	if c.Trading.Market == "" {
		return errors.New("trading.market is mandatory")
	}
	if c.Gate.BTCPulse && c.Trading.ExtBotSwitch {
		return errors.New("btc_pulse and ext_botswitch both enabled - not allowed")
	}
	if c.Gate.Sentiment && !c.Trading.SingleMode && c.Trading.BotID == 0 {
		// профильные настройки применяются только к существующему боту,
		// иначе на каждый профиль создался бы бот с другим именем
		return errors.New("sentiment gating requires trading.botid to be set")
	}
	if c.SignalSource == "websocket" && c.SignalWS.URL == "" {
		return errors.New("signal_ws.url is mandatory for websocket source")
	}
	return nil
}

// ProfilesConfigured — все три диапазона заданы, профили активны.
func (c *Config) ProfilesConfigured() bool {
	return c.DCA.DefensiveRange.Configured() &&
		c.DCA.ModerateRange.Configured() &&
		c.DCA.AggressiveRange.Configured()
}

// Params возвращает DCA-параметры активного профиля.
func (c *Config) Params(profile models.DCAProfile) models.DCAParams {
	switch profile {
	case models.ProfileDefensive:
		return c.DCA.Defensive
	case models.ProfileModerate:
		return c.DCA.Moderate
	case models.ProfileAggressive:
		return c.DCA.Aggressive
	default:
		return c.DCA.Default
	}
}

// AllowedKinds — разобранный список signal_kinds, nil при "all".
func (c *Config) AllowedKinds() []string {
	raw := strings.TrimSpace(c.Filters.SignalKinds)
	if raw == "" || raw == "all" {
		return nil
	}
	parts := strings.Split(raw, ",")
	kinds := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kinds = append(kinds, p)
		}
	}
	return kinds
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
