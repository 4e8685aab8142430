package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/models"
)

// Метки трекеров из фида -> внутренние короткие коды.
// Неизвестная метка проходит как есть (fail-open): редкие трекеры
// не должны молча отваливаться, их отсечёт фильтр по типу при желании.
var kindCodes = map[string]string{
	"SymRank Top 100 Triple Tracker":           "triple100",
	"SymRank Top 100 Quadruple Tracker (BETA)": "quadruple100",
	"SymRank Top 250 Quadruple Tracker (BETA)": "quadruple250",
	"SymRank Top 30":                           "top30",
	"Super Volatility":                         "svol",
	"Super Volatility Double Tracker":          "svoldouble",
	"Hyper Volatility":                         "hvol",
	"Hyper Volatility Double Tracker":          "hvoldouble",
	"Ultra Volatility":                         "uvol",
	"X-Treme Volatility":                       "xvol",
}

const (
	signalLines = 7
	rankedLines = 17

	actionPrefix      = "BOT_"
	volatilityPrefix  = "Volatility Score "
	priceActionPrefix = "Price Action Score "
	rankPrefix        = "SymRank #"

	// ответ "слишком много запросов" на команду ранкед-листа
	busyMarker = "Volatile"
)

var spaces = regexp.MustCompile(" +")

// Parser превращает сырой текст фида в события. Всё, что не 7 и не 17 строк,
// молча игнорируется: в чате хватает постороннего трафика.
type Parser struct {
	market string // котируемая валюта для префикса пары
	now    func() time.Time
}

func NewParser(market string) *Parser {
	return &Parser{market: market, now: time.Now}
}

func (p *Parser) Parse(raw string) models.Event {
	lines := strings.Split(raw, "\n")

	switch len(lines) {
	case signalLines:
		return p.parseSignal(lines)
	case rankedLines:
		return p.parseRanked(lines)
	default:
		return models.Event{}
	}
}

func (p *Parser) parseSignal(lines []string) models.Event {
	kind := lines[1]
	if code, ok := kindCodes[kind]; ok {
		kind = code
	}

	token := strings.ReplaceAll(lines[2], "#", "")

	volatility, ok := parseScore(strings.TrimPrefix(lines[4], volatilityPrefix))
	if !ok {
		return models.Event{}
	}
	priceAction, ok := parseScore(strings.TrimPrefix(lines[5], priceActionPrefix))
	if !ok {
		return models.Event{}
	}
	rank, ok := parseScore(strings.TrimPrefix(lines[6], rankPrefix))
	if !ok {
		return models.Event{}
	}

	return models.Event{Signal: &models.Signal{
		Kind:        kind,
		Pair:        p.market + "_" + token,
		Action:      models.Action(strings.TrimPrefix(lines[3], actionPrefix)),
		Volatility:  volatility,
		PriceAction: priceAction,
		Rank:        int(rank),
		ReceivedAt:  p.now(),
	}}
}

// parseRanked разбирает 17-строчный ранкед-лист: в каждой строке с ". "
// две пары (ранг, символ), на выходе символы по возрастанию ранга.
func (p *Parser) parseRanked(lines []string) models.Event {
	if strings.Contains(lines[0], busyMarker) {
		return models.Event{}
	}

	byRank := make(map[int]string)
	for _, row := range lines {
		if !strings.Contains(row, ". ") {
			continue
		}
		parts := spaces.Split(strings.TrimSpace(row), -1)
		for i := 0; i+1 < len(parts); i += 2 {
			rank, err := strconv.Atoi(strings.TrimSuffix(parts[i], "."))
			if err != nil {
				continue
			}
			byRank[rank] = parts[i+1]
		}
	}
	if len(byRank) == 0 {
		return models.Event{}
	}

	ranks := make([]int, 0, len(byRank))
	for r := range byRank {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	out := make(models.RankedPairList, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, byRank[r])
	}
	return models.Event{Ranked: out}
}

func parseScore(s string) (float64, bool) {
	if s == "N/A" {
		return models.ScoreNA, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
