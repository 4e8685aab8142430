package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"signal_bot/internal/modules/config"
	threecommas "signal_bot/internal/modules/threecommas/service"
	"signal_bot/pkg/logger"
)

// Universe — множество торгуемых пар аккаунта за вычетом denylist
// и удалённого чёрного списка. Между обновлениями только читается.
type Universe struct {
	api *threecommas.Client
	cfg *config.Config

	mu      sync.RWMutex
	pairs   map[string]struct{}
	account threecommas.Account
}

func NewUniverse(cfg *config.Config, api *threecommas.Client) *Universe {
	return &Universe{
		api:   api,
		cfg:   cfg,
		pairs: make(map[string]struct{}),
	}
}

// Init резолвит аккаунт и наполняет вселенную первый раз.
// Ошибка здесь фатальна для процесса: без аккаунта продолжать нечем.
func (u *Universe) Init(ctx context.Context) error {
	account, err := u.api.GetAccount(ctx, u.cfg.ThreeCommas.AccountName)
	if err != nil {
		return fmt.Errorf("resolve account %q: %w", u.cfg.ThreeCommas.AccountName, err)
	}

	u.mu.Lock()
	u.account = account
	u.mu.Unlock()

	return u.Refresh(ctx)
}

func (u *Universe) Account() threecommas.Account {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.account
}

// Refresh перечитывает пары. Вызывается из цикла обновления.
func (u *Universe) Refresh(ctx context.Context) error {
	account := u.Account()

	pairs, err := u.api.MarketPairs(ctx, account.ExchangeCode())
	if err != nil {
		return err
	}
	blacklist, err := u.api.BlacklistedPairs(ctx)
	if err != nil {
		return err
	}

	denied := make(map[string]struct{}, len(u.cfg.Filters.Denylist)+len(blacklist))
	for _, p := range u.cfg.Filters.Denylist {
		denied[p] = struct{}{}
	}
	for _, p := range blacklist {
		denied[p] = struct{}{}
	}

	prefix := u.cfg.Trading.Market + "_"
	next := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		if _, bad := denied[p]; bad {
			continue
		}
		next[p] = struct{}{}
	}

	u.mu.Lock()
	u.pairs = next
	u.mu.Unlock()

	logger.Info("%d tradeable non-blacklisted %s pairs for account %d on %s",
		len(next), u.cfg.Trading.Market, account.ID, account.ExchangeCode())
	return nil
}

func (u *Universe) Tradable(pair string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	_, ok := u.pairs[pair]
	return ok
}

func (u *Universe) Size() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.pairs)
}
