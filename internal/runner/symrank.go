package runner

import (
	"context"
	"time"

	"signal_bot/pkg/logger"
)

const rankedRetryInterval = 5 * time.Minute

// requestRankedLoop просит у фида ранкед-лист, пока первый не применится.
// Нужен только multi-pair боту с авто-режимом сделок: его список пар
// собирается из ранкед-листа, а фид публикует список лишь по запросу.
func requestRankedLoop(ctx context.Context, runner *Runner, requester RankedRequester) {
	if err := requester.RequestRanked(ctx); err != nil {
		logger.Error("requesting ranked list: %s", err)
	}

	ticker := time.NewTicker(rankedRetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if runner.RankedSeen() {
				logger.Debug("ranked list received, request loop done")
				return
			}
			if err := requester.RequestRanked(ctx); err != nil {
				logger.Error("requesting ranked list: %s", err)
			}
		}
	}
}
