package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	PortfolioKeyPrefix = "portfolio:%d"
)

const (
	UserTTL      = 5 * time.Minute
	PortfolioTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PortfolioKey(portfolioID uint) string {
	return fmt.Sprintf(PortfolioKeyPrefix, portfolioID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePortfolio(ctx context.Context, portfolioID uint) {
	Invalidate(ctx, PortfolioKey(portfolioID))
}
