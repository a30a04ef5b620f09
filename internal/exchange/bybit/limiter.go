package bybit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// endpointLimiter는 엔드포인트마다 별도의 토큰 버킷을 둡니다.
// 바이비트 한도는 엔드포인트 단위로 적용되므로 주문 생성이 시세 조회를 막지 않습니다.
type endpointLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newEndpointLimiter(perSecond float64, burst int) *endpointLimiter {
	return &endpointLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait는 엔드포인트의 토큰을 얻을 때까지 대기합니다
func (l *endpointLimiter) Wait(ctx context.Context, endpoint string) error {
	return l.get(endpoint).Wait(ctx)
}

func (l *endpointLimiter) get(endpoint string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[endpoint]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[endpoint] = lim
	}
	return lim
}
