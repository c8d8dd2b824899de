package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter - Token Bucket rate limiter для ограничения частоты
// внеплановых обращений к внешним сервисам (например, к JWKS endpoint)
//
// Алгоритм Token Bucket:
// - Ведро наполняется токенами с постоянной скоростью (rate токенов/сек)
// - Максимальная ёмкость ведра = burst
// - Каждое обращение потребляет 1 токен
// - Если токенов нет, обращение отклоняется
//
// Использование:
//
//	limiter := NewIntervalLimiter(30*time.Second, time.Now) // не чаще раза в 30 секунд
//	if limiter.Allow() { ... }
type RateLimiter struct {
	rate       float64   // токенов в секунду
	burst      float64   // максимальная ёмкость (burst capacity)
	tokens     float64   // текущее количество токенов
	lastRefill time.Time // время последнего пополнения
	now        func() time.Time
	mu         sync.Mutex
}

// NewIntervalLimiter создаёт limiter, пропускающий одно обращение за interval
//
// Нулевой или отрицательный interval означает отсутствие ограничения (nil).
// now - источник времени, nil означает time.Now.
func NewIntervalLimiter(interval time.Duration, now func() time.Time) *RateLimiter {
	if interval <= 0 {
		return nil
	}
	return newRateLimiter(float64(time.Second)/float64(interval), 1, now)
}

func newRateLimiter(rate, burst float64, now func() time.Time) *RateLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst < 1 {
		burst = 1
	}
	if now == nil {
		now = time.Now
	}

	return &RateLimiter{
		rate:       rate,
		burst:      burst,
		tokens:     burst, // начинаем с полным ведром
		lastRefill: now(),
		now:        now,
	}
}

// refill пополняет токены на основе прошедшего времени
// ВАЖНО: вызывается под lock'ом
func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}

	rl.lastRefill = now
}

// Allow проверяет доступность токена без блокировки
//
// nil-limiter всегда разрешает.
func (rl *RateLimiter) Allow() bool {
	if rl == nil {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}

	return false
}
