package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CachedCapability запоминает результат проверки доступности на ttl,
// чтобы недоступный узел не опрашивался на каждом запросе.
type CachedCapability struct {
	provider CapabilityProvider
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	value   bool
	expires time.Time
}

// NewCachedCapability создаёт кэширующую обёртку над provider.
func NewCachedCapability(provider CapabilityProvider, ttl time.Duration) *CachedCapability {
	return &CachedCapability{
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
	}
}

// IsAvailable возвращает закэшированный результат или опрашивает provider.
// Одновременные запросы ждут одного опроса.
func (c *CachedCapability) IsAvailable(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Before(c.expires) {
		return c.value
	}

	c.value = c.provider.IsAvailable(ctx)
	c.expires = now.Add(c.ttl)
	return c.value
}

// ReadinessChecker — проверка доступности реестра для health endpoint.
// Недоступный реестр не делает сервис неготовым: проверки уходят в каталог,
// поэтому статус "degraded", а не "fail".
type ReadinessChecker struct {
	backend    string
	capability CapabilityProvider
}

// NewReadinessChecker создаёт проверку для бэкенда backend.
// capability == nil означает, что реестр отключён конфигурацией.
func NewReadinessChecker(backend string, capability CapabilityProvider) *ReadinessChecker {
	return &ReadinessChecker{backend: backend, capability: capability}
}

// CheckReady возвращает статус ("ok", "degraded") и сообщение.
func (c *ReadinessChecker) CheckReady() (status, message string) {
	if c.capability == nil {
		return "ok", "реестр отключён"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if !c.capability.IsAvailable(ctx) {
		return "degraded", fmt.Sprintf("реестр %s недоступен, проверки идут по каталогу", c.backend)
	}
	return "ok", fmt.Sprintf("реестр %s доступен", c.backend)
}
