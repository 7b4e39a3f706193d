// cache.go — LRU-кэш записей каталога с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/dp-catalog/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dpc_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш записей каталога.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dpc_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша записей каталога.",
	})
)

// CacheService — LRU-кэш записей каталога с автоматическим TTL.
// Каждый экземпляр сервиса имеет собственный in-memory кэш
// (per-instance, stateless архитектура).
type CacheService struct {
	cache *expirable.LRU[string, *model.DataProduct]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество записей в кэше.
// ttl — время жизни записи после добавления.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *model.DataProduct](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает запись из кэша по id.
// Возвращает (запись, true) при hit или (nil, false) при miss.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(id string) (*model.DataProduct, bool) {
	val, ok := c.cache.Get(id)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CacheService) Set(id string, dp *model.DataProduct) {
	c.cache.Add(id, dp)
}

// Delete удаляет запись из кэша (инвалидация при удалении записи).
func (c *CacheService) Delete(id string) {
	c.cache.Remove(id)
}
