package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/LilVoxy/harga_pangan/config"
	"github.com/LilVoxy/harga_pangan/pipeline"
	"github.com/LilVoxy/harga_pangan/processor"
)

// FrameCache кратковременный кэш выровненных кадров по региону.
// Ошибки бэкенда не поднимаются наверх: промах кэша означает чтение из базы.
type FrameCache interface {
	Get(ctx context.Context, regionID int) (*pipeline.AlignedFrame, bool)
	Set(ctx context.Context, regionID int, frame *pipeline.AlignedFrame)
	Invalidate(ctx context.Context, regionID int)
	Close() error
}

// New создает кэш по конфигурации: memory, redis или none
func New(c config.CacheConfig) (FrameCache, error) {
	switch c.Backend {
	case "", "memory":
		return NewLRUFrameCache(c.Size, c.TTL)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		return NewRedisFrameCache(client, c.TTL), nil
	case "none":
		return NopFrameCache{}, nil
	default:
		return nil, fmt.Errorf("неизвестный тип кэша: %q (ожидается memory, redis или none)", c.Backend)
	}
}

// LRUFrameCache кэш кадров в памяти процесса
type LRUFrameCache struct {
	lru *LRUWithTTL[int, *pipeline.AlignedFrame]
}

// NewLRUFrameCache создает кэш на size регионов с временем жизни ttl
func NewLRUFrameCache(size int, ttl time.Duration) (*LRUFrameCache, error) {
	l, err := NewLRUWithTTL[int, *pipeline.AlignedFrame](size, ttl)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания LRU-кэша: %w", err)
	}
	return &LRUFrameCache{lru: l}, nil
}

func (c *LRUFrameCache) Get(_ context.Context, regionID int) (*pipeline.AlignedFrame, bool) {
	return c.lru.Get(regionID)
}

func (c *LRUFrameCache) Set(_ context.Context, regionID int, frame *pipeline.AlignedFrame) {
	c.lru.Set(regionID, frame)
}

func (c *LRUFrameCache) Invalidate(_ context.Context, regionID int) {
	c.lru.Delete(regionID)
}

// Stats статистика обращений
func (c *LRUFrameCache) Stats() Stats {
	return c.lru.Stats()
}

func (c *LRUFrameCache) Close() error {
	c.lru.Clear()
	return nil
}

// RedisFrameCache общий кэш кадров для нескольких экземпляров сервиса.
// Кадр хранится как JSON, сжатый snappy.
type RedisFrameCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFrameCache создает кэш поверх клиента Redis
func NewRedisFrameCache(client *redis.Client, ttl time.Duration) *RedisFrameCache {
	return &RedisFrameCache{client: client, ttl: ttl}
}

func frameKey(regionID int) string {
	return "harga:frame:" + strconv.Itoa(regionID)
}

func (c *RedisFrameCache) Get(ctx context.Context, regionID int) (*pipeline.AlignedFrame, bool) {
	raw, err := c.client.Get(ctx, frameKey(regionID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("❌ Ошибка чтения кадра региона %d из Redis: %v", regionID, err)
		return nil, false
	}

	frame, err := DecodeFrame(raw)
	if err != nil {
		log.Printf("❌ Поврежденный кадр региона %d в Redis: %v", regionID, err)
		return nil, false
	}
	return frame, true
}

func (c *RedisFrameCache) Set(ctx context.Context, regionID int, frame *pipeline.AlignedFrame) {
	raw, err := EncodeFrame(frame)
	if err != nil {
		log.Printf("❌ Ошибка сериализации кадра региона %d: %v", regionID, err)
		return
	}
	if err := c.client.Set(ctx, frameKey(regionID), raw, c.ttl).Err(); err != nil {
		log.Printf("❌ Ошибка записи кадра региона %d в Redis: %v", regionID, err)
	}
}

func (c *RedisFrameCache) Invalidate(ctx context.Context, regionID int) {
	if err := c.client.Del(ctx, frameKey(regionID)).Err(); err != nil {
		log.Printf("❌ Ошибка удаления кадра региона %d из Redis: %v", regionID, err)
	}
}

func (c *RedisFrameCache) Close() error {
	return c.client.Close()
}

// EncodeFrame сериализует кадр в JSON и сжимает snappy
func EncodeFrame(frame *pipeline.AlignedFrame) ([]byte, error) {
	return processor.Encode(frame)
}

// DecodeFrame восстанавливает кадр, сохраненный EncodeFrame
func DecodeFrame(raw []byte) (*pipeline.AlignedFrame, error) {
	var frame pipeline.AlignedFrame
	if err := processor.Decode(raw, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

// NopFrameCache отключенный кэш
type NopFrameCache struct{}

func (NopFrameCache) Get(context.Context, int) (*pipeline.AlignedFrame, bool) { return nil, false }
func (NopFrameCache) Set(context.Context, int, *pipeline.AlignedFrame)        {}
func (NopFrameCache) Invalidate(context.Context, int)                         {}
func (NopFrameCache) Close() error                                            { return nil }
