package config

import (
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/LilVoxy/harga_pangan/pipeline"
)

// AppConfig содержит конфигурацию сервиса
type AppConfig struct {
	// Подключение к хранилищу цен и инфляции
	Database DatabaseConfig `json:"database"`

	// HTTP-сервер
	Server ServerConfig `json:"server"`

	// Кэш выровненных кадров
	Cache CacheConfig `json:"cache"`

	// Модель прогноза и параметры конвейера
	Model ModelConfig `json:"model"`

	// Экспорт трассировки
	Tracing TracingConfig `json:"tracing"`

	// Фоновый прогрев кэша
	Scheduler SchedulerConfig `json:"scheduler"`

	// Логирование
	Log LogConfig `json:"log"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Driver       string        `json:"driver"`
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	User         string        `json:"user"`
	Password     string        `json:"password"`
	DBName       string        `json:"dbname"`
	QueryTimeout time.Duration `json:"query_timeout"`
	MaxOpenConns int           `json:"max_open_conns"`
	MaxIdleConns int           `json:"max_idle_conns"`
}

// ServerConfig настройки HTTP-сервера
type ServerConfig struct {
	Port         string        `json:"port"`
	RateLimit    int           `json:"rate_limit"` // запросов в секунду, 0 - без ограничения
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	AllowOrigin  string        `json:"allow_origin"`
}

// CacheConfig настройки кэша
type CacheConfig struct {
	Backend       string        `json:"backend"` // memory | redis | none
	TTL           time.Duration `json:"ttl"`
	Size          int           `json:"size"`
	RedisAddr     string        `json:"redis_addr"`
	RedisPassword string        `json:"redis_password"`
	RedisDB       int           `json:"redis_db"`
}

// ModelConfig настройки модели и конвейера
type ModelConfig struct {
	Path     string  `json:"path"`
	HPLambda float64 `json:"hp_lambda"`
}

// TracingConfig настройки OpenTelemetry
type TracingConfig struct {
	Endpoint     string  `json:"endpoint"` // пусто - трассировка выключена
	ServiceName  string  `json:"service_name"`
	SamplingRate float64 `json:"sampling_rate"`
}

// SchedulerConfig настройки прогрева кэша
type SchedulerConfig struct {
	WarmInterval time.Duration `json:"warm_interval"` // 0 - прогрев выключен
}

// LogConfig настройки логгера
type LogConfig struct {
	File    string `json:"file"`
	Verbose bool   `json:"verbose"`
}

// Значения конфигурации по умолчанию
var (
	DefaultDatabaseConfig = DatabaseConfig{
		Driver:       "mysql",
		Host:         "localhost",
		Port:         3306,
		User:         "root",
		DBName:       "harga_pangan",
		QueryTimeout: 5 * time.Second,
		MaxOpenConns: 25,
		MaxIdleConns: 10,
	}

	DefaultServerConfig = ServerConfig{
		Port:         "5000",
		RateLimit:    100,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		AllowOrigin:  "*",
	}

	DefaultCacheConfig = CacheConfig{
		Backend:   "memory",
		TTL:       5 * time.Minute,
		Size:      128,
		RedisAddr: "localhost:6379",
	}

	DefaultModelConfig = ModelConfig{
		Path:     "model/model_inflasi.json",
		HPLambda: pipeline.NormalPriceLambda,
	}

	DefaultTracingConfig = TracingConfig{
		ServiceName:  "harga-pangan",
		SamplingRate: 1.0,
	}

	DefaultSchedulerConfig = SchedulerConfig{
		WarmInterval: 30 * time.Minute,
	}

	DefaultAppConfig = AppConfig{
		Database:  DefaultDatabaseConfig,
		Server:    DefaultServerConfig,
		Cache:     DefaultCacheConfig,
		Model:     DefaultModelConfig,
		Tracing:   DefaultTracingConfig,
		Scheduler: DefaultSchedulerConfig,
	}
)

// LoadEnv подгружает переменные из .env файлов, если они есть.
// Уже заданные переменные окружения не перезаписываются.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("⚠️ Не удалось загрузить %s: %v", f, err)
		}
	}
}

// GetConfig возвращает конфигурацию по умолчанию с учетом переменных окружения
func GetConfig() AppConfig {
	config := DefaultAppConfig

	// База данных
	config.Database.Driver = getEnv("DB_DRIVER", config.Database.Driver)
	config.Database.Host = getEnv("DB_HOST", config.Database.Host)
	config.Database.Port = getEnvInt("DB_PORT", config.Database.Port)
	config.Database.User = getEnv("DB_USER", config.Database.User)
	config.Database.Password = getEnv("DB_PASSWORD", config.Database.Password)
	config.Database.DBName = getEnv("DB_NAME", config.Database.DBName)
	config.Database.QueryTimeout = getEnvDuration("DB_QUERY_TIMEOUT", config.Database.QueryTimeout)

	// Сервер
	config.Server.Port = getEnv("PORT", config.Server.Port)
	config.Server.RateLimit = getEnvInt("RATE_LIMIT", config.Server.RateLimit)
	config.Server.AllowOrigin = getEnv("CORS_ALLOW_ORIGIN", config.Server.AllowOrigin)

	// Кэш
	config.Cache.Backend = strings.ToLower(getEnv("CACHE_BACKEND", config.Cache.Backend))
	config.Cache.TTL = getEnvDuration("CACHE_TTL", config.Cache.TTL)
	config.Cache.Size = getEnvInt("CACHE_SIZE", config.Cache.Size)
	config.Cache.RedisAddr = getEnv("REDIS_ADDR", config.Cache.RedisAddr)
	config.Cache.RedisPassword = getEnv("REDIS_PASSWORD", config.Cache.RedisPassword)
	config.Cache.RedisDB = getEnvInt("REDIS_DB", config.Cache.RedisDB)

	// Модель
	config.Model.Path = getEnv("MODEL_PATH", config.Model.Path)
	config.Model.HPLambda = getEnvFloat("HP_LAMBDA", config.Model.HPLambda)
	if l := config.Model.HPLambda; l < 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		log.Printf("⚠️ Некорректное значение HP_LAMBDA=%v, используется %v", l, pipeline.NormalPriceLambda)
		config.Model.HPLambda = pipeline.NormalPriceLambda
	}

	// Трассировка
	config.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", config.Tracing.Endpoint)
	config.Tracing.ServiceName = getEnv("OTEL_SERVICE_NAME", config.Tracing.ServiceName)
	config.Tracing.SamplingRate = getEnvFloat("OTEL_SAMPLING_RATE", config.Tracing.SamplingRate)

	// Планировщик
	config.Scheduler.WarmInterval = getEnvDuration("WARM_INTERVAL", config.Scheduler.WarmInterval)

	// Логи
	config.Log.File = getEnv("LOG_FILE", config.Log.File)
	config.Log.Verbose = getEnvBool("LOG_VERBOSE", config.Log.Verbose)

	return config
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("⚠️ Некорректное значение %s=%q, используется %d", key, val, defaultVal)
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Printf("⚠️ Некорректное значение %s=%q, используется %v", key, val, defaultVal)
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Printf("⚠️ Некорректное значение %s=%q, используется %v", key, val, defaultVal)
		return defaultVal
	}
	return b
}

// getEnvDuration принимает как формат time.ParseDuration ("5m"), так и целое число секунд
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if sec, err := strconv.Atoi(val); err == nil {
		return time.Duration(sec) * time.Second
	}
	log.Printf("⚠️ Некорректное значение %s=%q, используется %v", key, val, defaultVal)
	return defaultVal
}
