package config

import (
	"flag"
	"time"

	"shopcore/pkg/service"
)

type Config struct {
	LogLevel   string
	ListenAddr string

	PostgresAddr     string // Postgres address in host[:port] format
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	RedisAddr     string // Redis address in host[:port] format
	RedisUser     string // Redis user
	RedisPassword string // Redis password

	LimiterFailOpen bool
	CacheItems      bool // whether to serve single-item reads through redis
	OrdersLimit     int
	ReserveTimeout  time.Duration
	ItemCacheTTL    time.Duration

	// Catalog generator params
	ItemsCount      int
	MaxInitialStock int
}

func New() *Config {
	c := &Config{}

	flag.StringVar(&c.LogLevel, "logLevel", LookupEnvString("LOG_LEVEL", "DEBUG"), "Set log level: DEBUG, INFO, WARNING, ERROR.")
	flag.StringVar(&c.ListenAddr, "listenAddr", LookupEnvString("LISTEN_ADDR", ":8000"), `Address in form of "[host]:port" that HTTP server should be listening on.`)

	flag.StringVar(&c.PostgresAddr, "postgresAddr", LookupEnvString("POSTGRES_ADDR", "127.0.0.1:5432"), "Set PostgreSQL address as host:port, where port is optional (without TLS).")
	flag.StringVar(&c.PostgresDB, "postgresDB", LookupEnvString("POSTGRES_DB", "shopcore"), "Set PostgreSQL DB.")
	flag.StringVar(&c.PostgresUser, "postgresUser", LookupEnvString("POSTGRES_USER", "develop"), "Set PostgreSQL user.")
	flag.StringVar(&c.PostgresPassword, "postgresPassword", LookupEnvString("POSTGRES_PASSWORD", "develop"), "Set PostgreSQL password.")

	flag.StringVar(&c.RedisAddr, "redisAddr", LookupEnvString("REDIS_ADDR", "127.0.0.1:6379"), "Redis address in host[:port] format.")
	flag.StringVar(&c.RedisUser, "redisUser", LookupEnvString("REDIS_USER", ""), "Redis user.")
	flag.StringVar(&c.RedisPassword, "redisPassword", LookupEnvString("REDIS_PASSWORD", ""), "Redis password.")

	flag.BoolVar(&c.LimiterFailOpen, "limiterFailOpen", LookupEnvBool("LIMITER_FAIL_OPEN", false), "Set to make limiter allow request if failed to check limits.")
	flag.BoolVar(&c.CacheItems, "cacheItems", LookupEnvBool("CACHE_ITEMS", false), "Set to cache single-item reads. May be useful when single item is requested many times.")
	flag.IntVar(&c.OrdersLimit, "ordersLimit", LookupEnvInt("ORDERS_LIMIT", 100), "Number of orders that single user can place within one hour.")
	flag.DurationVar(&c.ReserveTimeout, "reserveTimeout", LookupEnvDuration("RESERVE_TIMEOUT", service.DefaultReserveTimeout), "Bound on a single stock reservation or release call in format that can be parsed by go's time.ParseDuration.")
	flag.DurationVar(&c.ItemCacheTTL, "itemCacheTTL", LookupEnvDuration("ITEM_CACHE_TTL", 5*time.Second), "How long a cached item stays valid. Cached stock may lag by up to this value.")

	flag.IntVar(&c.ItemsCount, "itemsCount", LookupEnvInt("ITEMS_COUNT", 1000), "Number of items to generate (only for catalog-generator).")
	flag.IntVar(&c.MaxInitialStock, "maxInitialStock", LookupEnvInt("MAX_INITIAL_STOCK", 100), "Upper bound on generated items' initial stock (only for catalog-generator).")

	flag.Parse()

	return c
}
