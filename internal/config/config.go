package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Ledger   LedgerConfig
	Payment  PaymentConfig
	Metadata MetadataConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
	// RedeemLockTTL bounds how long a gate scan may hold a per-ticket lock.
	RedeemLockTTL time.Duration
}

type KafkaConfig struct {
	Brokers  []string
	Enabled  bool
	MockMode bool
	Topics   TopicConfig
}

type TopicConfig struct {
	TicketMinted   string
	TicketListed   string
	TicketSold     string
	TicketRedeemed string
}

type LedgerConfig struct {
	GatewayURL      string
	ContractAddress string
}

type PaymentConfig struct {
	// Mode selects the gateway implementation: "simulated" or "stripe".
	Mode            string
	StripeSecretKey string
}

type MetadataConfig struct {
	// Mode "mock" returns pseudo-CIDs without network calls.
	Mode       string
	PinataURL  string
	PinataJWT  string
	GatewayURL string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "ticketing_user"),
			Password:     getEnv("DB_PASSWORD", "ticketing_pass"),
			Database:     getEnv("DB_NAME", "nft_ticketing"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "localhost:6379"),
			RedeemLockTTL: time.Duration(getEnvInt("REDEEM_LOCK_TTL_SECONDS", 30)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled:  getEnvBool("KAFKA_ENABLED", true),
			MockMode: getEnvBool("KAFKA_MOCK_MODE", false),
			Topics: TopicConfig{
				TicketMinted:   getEnv("KAFKA_TOPIC_MINTED", "ticketing.tickets.minted"),
				TicketListed:   getEnv("KAFKA_TOPIC_LISTED", "ticketing.tickets.listed"),
				TicketSold:     getEnv("KAFKA_TOPIC_SOLD", "ticketing.tickets.sold"),
				TicketRedeemed: getEnv("KAFKA_TOPIC_REDEEMED", "ticketing.tickets.redeemed"),
			},
		},
		Ledger: LedgerConfig{
			GatewayURL:      getEnv("CHAIN_GATEWAY_URL", "http://localhost:8545"),
			ContractAddress: getEnv("CONTRACT_ADDRESS", ""),
		},
		Payment: PaymentConfig{
			Mode:            getEnv("PAYMENT_MODE", "simulated"),
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		},
		Metadata: MetadataConfig{
			Mode:       getEnv("METADATA_MODE", "mock"),
			PinataURL:  getEnv("PINATA_API_URL", "https://api.pinata.cloud"),
			PinataJWT:  getEnv("PINATA_JWT", ""),
			GatewayURL: getEnv("IPFS_GATEWAY_URL", "https://ipfs.io/ipfs"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
