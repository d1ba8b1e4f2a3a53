package params

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Market struct {
	AssetFirst  string
	AssetSecond string
	// Epsilon is the relative tolerance for calling a match balanced.
	Epsilon float64
	// CallbackMode is "inline" (callbacks run inside the matching loop) or
	// "async" (callbacks run on a dispatcher goroutine).
	CallbackMode string
}

// Sim shapes the random offer stream. Defaults reproduce the reference demo:
// rates uniform in [10, 11), volumes uniform in [100, 200), even sides.
type Sim struct {
	Seed         int64
	Offers       int
	SellRatio    float64
	RateMin      float64
	RateSpread   float64
	VolumeMin    float64
	VolumeSpread float64
	Interval     time.Duration // 0 submits as fast as possible
}

type Node struct {
	LogFile           string // empty logs to stdout only
	JournalPath       string // empty disables the settlement journal
	Verbose           bool
	PrintTransactions bool
}

type Config struct {
	Market Market
	Sim    Sim
	Node   Node
}

func Default() Config {
	return Config{
		Market: Market{
			AssetFirst:   "apple",
			AssetSecond:  "dollar",
			Epsilon:      1e-9,
			CallbackMode: "async",
		},
		Sim: Sim{
			Seed:         0,
			Offers:       1000,
			SellRatio:    0.5,
			RateMin:      10,
			RateSpread:   1,
			VolumeMin:    100,
			VolumeSpread: 100,
		},
		Node: Node{
			PrintTransactions: true,
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg.Market.AssetFirst = getEnv("MARKET_ASSET_FIRST", cfg.Market.AssetFirst)
	cfg.Market.AssetSecond = getEnv("MARKET_ASSET_SECOND", cfg.Market.AssetSecond)
	cfg.Market.Epsilon = getFloat("MATCH_EPSILON", cfg.Market.Epsilon)
	if mode := strings.ToLower(os.Getenv("CALLBACK_MODE")); mode == "inline" || mode == "async" {
		cfg.Market.CallbackMode = mode
	}

	if seed := os.Getenv("SIM_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Sim.Seed = v
		}
	}
	if n := os.Getenv("SIM_OFFERS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v >= 0 {
			cfg.Sim.Offers = v
		}
	}
	cfg.Sim.SellRatio = getFloat("SIM_SELL_RATIO", cfg.Sim.SellRatio)
	cfg.Sim.RateMin = getFloat("SIM_RATE_MIN", cfg.Sim.RateMin)
	cfg.Sim.RateSpread = getFloat("SIM_RATE_SPREAD", cfg.Sim.RateSpread)
	cfg.Sim.VolumeMin = getFloat("SIM_VOLUME_MIN", cfg.Sim.VolumeMin)
	cfg.Sim.VolumeSpread = getFloat("SIM_VOLUME_SPREAD", cfg.Sim.VolumeSpread)
	if ms := os.Getenv("SIM_INTERVAL_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v >= 0 {
			cfg.Sim.Interval = time.Duration(v) * time.Millisecond
		}
	}

	cfg.Node.LogFile = getEnv("LOG_FILE", cfg.Node.LogFile)
	cfg.Node.JournalPath = getEnv("JOURNAL_PATH", cfg.Node.JournalPath)
	if v := os.Getenv("VERBOSE"); v != "" {
		cfg.Node.Verbose = v == "true"
	}
	if v := os.Getenv("PRINT_TRANSACTIONS"); v != "" {
		cfg.Node.PrintTransactions = v == "true"
	}

	return cfg
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getFloat parses a float variable, keeping the default when unset or malformed.
func getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return v
}
