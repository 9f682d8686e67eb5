package config

import (
	"math/big" // Arbitrary precision integers
	"os"       // For environment variables
	"strconv"  // For string to int conversion
	"time"     // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort         string        // Application port
	ServerURL       string        // Base URL of a running server, used by command line tools
	DBUser          string        // Database user
	DBPassword      string        // Database password
	DBHost          string        // Database host
	DBPort          string        // Database port
	DBName          string        // Database name
	JWTSecret       string        // JWT secret key
	RedisAddr       string        // Redis server address
	RedisPass       string        // Redis password
	RedisDB         int           // Redis database number
	IsProd          bool          // Is production environment
	Network         string        // Network name: hardhat, localhost, sepolia, polygon
	ChainID         int64         // Chain id used to look up the price feed
	PriceFeed       string        // Explicit price feed address, overrides the network table
	PriceFeedMaxAge time.Duration // Reject answers older than this; zero disables
	Deployer        string        // Address that constructs and owns the ledger
	MinimumUSD      *big.Int      // Minimum contribution in whole accounting units; nil keeps the default
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	chainID, _ := strconv.ParseInt(os.Getenv("CHAIN_ID"), 10, 64)
	maxAge, _ := time.ParseDuration(os.Getenv("PRICE_FEED_MAX_AGE"))
	network := os.Getenv("NETWORK")
	if network == "" {
		network = "hardhat" // Local development by default
	}
	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		serverURL = "http://127.0.0.1:" + os.Getenv("APP_PORT") // Server on this host
	}
	var minimum *big.Int
	if v, ok := new(big.Int).SetString(os.Getenv("MINIMUM_USD"), 10); ok && v.Sign() > 0 {
		minimum = v
	}
	return &Config{
		AppPort:         os.Getenv("APP_PORT"),           // Application port
		ServerURL:       serverURL,                       // Server base URL
		DBUser:          os.Getenv("DB_USER"),            // Database user
		DBPassword:      os.Getenv("DB_PASSWORD"),        // Database password
		DBHost:          os.Getenv("DB_HOST"),            // Database host
		DBPort:          os.Getenv("DB_PORT"),            // Database port
		DBName:          os.Getenv("DB_NAME"),            // Database name
		JWTSecret:       os.Getenv("JWT_SECRET"),         // JWT secret key
		RedisAddr:       os.Getenv("REDIS_ADDR"),         // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),         // Redis password
		RedisDB:         redisDB,                         // Redis database number
		IsProd:          os.Getenv("IS_PROD") == "true",  // Is production environment
		Network:         network,                         // Network name
		ChainID:         chainID,                         // Chain id
		PriceFeed:       os.Getenv("PRICE_FEED_ADDRESS"), // Price feed override
		PriceFeedMaxAge: maxAge,                          // Staleness limit
		Deployer:        os.Getenv("DEPLOYER_ADDRESS"),   // Ledger owner
		MinimumUSD:      minimum,                         // Threshold override
	}
}
