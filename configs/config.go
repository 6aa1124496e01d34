package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/joho/godotenv"
)

var InstanceId string

// Config holds the runtime settings of the note services. Values come from
// the environment (optionally seeded from ./.env by LoadEnv).
type Config struct {
	Port        string
	DatabaseURL string
	AutoMigrate bool

	JWTSecret      string
	AccessTokenTTL time.Duration

	OTPLength          int
	OTPTTL             time.Duration
	OTPCleanupInterval time.Duration

	AuthRateLimitAttempts int
	AuthRateLimitWindow   time.Duration
	RateLimit             int

	NatsURL   string
	NatsToken string

	AllowedOrigins []string

	LogLevel string
	LogDir   string
}

func LoadEnv(service string) {
	log.Infof("%s service configuration and env variables loading started ...", service)
	err := godotenv.Load("./.env")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("no .env file found, using process environment")
			return
		}
		log.Fatalf("Error loading .env file: %v", err)
	}

	log.Info(".env file loaded.")
}

// Load reads Config from the environment. Unset variables fall back to
// development defaults; malformed numbers are reported with the variable name.
func Load() (*Config, error) {
	c := &Config{
		Port:        getEnv("NOTE_SERVICE_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET_KEY", "dev-secret-change-me"),
		NatsURL:     os.Getenv("NATS_URL"),
		NatsToken:   os.Getenv("NATS_TOKEN"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogDir:      os.Getenv("LOG_DIR"),
	}

	var err error
	if c.AutoMigrate, err = getBool("AUTO_MIGRATE", true); err != nil {
		return nil, err
	}

	days, err := getInt("ACCESS_TOKEN_EXPIRE_DAYS", 30)
	if err != nil {
		return nil, err
	}
	c.AccessTokenTTL = time.Duration(days) * 24 * time.Hour

	if c.OTPLength, err = getInt("OTP_LENGTH", 6); err != nil {
		return nil, err
	}
	if c.OTPLength < 4 || c.OTPLength > 12 {
		return nil, fmt.Errorf("OTP_LENGTH must be between 4 and 12, got %d", c.OTPLength)
	}

	minutes, err := getInt("OTP_TTL_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	if err := atLeastOne("OTP_TTL_MINUTES", minutes); err != nil {
		return nil, err
	}
	c.OTPTTL = time.Duration(minutes) * time.Minute

	if c.OTPCleanupInterval, err = getDuration("OTP_CLEANUP_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	if c.AuthRateLimitAttempts, err = getInt("RATE_LIMIT_AUTH_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if err := atLeastOne("RATE_LIMIT_AUTH_ATTEMPTS", c.AuthRateLimitAttempts); err != nil {
		return nil, err
	}
	seconds, err := getInt("RATE_LIMIT_AUTH_WINDOW_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	c.AuthRateLimitWindow = time.Duration(seconds) * time.Second

	if c.RateLimit, err = getInt("RATE_LIMIT", 100); err != nil {
		return nil, err
	}
	if err := atLeastOne("RATE_LIMIT", c.RateLimit); err != nil {
		return nil, err
	}

	c.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	return c, nil
}

func atLeastOne(key string, v int) error {
	if v < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", key, v)
	}
	return nil
}

func CreateUniqueInstance(service string) string {
	id, err := uuid.NewV4() // instance identifier
	if err != nil {
		log.Errorf("error generating instanceId: %s", err)
		os.Exit(1)
	}
	InstanceId = id.String()
	log.Infof(service+" service with Instance ID: %s is ready", id)
	return id.String()
}

func GetInstanceId() string {
	return InstanceId
}

func CORS(origins []string) *cors.Cors {
	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return corsOptions
}

// Logging configures the package-level logrus logger. With an empty dir the
// log goes to stdout, otherwise to <dir>/<service>.log.
func Logging(service, dir, level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, falling back to info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if dir == "" {
		log.SetOutput(os.Stdout)
		return
	}

	_, err = os.Stat(dir)
	if os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			log.Warnf("unable to create folder for log %s", err)
			return
		}
	}

	logFilePath := filepath.Join(dir, service+".log")

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatal("Failed to open log file:", err)
	}

	log.SetOutput(file)

	log.Infof("log to file started for service: %s", service)
}

func CustomLoggerMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Printf("%s %s %s %d %s %s",
					r.Method,
					r.RequestURI,
					r.RemoteAddr,
					ww.Status(),
					http.StatusText(ww.Status()),
					time.Since(start),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
