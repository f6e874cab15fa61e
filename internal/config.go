package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL,default=INFO"`
	Host     string `env:"HOST,default=localhost"`
	Port     int    `env:"PORT,default=8080"`

	// Comma separated list, empty allows the serving host only, "*" allows any.
	AllowedOrigins          string        `env:"ALLOWED_ORIGINS"`
	MaxMessageSize          int64         `env:"MAX_MESSAGE_SIZE,default=524288"`
	RateLimitBurst          int           `env:"RATE_LIMIT_BURST,default=5"`
	RateLimitRefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
	ConnectionBufferSize    int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	PingInterval            time.Duration `env:"PING_INTERVAL,default=54s"`
	PongWait                time.Duration `env:"PONG_WAIT,default=60s"`
	WriteWait               time.Duration `env:"WRITE_WAIT,default=10s"`

	CommandBufferSize int           `env:"COMMAND_BUFFER_SIZE,default=1024"`
	DispatchTimeout   time.Duration `env:"DISPATCH_TIMEOUT,default=500ms"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=100ms"`
	StatsInterval     time.Duration `env:"STATS_INTERVAL,default=5s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	MaxRooms            int  `env:"MAX_ROOMS,default=0"`
	MaxMembersPerRoom   int  `env:"MAX_MEMBERS_PER_ROOM,default=0"`
	NotifyUndeliverable bool `env:"NOTIFY_UNDELIVERABLE,default=false"`

	ModerationEnabled bool   `env:"MODERATION_ENABLED,default=false"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,default=*"`

	BadgerFilepath    string        `env:"BADGER_FILEPATH"`
	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	DebugRequireToken bool          `env:"DEBUG_REQUIRE_TOKEN,default=true"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// LoadConfig reads the optional dotenv files then decodes the environment.
// Variables already set in the environment win over the files.
func LoadConfig(files ...string) (Config, error) {
	for _, file := range files {
		// A missing file is fine, the environment alone may be enough.
		_ = godotenv.Load(file)
	}
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) validate() error {
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return err
	}
	if c.PingInterval >= c.PongWait {
		return fmt.Errorf("PING_INTERVAL (%s) must be lower than PONG_WAIT (%s)", c.PingInterval, c.PongWait)
	}
	if c.CommandBufferSize <= 0 || c.ConnectionBufferSize <= 0 {
		return fmt.Errorf("buffer sizes must be positive")
	}
	if c.MaxRooms < 0 || c.MaxMembersPerRoom < 0 {
		return fmt.Errorf("room limits cannot be negative")
	}
	return nil
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
