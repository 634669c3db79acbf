package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the backend address used when SOCHRATIC_API_URL is unset.
// Matches the local development default of the backend repo.
const DefaultAPIURL = "http://localhost:3000"

// Config holds all client configuration, resolved from the environment.
type Config struct {
	// APIURL is the base URL of the Sochratic backend.
	APIURL string

	// RequestTimeout bounds a single backend request, excluding retries.
	RequestTimeout time.Duration

	// DBPath is the sqlite file used for tokens, resumption and history.
	DBPath string

	// LogPath is the zap log file. Empty disables file logging.
	LogPath string

	// Offline enables the direct-LLM tutor instead of the backend gateway.
	Offline bool

	// LLM configures the offline tutor provider.
	LLM LLMConfig
}

// LLMConfig selects and configures the offline tutor provider.
type LLMConfig struct {
	// Provider is one of "anthropic", "openai", "openrouter", "gemini", "script".
	Provider string

	AnthropicKey   string
	AnthropicModel string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	OpenRouterKey   string
	OpenRouterModel string

	GeminiKey   string
	GeminiModel string
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: 30 * time.Second,
		LLM: LLMConfig{
			Provider:        "anthropic",
			AnthropicModel:  "claude-haiku",
			OpenAIModel:     "gpt-4o-mini",
			OpenRouterModel: "google/gemini-2.0-flash-exp",
			GeminiModel:     "gemini-flash",
		},
	}

	if v := os.Getenv("SOCHRATIC_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("SOCHRATIC_TIMEOUT_SECS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid SOCHRATIC_TIMEOUT_SECS: %q", v)
		}
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}

	dbPath, err := resolveDataPath("SOCHRATIC_DB", "sochratic.db")
	if err != nil {
		return Config{}, err
	}
	cfg.DBPath = dbPath

	logPath, err := resolveDataPath("SOCHRATIC_LOG", "sochratic.log")
	if err != nil {
		return Config{}, err
	}
	cfg.LogPath = logPath

	if v := os.Getenv("SOCHRATIC_OFFLINE"); v == "1" || v == "true" {
		cfg.Offline = true
	}

	loadLLMEnv(&cfg.LLM)

	return cfg, nil
}

func loadLLMEnv(l *LLMConfig) {
	if v := os.Getenv("SOCHRATIC_LLM_PROVIDER"); v != "" {
		l.Provider = v
	}
	if v := os.Getenv("SOCHRATIC_ANTHROPIC_API_KEY"); v != "" {
		l.AnthropicKey = v
	}
	if v := os.Getenv("SOCHRATIC_ANTHROPIC_MODEL"); v != "" {
		l.AnthropicModel = v
	}
	if v := os.Getenv("SOCHRATIC_OPENAI_API_KEY"); v != "" {
		l.OpenAIKey = v
	}
	if v := os.Getenv("SOCHRATIC_OPENAI_MODEL"); v != "" {
		l.OpenAIModel = v
	}
	if v := os.Getenv("SOCHRATIC_OPENAI_BASE_URL"); v != "" {
		l.OpenAIBaseURL = v
	}
	if v := os.Getenv("SOCHRATIC_OPENROUTER_API_KEY"); v != "" {
		l.OpenRouterKey = v
	}
	if v := os.Getenv("SOCHRATIC_OPENROUTER_MODEL"); v != "" {
		l.OpenRouterModel = v
	}
	if v := os.Getenv("SOCHRATIC_GEMINI_API_KEY"); v != "" {
		l.GeminiKey = v
	}
	if v := os.Getenv("SOCHRATIC_GEMINI_MODEL"); v != "" {
		l.GeminiModel = v
	}

	// Fall back to the conventional key names when no Sochratic-specific
	// key is set, so a machine already configured for another tool works.
	if l.AnthropicKey == "" {
		l.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if l.OpenAIKey == "" {
		l.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if l.OpenRouterKey == "" {
		l.OpenRouterKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if l.GeminiKey == "" {
		l.GeminiKey = os.Getenv("GEMINI_API_KEY")
	}
}

// Validate checks that offline mode has a usable provider configuration.
func (c Config) Validate() error {
	if !c.Offline {
		return nil
	}
	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			return fmt.Errorf("SOCHRATIC_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.LLM.OpenAIKey == "" {
			return fmt.Errorf("SOCHRATIC_OPENAI_API_KEY is required for the openai provider")
		}
	case "openrouter":
		if c.LLM.OpenRouterKey == "" {
			return fmt.Errorf("SOCHRATIC_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "gemini":
		if c.LLM.GeminiKey == "" {
			return fmt.Errorf("SOCHRATIC_GEMINI_API_KEY is required for the gemini provider")
		}
	case "script":
		// Canned replies, nothing to configure.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.LLM.Provider)
	}
	return nil
}

// resolveDataPath returns the value of envVar when set, otherwise a path
// under $XDG_DATA_HOME/sochratic (or ~/.local/share/sochratic).
func resolveDataPath(envVar, file string) (string, error) {
	if p := os.Getenv(envVar); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "sochratic", file)
	return p, ensureDir(p)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
