package config

import "time"

type Config struct {
	Audio   AudioConfig   `toml:"audio"`
	Model   ModelConfig   `toml:"model"`
	Broker  BrokerConfig  `toml:"broker"`
	Console ConsoleConfig `toml:"console"`
	Refine  RefineConfig  `toml:"refine"`
	Logging LoggingConfig `toml:"logging"`
}

// AudioConfig describes the raw PCM stream arriving on stdin.
type AudioConfig struct {
	SampleRate int `toml:"sample_rate"`
	ChunkSize  int `toml:"chunk_size"`
}

// ModelConfig locates the speech model on disk.
type ModelConfig struct {
	Path string `toml:"path"`
}

// BrokerConfig configures the MQTT transport. Username and password may
// also come from the MQTT_USERNAME / MQTT_PASSWORD environment variables
// (config file values win).
type BrokerConfig struct {
	Enabled        bool          `toml:"enabled"`
	Address        string        `toml:"address"`
	Port           int           `toml:"port"`
	ClientID       string        `toml:"client_id"`
	Username       string        `toml:"username"`
	Password       string        `toml:"password"`
	FinalTopic     string        `toml:"final_topic"`
	PartialTopic   string        `toml:"partial_topic"`
	QueueSize      int           `toml:"queue_size"`
	ConnectTimeout time.Duration `toml:"connect_timeout"`
	PublishTimeout time.Duration `toml:"publish_timeout"`
}

// ConsoleConfig controls the terminal display sink.
type ConsoleConfig struct {
	Enabled bool `toml:"enabled"`
}

// RefineConfig controls optional LLM cleanup of final results. The API key
// falls back to OPENAI_API_KEY or GROQ_API_KEY depending on the provider.
type RefineConfig struct {
	Enabled           bool     `toml:"enabled"`
	Provider          string   `toml:"provider"`
	Model             string   `toml:"model"`
	APIKey            string   `toml:"api_key"`
	AddPunctuation    bool     `toml:"add_punctuation"`
	FixGrammar        bool     `toml:"fix_grammar"`
	RemoveFillerWords bool     `toml:"remove_filler_words"`
	Keywords          []string `toml:"keywords"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}
