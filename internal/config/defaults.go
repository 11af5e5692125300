package config

import "time"

// DefaultConfig mirrors the settings the pipeline was originally deployed
// with: 16 kHz mono PCM in 4 KiB chunks, a local broker and the small
// English model next to the working directory.
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 16000,
			ChunkSize:  4096,
		},
		Model: ModelConfig{
			Path: "vosk-model-small-en-us-0.15",
		},
		Broker: BrokerConfig{
			Enabled:        true,
			Address:        "localhost",
			Port:           1883,
			ClientID:       "pipestt",
			FinalTopic:     "voice/final",
			PartialTopic:   "voice/partial",
			QueueSize:      64,
			ConnectTimeout: 10 * time.Second,
			PublishTimeout: 2 * time.Second,
		},
		Console: ConsoleConfig{
			Enabled: true,
		},
		Refine: RefineConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
