package config

import (
	"fmt"

	"github.com/charmbracelet/log"
)

func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("invalid audio.sample_rate: %d", c.Audio.SampleRate)
	}
	if c.Audio.ChunkSize <= 0 {
		return fmt.Errorf("invalid audio.chunk_size: %d", c.Audio.ChunkSize)
	}

	if c.Model.Path == "" {
		return fmt.Errorf("invalid model.path: empty")
	}

	if c.Broker.Enabled {
		if c.Broker.Address == "" {
			return fmt.Errorf("invalid broker.address: empty")
		}
		if c.Broker.Port <= 0 || c.Broker.Port > 65535 {
			return fmt.Errorf("invalid broker.port: %d", c.Broker.Port)
		}
		if c.Broker.ClientID == "" {
			return fmt.Errorf("invalid broker.client_id: empty")
		}
		if c.Broker.FinalTopic == "" {
			return fmt.Errorf("invalid broker.final_topic: empty")
		}
		if c.Broker.PartialTopic == "" {
			return fmt.Errorf("invalid broker.partial_topic: empty")
		}
		if c.Broker.FinalTopic == c.Broker.PartialTopic {
			return fmt.Errorf("broker.final_topic and broker.partial_topic must differ (both %q)", c.Broker.FinalTopic)
		}
		if c.Broker.QueueSize <= 0 {
			return fmt.Errorf("invalid broker.queue_size: %d", c.Broker.QueueSize)
		}
		if c.Broker.ConnectTimeout <= 0 {
			return fmt.Errorf("invalid broker.connect_timeout: %v", c.Broker.ConnectTimeout)
		}
		if c.Broker.PublishTimeout <= 0 {
			return fmt.Errorf("invalid broker.publish_timeout: %v", c.Broker.PublishTimeout)
		}
	}

	if !c.Broker.Enabled && !c.Console.Enabled {
		return fmt.Errorf("no output configured: enable broker, console or both")
	}

	if c.Refine.Enabled {
		validProviders := map[string]bool{"openai": true, "groq": true}
		if !validProviders[c.Refine.Provider] {
			return fmt.Errorf("invalid refine.provider: %q (must be openai or groq)", c.Refine.Provider)
		}
		if c.ResolveRefineAPIKey() == "" {
			return fmt.Errorf("refine API key required: not found in config (refine.api_key) or environment")
		}
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}
