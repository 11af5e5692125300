package config

import (
	"github.com/RichFesler/rpi-offline-voice-control/internal/broker"
	"github.com/RichFesler/rpi-offline-voice-control/internal/refine"
)

func (c *Config) ToBrokerConfig() broker.Config {
	return broker.Config{
		Address:        c.Broker.Address,
		Port:           c.Broker.Port,
		ClientID:       c.Broker.ClientID,
		Username:       c.Broker.Username,
		Password:       c.Broker.Password,
		ConnectTimeout: c.Broker.ConnectTimeout,
		PublishTimeout: c.Broker.PublishTimeout,
	}
}

func (c *Config) ToRefineConfig() refine.Config {
	return refine.Config{
		Provider:          c.Refine.Provider,
		APIKey:            c.ResolveRefineAPIKey(),
		Model:             c.Refine.Model,
		AddPunctuation:    c.Refine.AddPunctuation,
		FixGrammar:        c.Refine.FixGrammar,
		RemoveFillerWords: c.Refine.RemoveFillerWords,
		Keywords:          c.Refine.Keywords,
	}
}
