package main

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type config struct {
	Exchange struct {
		Endpoint string
		APIKey   string
	}
	Deepgram struct {
		APIKey string
		Model  string
		Voice  string
	}
	Conversation struct {
		Language            string
		InterruptionEnabled bool
		HistoryCapacity     int
	}
}

func loadConfig() config {
	// Best-effort: running without a .env file is fine, the environment
	// may carry everything already.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("exchange.endpoint", "http://localhost:8080/api/converse")
	v.SetDefault("deepgram.model", "nova-3")
	v.SetDefault("deepgram.voice", "aura-2-thalia-en")
	v.SetDefault("conversation.language", "en")
	v.SetDefault("conversation.interruption_enabled", true)
	v.SetDefault("conversation.history_capacity", 50)

	v.BindEnv("exchange.endpoint", "EXCHANGE_ENDPOINT")
	v.BindEnv("exchange.api_key", "EXCHANGE_API_KEY")
	v.BindEnv("deepgram.api_key", "DEEPGRAM_API_KEY")
	v.BindEnv("deepgram.model", "DEEPGRAM_MODEL")
	v.BindEnv("deepgram.voice", "DEEPGRAM_VOICE")
	v.BindEnv("conversation.language", "CONVERSATION_LANGUAGE")
	v.BindEnv("conversation.interruption_enabled", "CONVERSATION_INTERRUPTION_ENABLED")
	v.BindEnv("conversation.history_capacity", "CONVERSATION_HISTORY_CAPACITY")

	var c config
	c.Exchange.Endpoint = v.GetString("exchange.endpoint")
	c.Exchange.APIKey = v.GetString("exchange.api_key")
	c.Deepgram.APIKey = v.GetString("deepgram.api_key")
	c.Deepgram.Model = v.GetString("deepgram.model")
	c.Deepgram.Voice = v.GetString("deepgram.voice")
	c.Conversation.Language = v.GetString("conversation.language")
	c.Conversation.InterruptionEnabled = v.GetBool("conversation.interruption_enabled")
	c.Conversation.HistoryCapacity = v.GetInt("conversation.history_capacity")

	return c
}
