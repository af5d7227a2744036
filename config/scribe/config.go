package config

import "github.com/ilyakaznacheev/cleanenv"

type Config struct {
	Port     int    `env:"PORT" env-default:"8080"`
	Env      string `env:"ENV" env-default:"dev"`
	Deepgram DeepgramConfig
	OpenAI   OpenAIConfig
}

type DeepgramConfig struct {
	APIKey   string `env:"DEEPGRAM_API_KEY"`
	BaseURL  string `env:"DEEPGRAM_BASE_URL" env-default:"https://api.deepgram.com"`
	Model    string `env:"DEEPGRAM_MODEL" env-default:"nova-2"`
	Language string `env:"DEEPGRAM_LANGUAGE" env-default:"en-US"`
}

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com"`
	Model   string `env:"OPENAI_MODEL" env-default:"gpt-4"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read environment variables: " + err.Error())
	}
	return &cfg
}
