package clients

import (
	"fmt"

	"GoForgeAI/app/configs"
	"GoForgeAI/app/loop"
)

// Interface is a connector that announces terminal run results to an
// external channel.
type Interface interface {
	Notify(result *loop.Result) error
}

func CreateClient(cfg configs.ClientConfig) (Interface, error) {
	switch cfg.Type {
	case "discord":
		client := NewDiscordClient(cfg.Config["token"], cfg.Config["channel_id"])
		if client == nil {
			return nil, fmt.Errorf("discord client requires a token")
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown client type: %s", cfg.Type)
	}
}
