package clients

import (
	"fmt"
	"log"
	"os"

	"github.com/bwmarrin/discordgo"

	"GoForgeAI/app/loop"
)

var _ Interface = &DiscordClient{}

type DiscordClient struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordClient(token, channelID string) *DiscordClient {
	if token == "" {
		token = os.Getenv("DISCORD_TOKEN")
	}
	if channelID == "" {
		channelID = os.Getenv("DISCORD_CHANNEL_ID")
	}
	if token == "" {
		return nil
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Printf("⚠️ Error creating Discord session: %v", err)
		return nil
	}

	return &DiscordClient{
		session:   session,
		channelID: channelID,
	}
}

func (c *DiscordClient) Notify(result *loop.Result) error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open Discord session: %w", err)
	}

	_, err := c.session.ChannelMessageSend(c.channelID, renderResult(result))
	return err
}

func (c *DiscordClient) Close() error {
	return c.session.Close()
}

func renderResult(result *loop.Result) string {
	switch result.State {
	case loop.StateSuccess:
		return fmt.Sprintf("✅ Run %s: code compiled after %d attempts (generation time: %.3f seconds)\nCompilation command: %s",
			result.RunID, result.Attempts, result.GenerateTime.Seconds(), result.Command)
	default:
		return fmt.Sprintf("🚧 Run %s: %s after %d attempts (generation time: %.3f seconds)\nLast error:\n%s",
			result.RunID, result.Reason, result.Attempts, result.GenerateTime.Seconds(),
			truncate(result.LastDiagnostic, 1500))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
