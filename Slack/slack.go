package Slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// SlackClient posts integrity alerts to one channel.
// Required Bot Token Scopes:
// - chat:write (send messages)
// - chat:write.public (send to channels without being invited)
type SlackClient struct {
	Channel string
	api     *slack.Client
}

// NewSlackClient creates a client posting to channel. Options are passed to slack.New.
func NewSlackClient(token, channel string, options ...slack.Option) *SlackClient {
	options = append([]slack.Option{slack.OptionHTTPClient(&http.Client{Timeout: 15 * time.Second})}, options...)
	return &SlackClient{
		Channel: channel,
		api:     slack.New(token, options...),
	}
}

// SendMessage posts text to channel and returns the message timestamp.
func (s *SlackClient) SendMessage(ctx context.Context, channel, text string) (string, error) {
	_, ts, err := s.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("slack API error: %w", err)
	}
	return ts, nil
}

// Notify posts subject and text to the client's channel.
func (s *SlackClient) Notify(ctx context.Context, subject, text string) error {
	if s.Channel == "" {
		return errors.New("slack channel is not configured")
	}
	_, err := s.SendMessage(ctx, s.Channel, fmt.Sprintf("*%s*\n%s", subject, text))
	return err
}
