package Whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrNotLoggedIn = errors.New("not logged in to WhatsApp")

// Client talks to a go-whatsapp-web-multidevice style REST service.
type Client struct {
	BaseURL    string
	Phones     []string
	HTTPClient *http.Client
}

type devicesResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Results []struct {
		Name   string `json:"name"`
		Device string `json:"device"`
	} `json:"results"`
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func NewClient(baseURL string, phones []string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Phones:     phones,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("error marshaling JSON: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("whatsapp service %s %s: %d %s", method, path, res.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("error unmarshaling response: %w", err)
		}
	}
	return nil
}

// LoggedIn reports whether the service has a paired device.
func (c *Client) LoggedIn(ctx context.Context) (bool, error) {
	var output devicesResponse
	if err := c.do(ctx, http.MethodGet, "/app/devices", nil, &output); err != nil {
		return false, err
	}
	return len(output.Results) > 0, nil
}

// SendMessage sends one text message to phone.
func (c *Client) SendMessage(ctx context.Context, phone, message string) error {
	return c.do(ctx, http.MethodPost, "/send/message", sendRequest{Phone: phone, Message: message}, nil)
}

// Notify sends subject and text to every configured phone. A failed phone does not stop the rest.
func (c *Client) Notify(ctx context.Context, subject, text string) error {
	if len(c.Phones) == 0 {
		return errors.New("no WhatsApp recipients configured")
	}
	ok, err := c.LoggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotLoggedIn
	}

	message := fmt.Sprintf("*%s*\n%s", subject, text)
	var errs []error
	for _, phone := range c.Phones {
		if err := c.SendMessage(ctx, phone, message); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", phone, err))
		}
	}
	return errors.Join(errs...)
}
