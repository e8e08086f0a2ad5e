package tamtamapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
)

var (
	ErrNotificationsDisabled = errors.New("Notifications are not enabled")
)

// Client is the interface for communicating with the tamtam chat api
//
//go:generate mockgen -package=tamtamapi -destination ./mock.go -source=client.go
type Client interface {
	SendMessage(ctx context.Context, text string) (err error)
}

// NewClient returns a tamtamapi.Client to post messages to a tamtam chat
func NewClient(config *api.Config) Client {
	if config == nil || config.Notify == nil || !config.Notify.Enable {
		return &client{
			enabled: false,
		}
	}

	return &client{
		enabled: true,
		config:  config,
	}
}

type client struct {
	enabled bool
	config  *api.Config
}

// SendMessage posts a message as the configured bot
func (c *client) SendMessage(ctx context.Context, text string) (err error) {
	if !c.enabled {
		return ErrNotificationsDisabled
	}

	data, err := json.Marshal(MessageRequest{
		Token: c.config.Notify.Token,
		Text:  truncate(text),
		Name:  c.config.Notify.BotName,
	})
	if err != nil {
		return
	}

	// create client, in order to add headers
	client := pester.NewExtendedClient(&http.Client{Transport: &nethttp.Transport{}, Timeout: time.Second * 10})
	client.MaxRetries = 3
	client.Backoff = pester.ExponentialJitterBackoff
	client.KeepLog = true
	client.Timeout = time.Second * 10
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Notify.URL, bytes.NewReader(data))
	if err != nil {
		return
	}

	span := opentracing.SpanFromContext(ctx)
	var ht *nethttp.Tracer
	if span != nil {
		// collect additional information on setting up connections
		request, ht = nethttp.TraceRequest(span.Tracer(), request)
	}

	// add headers
	request.Header.Add("Content-Type", "application/json")

	// perform actual request
	response, err := client.Do(request)
	if err != nil {
		return
	}
	defer response.Body.Close()
	if ht != nil {
		ht.Finish()
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("Posting message to tamtam returned status %v: %v", response.Status, string(body))
	}

	var messageResponse MessageResponse
	err = json.Unmarshal(body, &messageResponse)
	if err != nil {
		return errors.Wrapf(err, "Failed unmarshalling tamtam response %v", string(body))
	}

	if messageResponse.Result != "OK" {
		return fmt.Errorf("Failed to push to tamtam: %v", string(body))
	}

	return nil
}
