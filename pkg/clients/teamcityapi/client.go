package teamcityapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sethgrid/pester"
)

const (
	maxErrorBodyLength = 4096
)

// Client is the interface for communicating with the teamcity rest api
//
//go:generate mockgen -package=teamcityapi -destination ./mock.go -source=client.go
type Client interface {
	GetBuilds(ctx context.Context, locator string) (builds BuildsResponse, err error)
	StopBuild(ctx context.Context, build Build, comment string) (err error)
	GetArtifactFiles(ctx context.Context, href string) (files Files, err error)
	DownloadArtifact(ctx context.Context, href string, w io.Writer) (err error)
}

// NewClient returns a teamcityapi.Client to communicate with the TeamCity rest api
func NewClient(config *api.Config) Client {
	return &client{
		config: config,
	}
}

type client struct {
	config *api.Config
}

// GetBuilds returns the builds matching the locator; it doesn't retry, a failing fetch is up to the caller
func (c *client) GetBuilds(ctx context.Context, locator string) (builds BuildsResponse, err error) {

	buildsURL := fmt.Sprintf("%v/httpAuth/app/rest/builds/?locator=%v", c.config.TeamCity.APIURL, url.QueryEscape(locator))

	log.Debug().Msgf("Fetching builds matching locator %v", locator)

	response, err := c.doRequest(ctx, c.newHTTPClient(1, c.timeout()), http.MethodGet, buildsURL, nil)
	if err != nil {
		return
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return builds, &FetchError{URL: buildsURL, StatusCode: response.StatusCode, Status: response.Status, Err: err}
	}

	// unmarshal json body
	err = json.Unmarshal(body, &builds)
	if err != nil {
		return builds, errors.Wrapf(err, "Failed unmarshalling builds response from %v", buildsURL)
	}

	return
}

// StopBuild cancels a running build without re-adding it to the queue
func (c *client) StopBuild(ctx context.Context, build Build, comment string) (err error) {

	stopURL := fmt.Sprintf("%v/httpAuth/app/rest/builds/id:%v", c.config.TeamCity.APIURL, build.ID)

	data, err := json.Marshal(BuildCancelRequest{
		Comment:        comment,
		ReaddIntoQueue: false,
	})
	if err != nil {
		return
	}

	log.Debug().Msgf("Stopping build %v with id %v", build.FullName(), build.ID)

	response, err := c.doRequest(ctx, c.newHTTPClient(3, c.timeout()), http.MethodPost, stopURL, data)
	if err != nil {
		return
	}
	defer response.Body.Close()

	_, err = io.Copy(io.Discard, response.Body)

	return
}

// GetArtifactFiles lists the artifact files and directories at a server-relative href
func (c *client) GetArtifactFiles(ctx context.Context, href string) (files Files, err error) {

	filesURL := c.absoluteURL(href)

	response, err := c.doRequest(ctx, c.newHTTPClient(3, c.timeout()), http.MethodGet, filesURL, nil)
	if err != nil {
		return
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return files, &FetchError{URL: filesURL, StatusCode: response.StatusCode, Status: response.Status, Err: err}
	}

	err = json.Unmarshal(body, &files)
	if err != nil {
		return files, errors.Wrapf(err, "Failed unmarshalling artifact files response from %v", filesURL)
	}

	return
}

// DownloadArtifact streams the content at a server-relative href into w
func (c *client) DownloadArtifact(ctx context.Context, href string, w io.Writer) (err error) {

	contentURL := c.absoluteURL(href)

	// artifacts can be large, so only the context limits the duration
	response, err := c.doRequest(ctx, c.newHTTPClient(3, 0), http.MethodGet, contentURL, nil)
	if err != nil {
		return
	}
	defer response.Body.Close()

	_, err = io.Copy(w, response.Body)
	if err != nil {
		return errors.Wrapf(err, "Failed downloading %v", contentURL)
	}

	return
}

func (c *client) timeout() time.Duration {
	return time.Duration(c.config.TeamCity.TimeoutSeconds) * time.Second
}

func (c *client) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	return c.config.TeamCity.APIURL + "/" + strings.TrimLeft(href, "/")
}

func (c *client) newHTTPClient(maxRetries int, timeout time.Duration) *pester.Client {

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.config.TeamCity.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
	}

	// create client, in order to add headers
	client := pester.NewExtendedClient(&http.Client{Transport: &nethttp.Transport{RoundTripper: transport}, Timeout: timeout})
	client.MaxRetries = maxRetries
	client.Backoff = pester.ExponentialJitterBackoff
	client.KeepLog = true
	client.Timeout = timeout

	return client
}

// doRequest performs an authenticated request and returns the response if it has a 2xx status; the caller closes the body
func (c *client) doRequest(ctx context.Context, httpClient *pester.Client, method, requestURL string, data []byte) (response *http.Response, err error) {

	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, &FetchError{URL: requestURL, Err: err}
	}

	span := opentracing.SpanFromContext(ctx)
	var ht *nethttp.Tracer
	if span != nil {
		// collect additional information on setting up connections
		request, ht = nethttp.TraceRequest(span.Tracer(), request)
	}

	// add headers
	request.SetBasicAuth(c.config.TeamCity.Username, c.config.TeamCity.Password)
	request.Header.Add("Accept", "application/json")
	if data != nil {
		request.Header.Add("Content-Type", "application/json")
	}

	// perform actual request
	response, err = httpClient.Do(request)
	if ht != nil {
		ht.Finish()
	}
	if err != nil {
		return nil, &FetchError{URL: requestURL, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		defer response.Body.Close()

		errorBody, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyLength))

		return nil, &FetchError{
			URL:        requestURL,
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Body:       string(errorBody),
		}
	}

	return response, nil
}
