package tamtamapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/stretchr/testify/assert"
)

func newTestConfig(serverURL string) *api.Config {
	config := &api.Config{
		Notify: &api.NotifyConfig{
			Enable: true,
			URL:    serverURL,
			Token:  "vM5j4R",
		},
	}
	config.SetDefaults()

	return config
}

func TestSendMessage(t *testing.T) {

	t.Run("PostsTokenTextAndBotName", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)

			var messageRequest MessageRequest
			err := json.NewDecoder(r.Body).Decode(&messageRequest)
			assert.Nil(t, err)
			assert.Equal(t, "vM5j4R", messageRequest.Token)
			assert.Equal(t, "build Tst:22 cancelled", messageRequest.Text)
			assert.Equal(t, "Wall-E", messageRequest.Name)

			_, _ = w.Write([]byte(`{"result":"OK"}`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL))

		// act
		err := client.SendMessage(context.Background(), "build Tst:22 cancelled")

		assert.Nil(t, err)
	})

	t.Run("TruncatesMessagesLongerThanTheChatLimit", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var messageRequest MessageRequest
			_ = json.NewDecoder(r.Body).Decode(&messageRequest)
			assert.Equal(t, 9999, len(messageRequest.Text))

			_, _ = w.Write([]byte(`{"result":"OK"}`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL))

		// act
		err := client.SendMessage(context.Background(), strings.Repeat("a", 12000))

		assert.Nil(t, err)
	})

	t.Run("ReturnsErrorIfResultIsNotOK", func(t *testing.T) {

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"result":"FAILED"}`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL))

		// act
		err := client.SendMessage(context.Background(), "hello")

		assert.NotNil(t, err)
	})

	t.Run("ReturnsErrNotificationsDisabledIfNotEnabled", func(t *testing.T) {

		client := NewClient(&api.Config{Notify: &api.NotifyConfig{Enable: false}})

		// act
		err := client.SendMessage(context.Background(), "hello")

		assert.True(t, errors.Is(err, ErrNotificationsDisabled))
	})
}

func TestWrapLinks(t *testing.T) {

	t.Run("WrapsEveryUrlInMarkdownLink", func(t *testing.T) {

		// act
		message := WrapLinks("[CLEAN] emo-1.2.3.25678 : 5/60 positives.\n https://www.virustotal.com/file/9a4b/analysis/1495548291/\n")

		assert.Equal(t, "[CLEAN] emo-1.2.3.25678 : 5/60 positives.\n [details](https://www.virustotal.com/file/9a4b/analysis/1495548291/)\n", message)
	})

	t.Run("KeepsMessageWithoutUrls", func(t *testing.T) {

		// act
		message := WrapLinks("build Tst:22 cancelled")

		assert.Equal(t, "build Tst:22 cancelled", message)
	})
}

func TestTagify(t *testing.T) {

	t.Run("ReplacesRunsOfNonWordCharactersWithUnderscore", func(t *testing.T) {

		// act
		tag := Tagify("virustotal scan results - emo 1.2")

		assert.Equal(t, "virustotal_scan_results_emo_1_2", tag)
	})
}
