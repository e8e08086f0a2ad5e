package teamcityapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	BuildStateRunning  = "running"
	BuildStateFinished = "finished"
	BuildStateQueued   = "queued"

	BuildStatusSuccess = "SUCCESS"
	BuildStatusFailure = "FAILURE"
	BuildStatusError   = "ERROR"
	// teamcity reports canceled builds with status UNKNOWN
	BuildStatusUnknown = "UNKNOWN"
)

// BuildsResponse is the response of /app/rest/builds
type BuildsResponse struct {
	Count    int     `json:"count"`
	Href     string  `json:"href,omitempty"`
	NextHref string  `json:"nextHref,omitempty"`
	Builds   []Build `json:"build,omitempty"`
}

// Build is a snapshot of a teamcity build
type Build struct {
	ID                int64  `json:"id"`
	BuildTypeID       string `json:"buildTypeId"`
	Number            string `json:"number"`
	Status            string `json:"status"`
	State             string `json:"state"`
	StatusText        string `json:"statusText,omitempty"`
	Href              string `json:"href,omitempty"`
	WebURL            string `json:"webUrl,omitempty"`
	FinishOnAgentDate string `json:"finishOnAgentDate,omitempty"`

	// Attributes holds every scalar attribute as returned by the server, including the ones not mapped above
	Attributes map[string]string `json:"-"`
}

func (b *Build) UnmarshalJSON(data []byte) error {
	type buildAlias Build

	var alias buildAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	alias.Attributes = make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			alias.Attributes[key] = v
		case json.Number:
			alias.Attributes[key] = v.String()
		case bool:
			alias.Attributes[key] = strconv.FormatBool(v)
		}
	}

	*b = Build(alias)

	return nil
}

func (b Build) IsRunning() bool {
	return b.State == BuildStateRunning
}

// FullName returns buildTypeId:number, the way builds are referred to in messages
func (b Build) FullName() string {
	return fmt.Sprintf("%v:%v", b.BuildTypeID, b.Number)
}

// TemplateFields returns all attributes of the build by their json name
func (b Build) TemplateFields() map[string]string {
	fields := make(map[string]string, len(b.Attributes)+9)
	for key, value := range b.Attributes {
		fields[key] = value
	}

	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}

	if b.ID != 0 {
		set("id", strconv.FormatInt(b.ID, 10))
	}
	set("buildTypeId", b.BuildTypeID)
	set("number", b.Number)
	set("status", b.Status)
	set("state", b.State)
	set("statusText", b.StatusText)
	set("href", b.Href)
	set("webUrl", b.WebURL)
	set("finishOnAgentDate", b.FinishOnAgentDate)

	return fields
}

// BuildCancelRequest is posted to a build to stop it
type BuildCancelRequest struct {
	Comment        string `json:"comment"`
	ReaddIntoQueue bool   `json:"readdIntoQueue"`
}

// Files is the response of the artifacts children endpoint
type Files struct {
	Count int    `json:"count"`
	Files []File `json:"file,omitempty"`
}

// File is an artifact file or directory
type File struct {
	Name             string `json:"name"`
	Size             int64  `json:"size,omitempty"`
	ModificationTime string `json:"modificationTime,omitempty"`
	Href             string `json:"href,omitempty"`
	Children         *Href  `json:"children,omitempty"`
	Content          *Href  `json:"content,omitempty"`
}

func (f File) IsDirectory() bool {
	return f.Children != nil && f.Children.Href != ""
}

type Href struct {
	Href string `json:"href"`
}

// FetchError is returned for any request that fails at transport level or returns a non-2xx status
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Request to %v failed: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("Request to %v returned status %v", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
