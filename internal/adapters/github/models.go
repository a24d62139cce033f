package github

import (
	"encoding/json"
	"time"
)

// Event is a partial GitHub event document with the fields we use.
// Payload stays raw until a formatter decodes it per kind
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     Actor           `json:"actor"`
	Repo      RepoRef         `json:"repo"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Actor is the user that performed an event
type Actor struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// RepoRef points at the repository an event belongs to.
// URL is the API url, not the public viewer url
type RepoRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Kind is the closed set of event kinds the formatter understands
type Kind int

// Event kinds, KindOther is the explicit fallback for unrecognized types
const (
	KindOther Kind = iota
	KindPush
	KindCreate
	KindDelete
	KindPullRequest
	KindIssues
	KindIssueComment
	KindRelease
	KindWatch
	KindFork
	KindPublic
)

// KindOf maps a wire event type to a Kind
func KindOf(eventType string) Kind {
	switch eventType {
	case "PushEvent":
		return KindPush
	case "CreateEvent":
		return KindCreate
	case "DeleteEvent":
		return KindDelete
	case "PullRequestEvent":
		return KindPullRequest
	case "IssuesEvent":
		return KindIssues
	case "IssueCommentEvent":
		return KindIssueComment
	case "ReleaseEvent":
		return KindRelease
	case "WatchEvent":
		return KindWatch
	case "ForkEvent":
		return KindFork
	case "PublicEvent":
		return KindPublic
	default:
		return KindOther
	}
}

// Kind returns the decoded kind of the event
func (e Event) Kind() Kind { return KindOf(e.Type) }

// PushPayload is the payload of a PushEvent
type PushPayload struct {
	Ref     string   `json:"ref"`
	Commits []Commit `json:"commits"`
}

// Commit is one commit inside a push payload
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// CreatePayload is the payload of a CreateEvent
type CreatePayload struct {
	RefType     string `json:"ref_type"`
	Ref         string `json:"ref"`
	Description string `json:"description"`
}

// DeletePayload is the payload of a DeleteEvent
type DeletePayload struct {
	RefType string `json:"ref_type"`
	Ref     string `json:"ref"`
}

// PullRequestPayload is the payload of a PullRequestEvent
type PullRequestPayload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Title  string `json:"title"`
		Merged bool   `json:"merged"`
	} `json:"pull_request"`
}

// IssuesPayload is the payload of an IssuesEvent
type IssuesPayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
	} `json:"issue"`
}

// IssueCommentPayload is the payload of an IssueCommentEvent
type IssueCommentPayload struct {
	Issue struct {
		Number int `json:"number"`
	} `json:"issue"`
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
}

// ReleasePayload is the payload of a ReleaseEvent
type ReleasePayload struct {
	Action  string `json:"action"`
	Release struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	} `json:"release"`
}
