// Package render turns raw feed events into markdown lines
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"gittracker/internal/adapters/github"
	"gittracker/internal/core/daterange"
	"gittracker/internal/platform/logger"
	pstr "gittracker/internal/platform/strings"
)

const (
	shortHashLen    = 7
	commentBodyMax  = 60
	defaultAPIHost  = "https://api.github.com"
	defaultViewHost = "https://github.com"
)

// Links derives public viewer urls from API urls
type Links struct {
	APIHost    string
	ViewerHost string
}

// DefaultLinks points at github.com
func DefaultLinks() Links {
	return Links{APIHost: defaultAPIHost, ViewerHost: defaultViewHost}
}

// RepoURL converts an API repo url into its public viewer url.
// Falls back to viewer host plus the owner/name path when the url
// does not carry the expected API prefix
func (l Links) RepoURL(ref github.RepoRef) string {
	prefix := strings.TrimRight(l.APIHost, "/") + "/repos/"
	if strings.HasPrefix(ref.URL, prefix) {
		return strings.TrimRight(l.ViewerHost, "/") + "/" + strings.TrimPrefix(ref.URL, prefix)
	}
	return strings.TrimRight(l.ViewerHost, "/") + "/" + ref.Name
}

// Formatter maps one raw event to zero or more markdown lines
type Formatter struct {
	links Links
	debug bool
	log   logger.Logger
}

// NewFormatter builds a Formatter; zero Links default to github.com
func NewFormatter(links Links, debug bool) *Formatter {
	if links.APIHost == "" {
		links.APIHost = defaultAPIHost
	}
	if links.ViewerHost == "" {
		links.ViewerHost = defaultViewHost
	}
	return &Formatter{links: links, debug: debug, log: *logger.Named("render")}
}

// Header identifies the feed and its effective date range
func Header(owner, repo string, start, stop *daterange.CalendarDate) string {
	scope := "latest events"
	switch {
	case start != nil && stop != nil:
		scope = start.String() + " to " + stop.String()
	case start != nil:
		scope = "since " + start.String()
	case stop != nil:
		scope = "through " + stop.String()
	}
	return fmt.Sprintf("### Activity for %s/%s (%s)", owner, repo, scope)
}

// Format renders one event. ok=false means the event rendered nothing and
// must be dropped silently; one malformed event never aborts the batch
func (f *Formatter) Format(e github.Event) (line string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if f.debug {
				f.log.Debug().Str("event_id", e.ID).Str("type", e.Type).Any("panic", r).Msg("format panic swallowed")
			}
			line, ok = "", false
		}
	}()

	switch e.Kind() {
	case github.KindPush:
		return f.formatPush(e)
	case github.KindCreate:
		return f.formatCreate(e)
	case github.KindDelete:
		return f.formatDelete(e)
	case github.KindPullRequest:
		return f.formatPullRequest(e)
	case github.KindIssues:
		return f.formatIssues(e)
	case github.KindIssueComment:
		return f.formatIssueComment(e)
	case github.KindRelease:
		return f.formatRelease(e)
	default:
		// watch, fork, public and anything unrecognized
		return fmt.Sprintf("- **%s** performed %s", e.Actor.Login, e.Type), true
	}
}

func (f *Formatter) drop(e github.Event, err error) (string, bool) {
	if f.debug {
		f.log.Debug().Err(err).Str("event_id", e.ID).Str("type", e.Type).Msg("malformed payload dropped")
	}
	return "", false
}

func (f *Formatter) formatPush(e github.Event) (string, bool) {
	var p github.PushPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return f.drop(e, err)
	}
	if p.Ref == "" {
		return f.drop(e, fmt.Errorf("push payload missing ref"))
	}
	branch := strings.TrimPrefix(p.Ref, "refs/heads/")
	repoURL := f.links.RepoURL(e.Repo)

	var b strings.Builder
	fmt.Fprintf(&b, "- **%s** pushed %d commit%s to `%s`",
		e.Actor.Login, len(p.Commits), plural(len(p.Commits)), branch)
	for _, c := range p.Commits {
		sha := c.SHA
		if len(sha) > shortHashLen {
			sha = sha[:shortHashLen]
		}
		fmt.Fprintf(&b, "\n    - [`%s`](%s/commit/%s) %s", sha, repoURL, c.SHA, pstr.FirstLine(c.Message))
	}
	return b.String(), true
}

func (f *Formatter) formatCreate(e github.Event) (string, bool) {
	var p github.CreatePayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return f.drop(e, err)
	}
	if p.RefType == "" {
		return f.drop(e, fmt.Errorf("create payload missing ref_type"))
	}
	line := fmt.Sprintf("- **%s** created %s", e.Actor.Login, p.RefType)
	if p.Ref != "" {
		line += fmt.Sprintf(" `%s`", p.Ref)
	}
	if p.Description != "" {
		line += ": " + p.Description
	}
	return line, true
}

func (f *Formatter) formatDelete(e github.Event) (string, bool) {
	var p github.DeletePayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return f.drop(e, err)
	}
	if p.RefType == "" || p.Ref == "" {
		return f.drop(e, fmt.Errorf("delete payload missing ref_type or ref"))
	}
	return fmt.Sprintf("- **%s** deleted %s `%s`", e.Actor.Login, p.RefType, p.Ref), true
}

func (f *Formatter) formatPullRequest(e github.Event) (string, bool) {
	var p github.PullRequestPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return f.drop(e, err)
	}
	if p.Number == 0 {
		return f.drop(e, fmt.Errorf("pull request payload missing number"))
	}
	action := p.Action
	if action == "closed" && p.PullRequest.Merged {
		action = "merged"
	}
	repoURL := f.links.RepoURL(e.Repo)
	return fmt.Sprintf("- %s **%s** %s pull request [#%d](%s/pull/%d): %s",
		actionIcon(action), e.Actor.Login, action, p.Number, repoURL, p.Number, p.PullRequest.Title), true
}

func (f *Formatter) formatIssues(e github.Event) (string, bool) {
	var p github.IssuesPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return f.drop(e, err)
	}
	if p.Issue.Number == 0 {
		return f.drop(e, fmt.Errorf("issues payload missing number"))
	}
	repoURL := f.links.RepoURL(e.Repo)
	return fmt.Sprintf("- %s **%s** %s issue [#%d](%s/issues/%d): %s",
		actionIcon(p.Action), e.Actor.Login, p.Action, p.Issue.Number, repoURL, p.Issue.Number, p.Issue.Title), true
}

func (f *Formatter) formatIssueComment(e github.Event) (string, bool) {
	var p github.IssueCommentPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return f.drop(e, err)
	}
	if p.Issue.Number == 0 {
		return f.drop(e, fmt.Errorf("issue comment payload missing issue number"))
	}
	repoURL := f.links.RepoURL(e.Repo)
	body := pstr.Truncate(pstr.FirstLine(p.Comment.Body), commentBodyMax)
	return fmt.Sprintf("- 💬 **%s** commented on [#%d](%s/issues/%d): %s",
		e.Actor.Login, p.Issue.Number, repoURL, p.Issue.Number, body), true
}

func (f *Formatter) formatRelease(e github.Event) (string, bool) {
	var p github.ReleasePayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return f.drop(e, err)
	}
	if p.Release.TagName == "" {
		return f.drop(e, fmt.Errorf("release payload missing tag_name"))
	}
	name := p.Release.Name
	if name == "" {
		name = p.Release.TagName
	}
	repoURL := f.links.RepoURL(e.Repo)
	return fmt.Sprintf("- 🏷️ **%s** %s release [%s](%s/releases/tag/%s)",
		e.Actor.Login, p.Action, name, repoURL, p.Release.TagName), true
}

// actionIcon keys the marker off the pull request or issue action
func actionIcon(action string) string {
	switch action {
	case "opened":
		return "🟢"
	case "closed":
		return "🔴"
	case "merged":
		return "🟣"
	case "reopened":
		return "🔵"
	default:
		return "⚪"
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
