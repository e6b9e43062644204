package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-content-sync/internal/syncer"
)

// Wire shapes for the event payloads we care about. Only the fields the
// trigger union needs are decoded; everything else in the payload is
// ignored.
type repositoryPayload struct {
	Name          string `json:"name"`
	DefaultBranch string `json:"default_branch"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type pushPayload struct {
	Ref        string            `json:"ref"`
	Repository repositoryPayload `json:"repository"`
	Commits    []struct {
		Added    []string `json:"added"`
		Modified []string `json:"modified"`
		Removed  []string `json:"removed"`
	} `json:"commits"`
}

type pullRequestPayload struct {
	Action      string            `json:"action"`
	Repository  repositoryPayload `json:"repository"`
	PullRequest struct {
		Merged bool `json:"merged"`
		Base   struct {
			Ref string `json:"ref"`
		} `json:"base"`
	} `json:"pull_request"`
}

type pingPayload struct {
	Repository repositoryPayload `json:"repository"`
}

// ResolveTrigger decodes one webhook delivery into the trigger union. The
// second return is false for event types sync does not react to; those are
// acknowledged without work. A decode failure is the caller's 400.
func ResolveTrigger(eventName string, body []byte) (syncer.Trigger, bool, error) {
	switch eventName {
	case "push":
		var payload pushPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return syncer.Trigger{}, false, fmt.Errorf("webhook: decode push payload: %w", err)
		}
		push := &syncer.PushInfo{Ref: payload.Ref}
		for _, commit := range payload.Commits {
			push.Commits = append(push.Commits, syncer.Commit{
				Added:    commit.Added,
				Modified: commit.Modified,
				Removed:  commit.Removed,
			})
		}
		return syncer.Trigger{
			Kind: syncer.TriggerPush,
			Repo: repoRef(payload.Repository),
			Push: push,
		}, true, nil

	case "pull_request":
		var payload pullRequestPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return syncer.Trigger{}, false, fmt.Errorf("webhook: decode pull_request payload: %w", err)
		}
		return syncer.Trigger{
			Kind: syncer.TriggerPullRequest,
			Repo: repoRef(payload.Repository),
			PullRequest: &syncer.PullRequestInfo{
				Action:  payload.Action,
				Merged:  payload.PullRequest.Merged,
				BaseRef: payload.PullRequest.Base.Ref,
			},
		}, true, nil

	case "ping":
		var payload pingPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return syncer.Trigger{}, false, fmt.Errorf("webhook: decode ping payload: %w", err)
		}
		return syncer.Trigger{
			Kind: syncer.TriggerPing,
			Repo: repoRef(payload.Repository),
		}, true, nil
	}

	return syncer.Trigger{}, false, nil
}

func repoRef(repo repositoryPayload) syncer.RepoRef {
	return syncer.RepoRef{
		Owner:         repo.Owner.Login,
		Name:          repo.Name,
		DefaultBranch: repo.DefaultBranch,
	}
}
