package syncer

// TriggerKind discriminates the trigger union. The webhook boundary resolves
// the wire payload into exactly one kind; downstream code never inspects raw
// event fields.
type TriggerKind string

const (
	TriggerPush        TriggerKind = "push"
	TriggerPullRequest TriggerKind = "pull_request"
	TriggerPing        TriggerKind = "ping"
	TriggerManual      TriggerKind = "manual"
)

// RepoRef identifies the repository an event targets.
type RepoRef struct {
	Owner         string
	Name          string
	DefaultBranch string
}

// Commit carries the file lists of one pushed commit.
type Commit struct {
	Added    []string
	Modified []string
	Removed  []string
}

// PushInfo is the push variant payload.
type PushInfo struct {
	Ref     string
	Commits []Commit
}

// PullRequestInfo is the pull-request variant payload.
type PullRequestInfo struct {
	Action  string
	Merged  bool
	BaseRef string
}

// Trigger is the resolved sync trigger. Exactly one variant pointer matching
// Kind is set.
type Trigger struct {
	Kind        TriggerKind
	Repo        RepoRef
	Push        *PushInfo
	PullRequest *PullRequestInfo
}

// ShouldSync applies branch filtering: only pushes to the repository's
// default branch and pull requests merged into it start a sync. The branch
// declared in the event payload is authoritative; fallback covers payloads
// that omit it. Manual triggers always run.
func (t Trigger) ShouldSync(fallbackBranch string) bool {
	branch := t.Repo.DefaultBranch
	if branch == "" {
		branch = fallbackBranch
	}

	switch t.Kind {
	case TriggerManual:
		return true
	case TriggerPush:
		return t.Push != nil && t.Push.Ref == "refs/heads/"+branch
	case TriggerPullRequest:
		pr := t.PullRequest
		return pr != nil && pr.Action == "closed" && pr.Merged && pr.BaseRef == branch
	default:
		return false
	}
}
