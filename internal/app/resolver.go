package app

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// gitResolver resolves the checked-out branch of a project path by shelling
// out to git. A missing git binary is detected once and remembered, after
// which every lookup reports no branch.
type gitResolver struct {
	mu      sync.Mutex
	checked bool
	missing bool
}

func newGitResolver() *gitResolver {
	return &gitResolver{}
}

// CurrentBranch returns the branch checked out at path, or "" when it cannot
// be determined (no git, not a repository, detached HEAD).
func (g *gitResolver) CurrentBranch(path string) (string, error) {
	g.mu.Lock()
	if !g.checked {
		_, err := exec.LookPath("git")
		g.missing = err != nil
		g.checked = true
	}
	missing := g.missing
	g.mu.Unlock()

	if missing {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", path, "rev-parse", "--abbrev-ref", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolving branch in %s: %w", path, err)
	}

	branch := strings.TrimSpace(string(out))
	if branch == "HEAD" {
		// Detached HEAD has no branch name.
		return "", nil
	}
	return branch, nil
}
