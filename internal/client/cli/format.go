package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/syncdraft/internal/client/models"
	"github.com/dmitrijs2005/syncdraft/internal/common"
)

// now is a test seam for relative timestamps.
var now = time.Now

func relTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now(), "ago", "from now")
}

func words(n int) string {
	if n == 1 {
		return "1 word"
	}
	return humanize.Comma(int64(n)) + " words"
}

func postLine(i int, p models.Post, active bool) string {
	marker := " "
	if active {
		marker = "*"
	}
	return fmt.Sprintf("%s %2d. %-32s %-9s %10s  %s",
		marker, i+1, truncate(p.Title, 32), p.Status, words(p.WordCount), relTime(p.UpdatedAt))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// resolvePost finds a post by its 1-based position in posts or by id.
func resolvePost(posts []models.Post, ref string) (models.Post, error) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(posts) {
		return posts[n-1], nil
	}
	for _, p := range posts {
		if p.ID == ref {
			return p, nil
		}
	}
	return models.Post{}, fmt.Errorf("post %q: %w", ref, common.ErrorNotFound)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
