package notifier

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/pfrederiksen/vote-projector/internal/projection"
)

// DryRunNotifier prints what would be tweeted without actually posting
type DryRunNotifier struct {
	w io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to w
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	return &DryRunNotifier{w: w}
}

// Notify prints the tweet that would be posted
func (n *DryRunNotifier) Notify(sp *projection.StateProjection) error {
	tweet := formatTweet(sp)
	fmt.Fprintln(n.w, "--- Tweet ---")
	fmt.Fprintln(n.w, tweet)
	fmt.Fprintf(n.w, "\n(Length: %d characters)\n", utf8.RuneCountInString(tweet))
	return nil
}
