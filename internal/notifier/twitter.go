package notifier

import (
	"fmt"
	"os"
	"strings"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/vote-projector/internal/county"
	"github.com/pfrederiksen/vote-projector/internal/projection"
)

const maxTweetRunes = 280

// TwitterCredentials holds the OAuth1 keys for posting
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// CredentialsFromEnv reads TWITTER_API_KEY, TWITTER_API_SECRET,
// TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET
func CredentialsFromEnv() TwitterCredentials {
	return TwitterCredentials{
		APIKey:       os.Getenv("TWITTER_API_KEY"),
		APISecret:    os.Getenv("TWITTER_API_SECRET"),
		AccessToken:  os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessSecret: os.Getenv("TWITTER_ACCESS_SECRET"),
	}
}

func (c TwitterCredentials) complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// TwitterNotifier posts the projection summary to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier from credentials
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	if !creds.complete() {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient)}, nil
}

// Notify posts one tweet with the statewide summary
func (n *TwitterNotifier) Notify(sp *projection.StateProjection) error {
	if _, _, err := n.client.Statuses.Update(formatTweet(sp), nil); err != nil {
		return fmt.Errorf("failed to post projection tweet: %w", err)
	}
	return nil
}

// formatTweet formats the statewide projection as a tweet
func formatTweet(sp *projection.StateProjection) string {
	var b strings.Builder

	if sp.State != "" {
		fmt.Fprintf(&b, "🗳️ %s projection\n\n", sp.State)
	} else {
		b.WriteString("🗳️ Vote projection\n\n")
	}

	fmt.Fprintf(&b, "🏆 Projected winner: %s\n", sp.WinnerName)
	fmt.Fprintf(&b, "%s: %d (%.2f%%)\n", sp.Candidates.DisplayName(county.SlotA), int64(sp.ProjectedATotal), sp.PercentA)
	fmt.Fprintf(&b, "%s: %d (%.2f%%)\n", sp.Candidates.DisplayName(county.SlotB), int64(sp.ProjectedBTotal), sp.PercentB)
	fmt.Fprintf(&b, "📊 Error margin: %.2f%% across %d counties\n", sp.ErrorMargin, len(sp.Counties))
	b.WriteString("\n#Election")

	tweet := b.String()

	// Twitter limit is 280 characters
	runes := []rune(tweet)
	if len(runes) > maxTweetRunes {
		tweet = string(runes[:maxTweetRunes-3]) + "..."
	}

	return tweet
}
