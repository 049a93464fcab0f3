// Package format renders pipeline results as Telegram HTML messages.
package format

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/platform"
)

const descriptionLimit = 100

var platformEmojis = map[platform.Platform]string{
	platform.TikTok:    "🎥",
	platform.Instagram: "📷",
	platform.YouTube:   "🎬",
}

var verdictEmojis = map[models.Verdict]string{
	models.VerdictVerified:    "✅",
	models.VerdictMostlyTrue:  "☑️",
	models.VerdictMixed:       "⚠️",
	models.VerdictMostlyFalse: "❌",
	models.VerdictFalse:       "🚫",
}

var verdictLabels = map[models.Verdict]string{
	models.VerdictVerified:    "Verified",
	models.VerdictMostlyTrue:  "Mostly true",
	models.VerdictMixed:       "Mixed",
	models.VerdictMostlyFalse: "Mostly false",
	models.VerdictFalse:       "False",
}

// CheckResult renders a full verification report for one content record.
func CheckResult(content *models.ContentRecord, verification *models.Verification) string {
	var b strings.Builder

	title := content.Title
	if title == "" {
		title = truncate(content.Description, 50)
	}
	if title == "" {
		title = content.Platform.DisplayName() + " post"
	}

	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", platformEmojis[content.Platform], html.EscapeString(title))
	fmt.Fprintf(&b, "👤 <b>Author:</b> @%s\n", html.EscapeString(content.Author))

	description := content.Description
	if description == "" {
		description = "No description"
	}
	fmt.Fprintf(&b, "📝 %s\n\n", html.EscapeString(truncate(description, descriptionLimit)))

	b.WriteString("📊 <b>Statistics:</b>\n")
	fmt.Fprintf(&b, "❤️ %d likes\n", content.Likes)
	fmt.Fprintf(&b, "💬 %d comments\n", content.Comments)
	if content.Platform == platform.TikTok {
		fmt.Fprintf(&b, "🔄 %d shares\n", content.Shares)
		fmt.Fprintf(&b, "👁️ %d views\n", content.Views)
	} else if content.Views > 0 {
		fmt.Fprintf(&b, "👁️ %d views\n", content.Views)
	} else {
		b.WriteString("👁️ Photo\n")
	}

	b.WriteString("\n━━━━━━━━━━━━━━━\n\n")
	b.WriteString(verdictSection(verification))

	return b.String()
}

// Notification wraps a check result in a watch-list alert header.
func Notification(username string, content *models.ContentRecord, verification *models.Verification) string {
	return fmt.Sprintf("🔔 <b>New video from @%s</b>\n\n%s",
		html.EscapeString(username), CheckResult(content, verification))
}

func verdictSection(v *models.Verification) string {
	var b strings.Builder

	emoji, ok := verdictEmojis[v.Verdict]
	if !ok {
		emoji = "❓"
	}
	label, ok := verdictLabels[v.Verdict]
	if !ok {
		label = string(v.Verdict)
	}

	fmt.Fprintf(&b, "%s <b>VERIFICATION RESULT</b>\n\n", emoji)
	fmt.Fprintf(&b, "🎯 <b>Verdict:</b> %s\n", label)
	fmt.Fprintf(&b, "📊 <b>Score:</b> %d/100\n", v.Score)

	if v.Summary != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", html.EscapeString(v.Summary))
	}

	if len(v.ToolsUsed) > 0 {
		b.WriteString("\n🔧 <b>Analysis tools used:</b>\n")
		for _, tool := range v.ToolsUsed {
			fmt.Fprintf(&b, "  • %s\n", html.EscapeString(tool))
		}
	}

	if v.Explanation != "" {
		fmt.Fprintf(&b, "\n💬 <b>Detailed analysis:</b>\n%s\n", html.EscapeString(v.Explanation))
	}

	if len(v.Flags) > 0 {
		b.WriteString("\n⚠️ <b>Alerts:</b>\n")
		for _, flag := range v.Flags {
			fmt.Fprintf(&b, "  • %s\n", html.EscapeString(flag.Message))
		}
	}

	return b.String()
}

// WatchList renders the user's watched accounts.
func WatchList(watches []*models.WatchedAccount, maxPerUser int) string {
	if len(watches) == 0 {
		return "ℹ️ You are not watching any account yet.\n\nUse /monitor @username to start."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Your watched accounts (%d/%d)</b>\n\n", len(watches), maxPerUser)

	for _, w := range watches {
		lastCheck := "Never"
		if w.LastCheckedAt != nil {
			lastCheck = w.LastCheckedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "👤 <b>@%s</b>\n   Last checked: %s\n\n", html.EscapeString(w.Username), lastCheck)
	}

	b.WriteString("\nUse /stop @username to stop watching an account.")
	return b.String()
}

// WatchStarted confirms a new watch, with the profile details when known.
func WatchStarted(username, nickname string, followers, videos int64, interval time.Duration) string {
	var b strings.Builder
	b.WriteString("✅ <b>Watch enabled!</b>\n\n")
	if nickname != "" {
		fmt.Fprintf(&b, "👤 <b>%s</b> (@%s)\n", html.EscapeString(nickname), html.EscapeString(username))
	} else {
		fmt.Fprintf(&b, "👤 <b>@%s</b>\n", html.EscapeString(username))
	}
	fmt.Fprintf(&b, "📊 %d followers\n", followers)
	fmt.Fprintf(&b, "🎥 %d videos\n\n", videos)
	fmt.Fprintf(&b, "New videos will be verified automatically every %s.\n\n", interval)
	fmt.Fprintf(&b, "Use /stop @%s to stop watching.", html.EscapeString(username))
	return b.String()
}

// UserStats renders the per-user statistics summary.
func UserStats(stats *models.UserStats) string {
	joined := "Unknown"
	if stats.JoinedAt != nil {
		joined = stats.JoinedAt.Format("2006-01-02")
	}
	return fmt.Sprintf(`📊 <b>Your statistics</b>

🔍 Checks requested: %d
👥 Accounts watched: %d
🎥 Videos analyzed: %d
📅 Member since: %s`,
		stats.RequestCount, stats.WatchCount, stats.VerifiedCount, joined)
}

// Welcome is the /start greeting.
func Welcome() string {
	return `🎯 <b>Welcome to the Fact-Checker Bot!</b>

I help you verify the credibility of TikTok, Instagram and YouTube content with AI-powered analysis.

<b>📋 Available commands:</b>

<b>/check [url]</b> - Verify a video or post
<i>Example: /check https://tiktok.com/@user/video/123456</i>

<b>/monitor @username</b> - Watch a TikTok account
<i>New videos are verified automatically</i>

<b>/stop @username</b> - Stop watching an account

<b>/list</b> - See your watched accounts

<b>/stats</b> - See your statistics

<b>/help</b> - Show help

🚀 Start now with /check!`
}

// Help is the /help guide.
func Help(maxPerUser int, interval time.Duration) string {
	return fmt.Sprintf(`📖 <b>User guide</b>

<b>1️⃣ Verify content</b>
Use /check followed by a TikTok, Instagram or YouTube URL:
<code>/check https://tiktok.com/@user/video/123456</code>

The bot will:
✓ Extract the content and its metadata
✓ Analyze it with AI fact-checking tools
✓ Give you a credibility score
✓ Detect potential manipulations

<b>2️⃣ Watch an account</b>
Use /monitor to verify new videos automatically:
<code>/monitor @username</code>

<b>3️⃣ Stop watching</b>
<code>/stop @username</code>

<b>4️⃣ Manage your watches</b>
• <code>/list</code> - See your watched accounts
• <code>/stats</code> - See your statistics

<b>⚠️ Limits</b>
• Upstream API rate limits apply
• Max %d watched accounts per user
• Sweeps run every %s`, maxPerUser, interval)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
