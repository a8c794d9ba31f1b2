// Package poster generates and displays the social-media update for a
// completed purchase. Display only: posting never feeds back into the
// ledger, and a failure here must not undo a persisted purchase.
package poster

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}).
			Padding(1, 2)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#777777"})
)

// GeneratePost renders the update text for one purchase and the
// accumulated total.
func GeneratePost(purchase domain.Purchase, total domain.AssetQuantity) string {
	asset := purchase.Quantity.Unit()
	fiat := purchase.Spent.Unit()
	dateStr := purchase.Time.Format("January 02, 2006")

	var b strings.Builder
	fmt.Fprintf(&b, "Daily #%s DCA Update - %s\n\n", asset, dateStr)
	fmt.Fprintf(&b, "Today's Purchase:\n")
	fmt.Fprintf(&b, "- Bought: %s %s\n", purchase.Quantity.String(), asset)
	fmt.Fprintf(&b, "- Spent: %s %s\n", purchase.Spent.String(), fiat)
	fmt.Fprintf(&b, "- Price: %s %s per %s\n\n", purchase.UnitPrice.String(), fiat, asset)
	fmt.Fprintf(&b, "Total Accumulated: %s %s\n\n", total.String(), asset)
	fmt.Fprintf(&b, "#%s #Crypto #DCA #DollarCostAveraging", asset)

	post := b.String()
	if purchase.DryRun {
		post = "DRY RUN - " + post
	}
	return post
}

// Display prints the post to stdout for manual copy-posting.
func Display(text string) {
	fmt.Println()
	fmt.Println(frameStyle.Render(text))
	fmt.Println(hintStyle.Render("Copy the text above to post it on your social platforms."))
}
