package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/countygis/parcels/pkg/generate"
	"github.com/countygis/parcels/pkg/search"
)

// formatNumber formats a number with K/M suffixes for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	} else {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

// formatTime formats a time relative to now or as an absolute date
func formatTime(t time.Time) string {
	return formatTimeAt(t, time.Now())
}

func formatTimeAt(t, now time.Time) string {
	diff := now.Sub(t)

	// If it's within the last day, show relative time
	if diff < 24*time.Hour {
		if diff < time.Hour {
			minutes := int(diff.Minutes())
			if minutes < 1 {
				return "just now"
			}
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		hours := int(diff.Hours())
		return fmt.Sprintf("%d hours ago", hours)
	}

	if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d days ago", days)
	}

	if t.Year() == now.Year() {
		return t.Format("Jan 2, 15:04")
	}
	return t.Format("Jan 2, 2006")
}

// formatElapsed formats short run times like generator and query durations
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// formatHit renders one ranked parcel.
func formatHit(rank int, hit search.Hit, showScore bool) string {
	r := hit.Record

	var content strings.Builder
	owner := r.Owner
	if owner == "" {
		owner = "(no owner on record)"
	}
	header := fmt.Sprintf("%d. %s", rank, owner)
	content.WriteString(headerStyle.Render(header))
	content.WriteString("\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&content, "%-9s %s\n", label+":", value)
	}
	field("Parcel", r.PIDN)
	field("Physical", r.PhysicalAddress)
	field("Mailing", r.MailingAddress)

	location := r.County
	if r.State != "" {
		location = strings.TrimSpace(location + ", " + r.State)
	}
	field("County", location)

	meta := r.GlobalParcelUID
	if showScore {
		meta = fmt.Sprintf("%s  score %d", meta, hit.Score)
	}
	content.WriteString(metaStyle.Render(meta))

	for _, link := range []string{r.PropertyDet, r.TaxInfo, r.ClerkRec} {
		if link != "" {
			content.WriteString("\n")
			content.WriteString(urlStyle.Render(link))
		}
	}

	return blockStyle.Render(content.String())
}

// formatResults renders a search result list.
func formatResults(results *search.SearchResults, showScores bool) string {
	var out strings.Builder
	out.WriteString(titleStyle.Render(fmt.Sprintf("🔎 %s", results.Query)))
	out.WriteString("\n")

	if len(results.Hits) == 0 {
		out.WriteString(noDataStyle.Render("No matching parcels"))
		out.WriteString("\n")
		return out.String()
	}

	for i, hit := range results.Hits {
		out.WriteString(formatHit(i+1, hit, showScores))
		out.WriteString("\n")
	}

	summary := fmt.Sprintf("%d parcels in %s", results.TotalCount, formatElapsed(results.Duration))
	out.WriteString(summaryStyle.Render(summary))
	out.WriteString("\n")
	return out.String()
}

// formatStats renders dataset statistics
func formatStats(stats search.Stats) string {
	var out strings.Builder
	out.WriteString(titleStyle.Render("📊 Search Index Statistics"))
	out.WriteString("\n")

	fmt.Fprintf(&out, "Total parcels: %s\n", formatNumber(stats.TotalEntries))
	if stats.Skipped > 0 {
		fmt.Fprintf(&out, "Skipped:       %d\n", stats.Skipped)
	}
	if stats.LastUpdated != nil {
		fmt.Fprintf(&out, "Snapshot:      %s\n", formatTime(*stats.LastUpdated))
	}
	out.WriteString(metaStyle.Render(fmt.Sprintf("generation %s", stats.Generation)))
	out.WriteString("\n")

	if stats.TotalEntries == 0 {
		out.WriteString(noDataStyle.Render("No parcels loaded"))
		out.WriteString("\n")
		return out.String()
	}

	counties := make([]string, 0, len(stats.Counties))
	for name := range stats.Counties {
		counties = append(counties, name)
	}
	sort.Strings(counties)

	out.WriteString("\n")
	out.WriteString(headerStyle.Render("Counties"))
	out.WriteString("\n")
	for _, name := range counties {
		n := stats.Counties[name]
		percentage := float64(n) / float64(stats.TotalEntries) * 100
		fmt.Fprintf(&out, "  %-28s %8s (%.1f%%)\n", name, formatNumber(n), percentage)
	}

	idx := stats.Index
	out.WriteString("\n")
	out.WriteString(headerStyle.Render("Index"))
	out.WriteString("\n")
	fmt.Fprintf(&out, "  owners %d  parcels %d  prefixes %d  addresses %d  tokens %d\n",
		idx.OwnerKeys, idx.ParcelKeys, idx.ParcelPrefixes, idx.AddressKeys, idx.Tokens)
	return out.String()
}

// formatGenerateResult renders a generator run summary
func formatGenerateResult(result *generate.Result) string {
	var out strings.Builder
	out.WriteString(titleStyle.Render("🗺  Snapshot Generation"))
	out.WriteString("\n")

	for _, c := range result.Counties {
		label := c.Label
		if label == "" {
			label = c.County
		}
		if c.Error != "" {
			out.WriteString(errorStyle.Render(fmt.Sprintf("❌ %-28s %s", label, c.Error)))
			out.WriteString("\n")
			continue
		}
		line := fmt.Sprintf("✅ %-28s %8s records", label, formatNumber(c.Records))
		if c.Skipped > 0 {
			line += fmt.Sprintf(", %d skipped", c.Skipped)
		}
		out.WriteString(line)
		out.WriteString(metaStyle.Render(fmt.Sprintf("  %s", formatElapsed(c.Elapsed))))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	summary := fmt.Sprintf("%d records written to %s in %s", result.Total, result.Output, formatElapsed(result.Duration))
	out.WriteString(summaryStyle.Render(summary))
	out.WriteString("\n")
	return out.String()
}
