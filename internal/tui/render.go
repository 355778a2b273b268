package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/council/internal/provider"
	"github.com/Iron-Ham/council/internal/transcript"
	"github.com/Iron-Ham/council/internal/tui/styles"
)

// renderTranscript draws events in id order. Consult-lane events are
// indented under the main lane; hidden when showLanes is false.
func renderTranscript(events []transcript.Event, showLanes bool, label func(string) string, width int) string {
	var blocks []string
	for _, ev := range events {
		if !ev.IsMain() && !showLanes {
			continue
		}
		blocks = append(blocks, renderEvent(ev, label, width))
	}
	return strings.Join(blocks, "\n")
}

func renderEvent(ev transcript.Event, label func(string) string, width int) string {
	main := ev.IsMain()
	name := label(ev.Author)
	if !main && ev.Author == transcript.AuthorOrchestrator {
		if roleID, ok := transcript.LaneRole(ev.Lane); ok {
			name = fmt.Sprintf("%s → %s", name, label(roleID))
		}
	}
	head := fmt.Sprintf("%s %s  %s",
		styles.LaneIcon(main),
		styles.AuthorStyle(ev.Author).Render(name),
		styles.Muted.Render(ev.Timestamp.Format("15:04:05")))

	text := ev.Text
	bodyStyle := lipgloss.NewStyle()
	if provider.IsPlaceholder(text) {
		bodyStyle = styles.Placeholder
	}

	if main {
		body := bodyStyle.Width(max(width-2, 10)).Render(text)
		return head + "\n" + body
	}
	inner := bodyStyle.Width(max(width-6, 10)).Render(text)
	return styles.ConsultLane.Render(head + "\n" + inner)
}
