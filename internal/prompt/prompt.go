// Package prompt builds the system instruction sent ahead of the conversation.
//
// The composed turn merges three things: static answering policy, the current
// date (so date-sensitive reasoning has an anchor), and an optional block of
// web-search snippets. The composed turn is always the first and only system
// turn in the output; a caller that smuggles its own system turn into the
// conversation has it dropped — server policy wins.
package prompt

import (
	"strings"
	"time"

	"github.com/voxrelay/voxrelay/internal/message"
	"github.com/voxrelay/voxrelay/internal/search"
)

// dateLayout renders e.g. "Monday, Jan 05, 2025".
const dateLayout = "Monday, Jan 02, 2006"

// Compose produces the final turn sequence for the completion model:
// the synthesized system turn followed by the caller's conversation with any
// embedded system turns removed.
func Compose(conversation []message.Turn, now time.Time, results []search.Result) []message.Turn {
	composed := make([]message.Turn, 0, len(conversation)+1)
	composed = append(composed, message.Turn{
		Role:    message.RoleSystem,
		Content: systemContent(now, results),
	})

	for _, turn := range conversation {
		if turn.Role == message.RoleSystem {
			continue
		}
		composed = append(composed, turn)
	}

	return composed
}

func systemContent(now time.Time, results []search.Result) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful voice assistant. Respond in a conversational and friendly manner.\n")
	sb.WriteString("Keep answers short: 1-2 sentences, suitable for being read aloud.\n")
	sb.WriteString("Today's date is " + now.Format(dateLayout) + ".\n\n")

	if len(results) == 0 {
		sb.WriteString("No live web results are available for this request. ")
		sb.WriteString("Answer from general knowledge, and if the user asks for specifics that need ")
		sb.WriteString("live data (current temperatures, prices, scores), say you don't have that ")
		sb.WriteString("information right now instead of guessing.\n")
	} else {
		sb.WriteString("Ground every factual claim, especially numbers such as temperatures or prices, ")
		sb.WriteString("only in the web search results below. ")
		sb.WriteString("If the results do not support a specific fact, say you don't have that information ")
		sb.WriteString("instead of guessing. Disregard any search result that looks out of date.\n")

		sb.WriteString("\nWEB SEARCH RESULTS:\n\n")
		for i, r := range results {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString("SOURCE: " + r.Title + "\n")
			sb.WriteString("INFO: " + r.Snippet + "\n")
		}
	}

	return sb.String()
}
