package slack

import (
	"fmt"

	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"github.com/slack-go/slack"
)

// Columns shown as short fields under the header, in display order
var summaryColumns = []types.Column{
	types.ColumnOpenedAt,
	types.ColumnClosedAt,
	types.ColumnSystem,
	types.ColumnLocation,
	types.ColumnClassification,
	types.ColumnImpact,
	types.ColumnChannel,
	types.ColumnStatus,
	types.ColumnCoordinatingUnit,
	types.ColumnOwner,
}

// maxDescription keeps the section text well below Slack's 3000 character limit
const maxDescription = 2500

// GetStatusEmoji returns the emoji shown next to a status label
func GetStatusEmoji(status string) string {
	switch types.Status(status) {
	case types.StatusClosed:
		return "✅"
	case types.StatusInProgress:
		return "🔧"
	case types.StatusOpen:
		return "🚨"
	default:
		return "🔍"
	}
}

// BuildEntryBlocks renders a saved entry as a header, the key fields and the description
func BuildEntryBlocks(entry *model.Entry) []slack.Block {
	rec := entry.Record
	status := rec.Get(types.ColumnStatus)

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(
			slack.PlainTextType,
			fmt.Sprintf("%s %s", GetStatusEmoji(status), entry.Code()),
			true, false,
		)),
	}

	var fields []*slack.TextBlockObject
	for _, c := range summaryColumns {
		v := rec.Get(c)
		if v == "" {
			continue
		}
		fields = append(fields, slack.NewTextBlockObject(
			slack.MarkdownType,
			fmt.Sprintf("*%s*\n%s", c.Header(), v),
			false, false,
		))
	}
	if len(fields) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
	}

	if desc := rec.Get(types.ColumnDescription); desc != "" {
		if r := []rune(desc); len(r) > maxDescription {
			desc = string(r[:maxDescription]) + "…"
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*\n%s", types.ColumnDescription.Header(), desc), false, false),
			nil, nil,
		))
	}

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("%s: %s", types.ReportedAtHeader, entry.ReportedAt.Format("2006-01-02 15:04:05")),
			false, false),
	))

	return blocks
}
