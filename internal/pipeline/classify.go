package pipeline

import (
	"strings"

	"go.uber.org/zap"

	"github.com/tendersight/tender-cli/internal/model"
	"github.com/tendersight/tender-cli/internal/rules"
)

// Classify scores the combined document text against the portal indicator
// table and picks the highest-scoring portal at or above the threshold.
// Ties and sub-threshold scores fall back to the generic portal.
func Classify(docs []model.Document) model.Classification {
	var sb strings.Builder
	for _, d := range docs {
		sb.WriteString(d.Text)
		sb.WriteString("\n")
	}
	sample := strings.ToLower(sb.String())

	table := rules.Portals()
	scores := make(map[string]int, len(table.Portals))
	for portal, indicators := range table.Portals {
		total := 0
		for _, ind := range indicators {
			if strings.Contains(sample, ind.Phrase) {
				total += ind.Weight
			}
		}
		scores[portal] = total
	}

	winner := model.PortalGeneric
	best := 0
	tied := false
	for portal, score := range scores {
		switch {
		case score > best:
			winner, best, tied = portal, score, false
		case score == best && score > 0:
			tied = true
		}
	}
	if best < table.Threshold || tied {
		winner = model.PortalGeneric
	}

	zap.L().Debug("classify: portal scored",
		zap.String("portal", winner),
		zap.Any("scores", scores),
	)
	return model.Classification{Portal: winner, Scores: scores}
}
