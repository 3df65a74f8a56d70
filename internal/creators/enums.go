package creators

import (
	"fmt"
	"strings"

	"newsroom/internal/services"
)

// Tone selects the voice of an article.
type Tone string

const (
	ToneFormal         Tone = "formal"
	ToneCasual         Tone = "casual"
	ToneProfessional   Tone = "professional"
	ToneFriendly       Tone = "friendly"
	ToneInvestigative  Tone = "investigative"
	ToneUrgent         Tone = "urgent"
	ToneSatirical      Tone = "satirical"
	ToneEmpathetic     Tone = "empathetic"
	ToneAnalytical     Tone = "analytical"
	ToneConversational Tone = "conversational"
	ToneAuthoritative  Tone = "authoritative"
	ToneCritical       Tone = "critical"
)

// Tones lists every tone in declaration order.
var Tones = []Tone{
	ToneFormal, ToneCasual, ToneProfessional, ToneFriendly, ToneInvestigative, ToneUrgent,
	ToneSatirical, ToneEmpathetic, ToneAnalytical, ToneConversational, ToneAuthoritative, ToneCritical,
}

// ArticleType selects the structure of an article.
type ArticleType string

const (
	TypeSummary       ArticleType = "summary"
	TypeOpEd          ArticleType = "op_ed"
	TypeCritical      ArticleType = "critical"
	TypeNews          ArticleType = "news"
	TypeFeature       ArticleType = "feature"
	TypeProfile       ArticleType = "profile"
	TypeInvestigative ArticleType = "investigative"
	TypeEditorial     ArticleType = "editorial"
)

// ArticleTypes lists every article type in declaration order.
var ArticleTypes = []ArticleType{
	TypeSummary, TypeOpEd, TypeCritical, TypeNews, TypeFeature, TypeProfile, TypeInvestigative, TypeEditorial,
}

// ParseTone validates a tone name. Matching ignores case and surrounding
// whitespace.
func ParseTone(value string) (Tone, error) {
	normalized := Tone(normalizeEnum(value))
	for _, tone := range Tones {
		if tone == normalized {
			return tone, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "creators", "parse tone",
		fmt.Sprintf("unknown tone %q", value), nil)
}

// ParseArticleType validates an article type name. "op-ed" and "Op Ed" are
// accepted for op_ed.
func ParseArticleType(value string) (ArticleType, error) {
	normalized := ArticleType(normalizeEnum(value))
	for _, articleType := range ArticleTypes {
		if articleType == normalized {
			return articleType, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "creators", "parse article type",
		fmt.Sprintf("unknown article type %q", value), nil)
}

func normalizeEnum(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(value)
}
