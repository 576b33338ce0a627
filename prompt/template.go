// Package prompt renders the generation and summarisation prompts from
// typed inputs. Every slot is a struct field and every optional block is an
// explicit conditional section, so a prompt cannot silently reference a
// value nobody supplied.
package prompt

import (
	"fmt"
	"strings"

	"github.com/seatpick/copysmith/models"
)

// GenerationInput is the slot set for one copy-generation attempt.
type GenerationInput struct {
	PageName string
	Language string
	MinWords int
	MaxWords int

	// SearchVolume renders a metrics section when set.
	SearchVolume *models.SearchVolumeRecord

	// CompetitorInsights renders an insights section when non-empty.
	CompetitorInsights string

	// Constraints carries corrective feedback from prior attempts. It is a
	// dedicated channel, kept apart from the competitor insights.
	Constraints []string
}

// GenerationSystem is the fixed system prompt for copy generation.
const GenerationSystem = `You are a senior SEO copywriter for SeatPick, a ticket comparison marketplace. Write engaging, accurate marketing copy in a confident, helpful tone. Never invent prices or availability. Return plain text only, no markdown headings.`

// RenderGeneration builds the user prompt for one generation attempt.
func RenderGeneration(in GenerationInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a landing page description for %q.\n", in.PageName)
	fmt.Fprintf(&b, "Language: %s.\n", in.Language)
	fmt.Fprintf(&b, "Length: between %d and %d words.\n", in.MinWords, in.MaxWords)

	section(&b, "Revision requirements", strings.Join(in.Constraints, "\n"))

	if sv := in.SearchVolume; sv != nil {
		section(&b, "Search metrics", fmt.Sprintf(
			"Monthly search volume: %d. Competition: %s. CPC: $%.2f.",
			sv.SearchVolume, sv.Competition, sv.CPC,
		))
	}

	section(&b, "Competitor insights", in.CompetitorInsights)

	b.WriteString("\nCover what fans care about: ticket availability, seating, pricing transparency and how SeatPick compares options across sellers.")
	return b.String()
}

// InsightsSystem is the fixed system prompt for competitor summarisation.
const InsightsSystem = `You are an SEO analyst. Summarise what the provided competitor pages do well and what gaps a better page could fill. Be concrete and concise (under 200 words). Return plain text.`

// RenderInsights builds the user prompt for the insight-summarisation call.
func RenderInsights(keyword string, contents []models.CompetitorContent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Keyword: %q. Competitor pages ranking for it:\n", keyword)

	for i, c := range contents {
		fmt.Fprintf(&b, "\n--- Competitor %d: %s ---\n", i+1, c.Domain)
		section(&b, "Title", c.Title)
		section(&b, "Meta description", c.MetaDescription)
		section(&b, "Content", c.Content)
	}

	b.WriteString("\nSummarise their common themes, strengths and the gaps our page should exploit.")
	return b.String()
}

// section writes a titled block only when the value is non-empty. This is
// the conditional-block construct: absent data renders nothing at all.
func section(b *strings.Builder, title, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "\n%s:\n%s\n", title, value)
}

// TooShortFeedback names the violation for an under-length attempt.
func TooShortFeedback(got, min int) string {
	return fmt.Sprintf("The previous draft was %d words, which is too short. Write at least %d words.", got, min)
}

// TooLongFeedback names the violation for an over-length attempt.
func TooLongFeedback(got, max int) string {
	return fmt.Sprintf("The previous draft was %d words, which is too long. Stay under %d words.", got, max)
}
