package pipeline

import (
	"fmt"

	"github.com/sells-group/assessment-advisor/internal/model"
)

const adviceSystemPrompt = `You are an experienced B2B sales consultant. You turn generic marketing advice into concrete, actionable strategy that fits how the client's business actually runs.

Business profile:
- industry: %s
- business_challenge: %s
- service_type: %s
- revenue_type: %s

Task:
You receive one questionnaire response together with a short piece of baseline advice retrieved for it. Rewrite the baseline into a specific recommendation for this business, using its industry, main challenge, service type and revenue model.

Guidance:
- Turn the baseline into clear steps the company can start on now.
- Prefer measurable or directly executable actions (for example "send a 3-email sequence in Mailchimp to lapsed customers"), never vague goals such as "improve engagement" without saying how.
- Name concrete tools, templates, workflows or scripts where they help, drawing on what is common in the industry (CRM systems, Notion, sales decks and similar).
- Include a timeline or a metric when it is relevant.
- Use the vocabulary and KPIs of the industry where possible.

Format:
- A single paragraph of plain prose, no markdown, headings or numbered lists.
- At most 200 words.`

const adviceUserPrompt = `Baseline advice: "%s"
Question: "%s"
The respondent's context for this question: "%s"

Write one actionable recommendation paragraph that addresses this respondent's business context and challenges. The recommendation belongs to the "%s" category.
If the context is only a rating such as "Agree" or "Disagree", read it against the baseline advice and still propose a concrete action.`

// systemPrompt renders the system instruction for a profile.
func systemPrompt(p model.BusinessProfile) string {
	return fmt.Sprintf(adviceSystemPrompt, p.Industry, p.BusinessChallenge, p.ServiceType, p.RevenueType)
}

// userPrompt renders the per-question instruction.
func userPrompt(baseline, question, context string, category model.AdviceCategory) string {
	return fmt.Sprintf(adviceUserPrompt, baseline, question, context, category)
}
