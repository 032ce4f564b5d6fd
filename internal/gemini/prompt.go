package gemini

import (
	"strings"
	"text/template"

	"github.com/dgnsrekt/envoy/internal/briefing"
)

var detailInstructions = map[briefing.DetailLevel]string{
	briefing.Concise: `**Output Format Instructions:**
- Keep the briefing extremely concise and high-level: no more than 150 words in total.
- Give each section a single impactful sentence or one key bullet point.
- Include only what a delegate needs for a quick reminder before committee.`,
	briefing.Standard: `**Output Format Instructions:**
- Write a well-structured, informative briefing in a formal tone suitable for a MUN delegate's preparation.
- Cover all key points comprehensively.`,
	briefing.Detailed: `**Output Format Instructions:**
- Make the briefing exhaustive and deeply detailed.
- Expand on each point with historical context, specific data points, direct quotes from officials where available, and nuanced policy detail.
- Explore counter-arguments and alternative perspectives. The goal is a comprehensive research document.`,
}

const historySection = `### Relevant Historical Background
- Summarize the country's historical involvement with the topic in no more than 100 words.
- Highlight only the events or policies that fundamentally shaped its current perspective.`

var promptTemplate = template.Must(template.New("prompt").Parse(`Act as an expert political analyst and Model UN delegate advisor.
Generate a country briefing for a Model United Nations (MUN) conference.

Country: {{ .Country }}
MUN Committee Topic: "{{ .Topic }}"

{{ .Instructions }}

Cover the following sections, tailored to the country and topic. Format the response as Markdown with a heading for each section.

### Country's Stance
- The country's official position on the topic.
- Historical context and key policy drivers behind it.
- Internal political factors influencing the position.

### Relevant International Agreements and UN Involvement
- Treaties, conventions or UN resolutions related to the topic that the country has signed, ratified or is involved in.
- The country's voting record on key past resolutions on the issue.

### Key Allies and Blocs
- The country's main allies and the political, economic or regional blocs it aligns with on this issue (e.g. G77, EU, African Union, Arab League).
- The nature of these alliances regarding the topic.

### Potential Solutions and Policy Proposals
- Actionable solutions or clauses a delegate of this country could propose in a draft resolution.
- Proposals must be consistent with the country's foreign policy and national interests.

### Recent Actions and Statements
- Recent actions or official statements (within the last 1-2 years) by the country's government, leaders or UN representatives on the topic.
{{ if .History }}
{{ .History }}
{{ end }}
Use Markdown headings (e.g. '### Section Title') for each section, not bold text.
`))

// BuildPrompt renders the instruction sent to the model for req.
func BuildPrompt(req briefing.Request) string {
	level, err := briefing.ParseDetailLevel(string(req.Detail))
	if err != nil {
		level = briefing.Standard
	}

	data := struct {
		Country      string
		Topic        string
		Instructions string
		History      string
	}{
		Country:      strings.TrimSpace(req.Country),
		Topic:        strings.TrimSpace(req.Topic),
		Instructions: detailInstructions[level],
	}
	if req.IncludeHistory {
		data.History = historySection
	}

	var b strings.Builder
	// the template is static and the data plain strings
	_ = promptTemplate.Execute(&b, data)
	return b.String()
}
