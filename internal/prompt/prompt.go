// Package prompt renders the instruction text sent to the language model.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/cvsheet/internal/model"
	"github.com/verte-zerg/cvsheet/internal/stats"
)

type data struct {
	Snapshot   model.Snapshot
	Stats      string
	Existing   string
	Update     bool
	Thresholds stats.Thresholds
}

var funcs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"f1":    func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"f2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"total": func(h model.Histogram) int { return h.Total() },
}

var tmpl = template.Must(template.New("prompt").Funcs(funcs).Parse(promptTemplate))

// Build renders the prompt for snap. A non-empty existing document switches
// to update mode, which preserves hand-written sections.
func Build(snap model.Snapshot, th stats.Thresholds, existing string) (string, error) {
	statsJSON, err := StatsJSON(snap)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data{
		Snapshot:   snap,
		Stats:      statsJSON,
		Existing:   existing,
		Update:     strings.TrimSpace(existing) != "",
		Thresholds: th,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// StatsJSON encodes snap as indented JSON without HTML escaping.
func StatsJSON(snap model.Snapshot) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return "", fmt.Errorf("failed to encode statistics: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

const promptTemplate = `{{if .Update}}
You are an expert AI assistant that updates datasheets for Mozilla Common Voice.
Your task is to **UPDATE** the provided markdown file with new statistics. You must intelligently merge the new data while preserving manually-written sections.

**Core Task:**
Replace the old, auto-generated statistical sections in the "EXISTING MARKDOWN" with fresh data from the "NEW STATISTICAL DATA" section.
- **Preserve Manual Content:** Sections like 'History', 'Acknowledgements', or detailed, human-written introductions should be kept exactly as they are.
- **Replace Statistical Content:** Sections that are clearly generated from data (like 'Clip & Sentence Statistics', 'Demographic Information', 'Text Corpus', 'Contributor Statistics', etc.) must be completely replaced with newly generated content based on the new data.
- **Follow all formatting and content instructions below** when generating the new sections.

**EXISTING MARKDOWN:**
---
{{.Existing}}
---
{{else}}
You are an expert AI assistant that creates datasheets for Mozilla Common Voice datasets.
Your task is to generate a comprehensive and accurate markdown file from scratch based on the statistical data provided below. Follow all instructions with extreme precision.
{{end}}
**NEW STATISTICAL DATA:**
{{.Stats}}
{{with .Snapshot}}
**DETAILED INSTRUCTIONS (Apply to new and updated sections):**

**1. Main Title:**
Ensure the title is: ` + "`# Mozilla Common Voice: {{.Language.Name}} ({{.Language.Code}})`" + `

**2. Language Section:**
If updating, preserve any existing detailed introduction. If creating from scratch, write a brief, encyclopedic introduction for the ` + "`{{.Language.Name}}`" + ` language, including its language family, regions, and speaker count.

**3. Clip & Sentence Statistics Section:**
Generate a section titled ` + "`## Clip & Sentence Statistics`" + `. State that the dataset contains **{{f2 .ClipStats.ValidatedHours}} validated hours** of speech from **{{comma (total .ContributorStats)}}** unique contributors. Then, create two markdown tables EXACTLY as follows:

First table (Clip Summary):
| Type                | Count | Hours  |
| ------------------- | ----: | -----: |
| Validated Clips     | {{comma .ClipStats.ValidatedCount}} |   {{f2 .ClipStats.ValidatedHours}} |
| Invalidated Clips   | {{comma .ClipStats.InvalidatedCount}} |   {{f2 .ClipStats.InvalidatedHours}} |
| **Total Clips**     | {{comma .ClipStats.TotalCount}} |   {{f2 .ClipStats.TotalHours}} |

Second table (Sentence Summary):
| Type                  |   Count |
| --------------------- | ------: |
| Validated Sentences   |   {{comma .SentenceStats.ValidatedCount}} |
| Invalidated Sentences |     {{comma .SentenceStats.InvalidatedCount}} |
| **Total Sentences**   |     {{comma .SentenceStats.TotalCount}} |

**4. Demographic Information Section:**
Generate a section ` + "`## Demographic Information`" + `. Include the sentence: "Demographic information is self-reported by contributors and may not be representative of the entire speaker population."
- Create subsections ` + "`### Age`" + ` and ` + "`### Gender`" + ` with tables.
- Create ` + "`### Accent`" + ` with two tables: the first for raw data, the second titled ` + "`#### English Translation of Accents`" + ` providing best-effort translations/explanations.

**5. Contributor Statistics Section:**
Generate a section ` + "`## Contributor Statistics`" + ` with a table showing the distribution of clips per contributor.

**6. Text Corpus Section:**
Generate ` + "`## Text Corpus`" + `. Add these bullet points:
- **Total validated sentences:** {{comma .SentenceStats.ValidatedCount}}
- **Sentences without a recording yet:** {{comma .TextCorpus.SentencesWithoutRecording}}
- **Average clips per validated sentence:** {{f2 .TextCorpus.AverageClipsPerSentence}}
- **Average sentence length (tokens):** {{f1 .TextCorpus.AverageSentenceLengthTokens}}
- **Average sentence length (characters):** {{f1 .TextCorpus.AverageSentenceLengthChars}}
Then create subsections for ` + "`### Corpus Sources`" + `, ` + "`### Alphabet`" + `, and ` + "`### Sample Sentences`" + `.

**7. Community Links Section & Conditional Call to Action:**
Generate ` + "`## Community Links`" + `.
- Add a link to the main page: ` + "`https://commonvoice.mozilla.org/{{.Language.Code}}`" + `.
- **Conditional Analysis:** If ` + "`sentences_without_recording`" + ` is less than {{$.Thresholds.Sentences}} OR ` + "`average_clips_per_sentence`" + ` is greater than {{$.Thresholds.AvgClips}}, add a prominent note stating this language is in **dire need of new sentences** to provide variety for voice contributors.

**8. Fun Fact Section:**
Generate ` + "`## Fun Fact`" + `. Provide one interesting, non-offensive fun fact about the ` + "`{{.Language.Name}}`" + ` language, and cite the source.

**9. Final Sections:**
- Generate ` + "`## Datasheet Authors`" + ` credited to 'This datasheet was generated automatically...'. Preserve any existing human authors if updating.
- **Modern Call to Action:** After everything else, add a final, encouraging call to action. Invite readers to help grow the dataset for ` + "`{{.Language.Name}}`" + ` by contributing in four key ways: **Speaking** new clips, **Listening** to and verifying others' recordings, **Writing** new public domain sentences, and **Reviewing** sentences submitted by the community, all on the main Common Voice website.
{{end}}
**10. Formatting Rules (Strictly follow):**
- Maximum line width is 79 characters. Wrap paragraphs.
- Use '$$$' for code blocks, NOT '` + "```" + `'.
- Right-align numbers in tables where appropriate.
`
