package summarizer

import (
	"fmt"
	"strings"
)

const summaryPrompt = `You are an expert at analysing recorded talks and videos. Using the time-coded transcript below, write a detailed summary in %s.

Requirements:
- Start with a one-sentence overview of the topic of "%s"
- Cover every main point in the order it appears
- Use markdown: headings, bullet points, bold for key terms
- Finish with a "Chapters" section listing each topic change, one per line, exactly in this form:
  - [HH:MM:SS] **Chapter title** - one sentence description
- Chapter times must come from the transcript and must be in ascending order

Transcript:
---
%s
---`

// BuildPrompt renders the summarization prompt for a time-coded transcript.
func BuildPrompt(title, transcript, language string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "this video"
	}
	if language == "" {
		language = "English"
	}
	return fmt.Sprintf(summaryPrompt, language, title, strings.TrimSpace(transcript))
}
