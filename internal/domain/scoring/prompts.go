package scoring

import (
	"fmt"
	"strings"
)

const systemInstruction = `You are an experienced hiring assessor. Respond with a single JSON object and nothing else.
The object must contain: "score" (number 0-100), "passed" (boolean), "metrics" (object of numbers),
"summary" (string), "strengths" (array of strings), "concerns" (array of strings).`

var (
	screeningMetricKeys  = []string{"completeness", "keyword_match", "skill_match"}
	technicalMetricKeys  = []string{"technical_depth", "problem_solving", "communication_of_ideas"}
	behavioralMetricKeys = []string{"communication", "confidence", "clarity", "hesitation_count"}
)

func screeningPrompt(in Input) string {
	c := in.Candidate
	var b strings.Builder
	b.WriteString("Screen this candidate profile against the role.\n\n")
	writeJob(&b, in)
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nLocation: %s\n", c.Name, c.Email, c.Location)
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(c.Skills, ", "))
	fmt.Fprintf(&b, "Summary: %s\nExperience: %s\nEducation: %s\n\n", c.Summary, c.Experience, c.Education)
	writeMetrics(&b, screeningMetricKeys)
	return b.String()
}

func technicalPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("Assess the technical depth shown in this interview transcript.\n\n")
	writeJob(&b, in)
	fmt.Fprintf(&b, "Candidate skills: %s\n\nTranscript:\n%s\n\n", strings.Join(in.Candidate.Skills, ", "), transcriptOrNone(in.Transcript))
	writeMetrics(&b, technicalMetricKeys)
	return b.String()
}

func behavioralPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("Assess communication and behavioral signals in this interview transcript.\n\n")
	writeJob(&b, in)
	fmt.Fprintf(&b, "Transcript:\n%s\n\n", transcriptOrNone(in.Transcript))
	writeMetrics(&b, behavioralMetricKeys)
	b.WriteString("hesitation_count is the number of filler words and hedges.\n")
	return b.String()
}

func writeJob(b *strings.Builder, in Input) {
	if in.Job == nil {
		return
	}
	fmt.Fprintf(b, "Role: %s\nRequired skills: %s\n\n", in.Job.Title, strings.Join(in.Job.RequiredSkills, ", "))
}

func writeMetrics(b *strings.Builder, keys []string) {
	fmt.Fprintf(b, "Required metrics keys (numbers 0-100 unless noted): %s\n", strings.Join(keys, ", "))
}

func transcriptOrNone(t string) string {
	if strings.TrimSpace(t) == "" {
		return "(no transcript)"
	}
	return t
}
