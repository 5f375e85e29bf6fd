package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/okian/hireloop/internal/domain/model"
)

// Screening heuristic.
const (
	completenessWeight   = 0.4
	keywordWeight        = 0.6
	keywordFullMarks     = 5
	screeningPassAbove   = 50
	interviewPassAtLeast = 60
)

// Technical heuristic.
const (
	technicalBaseline      = 65
	noTranscriptBaseline   = 50
	technicalTermBonus     = 2
	technicalBonusCap      = 15
	shortTranscriptWords   = 50
	shortTranscriptPenalty = 10
)

// Behavioral heuristic.
const (
	behavioralBaseline = 70
	hesitationPenalty  = 2
	hesitationCap      = 20
)

var skillVocabulary = []string{ //nolint:gochecknoglobals // fixed vocabulary
	"python", "java", "javascript", "typescript", "go", "golang", "rust", "c++", "c#",
	"sql", "postgresql", "mysql", "mongodb", "redis", "kafka",
	"react", "vue", "angular", "node.js", "html", "css",
	"docker", "kubernetes", "terraform", "aws", "gcp", "azure", "linux", "git",
	"rest", "graphql", "grpc", "microservices", "ci/cd",
	"machine learning", "data analysis", "agile", "scrum",
}

var technicalTerms = []string{ //nolint:gochecknoglobals // fixed vocabulary
	"algorithm", "complexity", "big o", "data structure", "database", "index",
	"api", "architecture", "cache", "concurrency", "thread", "mutex",
	"scalability", "latency", "throughput", "testing", "unit test", "deployment",
	"microservice", "queue", "transaction", "refactor", "design pattern",
	"recursion", "hash map", "load balancer", "profiling",
}

var hesitationMarkers = []string{ //nolint:gochecknoglobals // fixed vocabulary
	"um", "uh", "er", "you know", "i guess", "i think maybe", "sort of", "kind of",
}

func screeningPassed(score float64) bool { return score > screeningPassAbove }

func interviewPassed(score float64) bool { return score >= interviewPassAtLeast }

// screeningFallback scores profile completeness and vocabulary overlap.
func screeningFallback(in Input) model.LayerResult {
	c := in.Candidate
	fields := []bool{
		strings.TrimSpace(c.Name) != "",
		strings.TrimSpace(c.Email) != "",
		len(c.Skills) > 0,
		strings.TrimSpace(c.Experience) != "",
		strings.TrimSpace(c.Education) != "",
	}
	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	completeness := float64(filled) / float64(len(fields)) * 100

	profile := tokenize(strings.Join(append(append([]string{}, c.Skills...), c.Summary, c.Experience), " "))
	hits := countDistinct(profile, skillVocabulary)
	keywordMatch := math.Min(float64(hits), keywordFullMarks) / keywordFullMarks * 100

	skillMatch := keywordMatch
	if in.Job != nil && len(in.Job.RequiredSkills) > 0 {
		skillMatch = requiredSkillShare(c.Skills, in.Job.RequiredSkills)
	}

	score := round2(completenessWeight*completeness + keywordWeight*keywordMatch)
	return model.LayerResult{
		Score:  score,
		Passed: screeningPassed(score),
		Metrics: map[string]float64{
			"completeness":  round2(completeness),
			"keyword_match": round2(keywordMatch),
			"skill_match":   round2(skillMatch),
		},
		Summary: fmt.Sprintf("heuristic screening: %d/%d required fields, %d vocabulary matches", filled, len(fields), hits),
	}
}

// technicalFallback rewards technical vocabulary and penalizes short answers.
func technicalFallback(in Input) model.LayerResult {
	tokens := tokenize(in.Transcript)
	if len(tokens) == 0 {
		return neutral(interviewPassed, "technical_depth", "problem_solving", "communication_of_ideas")
	}

	terms := countDistinct(tokens, technicalTerms)
	score := float64(technicalBaseline) + math.Min(float64(terms*technicalTermBonus), technicalBonusCap)
	if len(tokens) < shortTranscriptWords {
		score -= shortTranscriptPenalty
	}
	score = clamp(score)

	return model.LayerResult{
		Score:  score,
		Passed: interviewPassed(score),
		Metrics: map[string]float64{
			"technical_depth":        clamp(50 + float64(terms)*5),
			"problem_solving":        score,
			"communication_of_ideas": clamp(40 + float64(len(tokens))/5),
		},
		Summary: fmt.Sprintf("heuristic technical: %d technical terms in %d words", terms, len(tokens)),
	}
}

// behavioralFallback penalizes hesitation markers.
func behavioralFallback(in Input) model.LayerResult {
	tokens := tokenize(in.Transcript)
	if len(tokens) == 0 {
		res := neutral(interviewPassed, "communication", "confidence", "clarity")
		res.Metrics["hesitation_count"] = 0
		return res
	}

	hes := countOccurrences(tokens, hesitationMarkers)
	score := clamp(float64(behavioralBaseline) - math.Min(float64(hes*hesitationPenalty), hesitationCap))

	return model.LayerResult{
		Score:  score,
		Passed: interviewPassed(score),
		Metrics: map[string]float64{
			"communication":    score,
			"confidence":       clamp(80 - float64(hes)*5),
			"clarity":          clamp(75 - float64(hes)*3),
			"hesitation_count": float64(hes),
		},
		Summary: fmt.Sprintf("heuristic behavioral: %d hesitation markers in %d words", hes, len(tokens)),
	}
}

func neutral(pass func(float64) bool, keys ...string) model.LayerResult {
	m := make(map[string]float64, len(keys))
	for _, k := range keys {
		m[k] = noTranscriptBaseline
	}
	return model.LayerResult{
		Score:   noTranscriptBaseline,
		Passed:  pass(noTranscriptBaseline),
		Metrics: m,
		Summary: "no transcript available",
	}
}

// tokenize lowercases text and splits it into words. Characters that belong
// to skill names (+ # / .) are kept inside words; trailing dots are dropped.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("+#/.", r)
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "."); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// countOccurrences counts every match of each phrase in tokens.
func countOccurrences(tokens []string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		n += matchPhrase(tokens, strings.Fields(p))
	}
	return n
}

// countDistinct counts phrases that occur at least once in tokens.
func countDistinct(tokens []string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if matchPhrase(tokens, strings.Fields(p)) > 0 {
			n++
		}
	}
	return n
}

func matchPhrase(tokens, words []string) int {
	if len(words) == 0 || len(words) > len(tokens) {
		return 0
	}
	n := 0
outer:
	for i := 0; i+len(words) <= len(tokens); i++ {
		for j, w := range words {
			if tokens[i+j] != w && tokens[i+j] != w+"s" {
				continue outer
			}
		}
		n++
	}
	return n
}

func requiredSkillShare(have, required []string) float64 {
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	found := 0
	for _, r := range required {
		if _, ok := set[strings.ToLower(strings.TrimSpace(r))]; ok {
			found++
		}
	}
	return float64(found) / float64(len(required)) * 100
}

func clamp(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
