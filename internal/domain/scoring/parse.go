package scoring

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/okian/hireloop/internal/domain/model"
)

const (
	minScore = 0
	maxScore = 100
)

type parsedResult struct {
	model.LayerResult
	passedSet bool
}

// parseLayerResult validates a provider response. Anything short of the
// expected schema is an error so that the caller falls back.
func parseLayerResult(raw string, requiredKeys []string) (parsedResult, error) {
	body := strings.TrimSpace(stripCodeFences(strings.TrimSpace(raw)))
	if body == "" || !gjson.Valid(body) {
		return parsedResult{}, ErrMalformedResponse
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return parsedResult{}, fmt.Errorf("%w: top level is not an object", ErrSchemaMismatch)
	}

	score := doc.Get("score")
	if score.Type != gjson.Number {
		return parsedResult{}, fmt.Errorf("%w: score is missing or not a number", ErrSchemaMismatch)
	}
	if score.Float() < minScore || score.Float() > maxScore {
		return parsedResult{}, fmt.Errorf("%w: score %v outside [0,100]", ErrSchemaMismatch, score.Float())
	}

	metricsNode := doc.Get("metrics")
	if !metricsNode.IsObject() {
		return parsedResult{}, fmt.Errorf("%w: metrics is missing", ErrSchemaMismatch)
	}
	metrics := make(map[string]float64)
	var badKey string
	metricsNode.ForEach(func(k, v gjson.Result) bool {
		if v.Type != gjson.Number {
			badKey = k.String()
			return false
		}
		metrics[k.String()] = v.Float()
		return true
	})
	if badKey != "" {
		return parsedResult{}, fmt.Errorf("%w: metric %q is not a number", ErrSchemaMismatch, badKey)
	}
	for _, key := range requiredKeys {
		if _, ok := metrics[key]; !ok {
			return parsedResult{}, fmt.Errorf("%w: metric %q is missing", ErrSchemaMismatch, key)
		}
	}

	out := parsedResult{
		LayerResult: model.LayerResult{
			Score:     score.Float(),
			Metrics:   metrics,
			Summary:   doc.Get("summary").String(),
			Strengths: stringList(doc.Get("strengths")),
			Concerns:  stringList(doc.Get("concerns")),
		},
	}
	if passed := doc.Get("passed"); passed.IsBool() {
		out.Passed = passed.Bool()
		out.passedSet = true
	}
	return out, nil
}

func stringList(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	var out []string
	for _, item := range r.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// stripCodeFences removes a surrounding ```json ... ``` or ``` ... ``` block.
func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	start := strings.IndexByte(text, '\n')
	if start < 0 {
		return text
	}
	cleaned := text[start+1:]
	cleaned = strings.TrimRight(cleaned, " \r\n")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimRight(cleaned, " \r\n")
}
