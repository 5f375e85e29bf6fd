package gemini

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"google.golang.org/genai"
)

type fakeModels struct {
	model  string
	config *genai.GenerateContentConfig
	prompt string
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestProvider_Generate(t *testing.T) {
	Convey("Given a Gemini provider over a fake model service", t, func() {
		fake := &fakeModels{resp: textResponse(`{"score": `, `72}`)}
		p := newProvider(fake, "")

		Convey("It requests JSON from the default model with the system instruction", func() {
			out, err := p.Generate(context.Background(), "rate this", "You are a recruiter.")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `{"score": 72}`)
			So(fake.model, ShouldEqual, defaultModel)
			So(fake.prompt, ShouldEqual, "rate this")
			So(fake.config.ResponseMIMEType, ShouldEqual, "application/json")
			So(fake.config.SystemInstruction.Parts[0].Text, ShouldEqual, "You are a recruiter.")
			So(p.Name(), ShouldEqual, "gemini")
		})

		Convey("A transport error is wrapped", func() {
			fake.err = errors.New("quota exceeded")
			_, err := p.Generate(context.Background(), "rate this", "")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "quota exceeded")
		})

		Convey("An empty candidate list is an error", func() {
			fake.resp = &genai.GenerateContentResponse{}
			_, err := p.Generate(context.Background(), "rate this", "")
			So(errors.Is(err, ErrEmptyResponse), ShouldBeTrue)
		})
	})

	Convey("A missing API key is rejected before dialing", t, func() {
		_, err := New(context.Background(), "  ", "")
		So(errors.Is(err, ErrMissingAPIKey), ShouldBeTrue)
	})
}
