package vertex

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResponseText(t *testing.T) {
	Convey("Given Vertex responses", t, func() {
		Convey("Text parts of the first candidate are joined", func() {
			resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"score":`), genai.Text(` 64}`)}},
			}}}
			out, err := responseText(resp)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `{"score": 64}`)
		})

		Convey("Missing candidates are an error", func() {
			_, err := responseText(&genai.GenerateContentResponse{})
			So(errors.Is(err, ErrEmptyResponse), ShouldBeTrue)
		})

		Convey("Whitespace-only text is an error", func() {
			resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text("  ")}},
			}}}
			_, err := responseText(resp)
			So(errors.Is(err, ErrEmptyResponse), ShouldBeTrue)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("A model is configured for JSON output with the layer instruction", t, func() {
		m := &genai.GenerativeModel{}
		configure(m, "Score the transcript.")
		So(m.ResponseMIMEType, ShouldEqual, "application/json")
		So(*m.Temperature, ShouldEqual, float32(0.2))
		So(m.SystemInstruction.Parts[0], ShouldEqual, genai.Text("Score the transcript."))
	})
}

func TestNew(t *testing.T) {
	Convey("A missing project is rejected before dialing", t, func() {
		_, err := New(context.Background(), "", "", "")
		So(errors.Is(err, ErrMissingProject), ShouldBeTrue)
	})
}
