package gemini

import (
	"context"
	"errors"
	"testing"

	"multichat/internal/attachment"
	"multichat/internal/conversation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	model    string
	contents []*genai.Content
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: string(genai.RoleModel), Parts: parts},
		}},
	}
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), "", WithModels(&fakeModels{}))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGenerateContent_JoinsTextsAndUsesDefaultModel(t *testing.T) {
	fake := &fakeModels{resp: textResponse(genai.NewPartFromText("pong"))}
	svc, err := New(context.Background(), "key", WithModels(fake))
	require.NoError(t, err)

	got, err := svc.GenerateContent(context.Background(), []conversation.Message{
		{Role: conversation.RoleUser, Text: "ping"},
		{Role: conversation.RoleBot, Text: "pong"},
		{Role: conversation.RoleUser, Text: "again"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pong", got)
	assert.Equal(t, DefaultModel, fake.model)

	require.Len(t, fake.contents, 1)
	content := fake.contents[0]
	assert.Equal(t, string(genai.RoleUser), content.Role)
	require.Len(t, content.Parts, 1)
	assert.Equal(t, "ping\npong\nagain", content.Parts[0].Text)
}

func TestGenerateContent_AttachesImages(t *testing.T) {
	fake := &fakeModels{resp: textResponse(genai.NewPartFromText("a cat"))}
	svc, err := New(context.Background(), "key", WithModels(fake), WithModel("gemini-2.0-flash"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", svc.Model())

	img := &attachment.Image{Name: "cat.png", MIMEType: "image/png", Data: []byte{0x89, 'P'}}
	_, err = svc.Generate(context.Background(), []conversation.Message{
		{Role: conversation.RoleUser, Text: "what is this?", Image: img},
	})
	require.NoError(t, err)

	parts := fake.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "what is this?", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, img.Data, parts[1].InlineData.Data)
	assert.Equal(t, "gemini-2.0-flash", fake.model)
}

func TestGenerateContent_EmptyReply(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"no content":    {Candidates: []*genai.Candidate{{}}},
		"empty text":    textResponse(genai.NewPartFromText("")),
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			svc, err := New(context.Background(), "key", WithModels(&fakeModels{resp: resp}))
			require.NoError(t, err)

			got, err := svc.GenerateContent(context.Background(), []conversation.Message{{Text: "hi"}})
			require.NoError(t, err)
			assert.Equal(t, NoResponse, got)
		})
	}
}

func TestGenerateContent_WrapsUpstreamError(t *testing.T) {
	upstream := errors.New("API key not valid")
	svc, err := New(context.Background(), "key", WithModels(&fakeModels{err: upstream}))
	require.NoError(t, err)

	_, err = svc.GenerateContent(context.Background(), []conversation.Message{{Text: "hi"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "gemini: generate content")
}

func TestResponseText_SkipsThoughts(t *testing.T) {
	resp := textResponse(
		&genai.Part{Text: "thinking...", Thought: true},
		genai.NewPartFromText("Hello, "),
		genai.NewPartFromText("world"),
	)
	assert.Equal(t, "Hello, world", ResponseText(resp))
}

func TestBuildContents_Empty(t *testing.T) {
	contents := BuildContents(nil)
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 1)
	assert.Equal(t, "", contents[0].Parts[0].Text)
}
