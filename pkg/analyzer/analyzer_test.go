package analyzer

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
	"video-library/repository"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, config)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

type mapOpener map[string][]byte

func (o mapOpener) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := o[key]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestAnalyzeGCSReferenceUsesURI(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("GenerateContent", mock.Anything, "gemini-2.5-flash", mock.MatchedBy(func(contents []*genai.Content) bool {
		if len(contents) != 1 || len(contents[0].Parts) != 2 {
			return false
		}
		video := contents[0].Parts[0]
		return video.FileData != nil && video.FileData.FileURI == "gs://bucket/abc/video.mp4"
	}), mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
		return cfg.ResponseMIMEType == "application/json"
	})).Return(textResponse(`{"title":"Sunset","description":"A beach","tags":["beach","sun"]}`), nil).Once()

	a := NewGemini(gen, "gemini-2.5-flash", nil)
	metadata, err := a.Analyze(context.Background(), "gs://bucket/abc/video.mp4")
	require.NoError(t, err)
	assert.Equal(t, "Sunset", metadata.Title)
	assert.Equal(t, "A beach", metadata.Description)
	assert.Equal(t, []string{"beach", "sun"}, metadata.Tags)
	gen.AssertExpectations(t)
}

func TestAnalyzeOtherReferenceSendsBytes(t *testing.T) {
	opener := mapOpener{"abc/video.mp4": []byte("fake mp4")}
	gen := new(mockGenerator)
	gen.On("GenerateContent", mock.Anything, "m", mock.MatchedBy(func(contents []*genai.Content) bool {
		video := contents[0].Parts[0]
		return video.InlineData != nil && string(video.InlineData.Data) == "fake mp4"
	}), mock.Anything).Return(textResponse(`{"title":"t"}`), nil).Once()

	a := NewGemini(gen, "m", opener)
	metadata, err := a.Analyze(context.Background(), "file://local/abc/video.mp4")
	require.NoError(t, err)
	assert.Equal(t, "t", metadata.Title)
	assert.Empty(t, metadata.Tags)
	gen.AssertExpectations(t)
}

func TestAnalyzeMissingObject(t *testing.T) {
	gen := new(mockGenerator)
	a := NewGemini(gen, "m", mapOpener{})
	_, err := a.Analyze(context.Background(), "s3://bucket/abc/video.mp4")
	require.ErrorIs(t, err, repository.ErrObjectNotFound)
	gen.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeGeneratorError(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	a := NewGemini(gen, "m", nil)
	_, err := a.Analyze(context.Background(), "gs://bucket/abc/video.mp4")
	require.ErrorIs(t, err, assert.AnError)
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(textResponse("I could not watch this video."), nil).Once()

	a := NewGemini(gen, "m", nil)
	_, err := a.Analyze(context.Background(), "gs://bucket/abc/video.mp4")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: `{"title":"a"}`, want: "a"},
		{name: "fenced", input: "```json\n{\"title\":\"b\"}\n```", want: "b"},
		{name: "bare fence", input: "```\n{\"title\":\"c\"}\n```", want: "c"},
		{name: "empty", input: "   ", wantErr: ErrEmptyResponse},
		{name: "unknown fields", input: `{"name":"x"}`, wantErr: ErrMalformedResponse},
		{name: "array", input: `["x"]`, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadata(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Title)
		})
	}
}

func TestParseMetadataDropsBlankTags(t *testing.T) {
	got, err := ParseMetadata(`{"title":"a","tags":["x"," ","", " y "]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got.Tags)
}
