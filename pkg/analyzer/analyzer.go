// Package analyzer asks a generative model to describe an uploaded video.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
	"video-library/constant"
	"video-library/entities"
	"video-library/repository"
)

const prompt = `
Analyze the uploaded video and generate a JSON object with the following fields:
- title: A click-maximizing title for the video.
- description: A generic description of the video content.
- tags: A list of relevant metadata tags (strings).

Ensure the output is valid JSON.
`

// Gemini rejects inline payloads above this size; larger videos must be addressed by gs:// URI.
const maxInlineBytes = 20 << 20

var (
	ErrEmptyResponse     = errors.New("model returned an empty response")
	ErrMalformedResponse = errors.New("model response is not a metadata document")
	ErrVideoTooLarge     = errors.New("video too large to send inline")
)

type Analyzer interface {
	Analyze(ctx context.Context, videoRef string) (*entities.Metadata, error)
}

// Generator is the subset of the genai models API used here.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Opener reads stored objects for references the model cannot fetch itself.
type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type gemini struct {
	generator Generator
	model     string
	opener    Opener
}

func NewGemini(generator Generator, model string, opener Opener) Analyzer {
	return &gemini{
		generator: generator,
		model:     model,
		opener:    opener,
	}
}

// NewVertexClient builds a genai client on the Vertex AI backend. An empty project lets the SDK discover it from
// the environment.
func NewVertexClient(ctx context.Context, project, location string) (*genai.Client, error) {
	if project == "" {
		zerolog.Ctx(ctx).Warn().Msg("GOOGLE_CLOUD_PROJECT not set, relying on default credentials")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client, nil
}

func (g *gemini) Analyze(ctx context.Context, videoRef string) (*entities.Metadata, error) {
	videoPart, err := g.videoPart(ctx, videoRef)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{videoPart, genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	zerolog.Ctx(ctx).Info().Str("video_ref", videoRef).Str("model", g.model).Msg("sending video for analysis")
	resp, err := g.generator.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: constant.ContentTypeJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return nil, ErrEmptyResponse
	}

	text := resp.Text()
	zerolog.Ctx(ctx).Info().Str("video_ref", videoRef).Msg("model response received")

	metadata, err := ParseMetadata(text)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("response", text).Msg("failed to parse model response")
		return nil, err
	}
	return metadata, nil
}

func (g *gemini) videoPart(ctx context.Context, videoRef string) (*genai.Part, error) {
	scheme, _, key, err := repository.ParseReference(videoRef)
	if err != nil {
		return nil, err
	}
	if scheme == "gs" {
		return genai.NewPartFromURI(videoRef, constant.ContentTypeMP4), nil
	}

	if g.opener == nil {
		return nil, fmt.Errorf("cannot read %s: no object opener configured", videoRef)
	}
	rc, err := g.opener.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxInlineBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", videoRef, err)
	}
	if len(data) > maxInlineBytes {
		return nil, fmt.Errorf("%w: %s", ErrVideoTooLarge, videoRef)
	}
	return genai.NewPartFromBytes(data, constant.ContentTypeMP4), nil
}

// ParseMetadata decodes a model response into a metadata document. Markdown code fences around the JSON are
// tolerated.
func ParseMetadata(text string) (*entities.Metadata, error) {
	text = stripCodeFence(strings.TrimSpace(text))
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var metadata entities.Metadata
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(&metadata); err != nil {
		return nil, errors.Join(ErrMalformedResponse, err)
	}
	if metadata.Title == "" && metadata.Description == "" && len(metadata.Tags) == 0 {
		return nil, fmt.Errorf("%w: no known fields", ErrMalformedResponse)
	}

	tags := make([]string, 0, len(metadata.Tags))
	for _, tag := range metadata.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	metadata.Tags = tags
	return &metadata, nil
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}
