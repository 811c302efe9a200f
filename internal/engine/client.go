package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/ppotepa/streamcraft-tts/internal/config"
	"github.com/ppotepa/streamcraft-tts/internal/models"
	"github.com/ppotepa/streamcraft-tts/pkg/logger"
)

// Client talks to the external processing engine: the service that does
// the actual downloading, sanitization, transcription, training and
// synthesis. The wizard never performs media work itself.
type Client struct {
	baseURL      string
	authToken    string
	httpClient   *http.Client
	streamClient *http.Client
	logger       logger.Logger
}

func NewClient(cfg *config.Config, log logger.Logger) *Client {
	requestTimeout := time.Duration(cfg.Engine.RequestTimeout) * time.Second
	if requestTimeout == 0 {
		requestTimeout = 120 * time.Second
	}
	streamTimeout := time.Duration(cfg.Engine.StreamTimeout) * time.Second

	return &Client{
		baseURL:    cfg.Engine.BaseURL,
		authToken:  cfg.Engine.AuthToken,
		httpClient: &http.Client{Timeout: requestTimeout},
		// Streaming runs last as long as the job does; cancellation comes
		// from the request context, not a client timeout.
		streamClient: &http.Client{Timeout: streamTimeout},
		logger:       log,
	}
}

type CheckVodRequest struct {
	VodURL string `json:"vod_url" validate:"required,url"`
}

type AudioRequest struct {
	VodURL    string `json:"vod_url"`
	Quality   string `json:"quality"`
	AuthToken string `json:"auth_token,omitempty"`
}

type AudioResult struct {
	Path     string   `json:"path"`
	ExitCode int      `json:"exit_code"`
	Log      []string `json:"log"`
}

type PreviewParams struct {
	Count   int     `json:"count"`
	Seconds float64 `json:"seconds"`
}

type VoiceSampleParams struct {
	Count      int     `json:"count"`
	MinSeconds float64 `json:"min_seconds"`
	MaxSeconds float64 `json:"max_seconds"`
}

type NormalizationParams struct {
	Enabled  bool    `json:"enabled"`
	TargetDb float64 `json:"target_db"`
}

type SanitizeRequest struct {
	VodURL        string              `json:"vod_url"`
	Mode          string              `json:"mode"`
	Preset        string              `json:"preset"`
	Strictness    string              `json:"strictness"`
	ExtractVocals bool                `json:"extract_vocals"`
	UvrModel      string              `json:"uvr_model,omitempty"`
	UvrPrecision  string              `json:"uvr_precision,omitempty"`
	Preview       PreviewParams       `json:"preview_params"`
	VoiceSamples  VoiceSampleParams   `json:"voice_sample_params"`
	ManualSamples []string            `json:"manual_samples,omitempty"`
	Normalization NormalizationParams `json:"normalization_params"`
	Stream        bool                `json:"stream"`
}

type SanitizeResult struct {
	CleanPath       string           `json:"clean_path"`
	SegmentsPath    string           `json:"segments_path"`
	Segments        int              `json:"segments"`
	PreviewSegments []models.Segment `json:"preview_segments"`
	VoiceSamples    []string         `json:"voice_samples"`
	Log             []string         `json:"log"`
}

type SrtResult struct {
	Path    string   `json:"path"`
	Lines   int      `json:"lines"`
	Excerpt string   `json:"excerpt"`
	Log     []string `json:"log"`
}

type TrainResult struct {
	DatasetPath  string   `json:"dataset_path"`
	ClipsDir     string   `json:"clips_dir"`
	ManifestPath string   `json:"manifest_path"`
	SegmentsPath string   `json:"segments_path"`
	Log          []string `json:"log"`
}

type TtsRequest struct {
	VodURL   string `json:"vod_url"`
	Text     string `json:"text" validate:"required"`
	Streamer string `json:"streamer"`
}

type TtsResult struct {
	OutputPath string   `json:"output_path"`
	Log        []string `json:"log"`
}

// ProgressFunc receives sub-stage progress from a streamed run.
type ProgressFunc func(stage string, value float64)

// LogFunc receives one log line from a streamed run.
type LogFunc func(line string)

// streamLine is one NDJSON frame of a streamed sanitize run.
type streamLine struct {
	Kind   string          `json:"kind"`
	Stage  string          `json:"stage,omitempty"`
	Value  float64         `json:"value,omitempty"`
	Line   string          `json:"line,omitempty"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

func (c *Client) CheckVod(ctx context.Context, vodURL string) (*models.VodMeta, error) {
	var meta models.VodMeta
	if err := c.do(ctx, http.MethodPost, "/vod/check", CheckVodRequest{VodURL: vodURL}, &meta, KindMetadata); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *Client) RunAudio(ctx context.Context, req AudioRequest) (*AudioResult, error) {
	var out AudioResult
	if err := c.do(ctx, http.MethodPost, "/steps/audio", req, &out, KindExtraction); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunSanitize executes the sanitize step. With req.Stream set the engine
// responds with NDJSON progress/log frames followed by a terminal result
// or error frame, delivered through the callbacks as they arrive.
func (c *Client) RunSanitize(ctx context.Context, req SanitizeRequest, onProgress ProgressFunc, onLog LogFunc) (*SanitizeResult, error) {
	if !req.Stream {
		var out SanitizeResult
		if err := c.do(ctx, http.MethodPost, "/steps/sanitize", req, &out, KindSanitize); err != nil {
			return nil, err
		}
		return &out, nil
	}

	resp, err := c.send(ctx, c.streamClient, http.MethodPost, "/steps/sanitize", req)
	if err != nil {
		return nil, &Error{Kind: KindSanitize, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.apiError(resp, KindSanitize)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var line streamLine
		if err := json.Unmarshal(raw, &line); err != nil {
			c.logger.Warnf("engine: skipping malformed stream frame: %v", err)
			continue
		}
		switch line.Kind {
		case "progress":
			if onProgress != nil {
				onProgress(line.Stage, line.Value)
			}
		case "log":
			if onLog != nil {
				onLog(line.Line)
			}
		case "error":
			return nil, &Error{Kind: KindSanitize, Message: line.Error}
		case "result":
			var out SanitizeResult
			if err := json.Unmarshal(line.Result, &out); err != nil {
				return nil, errors.Wrap(err, "engine: decode sanitize result")
			}
			return &out, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &Error{Kind: KindSanitize, Message: err.Error()}
	}
	return nil, &Error{Kind: KindSanitize, Message: "stream ended without a result"}
}

func (c *Client) RunSrt(ctx context.Context, vodURL string) (*SrtResult, error) {
	var out SrtResult
	if err := c.do(ctx, http.MethodPost, "/steps/srt", CheckVodRequest{VodURL: vodURL}, &out, KindTranscription); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RunTrain(ctx context.Context, vodURL string) (*TrainResult, error) {
	var out TrainResult
	if err := c.do(ctx, http.MethodPost, "/steps/train", CheckVodRequest{VodURL: vodURL}, &out, KindTraining); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RunTts(ctx context.Context, req TtsRequest) (*TtsResult, error) {
	var out TtsResult
	if err := c.do(ctx, http.MethodPost, "/steps/tts", req, &out, KindSynthesis); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetJobs(ctx context.Context) ([]models.Job, error) {
	var out []models.Job
	if err := c.do(ctx, http.MethodGet, "/jobs", nil, &out, KindAPI); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	return c.do(ctx, http.MethodDelete, "/jobs/"+url.PathEscape(jobID), nil, nil, KindAPI)
}

// ArtifactURL asks the engine for a streamable URL for a produced file.
func (c *Client) ArtifactURL(ctx context.Context, path string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	endpoint := "/artifacts/url?path=" + url.QueryEscape(path)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out, KindAPI); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) send(ctx context.Context, client *http.Client, method, path string, body interface{}) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "engine: marshal request")
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "engine: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	return client.Do(req)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, kind ErrorKind) error {
	resp, err := c.send(ctx, c.httpClient, method, path, body)
	if err != nil {
		return &Error{Kind: kind, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp, kind)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "engine: decode %s response", path)
	}
	return nil
}

func (c *Client) apiError(resp *http.Response, kind ErrorKind) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error == "" {
		payload.Error = resp.Status
	}
	return &Error{Kind: kind, Status: resp.StatusCode, Message: payload.Error}
}
