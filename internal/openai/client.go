// Package openai is a thin REST client for the OpenAI platform endpoints
// this project needs: model responses with file search, file uploads, and
// vector store provisioning.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls the OpenAI REST API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given API key. An empty baseURL selects
// the public API endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("openai returned status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("openai returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

// ---------------------------------------------------------------------------
// Responses API

// Tool configures a built-in tool on a response request. Only file_search is
// used here.
type Tool struct {
	Type           string   `json:"type"`
	VectorStoreIDs []string `json:"vector_store_ids,omitempty"`
	MaxNumResults  int      `json:"max_num_results,omitempty"`
}

// FileSearchTool builds the retrieval tool bound to a vector store.
func FileSearchTool(vectorStoreID string, maxResults int) Tool {
	return Tool{
		Type:           "file_search",
		VectorStoreIDs: []string{vectorStoreID},
		MaxNumResults:  maxResults,
	}
}

// InputMessage is one turn of conversation context.
type InputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseRequest is the payload for POST /responses.
type ResponseRequest struct {
	Model        string         `json:"model"`
	Instructions string         `json:"instructions,omitempty"`
	Input        []InputMessage `json:"input"`
	Tools        []Tool         `json:"tools,omitempty"`
}

// Annotation marks a citation attached to a span of output text.
type Annotation struct {
	Type     string `json:"type"`
	FileID   string `json:"file_id,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// OutputContent is one content block of an output item.
type OutputContent struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// OutputItem is one entry of the response output array.
type OutputItem struct {
	Type    string          `json:"type"`
	Status  string          `json:"status,omitempty"`
	Content []OutputContent `json:"content,omitempty"`
}

// Response is the result of a model response request.
type Response struct {
	ID     string       `json:"id"`
	Model  string       `json:"model"`
	Output []OutputItem `json:"output"`
	Usage  struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// OutputText concatenates the text of all message output items.
func (r *Response) OutputText() string {
	var buf bytes.Buffer
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" {
				buf.WriteString(content.Text)
			}
		}
	}
	return buf.String()
}

// Annotations collects the citation annotations of all message output items.
func (r *Response) Annotations() []Annotation {
	var annotations []Annotation
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			annotations = append(annotations, content.Annotations...)
		}
	}
	return annotations
}

// CreateResponse runs the model over the given input.
func (c *Client) CreateResponse(ctx context.Context, req ResponseRequest) (*Response, error) {
	var resp Response
	if err := c.postJSON(ctx, "/responses", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ---------------------------------------------------------------------------
// Files API

// File is an uploaded platform file.
type File struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Bytes    int64  `json:"bytes"`
	Purpose  string `json:"purpose"`
}

// UploadFile uploads a file for the given purpose ("assistants" for vector
// store documents).
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader, purpose string) (*File, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("purpose", purpose); err != nil {
		return nil, fmt.Errorf("failed to write purpose field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var file File
	if err := c.do(req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetFile fetches metadata for an uploaded file.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	var file File
	if err := c.getJSON(ctx, "/files/"+url.PathEscape(fileID), &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ---------------------------------------------------------------------------
// Vector stores API

// VectorStore is a hosted semantic-search index.
type VectorStore struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// CreateVectorStore creates an empty vector store.
func (c *Client) CreateVectorStore(ctx context.Context, name string) (*VectorStore, error) {
	payload := map[string]string{"name": name}
	var store VectorStore
	if err := c.postJSON(ctx, "/vector_stores", payload, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// FileBatch tracks the ingestion of a set of files into a vector store.
type FileBatch struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	FileCounts struct {
		InProgress int `json:"in_progress"`
		Completed  int `json:"completed"`
		Failed     int `json:"failed"`
		Total      int `json:"total"`
	} `json:"file_counts"`
}

// Done reports whether ingestion has reached a terminal status.
func (b *FileBatch) Done() bool {
	return b.Status == "completed" || b.Status == "failed" || b.Status == "cancelled"
}

// CreateFileBatch attaches uploaded files to a vector store.
func (c *Client) CreateFileBatch(ctx context.Context, vectorStoreID string, fileIDs []string) (*FileBatch, error) {
	payload := map[string][]string{"file_ids": fileIDs}
	var batch FileBatch
	path := "/vector_stores/" + url.PathEscape(vectorStoreID) + "/file_batches"
	if err := c.postJSON(ctx, path, payload, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetFileBatch polls an ingestion batch.
func (c *Client) GetFileBatch(ctx context.Context, vectorStoreID, batchID string) (*FileBatch, error) {
	var batch FileBatch
	path := "/vector_stores/" + url.PathEscape(vectorStoreID) + "/file_batches/" + url.PathEscape(batchID)
	if err := c.getJSON(ctx, path, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// VectorStoreFile is one file attached to a vector store.
type VectorStoreFile struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type vectorStoreFileList struct {
	Data    []VectorStoreFile `json:"data"`
	HasMore bool              `json:"has_more"`
	LastID  string            `json:"last_id"`
}

// ListVectorStoreFiles returns every file attached to a vector store,
// following the API's cursor pagination.
func (c *Client) ListVectorStoreFiles(ctx context.Context, vectorStoreID string) ([]VectorStoreFile, error) {
	var files []VectorStoreFile
	after := ""
	for {
		path := "/vector_stores/" + url.PathEscape(vectorStoreID) + "/files?limit=" + strconv.Itoa(100)
		if after != "" {
			path += "&after=" + url.QueryEscape(after)
		}
		var list vectorStoreFileList
		if err := c.getJSON(ctx, path, &list); err != nil {
			return nil, err
		}
		files = append(files, list.Data...)
		if !list.HasMore || list.LastID == "" {
			return files, nil
		}
		after = list.LastID
	}
}
