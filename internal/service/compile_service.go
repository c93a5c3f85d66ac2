package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"typst-collab-be/internal/filetree"
)

// CompileError carries the compiler's structured failure back to the
// client verbatim; it is rendered in the output pane and never interrupts
// collaboration.
type CompileError struct {
	Kind    string `json:"error"`
	Message string `json:"details"`
}

func (e *CompileError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind
}

type ICompileService interface {
	Render(ctx context.Context, tree *filetree.Node, format string) ([]byte, error)
}

// compileService proxies the project tree to the external typst compiler
// service. The compiler is a collaborator, not part of this repo.
type compileService struct {
	baseURL string
	client  *http.Client
}

func NewCompileService(baseURL string) ICompileService {
	return &compileService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *compileService) Render(ctx context.Context, tree *filetree.Node, format string) ([]byte, error) {
	if format == "" {
		format = "svg"
	}
	body, err := json.Marshal(map[string]interface{}{
		"fileTree": tree,
		"format":   format,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/compile", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var compileErr CompileError
		if json.Unmarshal(out, &compileErr) == nil && compileErr.Kind != "" {
			return nil, &compileErr
		}
		return nil, &CompileError{Kind: "compile failed", Message: string(out)}
	}
	return out, nil
}
