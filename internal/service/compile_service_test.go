package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"typst-collab-be/internal/filetree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileServiceRender(t *testing.T) {
	var gotBody map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/compile", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte("<svg/>"))
	}))
	defer server.Close()

	svc := NewCompileService(server.URL)
	out, err := svc.Render(context.Background(), filetree.Skeleton("Doc"), "")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(out))

	var format string
	require.NoError(t, json.Unmarshal(gotBody["format"], &format))
	assert.Equal(t, "svg", format, "empty format falls back to svg")
	assert.Contains(t, string(gotBody["fileTree"]), "main.typ")
}

func TestCompileServiceStructuredError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(CompileError{Kind: "Compilation failed", Message: "unknown variable: titel"})
	}))
	defer server.Close()

	svc := NewCompileService(server.URL)
	_, err := svc.Render(context.Background(), filetree.Skeleton("Doc"), "svg")

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "Compilation failed", compileErr.Kind)
	assert.Equal(t, "unknown variable: titel", compileErr.Message)
}

func TestCompileServiceOpaqueError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timeout"))
	}))
	defer server.Close()

	svc := NewCompileService(server.URL)
	_, err := svc.Render(context.Background(), filetree.Skeleton("Doc"), "pdf")

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "compile failed", compileErr.Kind)
	assert.Contains(t, compileErr.Message, "upstream timeout")
}
