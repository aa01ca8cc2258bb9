package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nextlevel/services/certification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageClientDelete(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "Bearer k3y", r.Header.Get("Authorization"))
		paths = append(paths, r.URL.EscapedPath())
		switch r.URL.EscapedPath() {
		case "/objects/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/objects/broken":
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	client := NewStorageClient(srv.URL, "k3y")
	ctx := context.Background()

	assert.NoError(t, client.Delete(ctx, "covers/a.png"))
	assert.NoError(t, client.Delete(ctx, "gone"))
	assert.Error(t, client.Delete(ctx, "broken"))
	assert.Equal(t, "/objects/covers%2Fa.png", paths[0])
}

func TestCertificateRenderer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var f certification.Fields
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f))
		if f.StudentName == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 " + f.StudentName))
	}))
	defer srv.Close()

	r := NewCertificateRenderer(srv.URL)

	pdf, err := r.Render(context.Background(), certification.Fields{StudentName: "Ana", ExamTitle: "Final", Score: 90})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 Ana", string(pdf))

	_, err = r.Render(context.Background(), certification.Fields{})
	assert.Error(t, err)
}
