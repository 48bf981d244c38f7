package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"puzzles":[{"fen":"r1b1k2r/1p3ppp/8 w - - 0 1","moves":["e2e4","e7e5"],"rating":1500}]}`))
	}))
	defer srv.Close()

	data, err := NewPuzzleClient(srv.URL).FetchDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r1b1k2r/1p3ppp/8 w - - 0 1", data.FEN)
	assert.Equal(t, []string{"e2e4", "e7e5"}, data.Solution)
	assert.Equal(t, 1500, data.Rating)
}

func TestFetchDaily_BadResponses(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		},
		"empty list": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"puzzles":[]}`))
		},
		"incomplete puzzle": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"puzzles":[{"fen":"","moves":[]}]}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := NewPuzzleClient(srv.URL).FetchDaily(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFetchDaily_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPuzzleClient(srv.URL).FetchDaily(ctx)
	assert.Error(t, err)
}
