package whisper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/agentkit/internal/config"
	"github.com/nadzzz/agentkit/internal/transcribe"
)

var wavBytes = []byte("RIFF\x24\x00\x00\x00WAVEfmt ")

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "audio.wav", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, wavBytes, data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" ask not what your country can do for you "}`))
	}))
	defer srv.Close()

	tr := New(config.WhisperConfig{Endpoint: srv.URL, Model: "whisper-1", Language: "en"}, "secret")
	text, err := tr.Transcribe(context.Background(), wavBytes, "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, "ask not what your country can do for you", text)
	assert.Equal(t, "whisper", tr.Name())
}

func TestTranscribeMP3Filename(t *testing.T) {
	var filename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		filename = hdr.Filename
		_, _ = w.Write([]byte(`{"text":"hi"}`))
	}))
	defer srv.Close()

	tr := New(config.WhisperConfig{Endpoint: srv.URL}, "")
	_, err := tr.Transcribe(context.Background(), []byte("ID3\x04\x00"), "audio/mp3")
	require.NoError(t, err)
	assert.Equal(t, "audio.mp3", filename)
}

func TestTranscribeEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	tr := New(config.WhisperConfig{Endpoint: srv.URL}, "")
	_, err := tr.Transcribe(context.Background(), wavBytes, "audio/wav")
	assert.ErrorIs(t, err, transcribe.ErrUnintelligible)
}

func TestTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := New(config.WhisperConfig{Endpoint: srv.URL}, "")
	_, err := tr.Transcribe(context.Background(), wavBytes, "audio/wav")
	assert.ErrorIs(t, err, transcribe.ErrUnavailable)
}

func TestTranscribeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tr := New(config.WhisperConfig{Endpoint: url}, "")
	_, err := tr.Transcribe(context.Background(), wavBytes, "audio/wav")
	assert.ErrorIs(t, err, transcribe.ErrUnavailable)
}
