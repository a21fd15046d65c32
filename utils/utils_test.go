package utils

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/evently-go/config"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg", "events/abc123", true},
		{"https://res.cloudinary.com/demo/image/upload/events/abc123.png", "events/abc123", true},
		{"https://res.cloudinary.com/demo/image/upload/v17/abc.jpg", "abc", true},
		{"https://example.com/pictures/abc.jpg", "", false},
		{"https://res.cloudinary.com/demo/image/upload/", "", false},
	}
	for _, tt := range tests {
		got, err := extractPublicID(tt.url)
		if !tt.ok {
			require.Error(t, err, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		require.Equal(t, tt.want, got)
	}
}

type fakeUploader struct {
	uploaded  []string
	destroyed []string
}

func (f *fakeUploader) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	data, err := io.ReadAll(file.(io.Reader))
	if err != nil {
		return nil, err
	}
	f.uploaded = append(f.uploaded, string(data))
	return &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/" + params.Folder + "/new.png"}, nil
}

func (f *fakeUploader) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = append(f.destroyed, params.PublicID)
	return &uploader.DestroyResult{Result: "ok"}, nil
}

func TestImageStore(t *testing.T) {
	api := &fakeUploader{}
	s := &ImageStore{api: api, folder: "events"}

	url, err := s.Upload(context.Background(), strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/events/new.png", url)
	require.Equal(t, []string{"png-bytes"}, api.uploaded)

	require.NoError(t, s.Delete(context.Background(), url))
	require.NoError(t, s.Delete(context.Background(), "https://example.com/elsewhere.png"))
	require.Equal(t, []string{"events/new"}, api.destroyed)
}

func TestNilImageStore(t *testing.T) {
	s, err := NewImageStore(config.CloudinaryConfig{})
	require.NoError(t, err)
	require.Nil(t, s)

	_, err = s.Upload(context.Background(), strings.NewReader("x"))
	require.ErrorIs(t, err, ErrImagesDisabled)
	require.NoError(t, s.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/a.png"))
}

func TestMailerSendsZeptoPayload(t *testing.T) {
	var got emailRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewMailer(config.EmailConfig{APIURL: srv.URL, APIKey: "Zoho-enczapikey k", From: "tickets@example.com"}, zerolog.Nop())
	require.NotNil(t, m)

	err := m.SendEmail(context.Background(), "ada@example.com", "Ada", "Your ticket", "<p>hi</p>")
	require.NoError(t, err)
	require.Equal(t, "Zoho-enczapikey k", auth)
	require.Equal(t, "tickets@example.com", got.From.Address)
	require.Equal(t, "ada@example.com", got.To[0].Email.Address)
	require.Equal(t, "Ada", got.To[0].Email.Name)
	require.Equal(t, "<p>hi</p>", got.HtmlBody)
}

func TestMailerReportsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := NewMailer(config.EmailConfig{APIURL: srv.URL, APIKey: "k", From: "f@example.com"}, zerolog.Nop())
	err := m.SendEmail(context.Background(), "ada@example.com", "Ada", "s", "b")
	require.ErrorContains(t, err, "401")

	require.Nil(t, NewMailer(config.EmailConfig{APIURL: srv.URL}, zerolog.Nop()))
}

func TestETags(t *testing.T) {
	id := primitive.NewObjectID()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, GenerateETag(id, at), GenerateETag(id, at))
	require.NotEqual(t, GenerateETag(id, at), GenerateETag(id, at.Add(time.Nanosecond)))
	require.True(t, strings.HasPrefix(HashETag("a", "b"), `"`))
	require.NotEqual(t, HashETag("a", "b"), HashETag("ab"))
}

func TestParseDateTime(t *testing.T) {
	want := time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC)
	for _, in := range []string{"2026-05-04T18:30:00Z", "2026-05-04T18:30", "2026-05-04 18:30", " 2026-05-04 18:30:00 "} {
		got, err := ParseDateTime(in)
		require.NoError(t, err, in)
		require.True(t, want.Equal(got), in)
	}

	day, err := ParseDateTime("2026-05-04")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDateTime("next tuesday")
	require.Error(t, err)
}
