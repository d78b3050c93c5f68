// Package blob uploads accepted photos to durable image storage.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Object identifies an uploaded blob.
type Object struct {
	URL      string
	PublicID string
}

// Uploader stores a byte buffer durably and returns its stable location.
type Uploader interface {
	Upload(ctx context.Context, data []byte) (Object, error)
}

// HTTPUploader posts images to an unsigned upload endpoint (Cloudinary-style
// multipart API) and reads back the secure URL and public id.
type HTTPUploader struct {
	client    *http.Client
	uploadURL string
	preset    string
	folder    string
}

// NewHTTPUploader builds an uploader over the provided client; a nil client
// falls back to http.DefaultClient.
func NewHTTPUploader(client *http.Client, uploadURL, preset, folder string) *HTTPUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUploader{
		client:    client,
		uploadURL: uploadURL,
		preset:    preset,
		folder:    folder,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// Upload sends the buffer as a multipart form and returns the stored location.
func (u *HTTPUploader) Upload(ctx context.Context, data []byte) (Object, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", "photo.jpg")
	if err != nil {
		return Object{}, fmt.Errorf("blob upload: build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return Object{}, fmt.Errorf("blob upload: write form: %w", err)
	}
	if u.preset != "" {
		_ = mw.WriteField("upload_preset", u.preset)
	}
	if u.folder != "" {
		_ = mw.WriteField("folder", u.folder)
	}
	if err := mw.Close(); err != nil {
		return Object{}, fmt.Errorf("blob upload: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, &body)
	if err != nil {
		return Object{}, fmt.Errorf("blob upload: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return Object{}, fmt.Errorf("blob upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Object{}, fmt.Errorf("blob upload: unexpected status %s: %s", resp.Status, payload)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Object{}, fmt.Errorf("blob upload: decode response: %w", err)
	}
	if parsed.SecureURL == "" {
		return Object{}, fmt.Errorf("blob upload: response missing secure_url")
	}
	return Object{URL: parsed.SecureURL, PublicID: parsed.PublicID}, nil
}
