package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	lastBucket string
	lastPath   string
	err        error
}

func (f *fakeClient) CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error) {
	f.lastBucket = bucket
	f.lastPath = path
	if f.err != nil {
		return "", f.err
	}
	return "https://example.com/upload", nil
}

func setupUploadTest(t *testing.T) (*fiber.App, *fakeClient) {
	client := &fakeClient{}
	h := &Handlers{Service: &Service{
		Client:      client,
		SupabaseURL: "https://example.supabase.co",
	}}
	app := fiber.New()
	app.Post("/api/v1/uploads/offer-file", h.UploadOfferFile)
	app.Post("/api/v1/uploads/pda-file", h.UploadPdaFile)
	return app, client
}

func TestUploadOfferFile_Success(t *testing.T) {
	app, client := setupUploadTest(t)

	body, _ := json.Marshal(map[string]interface{}{"file_name": "offer.pdf", "file_size": 1024})
	req := httptest.NewRequest("POST", "/api/v1/uploads/offer-file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, BucketOfferFiles, client.lastBucket)
}

func TestUploadOfferFile_MissingFileName(t *testing.T) {
	app, _ := setupUploadTest(t)

	body, _ := json.Marshal(map[string]interface{}{})
	req := httptest.NewRequest("POST", "/api/v1/uploads/offer-file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadOfferFile_BadExtension(t *testing.T) {
	app, _ := setupUploadTest(t)

	body, _ := json.Marshal(map[string]interface{}{"file_name": "malware.exe", "file_size": 1024})
	req := httptest.NewRequest("POST", "/api/v1/uploads/offer-file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadOfferFile_TooLarge(t *testing.T) {
	app, _ := setupUploadTest(t)

	body, _ := json.Marshal(map[string]interface{}{"file_name": "offer.pdf", "file_size": MaxOfferFileSize + 1})
	req := httptest.NewRequest("POST", "/api/v1/uploads/offer-file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadPdaFile_LargerCeiling(t *testing.T) {
	app, client := setupUploadTest(t)

	// 15MB passes for PDA files but would fail the offer-file ceiling.
	body, _ := json.Marshal(map[string]interface{}{"file_name": "pda.xlsx", "file_size": 15 << 20})
	req := httptest.NewRequest("POST", "/api/v1/uploads/pda-file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, BucketPdaFiles, client.lastBucket)
}
