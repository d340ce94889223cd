package v1_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/sendloop/sendloop/internal/api/v1"
	"github.com/sendloop/sendloop/internal/domain"
	"github.com/sendloop/sendloop/internal/whatsapp"
)

func multipartUpload(t *testing.T, fields map[string]string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileContent != nil {
		fw, err := w.CreateFormFile("file", "header.png")
		require.NoError(t, err)
		_, err = fw.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestMediaUploadHandler(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		uid := uuid.New()
		store := &mockDataStore{
			wabas: &mockWabaRepo{
				getByIDFunc: func(_ context.Context, _ uuid.UUID, wabaID string) (*domain.WabaAccount, error) {
					assert.Equal(t, "waba-1", wabaID)
					return &domain.WabaAccount{WabaID: "waba-1", CompanyID: cid, AccessToken: "enc"}, nil
				},
			},
		}
		gateway := &mockGateway{
			uploadMediaFunc: func(_ context.Context, wabaID, accessToken, _ string, file io.Reader) (*whatsapp.MediaHandle, error) {
				assert.Equal(t, "waba-1", wabaID)
				assert.Equal(t, "decrypted:enc", accessToken)
				data, err := io.ReadAll(file)
				require.NoError(t, err)
				assert.Equal(t, []byte("png-bytes"), data)
				return &whatsapp.MediaHandle{H: "4::aWQ=", URL: "https://lookaside.example/handle"}, nil
			},
		}

		body, contentType := multipartUpload(t, map[string]string{
			"messaging_product": "whatsapp",
			"wabaId":            "waba-1",
		}, []byte("png-bytes"))

		req := httptest.NewRequest(http.MethodPost, "/media-handle", body)
		req.Header.Set("Content-Type", contentType)
		req = req.WithContext(sessionCtx(cid, uid))
		rec := httptest.NewRecorder()

		v1.MediaUploadHandler(store, gateway, passthroughVault())(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)
		assert.Contains(t, rec.Body.String(), "4::aWQ=")
	})

	t.Run("wrong_messaging_product", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		uid := uuid.New()

		body, contentType := multipartUpload(t, map[string]string{
			"messaging_product": "sms",
			"wabaId":            "waba-1",
		}, []byte("data"))

		req := httptest.NewRequest(http.MethodPost, "/media-handle", body)
		req.Header.Set("Content-Type", contentType)
		req = req.WithContext(sessionCtx(cid, uid))
		rec := httptest.NewRecorder()

		v1.MediaUploadHandler(&mockDataStore{}, &mockGateway{}, passthroughVault())(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing_file", func(t *testing.T) {
		t.Parallel()

		cid := uuid.New()
		uid := uuid.New()

		body, contentType := multipartUpload(t, map[string]string{
			"messaging_product": "whatsapp",
			"wabaId":            "waba-1",
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/media-handle", body)
		req.Header.Set("Content-Type", contentType)
		req = req.WithContext(sessionCtx(cid, uid))
		rec := httptest.NewRecorder()

		v1.MediaUploadHandler(&mockDataStore{}, &mockGateway{}, passthroughVault())(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no_session", func(t *testing.T) {
		t.Parallel()

		body, contentType := multipartUpload(t, map[string]string{
			"messaging_product": "whatsapp",
			"wabaId":            "waba-1",
		}, []byte("data"))

		req := httptest.NewRequest(http.MethodPost, "/media-handle", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		v1.MediaUploadHandler(&mockDataStore{}, &mockGateway{}, passthroughVault())(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
