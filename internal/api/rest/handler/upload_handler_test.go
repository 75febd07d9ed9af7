package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/caseforge/caseforge/internal/domain"
)

type mockUploadStore struct {
	mock.Mock
}

func (m *mockUploadStore) Store(ctx context.Context, filename string, data []byte, configID uuid.UUID) (string, error) {
	args := m.Called(ctx, filename, data, configID)
	return args.String(0), args.Error(1)
}

type mockConfigurationCreator struct {
	mock.Mock
}

func (m *mockConfigurationCreator) Create(ctx context.Context, cfg *domain.Configuration) error {
	return m.Called(ctx, cfg).Error(0)
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func multipartBody(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadHandler_Upload(t *testing.T) {
	photo := pngBytes(t, 640, 480)

	testCases := map[string]struct {
		fieldName      string
		filename       string
		content        []byte
		mockURL        string
		mockStoreError error
		mockCreateErr  error
		expectedStatus int
	}{

		"should accept an image and open a configuration": {
			fieldName:      "file",
			filename:       "photo.png",
			content:        photo,
			mockURL:        "https://files.example.com/uploads/photo.png",
			expectedStatus: http.StatusCreated,
		},

		"should reject a request without a file field": {
			fieldName:      "attachment",
			filename:       "photo.png",
			content:        photo,
			expectedStatus: http.StatusBadRequest,
		},

		"should reject a file that is not an image": {
			fieldName:      "file",
			filename:       "notes.txt",
			content:        []byte("not an image"),
			expectedStatus: http.StatusUnsupportedMediaType,
		},

		"should report a storage failure": {
			fieldName:      "file",
			filename:       "photo.png",
			content:        photo,
			mockStoreError: errors.New("storage unavailable"),
			expectedStatus: http.StatusBadGateway,
		},

		"should report a configuration insert failure": {
			fieldName:      "file",
			filename:       "photo.png",
			content:        photo,
			mockURL:        "https://files.example.com/uploads/photo.png",
			mockCreateErr:  errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			uploads := &mockUploadStore{}
			configs := &mockConfigurationCreator{}
			uploads.On("Store", mock.Anything, tc.filename, tc.content, mock.Anything).
				Return(tc.mockURL, tc.mockStoreError)
			configs.On("Create", mock.Anything, mock.MatchedBy(func(cfg *domain.Configuration) bool {
				return cfg.ImageURL == tc.mockURL && cfg.Width == 640 && cfg.Height == 480
			})).Return(tc.mockCreateErr)

			handler := NewUploadHandler(uploads, configs, newTestLogger())

			body, contentType := multipartBody(t, tc.fieldName, tc.filename, tc.content)
			req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			handler.Upload(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)

			if tc.expectedStatus == http.StatusCreated {
				var response UploadResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, tc.mockURL, response.URL)
				assert.Equal(t, 640, response.Width)
				assert.Equal(t, 480, response.Height)
				assert.NotEqual(t, uuid.Nil, response.ConfigID)
			}
		})
	}
}
