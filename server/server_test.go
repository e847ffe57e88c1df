package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bims-inspector/inspection"
)

type stubService struct {
	result      *inspection.Result
	evaluateErr error
	indexID     string
	indexErr    error

	payloadCount int
	status       inspection.Status
	description  string
}

func (s *stubService) Evaluate(_ context.Context, payloads [][]byte) (*inspection.Result, error) {
	s.payloadCount = len(payloads)
	if s.evaluateErr != nil {
		return nil, s.evaluateErr
	}
	return s.result, nil
}

func (s *stubService) IndexReference(_ context.Context, _ []byte, status inspection.Status, description string) (string, error) {
	s.status = status
	s.description = description
	if s.indexErr != nil {
		return "", s.indexErr
	}
	return s.indexID, nil
}

func multipartBody(t *testing.T, fileField string, files map[string][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, data := range files {
		part, err := mw.CreateFormFile(fileField, name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	router := NewRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestEvaluate(t *testing.T) {
	svc := &stubService{result: &inspection.Result{
		Status:         inspection.StatusClean,
		Confidence:     0.95,
		Reasoning:      "all clear",
		IssuesDetected: []string{},
	}}
	router := NewRouter(svc)

	body, contentType := multipartBody(t, "files", map[string][]byte{
		"a.jpg": []byte("fake-jpeg-1"),
		"b.jpg": []byte("fake-jpeg-2"),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.payloadCount)

	var result inspection.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, inspection.StatusClean, result.Status)
	assert.NotNil(t, result.IssuesDetected)
}

func TestEvaluateNoFiles(t *testing.T) {
	router := NewRouter(&stubService{})

	body, contentType := multipartBody(t, "files", nil, map[string]string{"unused": "x"})
	req := httptest.NewRequest(http.MethodPost, "/evaluate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateBadInputFault(t *testing.T) {
	svc := &stubService{evaluateErr: inspection.ErrBadInput}
	router := NewRouter(svc)

	body, contentType := multipartBody(t, "files", map[string][]byte{"a.jpg": []byte("junk")}, nil)
	req := httptest.NewRequest(http.MethodPost, "/evaluate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var fault map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fault))
	assert.Contains(t, fault["detail"], "Image processing failed")
}

func TestEvaluateServerFault(t *testing.T) {
	svc := &stubService{evaluateErr: errors.New("secondary provider failed: boom")}
	router := NewRouter(svc)

	body, contentType := multipartBody(t, "files", map[string][]byte{"a.jpg": []byte("x")}, nil)
	req := httptest.NewRequest(http.MethodPost, "/evaluate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var fault map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fault))
	assert.Contains(t, fault["detail"], "AI Analysis failed")
}

func TestIndex(t *testing.T) {
	svc := &stubService{indexID: "/data/images/ref_Clean_abc.jpg"}
	router := NewRouter(svc)

	body, contentType := multipartBody(t, "file", map[string][]byte{"lobby.jpg": []byte("fake")}, map[string]string{
		"status":      "Clean",
		"description": "empty lobby",
	})
	req := httptest.NewRequest(http.MethodPost, "/index", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, inspection.StatusClean, svc.status)
	assert.Equal(t, "empty lobby", svc.description)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/data/images/ref_Clean_abc.jpg", resp["id"])
	assert.Equal(t, "Image indexed successfully", resp["message"])
}

func TestIndexMissingFile(t *testing.T) {
	router := NewRouter(&stubService{})

	body, contentType := multipartBody(t, "file", nil, map[string]string{"status": "Clean"})
	req := httptest.NewRequest(http.MethodPost, "/index", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
