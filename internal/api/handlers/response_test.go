package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	CourtID   int64  `json:"courtId" validate:"gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	DayOfWeek int    `json:"dayOfWeek" validate:"gte=1,lte=7"`
}

func TestDecodeJSON(t *testing.T) {
	var dst sample

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"courtId":3,"date":"2024-03-01","dayOfWeek":5}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, int64(3), dst.CourtID)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(r, &dst), ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	assert.Error(t, DecodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"courtId":3}{"courtId":4}`))
	assert.Error(t, DecodeJSON(r, &dst))
}

func TestDecodeJSONLenient(t *testing.T) {
	var dst sample

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"courtId":5,"fraud_status":"accept"}`))
	require.NoError(t, DecodeJSONLenient(r, &dst))
	assert.Equal(t, int64(5), dst.CourtID)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"courtId":"five"}`))
	assert.Error(t, DecodeJSONLenient(r, &dst))
}

func TestValidateStruct(t *testing.T) {
	assert.Empty(t, ValidateStruct(sample{CourtID: 3, Date: "2024-03-01", DayOfWeek: 5}))

	errs := ValidateStruct(sample{CourtID: 0, Date: "01.03.2024", DayOfWeek: 8})
	require.Len(t, errs, 3)

	fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
	assert.ElementsMatch(t, []string{"courtId", "date", "dayOfWeek"}, fields)
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondConflict(w, "занято")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "занято", body.Error)
}

func TestRespondInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	RespondInternalError(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"внутренняя ошибка сервера"}`, w.Body.String())
}
