// routes/response.go
package routes

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/harga_pangan/models"
)

// DateLayout формат дат в ответах API (dd-mm-yyyy)
const DateLayout = "02-01-2006"

// connectionFailedMessage общий текст ошибки хранилища; подробности пишутся только в лог
const connectionFailedMessage = "Database connection failed"

// writeJSON кодирует ответ с указанным кодом
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Ошибка при кодировании JSON: %v", err)
	}
}

// respondSuccess отправляет {"error": false, "message": "Success", ...fields}
func respondSuccess(w http.ResponseWriter, fields map[string]interface{}) {
	body := map[string]interface{}{
		"error":   false,
		"message": "Success",
	}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// respondClientError отправляет 4xx в формате {"error": true, "message": "..."}
func respondClientError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}

// respondServerError отправляет 5xx в формате {"error": "..."}
func respondServerError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"error": message,
	})
}

// respondError единственное место, где вид ошибки превращается в код ответа.
// insufficientStatus задает код для InsufficientData: он зависит от вызывающего маршрута.
func respondError(w http.ResponseWriter, r *http.Request, err error, insufficientStatus int) {
	log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)

	switch models.KindOf(err) {
	case models.KindNoData:
		respondClientError(w, http.StatusNotFound, publicMessage(err))
	case models.KindInvalidInput:
		respondClientError(w, http.StatusBadRequest, publicMessage(err))
	case models.KindInsufficientData:
		if insufficientStatus < http.StatusInternalServerError {
			respondClientError(w, insufficientStatus, publicMessage(err))
			return
		}
		respondServerError(w, publicMessage(err))
	case models.KindConnection:
		respondServerError(w, connectionFailedMessage)
	default:
		respondServerError(w, err.Error())
	}
}

// publicMessage возвращает текст ошибки без префикса операции
func publicMessage(err error) string {
	var e *models.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// pathInt читает целочисленный параметр пути
func pathInt(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.InvalidInput("routes", "неверный формат %s: %q", name, raw)
	}
	return v, nil
}

// queryInt читает целочисленный параметр запроса; отсутствующий параметр дает значение по умолчанию
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.InvalidInput("routes", "неверный формат %s: %q", name, raw)
	}
	return v, nil
}

// formatDate форматирует дату для ответа
func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}
