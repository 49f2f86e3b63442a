// internal/routes/routes_test.go
package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"fillermed.kz/internal/config"
	"fillermed.kz/internal/db"

	"github.com/alexedwards/scs/v2"
)

type testEnv struct {
	server *httptest.Server
	client *http.Client
	store  *db.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	webDir := t.TempDir()
	for _, name := range []string{"index.html", "login.html", "patients.html", "appointments.html", "reports.html"} {
		page := "<!DOCTYPE html><html><body>" + name + "</body></html>"
		if err := os.WriteFile(filepath.Join(webDir, name), []byte(page), 0o644); err != nil {
			t.Fatalf("не удалось записать страницу %s: %v", name, err)
		}
	}

	cfg := &config.Config{
		AppEnv: "development",
		WebDir: webDir,
		Admin: config.AdminConfig{
			Username: "receptionist",
			Password: "welcome123",
			Role:     "receptionist",
		},
		Session: config.SessionConfig{
			LifetimeHours: 1,
			CookieName:    "fillermed_session",
		},
		RateLimit: config.RateLimitConfig{
			LoginRPS:   1000,
			LoginBurst: 1000,
		},
	}

	store, err := db.NewMemoryStore(cfg.Admin)
	if err != nil {
		t.Fatalf("не удалось создать хранилище в памяти: %v", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime()
	sessionManager.Cookie.Name = cfg.Session.CookieName

	server := httptest.NewServer(New(cfg, sessionManager, store))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("не удалось создать cookie-jar: %v", err)
	}

	return &testEnv{
		server: server,
		client: &http.Client{Jar: jar},
		store:  store,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := e.doRaw(t, method, path, body)
	var payload map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("%s %s: ответ не является JSON-объектом: %v (%s)", method, path, err, raw)
		}
	}
	return status, payload
}

func (e *testEnv) doRaw(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("ошибка сериализации тела запроса: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("ошибка создания запроса: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ошибка чтения ответа: %v", err)
	}
	return resp.StatusCode, data
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	status, payload := e.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": "receptionist",
		"password": "welcome123",
	})
	if status != http.StatusOK {
		t.Fatalf("логин: ожидался статус 200, получен %d (%v)", status, payload)
	}
}

func (e *testEnv) createPatient(t *testing.T, firstName, lastName string) string {
	t.Helper()
	status, payload := e.do(t, http.MethodPost, "/api/patients", map[string]string{
		"firstName": firstName,
		"lastName":  lastName,
	})
	if status != http.StatusCreated {
		t.Fatalf("создание пациента: ожидался статус 201, получен %d (%v)", status, payload)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("создание пациента: в ответе нет id")
	}
	return id
}

func (e *testEnv) createAppointment(t *testing.T, patientID, date, startTime string) (int, map[string]any) {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/appointments", map[string]string{
		"patientId": patientID,
		"date":      date,
		"startTime": startTime,
	})
}

func TestLoginLogoutFlow(t *testing.T) {
	env := newTestEnv(t)

	// Отказ имеет ту же форму {"error": string}, что и остальные ошибки API,
	// и не отличается для неверного пароля и несуществующего логина.
	badCredentials := []map[string]string{
		{"username": "receptionist", "password": "wrong-password"},
		{"username": "no-such-user", "password": "welcome123"},
	}
	for _, creds := range badCredentials {
		status, payload := env.do(t, http.MethodPost, "/api/login", creds)
		if status != http.StatusUnauthorized {
			t.Fatalf("логин %q: ожидался статус 401, получен %d", creds["username"], status)
		}
		if payload["error"] != "Invalid credentials" {
			t.Fatalf("логин %q: ожидалось {\"error\": \"Invalid credentials\"}, получено %v", creds["username"], payload)
		}
		if _, hasMessage := payload["message"]; hasMessage {
			t.Fatalf("логин %q: в теле ошибки не должно быть ключа message: %v", creds["username"], payload)
		}
	}

	env.login(t)

	status, payload := env.do(t, http.MethodGet, "/api/auth/status", nil)
	if status != http.StatusOK || payload["authenticated"] != true {
		t.Fatalf("после логина ожидался authenticated=true, получено %d %v", status, payload)
	}
	user, _ := payload["user"].(map[string]any)
	if user["username"] != "receptionist" || user["role"] != "receptionist" {
		t.Fatalf("неожиданные данные пользователя: %v", user)
	}

	status, payload = env.do(t, http.MethodPost, "/api/logout", nil)
	if status != http.StatusOK || payload["message"] != "Logged out successfully" {
		t.Fatalf("логаут: получено %d %v", status, payload)
	}

	status, payload = env.do(t, http.MethodGet, "/api/auth/status", nil)
	if status != http.StatusOK || payload["authenticated"] != false {
		t.Fatalf("после логаута ожидался authenticated=false, получено %d %v", status, payload)
	}
}

func TestDataRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/patients"},
		{http.MethodGet, "/api/appointments"},
		{http.MethodGet, "/api/dashboard/stats"},
		{http.MethodPost, "/api/clear-test-data"},
		{http.MethodPost, "/api/reset-db"},
	}
	for _, p := range paths {
		status, payload := env.do(t, p.method, p.path, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s: ожидался статус 401, получен %d", p.method, p.path, status)
		}
		if payload["error"] != "Authentication required" {
			t.Errorf("%s %s: неожиданное тело ответа %v", p.method, p.path, payload)
		}
	}
}

func TestPatientLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	status, created := env.do(t, http.MethodPost, "/api/patients", map[string]string{
		"firstName":   "Айгерим",
		"lastName":    "Сатпаева",
		"email":       "aigerim@example.kz",
		"phone":       "+7 701 000 00 00",
		"dateOfBirth": "1990-04-12",
	})
	if status != http.StatusCreated {
		t.Fatalf("создание: ожидался статус 201, получен %d (%v)", status, created)
	}
	id := created["id"].(string)

	status, fetched := env.do(t, http.MethodGet, "/api/patients/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("чтение: ожидался статус 200, получен %d", status)
	}
	for _, key := range []string{"firstName", "lastName", "email", "phone", "dateOfBirth"} {
		if fetched[key] != created[key] {
			t.Errorf("поле %s: создано %v, прочитано %v", key, created[key], fetched[key])
		}
	}

	// Частичное обновление меняет только присланные поля.
	status, payload := env.do(t, http.MethodPut, "/api/patients/"+id, map[string]string{
		"phone": "+7 702 111 11 11",
	})
	if status != http.StatusOK || payload["message"] != "Patient updated successfully" {
		t.Fatalf("обновление: получено %d %v", status, payload)
	}
	status, fetched = env.do(t, http.MethodGet, "/api/patients/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("чтение после обновления: статус %d", status)
	}
	if fetched["phone"] != "+7 702 111 11 11" {
		t.Errorf("телефон не обновился: %v", fetched["phone"])
	}
	if fetched["firstName"] != "Айгерим" || fetched["email"] != "aigerim@example.kz" {
		t.Errorf("непрошенные поля изменились: %v", fetched)
	}

	status, payload = env.do(t, http.MethodDelete, "/api/patients/"+id, nil)
	if status != http.StatusOK || payload["message"] != "Patient deleted successfully" {
		t.Fatalf("удаление: получено %d %v", status, payload)
	}

	// Повторное удаление и чтение несуществующего пациента.
	status, payload = env.do(t, http.MethodDelete, "/api/patients/"+id, nil)
	if status != http.StatusNotFound || payload["error"] != "Patient not found" {
		t.Fatalf("повторное удаление: получено %d %v", status, payload)
	}
	status, payload = env.do(t, http.MethodGet, "/api/patients/"+id, nil)
	if status != http.StatusNotFound || payload["error"] != "Patient not found" {
		t.Fatalf("чтение удаленного: получено %d %v", status, payload)
	}
}

func TestPatientValidation(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	status, payload := env.do(t, http.MethodPost, "/api/patients", map[string]string{
		"lastName": "Безымянный",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("пациент без имени: ожидался статус 400, получен %d", status)
	}
	if msg, _ := payload["error"].(string); msg == "" {
		t.Fatalf("пациент без имени: пустое сообщение об ошибке (%v)", payload)
	}

	status, payload = env.do(t, http.MethodPost, "/api/patients", map[string]string{
		"firstName": "Иван",
		"lastName":  "Петров",
		"email":     "not-an-email",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("невалидный email: ожидался статус 400, получен %d (%v)", status, payload)
	}

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/patients", strings.NewReader("{broken"))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("битый JSON: ожидался статус 400, получен %d", resp.StatusCode)
	}
}

func TestAppointmentSlotConflict(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	patientID := env.createPatient(t, "Марат", "Оспанов")

	status, created := env.createAppointment(t, patientID, "2026-09-01", "10:00")
	if status != http.StatusCreated {
		t.Fatalf("первая бронь: ожидался статус 201, получен %d (%v)", status, created)
	}
	if created["patientName"] != "Марат Оспанов" {
		t.Errorf("имя пациента не подставилось: %v", created["patientName"])
	}
	if created["status"] != "pending" {
		t.Errorf("статус по умолчанию должен быть pending, получен %v", created["status"])
	}

	status, payload := env.createAppointment(t, patientID, "2026-09-01", "10:00")
	if status != http.StatusConflict || payload["error"] != "This time slot is already booked" {
		t.Fatalf("повторная бронь того же слота: получено %d %v", status, payload)
	}

	// Тот же час другого дня и другой час того же дня свободны.
	if status, _ = env.createAppointment(t, patientID, "2026-09-02", "10:00"); status != http.StatusCreated {
		t.Errorf("бронь того же часа на другую дату: статус %d", status)
	}
	if status, _ = env.createAppointment(t, patientID, "2026-09-01", "11:00"); status != http.StatusCreated {
		t.Errorf("бронь другого часа той же даты: статус %d", status)
	}
}

func TestConcurrentBookingOneWinner(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	patientID := env.createPatient(t, "Сауле", "Ахметова")

	const workers = 8
	statuses := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, _ := json.Marshal(map[string]string{
				"patientId": patientID,
				"date":      "2026-09-03",
				"startTime": "09:30",
			})
			resp, err := env.client.Post(env.server.URL+"/api/appointments", "application/json", bytes.NewReader(payload))
			if err != nil {
				t.Errorf("конкурентная бронь: %v", err)
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	var createdCount, conflictCount int
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			createdCount++
		case http.StatusConflict:
			conflictCount++
		}
	}
	if createdCount != 1 || conflictCount != workers-1 {
		t.Fatalf("ожидался ровно один 201 и %d конфликтов, получено 201=%d 409=%d (%v)",
			workers-1, createdCount, conflictCount, statuses)
	}
}

func TestAppointmentStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	patientID := env.createPatient(t, "Дана", "Ибраева")

	_, created := env.createAppointment(t, patientID, "2026-09-05", "14:00")
	id := created["id"].(string)

	status, payload := env.do(t, http.MethodPut, "/api/appointments/"+id+"/confirm", nil)
	if status != http.StatusOK || payload["message"] != "Appointment confirmed successfully" {
		t.Fatalf("подтверждение: получено %d %v", status, payload)
	}
	_, fetched := env.do(t, http.MethodGet, "/api/appointments/"+id, nil)
	if fetched["status"] != "confirmed" {
		t.Fatalf("после подтверждения статус %v", fetched["status"])
	}

	status, payload = env.do(t, http.MethodPut, "/api/appointments/"+id+"/cancel", nil)
	if status != http.StatusOK || payload["message"] != "Appointment cancelled successfully" {
		t.Fatalf("отмена: получено %d %v", status, payload)
	}
	_, fetched = env.do(t, http.MethodGet, "/api/appointments/"+id, nil)
	if fetched["status"] != "cancelled" {
		t.Fatalf("после отмены статус %v", fetched["status"])
	}

	// Перенос отмененной записи возвращает ее в работу со статусом confirmed.
	status, payload = env.do(t, http.MethodPut, "/api/appointments/"+id+"/reschedule", map[string]any{
		"newDate":       "2026-09-06",
		"newTime":       "15:30",
		"reason":        "просьба пациента",
		"notifyPatient": true,
	})
	if status != http.StatusOK || payload["message"] != "Appointment rescheduled and confirmed successfully" {
		t.Fatalf("перенос: получено %d %v", status, payload)
	}
	_, fetched = env.do(t, http.MethodGet, "/api/appointments/"+id, nil)
	if fetched["status"] != "confirmed" || fetched["date"] != "2026-09-06" || fetched["startTime"] != "15:30" {
		t.Fatalf("после переноса: %v", fetched)
	}
	if fetched["rescheduleReason"] != "просьба пациента" {
		t.Errorf("причина переноса не сохранилась: %v", fetched["rescheduleReason"])
	}

	// Перенос в занятый слот отклоняется.
	env.createAppointment(t, patientID, "2026-09-07", "10:00")
	status, payload = env.do(t, http.MethodPut, "/api/appointments/"+id+"/reschedule", map[string]any{
		"newDate": "2026-09-07",
		"newTime": "10:00",
	})
	if status != http.StatusConflict || payload["error"] != "This time slot is already booked" {
		t.Fatalf("перенос в занятый слот: получено %d %v", status, payload)
	}

	status, payload = env.do(t, http.MethodPut, "/api/appointments/missing-id/confirm", nil)
	if status != http.StatusNotFound || payload["error"] != "Appointment not found" {
		t.Fatalf("подтверждение несуществующей записи: получено %d %v", status, payload)
	}
}

func TestAppointmentsByDate(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	patientID := env.createPatient(t, "Олег", "Ким")

	env.createAppointment(t, patientID, "2026-09-10", "09:00")
	env.createAppointment(t, patientID, "2026-09-10", "10:00")
	env.createAppointment(t, patientID, "2026-09-11", "09:00")

	status, raw := env.doRaw(t, http.MethodGet, "/api/appointments/date/2026-09-10", nil)
	if status != http.StatusOK {
		t.Fatalf("выборка по дате: статус %d", status)
	}
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("выборка по дате: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("на 2026-09-10 ожидалось 2 записи, получено %d", len(list))
	}
	for _, a := range list {
		if a["date"] != "2026-09-10" {
			t.Errorf("в выборке чужая дата: %v", a["date"])
		}
	}
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	status, stats := env.do(t, http.MethodGet, "/api/dashboard/stats", nil)
	if status != http.StatusOK {
		t.Fatalf("статистика: статус %d", status)
	}
	for _, key := range []string{"totalPatients", "todaysAppointments", "pendingAppointments", "newPatientsThisMonth"} {
		if stats[key] != float64(0) {
			t.Errorf("на пустой базе %s должен быть 0, получено %v", key, stats[key])
		}
	}

	patientID := env.createPatient(t, "Асель", "Нурланова")
	today := time.Now().Format("2006-01-02")
	env.createAppointment(t, patientID, today, "16:00")

	_, stats = env.do(t, http.MethodGet, "/api/dashboard/stats", nil)
	if stats["totalPatients"] != float64(1) {
		t.Errorf("totalPatients: %v", stats["totalPatients"])
	}
	if stats["todaysAppointments"] != float64(1) {
		t.Errorf("todaysAppointments: %v", stats["todaysAppointments"])
	}
	if stats["pendingAppointments"] != float64(1) {
		t.Errorf("pendingAppointments: %v", stats["pendingAppointments"])
	}
	if stats["newPatientsThisMonth"] != float64(1) {
		t.Errorf("newPatientsThisMonth: %v", stats["newPatientsThisMonth"])
	}
}

func TestDiagnosticsWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	status, payload := env.do(t, http.MethodGet, "/ping", nil)
	if status != http.StatusOK || payload["message"] != "pong" {
		t.Fatalf("/ping: получено %d %v", status, payload)
	}

	status, payload = env.do(t, http.MethodGet, "/api/health", nil)
	if status != http.StatusOK || payload["status"] != "ok" || payload["database"] != "connected" {
		t.Fatalf("/api/health: получено %d %v", status, payload)
	}

	status, payload = env.do(t, http.MethodGet, "/api/sync-status", nil)
	if status != http.StatusOK || payload["connected"] != true || payload["database"] != "MariaDB" {
		t.Fatalf("/api/sync-status: получено %d %v", status, payload)
	}

	// При недоступной БД диагностика остается доступной и честно это сообщает.
	env.store.PingErr = fmt.Errorf("connection refused")
	status, payload = env.do(t, http.MethodGet, "/api/health", nil)
	if status != http.StatusOK || payload["status"] != "degraded" || payload["database"] != "disconnected" {
		t.Fatalf("/api/health при недоступной БД: получено %d %v", status, payload)
	}
	status, payload = env.do(t, http.MethodGet, "/api/sync-status", nil)
	if status != http.StatusOK || payload["connected"] != false {
		t.Fatalf("/api/sync-status при недоступной БД: получено %d %v", status, payload)
	}
}

func TestMaintenanceEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	patientID := env.createPatient(t, "Тимур", "Жаксыбеков")
	env.createAppointment(t, patientID, "2026-09-20", "12:00")

	status, payload := env.do(t, http.MethodPost, "/api/clear-test-data", nil)
	if status != http.StatusOK || payload["message"] != "All test data cleared successfully" {
		t.Fatalf("очистка: получено %d %v", status, payload)
	}

	status, raw := env.doRaw(t, http.MethodGet, "/api/patients", nil)
	if status != http.StatusOK || strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("после очистки список пациентов должен быть пуст: %d %s", status, raw)
	}

	status, payload = env.do(t, http.MethodPost, "/api/reset-db", nil)
	if status != http.StatusOK || payload["message"] != "Database reset successfully" {
		t.Fatalf("сброс: получено %d %v", status, payload)
	}

	// После сброса учетная запись по умолчанию пересоздана, вход работает.
	env.login(t)
}

func TestUnknownAPIRouteReturnsJSON(t *testing.T) {
	env := newTestEnv(t)

	status, payload := env.do(t, http.MethodGet, "/api/does-not-exist", nil)
	if status != http.StatusNotFound || payload["error"] != "API endpoint not found" {
		t.Fatalf("неизвестный API-путь: получено %d %v", status, payload)
	}
}

func TestPagesServed(t *testing.T) {
	env := newTestEnv(t)

	pages := map[string]string{
		"/":                  "index.html",
		"/dashboard":         "index.html",
		"/login":             "login.html",
		"/patients.html":     "patients.html",
		"/appointments":      "appointments.html",
		"/reports":           "reports.html",
		"/some/unknown/path": "index.html",
	}
	for path, want := range pages {
		status, raw := env.doRaw(t, http.MethodGet, path, nil)
		if status != http.StatusOK {
			t.Errorf("GET %s: статус %d", path, status)
			continue
		}
		if !strings.Contains(string(raw), want) {
			t.Errorf("GET %s: ожидалось содержимое %s, получено %q", path, want, raw)
		}
	}
}
