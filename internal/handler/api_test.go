package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/presta-go-api/internal/config"
	"github.com/noah-isme/presta-go-api/internal/dto"
	"github.com/noah-isme/presta-go-api/internal/handler"
	"github.com/noah-isme/presta-go-api/internal/middleware"
	"github.com/noah-isme/presta-go-api/internal/models"
	"github.com/noah-isme/presta-go-api/internal/repository"
	"github.com/noah-isme/presta-go-api/internal/router"
	"github.com/noah-isme/presta-go-api/internal/service"
)

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://files.test/" + name, nil
}

// headerAuth stands in for the JWT middleware so tests can pick an identity
// per request.
func headerAuth(c *fiber.Ctx) error {
	if raw := c.Get("X-Test-User"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			c.Locals("user_id", uint(id))
		}
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func newTestApp(t *testing.T, authMiddleware fiber.Handler) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ActivityType{}, &models.Submission{}, &models.Verification{}, &models.PointsCache{}))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	typeRepo := repository.NewActivityTypeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	pointsRepo := repository.NewPointsRepository(db)

	cfg := config.Config{AppName: "presta-test", AppEnv: "test", LeaderboardCacheTTL: time.Minute}

	authService := service.NewAuthService(userRepo, validate, "test-secret", "test-refresh-secret", logger)
	submissionService := service.NewSubmissionService(submissionRepo, userRepo, typeRepo, pointsRepo, validate, stubUploader{}, logger)
	verificationService := service.NewVerificationService(verificationRepo, userRepo, validate, nil, logger)
	leaderboardService := service.NewLeaderboardService(pointsRepo, nil, cfg.LeaderboardCacheTTL, logger)
	activityTypeService := service.NewActivityTypeService(typeRepo, validate, logger)
	reconcileService := service.NewReconcileService(pointsRepo, logger)

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		VerificationHandler: handler.NewVerificationHandler(verificationService, logger),
		LeaderboardHandler:  handler.NewLeaderboardHandler(leaderboardService, logger),
		ActivityTypeHandler: handler.NewActivityTypeHandler(activityTypeService, logger),
		AdminHandler:        handler.NewAdminHandler(reconcileService, logger),
		JWTMiddleware:       authMiddleware,
	})

	return app, db
}

func seedAccounts(t *testing.T, db *gorm.DB) (models.User, models.User) {
	t.Helper()
	student := models.User{Name: "Alice Johnson", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleStudent}
	faculty := models.User{Name: "Dr. Stone", Email: "stone@example.com", PasswordHash: "x", Role: models.RoleFaculty}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&faculty).Error)
	return student, faculty
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func submissionRequest(t *testing.T, title string, claimedPoints int) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", title))
	require.NoError(t, writer.WriteField("claimed_points", strconv.Itoa(claimedPoints)))
	part, err := writer.CreateFormFile("file", "certificate.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v2/submissions", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func asUser(req *http.Request, user models.User) *http.Request {
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(user.ID), 10))
	req.Header.Set("X-Test-Role", user.Role)
	return req
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSubmissionLifecycleFlow(t *testing.T) {
	app, db := newTestApp(t, headerAuth)
	student, faculty := seedAccounts(t, db)

	// Student files a claim.
	resp, err := app.Test(asUser(submissionRequest(t, "Hackathon finalist", 50), student))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.SubmissionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &created))
	require.Equal(t, models.SubmissionStatusPending, created.Status)
	require.Nil(t, created.VerifiedPoints)

	// The claim shows up in the faculty review queue.
	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v2/submissions/pending", nil), faculty)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var queue []dto.SubmissionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &queue))
	require.Len(t, queue, 1)
	require.Equal(t, created.ID, queue[0].ID)

	// Faculty verifies it with 40 points.
	points := 40
	decision := jsonRequest(http.MethodPost, fmt.Sprintf("/api/v2/submissions/%d/decision", created.ID), dto.DecisionRequest{
		Decision:      models.DecisionVerified,
		AwardedPoints: &points,
		Notes:         "confirmed with organizer",
	})
	resp, err = app.Test(asUser(decision, faculty))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decided dto.SubmissionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &decided))
	require.Equal(t, models.SubmissionStatusVerified, decided.Status)
	require.Equal(t, 40, *decided.VerifiedPoints)

	// A second decision is refused with a conflict.
	retry := jsonRequest(http.MethodPost, fmt.Sprintf("/api/v2/submissions/%d/decision", created.ID), dto.DecisionRequest{
		Decision: models.DecisionRejected,
	})
	resp, err = app.Test(asUser(retry, faculty))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// The audit trail records exactly one decision.
	history := asUser(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v2/submissions/%d/verifications", created.ID), nil), faculty)
	resp, err = app.Test(history)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var audits []dto.VerificationResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &audits))
	require.Len(t, audits, 1)
	require.Equal(t, models.DecisionVerified, audits[0].Decision)

	// The student dashboard reflects the awarded points.
	dashboardReq := asUser(httptest.NewRequest(http.MethodGet, "/api/v2/student/dashboard", nil), student)
	resp, err = app.Test(dashboardReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dashboard dto.DashboardResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &dashboard))
	require.Equal(t, int64(1), dashboard.Verified)
	require.Equal(t, 40, dashboard.TotalPoints)
}

func TestLeaderboardRoleShaping(t *testing.T) {
	app, db := newTestApp(t, headerAuth)
	student, faculty := seedAccounts(t, db)

	resp, err := app.Test(asUser(submissionRequest(t, "Hackathon finalist", 50), student))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.SubmissionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &created))

	points := 40
	decision := jsonRequest(http.MethodPost, fmt.Sprintf("/api/v2/submissions/%d/decision", created.ID), dto.DecisionRequest{
		Decision:      models.DecisionVerified,
		AwardedPoints: &points,
	})
	resp, err = app.Test(asUser(decision, faculty))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Students see names and points only.
	resp, err = app.Test(asUser(httptest.NewRequest(http.MethodGet, "/api/v2/leaderboard", nil), student))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var studentView dto.LeaderboardResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &studentView))
	require.Len(t, studentView.Entries, 1)
	require.Equal(t, 1, studentView.Entries[0].Rank)
	require.Equal(t, 40, studentView.Entries[0].Points)
	require.Nil(t, studentView.Entries[0].UserID)
	require.Empty(t, studentView.Entries[0].SubmissionsURL)

	// Faculty additionally get drill-down references.
	resp, err = app.Test(asUser(httptest.NewRequest(http.MethodGet, "/api/v2/leaderboard", nil), faculty))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var facultyView dto.LeaderboardResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &facultyView))
	require.Len(t, facultyView.Entries, 1)
	require.NotNil(t, facultyView.Entries[0].UserID)
	require.Equal(t, student.ID, *facultyView.Entries[0].UserID)
	require.Contains(t, facultyView.Entries[0].SubmissionsURL, fmt.Sprintf("user_id=%d", student.ID))
}

func TestDecisionRequiresFacultyRole(t *testing.T) {
	app, db := newTestApp(t, headerAuth)
	student, _ := seedAccounts(t, db)

	resp, err := app.Test(asUser(submissionRequest(t, "Hackathon finalist", 50), student))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.SubmissionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &created))

	points := 40
	decision := jsonRequest(http.MethodPost, fmt.Sprintf("/api/v2/submissions/%d/decision", created.ID), dto.DecisionRequest{
		Decision:      models.DecisionVerified,
		AwardedPoints: &points,
	})
	resp, err = app.Test(asUser(decision, student))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDecisionPointsMismatchRejected(t *testing.T) {
	app, db := newTestApp(t, headerAuth)
	student, faculty := seedAccounts(t, db)

	resp, err := app.Test(asUser(submissionRequest(t, "Hackathon finalist", 50), student))
	require.NoError(t, err)

	var created dto.SubmissionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &created))

	// Verified without points must be a bad request, not a decision.
	decision := jsonRequest(http.MethodPost, fmt.Sprintf("/api/v2/submissions/%d/decision", created.ID), dto.DecisionRequest{
		Decision: models.DecisionVerified,
	})
	resp, err = app.Test(asUser(decision, faculty))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var submission models.Submission
	require.NoError(t, db.First(&submission, created.ID).Error)
	require.Equal(t, models.SubmissionStatusPending, submission.Status)
}

func TestSubmissionRequiresAuthentication(t *testing.T) {
	app, _ := newTestApp(t, headerAuth)

	resp, err := app.Test(submissionRequest(t, "Hackathon finalist", 50))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminReconcileEndpoint(t *testing.T) {
	app, db := newTestApp(t, headerAuth)
	student, faculty := seedAccounts(t, db)

	// Hand-edit the cache to force drift.
	require.NoError(t, db.Create(&models.PointsCache{UserID: student.ID, TotalPoints: 999, UpdatedAt: time.Now()}).Error)

	resp, err := app.Test(asUser(httptest.NewRequest(http.MethodPost, "/api/v2/admin/reconcile", nil), faculty))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result dto.ReconcileResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &result))
	require.Equal(t, 1, result.Corrected)

	var count int64
	require.NoError(t, db.Model(&models.PointsCache{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t, headerAuth)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	require.True(t, body.Success)
}

func TestRegisterLoginAndBearerAccess(t *testing.T) {
	app, _ := newTestApp(t, middleware.JWTProtected("test-secret"))

	register := jsonRequest(http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Name:     "Alice Johnson",
		Email:    "alice@example.com",
		Password: "correct-horse",
		Role:     models.RoleStudent,
	})
	resp, err := app.Test(register, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	login := jsonRequest(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	resp, err = app.Test(login, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens dto.TokenResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)

	// The issued token authenticates protected routes.
	mine := httptest.NewRequest(http.MethodGet, "/api/v2/submissions/mine", nil)
	mine.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	resp, err = app.Test(mine)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Garbage tokens do not.
	bad := httptest.NewRequest(http.MethodGet, "/api/v2/submissions/mine", nil)
	bad.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(bad)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
