package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/presta-go-api/internal/models"
	"github.com/noah-isme/presta-go-api/internal/repository"
	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func intPtr(v int) *int {
	return &v
}

type fakeUserRepo struct {
	users map[uint]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint]models.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = uint(len(f.users) + 1)
	f.users[user.ID] = *user
	return nil
}

type fakeVerificationRepo struct {
	decideErr  error
	decided    models.Submission
	lastParams repository.DecideParams
	calls      int
	history    []models.Verification
}

func (f *fakeVerificationRepo) Decide(_ context.Context, params repository.DecideParams) (models.Submission, error) {
	f.calls++
	f.lastParams = params
	if f.decideErr != nil {
		return models.Submission{}, f.decideErr
	}
	return f.decided, nil
}

func (f *fakeVerificationRepo) ListBySubmission(_ context.Context, _ uint) ([]models.Verification, error) {
	return f.history, nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
	counts      repository.StatusCounts
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[uint]models.Submission), nextID: 1}
}

func (f *fakeSubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		if filter.UserID != nil && submission.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		out = append(out, submission)
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListPending(_ context.Context) ([]models.Submission, error) {
	pending := models.SubmissionStatusPending
	return f.List(context.Background(), repository.SubmissionFilter{Status: &pending})
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	submission.ID = f.nextID
	f.nextID++
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) CountByStatus(_ context.Context, _ uint) (repository.StatusCounts, error) {
	return f.counts, nil
}

type fakeActivityTypeRepo struct {
	types map[uint]models.ActivityType
}

func newFakeActivityTypeRepo(types ...models.ActivityType) *fakeActivityTypeRepo {
	repo := &fakeActivityTypeRepo{types: make(map[uint]models.ActivityType)}
	for _, entry := range types {
		repo.types[entry.ID] = entry
	}
	return repo
}

func (f *fakeActivityTypeRepo) List(_ context.Context) ([]models.ActivityType, error) {
	out := make([]models.ActivityType, 0, len(f.types))
	for _, entry := range f.types {
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeActivityTypeRepo) GetByID(_ context.Context, id uint) (models.ActivityType, error) {
	entry, ok := f.types[id]
	if !ok {
		return models.ActivityType{}, gorm.ErrRecordNotFound
	}
	return entry, nil
}

func (f *fakeActivityTypeRepo) Create(_ context.Context, activityType *models.ActivityType) error {
	activityType.ID = uint(len(f.types) + 1)
	f.types[activityType.ID] = *activityType
	return nil
}

type fakePointsRepo struct {
	totals       map[uint]int
	entries      []repository.LeaderboardEntry
	topCalls     int
	rebuilt      int
	rebuildCalls int
	rebuildErr   error
}

func (f *fakePointsRepo) GetTotal(_ context.Context, userID uint) (int, error) {
	return f.totals[userID], nil
}

func (f *fakePointsRepo) Top(_ context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	f.topCalls++
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func (f *fakePointsRepo) TopFromSubmissions(ctx context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	return f.Top(ctx, limit)
}

func (f *fakePointsRepo) RebuildAll(_ context.Context) (int, error) {
	f.rebuildCalls++
	if f.rebuildErr != nil {
		return 0, f.rebuildErr
	}
	return f.rebuilt, nil
}

type fakePublisher struct {
	subjects []string
	payloads []interface{}
	err      error
}

func (f *fakePublisher) Publish(subject string, payload interface{}) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, payload)
	return f.err
}

type fakeUploader struct {
	uploaded []string
	err      error
}

func (f *fakeUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = append(f.uploaded, name)
	return fmt.Sprintf("https://files.test/%s", name), nil
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func multipartProof(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
