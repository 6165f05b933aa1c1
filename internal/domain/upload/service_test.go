package upload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filerelay/internal/domain/admin"
	"filerelay/internal/domain/ratelimit"
	"filerelay/internal/telegram"
)

const (
	channel  = telegram.ChatID("@cdntelegraph")
	ownerID  = int64(1001)
	otherID  = int64(2002)
	adminID  = int64(9009)
	maxMB    = int64(10)
	mebibyte = int64(1024 * 1024)
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SendFile(ctx context.Context, chat telegram.ChatID, kind telegram.FileKind, fileID, caption string) (*telegram.Message, error) {
	args := m.Called(ctx, chat, kind, fileID, caption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telegram.Message), args.Error(1)
}

func (m *MockGateway) DeleteMessage(ctx context.Context, chat telegram.ChatID, messageID int64) error {
	args := m.Called(ctx, chat, messageID)
	return args.Error(0)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) set(sec int)             { c.t = time.Unix(1_700_000_000+int64(sec), 0) }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupService(t *testing.T) (*Service, *MockGateway, *Ledger, *fakeClock) {
	t.Helper()
	gw := new(MockGateway)
	ledger := NewLedger()
	clock := &fakeClock{}
	clock.set(0)

	svc := NewService(ledger, gw, ratelimit.New(3, time.Minute), admin.NewSet(adminID), Config{
		Channel:       channel,
		MaxFileSizeMB: maxMB,
	}, nil)
	svc.now = clock.now
	return svc, gw, ledger, clock
}

func uploadReq(fileID string, size int64) UploadRequest {
	return UploadRequest{
		OwnerID:   ownerID,
		FileID:    fileID,
		FileType:  telegram.KindDocument,
		Caption:   "report",
		SizeBytes: size,
		SentAt:    1_700_000_123,
	}
}

func TestService_Upload_RoundTrip(t *testing.T) {
	svc, gw, ledger, _ := setupService(t)
	ctx := context.Background()

	gw.On("SendFile", mock.Anything, channel, telegram.KindDocument, "f1", "report").
		Return(&telegram.Message{MessageID: 501}, nil)

	before := ledger.Stats()
	got, err := svc.Upload(ctx, uploadReq("f1", 3*mebibyte))
	require.NoError(t, err)

	stored, err := ledger.Get(501)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
	assert.Equal(t, Record{
		ChannelMessageID: 501,
		FileID:           "f1",
		FileType:         telegram.KindDocument,
		OwnerID:          ownerID,
		UploadedAt:       1_700_000_123,
		Caption:          "report",
		SizeMB:           3,
	}, stored)

	after := ledger.Stats()
	assert.Equal(t, before.TotalCount+1, after.TotalCount)
	assert.InDelta(t, before.TotalSizeMB+3, after.TotalSizeMB, 1e-9)
	gw.AssertExpectations(t)
}

func TestService_Upload_SizeBoundary(t *testing.T) {
	svc, gw, ledger, _ := setupService(t)
	ctx := context.Background()

	gw.On("SendFile", mock.Anything, channel, telegram.KindDocument, "exact", "report").
		Return(&telegram.Message{MessageID: 1}, nil)

	_, err := svc.Upload(ctx, uploadReq("exact", maxMB*mebibyte))
	require.NoError(t, err, "exactly the maximum is accepted")

	_, err = svc.Upload(ctx, uploadReq("over", maxMB*mebibyte+1))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, 1, ledger.Len())
	gw.AssertNotCalled(t, "SendFile", mock.Anything, channel, telegram.KindDocument, "over", "report")
}

func TestService_Upload_TooLargeDoesNotConsumeRate(t *testing.T) {
	svc, gw, _, _ := setupService(t)
	ctx := context.Background()
	gw.On("SendFile", mock.Anything, channel, telegram.KindDocument, mock.Anything, "report").
		Return(&telegram.Message{MessageID: 7}, nil).Once()

	for i := 0; i < 5; i++ {
		_, err := svc.Upload(ctx, uploadReq("big", (maxMB+1)*mebibyte))
		require.ErrorIs(t, err, ErrFileTooLarge)
	}
	_, err := svc.Upload(ctx, uploadReq("small", mebibyte))
	assert.NoError(t, err)
}

func TestService_Upload_RateLimitScenario(t *testing.T) {
	svc, gw, ledger, clock := setupService(t)
	ctx := context.Background()

	for id := int64(101); id <= 104; id++ {
		gw.On("SendFile", mock.Anything, channel, telegram.KindDocument, mock.Anything, "report").
			Return(&telegram.Message{MessageID: id}, nil).Once()
	}

	for _, sec := range []int{0, 10, 20} {
		clock.set(sec)
		_, err := svc.Upload(ctx, uploadReq("f", mebibyte))
		require.NoError(t, err, "t=%d", sec)
	}
	assert.Equal(t, 3, ledger.Len())

	clock.set(30)
	_, err := svc.Upload(ctx, uploadReq("f", mebibyte))
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 3, ledger.Len())

	clock.set(65)
	_, err = svc.Upload(ctx, uploadReq("f", mebibyte))
	assert.NoError(t, err)
	assert.Equal(t, 4, ledger.Len())
}

func TestService_Upload_GatewayFailure(t *testing.T) {
	svc, gw, ledger, _ := setupService(t)

	gwErr := &telegram.Error{Method: "sendDocument", ErrorCode: 400, Description: "Bad Request: wrong file identifier"}
	gw.On("SendFile", mock.Anything, channel, telegram.KindDocument, "bad", "report").Return(nil, gwErr)

	_, err := svc.Upload(context.Background(), uploadReq("bad", mebibyte))
	assert.ErrorIs(t, err, ErrGateway)
	assert.ErrorIs(t, err, telegram.ErrRequestFailed)
	assert.Zero(t, ledger.Len())
}

func TestService_Upload_DuplicateKey(t *testing.T) {
	svc, gw, ledger, _ := setupService(t)
	require.NoError(t, ledger.Insert(rec(42, otherID, 1)))

	gw.On("SendFile", mock.Anything, channel, telegram.KindDocument, "f", "report").
		Return(&telegram.Message{MessageID: 42}, nil)

	_, err := svc.Upload(context.Background(), uploadReq("f", mebibyte))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	kept, _ := ledger.Get(42)
	assert.Equal(t, otherID, kept.OwnerID)
}

func TestService_Delete_ByOwnerThenNotFound(t *testing.T) {
	svc, gw, ledger, _ := setupService(t)
	require.NoError(t, ledger.Insert(rec(7, ownerID, 1)))
	gw.On("DeleteMessage", mock.Anything, channel, int64(7)).Return(nil).Once()

	require.NoError(t, svc.Delete(context.Background(), ownerID, 7))
	assert.ErrorIs(t, svc.Delete(context.Background(), ownerID, 7), ErrNotFound)

	assert.Zero(t, ledger.Len())
	gw.AssertNumberOfCalls(t, "DeleteMessage", 1)
}

func TestService_Delete_ByAdmin(t *testing.T) {
	svc, gw, ledger, _ := setupService(t)
	require.NoError(t, ledger.Insert(rec(7, ownerID, 1)))
	gw.On("DeleteMessage", mock.Anything, channel, int64(7)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), adminID, 7))
	assert.Zero(t, ledger.Len())
}

func TestService_Delete_PermissionDenied(t *testing.T) {
	svc, gw, ledger, _ := setupService(t)
	require.NoError(t, ledger.Insert(rec(7, ownerID, 1)))

	err := svc.Delete(context.Background(), otherID, 7)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	kept, err := ledger.Get(7)
	require.NoError(t, err)
	assert.Equal(t, rec(7, ownerID, 1), kept)
	gw.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Delete_GatewayFailureKeepsRecord(t *testing.T) {
	svc, gw, ledger, _ := setupService(t)
	require.NoError(t, ledger.Insert(rec(7, ownerID, 1)))
	gw.On("DeleteMessage", mock.Anything, channel, int64(7)).Return(errors.New("timeout")).Once()
	gw.On("DeleteMessage", mock.Anything, channel, int64(7)).Return(nil).Once()

	err := svc.Delete(context.Background(), ownerID, 7)
	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, 1, ledger.Len())

	// retrying is safe
	require.NoError(t, svc.Delete(context.Background(), ownerID, 7))
	assert.Zero(t, ledger.Len())
}

func TestService_Delete_OwnershipProperty(t *testing.T) {
	requesters := []int64{ownerID, otherID, adminID, 0, -1, 314}
	for _, requester := range requesters {
		svc, gw, ledger, _ := setupService(t)
		require.NoError(t, ledger.Insert(rec(7, ownerID, 1)))
		gw.On("DeleteMessage", mock.Anything, channel, int64(7)).Return(nil)

		err := svc.Delete(context.Background(), requester, 7)
		allowed := requester == ownerID || requester == adminID
		if allowed {
			assert.NoError(t, err, "requester %d", requester)
			assert.Zero(t, ledger.Len())
		} else {
			assert.ErrorIs(t, err, ErrPermissionDenied, "requester %d", requester)
			assert.Equal(t, 1, ledger.Len())
		}
	}
}

func TestService_Reset(t *testing.T) {
	svc, _, ledger, _ := setupService(t)
	require.NoError(t, ledger.Insert(rec(1, ownerID, 1)))
	require.NoError(t, ledger.Insert(rec(2, otherID, 1)))

	svc.Reset()
	assert.Zero(t, svc.Len())
	assert.Equal(t, Stats{}, svc.Stats())
}

type countingRecorder struct {
	uploads, deletes []string
}

func (r *countingRecorder) UploadOutcome(result string) { r.uploads = append(r.uploads, result) }
func (r *countingRecorder) DeleteOutcome(result string) { r.deletes = append(r.deletes, result) }

func TestService_RecordsOutcomes(t *testing.T) {
	svc, gw, _, clock := setupService(t)
	recorder := &countingRecorder{}
	svc.SetRecorder(recorder)

	gw.On("SendFile", mock.Anything, channel, telegram.KindDocument, "f", "report").
		Return(&telegram.Message{MessageID: 9}, nil)
	gw.On("DeleteMessage", mock.Anything, channel, int64(9)).Return(nil)

	_, _ = svc.Upload(context.Background(), uploadReq("f", (maxMB+1)*mebibyte))
	_, _ = svc.Upload(context.Background(), uploadReq("f", mebibyte))
	clock.advance(time.Second)
	_ = svc.Delete(context.Background(), otherID, 9)
	_ = svc.Delete(context.Background(), ownerID, 9)
	_ = svc.Delete(context.Background(), ownerID, 9)

	assert.Equal(t, []string{"too_large", "accepted"}, recorder.uploads)
	assert.Equal(t, []string{"denied", "deleted", "not_found"}, recorder.deletes)
}

func TestService_PostURL(t *testing.T) {
	svc, _, _, _ := setupService(t)
	assert.Equal(t, "https://t.me/cdntelegraph/12", svc.PostURL(12))
}
