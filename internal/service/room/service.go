package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/syncroom/server/internal/repository/room"
	"github.com/syncroom/server/pkg/randstr"
	"github.com/syncroom/server/pkg/ytmeta"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrEntryNotFound     = errors.New("queue entry not found")
	ErrQueueLimitReached = errors.New("queue limit reached")
)

type iRoomRepo interface {
	// room
	CreateRoom(context.Context, *room.CreateRoomParams) error
	IsRoomExists(context.Context, string) (bool, error)
	// playback
	SetPlaybackState(context.Context, *room.SetPlaybackStateParams) error
	GetPlaybackState(context.Context, string) (room.PlaybackState, error)
	GetPlaybackURL(context.Context, string) (string, error)
	UpdatePlaybackIntent(context.Context, *room.UpdatePlaybackIntentParams) error
	SubscribePlayback(context.Context, string) (<-chan room.PlaybackState, func(), error)
	ServerNowMs(context.Context) int64
	// queue
	Enqueue(context.Context, *room.EnqueueParams) error
	PeekOldest(context.Context, string) (string, room.QueueEntry, error)
	GetEntry(ctx context.Context, roomId, entryId string) (room.QueueEntry, error)
	GetEntryIds(context.Context, string) ([]string, error)
	GetQueueLength(context.Context, string) (int, error)
	RemoveEntry(context.Context, *room.RemoveEntryParams) error
	PromoteHead(context.Context, *room.PromoteHeadParams) (room.PromoteResult, error)
	// history
	AppendHistory(context.Context, *room.AppendHistoryParams) error
	GetHistory(context.Context, string) ([]room.HistoryEntry, error)
}

// iMetaFetcher resolves video titles and thumbnails for history entries,
// best-effort.
type iMetaFetcher interface {
	Fetch(ctx context.Context, videoId string) (*ytmeta.VideoMeta, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	QueueLimit      int
	PromoteAttempts int
	PromoteBackoff  time.Duration
	DriftThreshold  time.Duration
	SuppressWindow  time.Duration
}

type service struct {
	roomRepo        iRoomRepo
	metaFetcher     iMetaFetcher
	generator       iGenerator
	logger          *slog.Logger
	queueLimit      int
	promoteAttempts int
	promoteBackoff  time.Duration
	driftThreshold  time.Duration
	suppressWindow  time.Duration
}

func NewService(roomRepo iRoomRepo, metaFetcher iMetaFetcher, logger *slog.Logger, cfg *Config) *service {
	s := service{
		roomRepo:        roomRepo,
		metaFetcher:     metaFetcher,
		logger:          logger,
		queueLimit:      cfg.QueueLimit,
		promoteAttempts: cfg.PromoteAttempts,
		promoteBackoff:  cfg.PromoteBackoff,
		driftThreshold:  cfg.DriftThreshold,
		suppressWindow:  cfg.SuppressWindow,
	}

	if s.queueLimit <= 0 {
		s.queueLimit = 100
	}
	if s.promoteAttempts <= 0 {
		s.promoteAttempts = 3
	}
	if s.promoteBackoff <= 0 {
		s.promoteBackoff = 25 * time.Millisecond
	}
	if s.driftThreshold <= 0 {
		s.driftThreshold = time.Second
	}
	if s.suppressWindow <= 0 {
		s.suppressWindow = 500 * time.Millisecond
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}

func (s service) checkRoomExists(ctx context.Context, roomId string) error {
	exists, err := s.roomRepo.IsRoomExists(ctx, roomId)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRoomNotFound
	}

	return nil
}
