package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-room/internal/config"
	"github.com/rocketscienceinc/tictactoe-room/internal/entity"
	"github.com/rocketscienceinc/tictactoe-room/internal/repository"
	"github.com/rocketscienceinc/tictactoe-room/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-room/internal/service"
	"github.com/rocketscienceinc/tictactoe-room/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-room/transport/rest"
	"github.com/rocketscienceinc/tictactoe-room/transport/websocket"
)

// RunApp wires the room and serves it until ctx is cancelled or SIGINT/SIGTERM arrives.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mirror repository.StateRepository
	if conf.Redis.Enabled {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		mirror = repository.NewStateRepository(redisStorage.Connection, conf.Redis.ChannelPrefix)
		log.Info("mirroring room state to redis", "addr", conf.Redis.GetRedisAddr())
	}

	room := usecase.NewRoomManager(logger, entity.NewRoom(conf.RoomID), service.NewSessionRegistry(), mirror)
	defer room.Close()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := rest.New(logger, room).Start(ctx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		wsServer := websocket.New(logger, room, conf.SocketPath, conf.SendBuffer)
		if err := wsServer.Start(ctx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	err := group.Wait()
	log.Info("application stopped")

	return err
}

