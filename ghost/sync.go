package ghost

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SyncOpt configures a SyncEngine.
type SyncOpt func(*SyncEngine)

// WithSyncLogger specifies the logger for the SyncEngine.
func WithSyncLogger(logger *zap.Logger) SyncOpt {
	return func(s *SyncEngine) {
		s.logger = logger
	}
}

// SyncEngine copies owner records into ghost slots according to the plan of
// an EntrySpace.
type SyncEngine struct {
	logger *zap.Logger
	tr     Transport
}

// NewSyncEngine creates a SyncEngine exchanging records over tr. tr must be
// the transport of the entry spaces it synchronizes.
func NewSyncEngine(tr Transport, opts ...SyncOpt) *SyncEngine {
	s := &SyncEngine{
		logger: zap.NewNop(),
		tr:     tr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SynchronizeAll synchronizes every channel registered on space, in
// registration order. It is collective. A local failure on one channel does
// not stop the others, the first such error is returned.
func (s *SyncEngine) SynchronizeAll(ctx context.Context, space *EntrySpace) error {
	channels := space.Channels()
	for _, ch := range channels {
		if err := s.check(space, ch); err != nil {
			return err
		}
	}
	var failure error
	for i, ch := range channels {
		err := s.synchronize(ctx, space, ch)
		if err == nil {
			continue
		}
		err = fmt.Errorf("channel %d: %w", i, err)
		if errors.Is(err, errTransportFailed) {
			return err
		}
		// peers that did not fail go on with the next channel
		if failure == nil {
			failure = err
		}
	}
	return failure
}

// SynchronizeOne copies the owner records of ch into its ghost slots. It is
// collective unless ch does not need an update, in which case it returns
// without touching the transport. All ranks must agree on NeedsUpdate.
// ch does not have to be registered.
func (s *SyncEngine) SynchronizeOne(ctx context.Context, space *EntrySpace, ch DataChannel) error {
	if err := s.check(space, ch); err != nil {
		return err
	}
	return s.synchronize(ctx, space, ch)
}

// check validates usage locally, before any collective call.
func (s *SyncEngine) check(space *EntrySpace, ch DataChannel) error {
	switch {
	case s.tr.Rank() != space.Rank() || s.tr.Size() != space.Size():
		return fmt.Errorf("%w: engine rank %d of %d, space rank %d of %d",
			ErrTransport, s.tr.Rank(), s.tr.Size(), space.Rank(), space.Size())
	case !space.IsUpToDate():
		return ErrStalePlan
	case ch.Stride() != 1:
		return fmt.Errorf("%w: got %d", ErrStride, ch.Stride())
	case ch.RecordSize() <= 0:
		return fmt.Errorf("%w: got %d", ErrRecordSize, ch.RecordSize())
	case ch.Size() != space.Len():
		return fmt.Errorf("%w: channel has %d records, entry space %d", ErrChannelSize, ch.Size(), space.Len())
	}
	return nil
}

func (s *SyncEngine) synchronize(ctx context.Context, space *EntrySpace, ch DataChannel) error {
	if !ch.NeedsUpdate() {
		syncsSkipped.Inc()
		return nil
	}
	defer space.hold()()

	plan := space.Plan()
	size := ch.RecordSize()
	send := make([][]byte, len(plan.Send))
	sent := 0
	var packErr error
	for peer, lids := range plan.Send {
		if len(lids) == 0 {
			continue
		}
		buf := make([]byte, len(lids)*size)
		if err := ch.Pack(buf, lids); err != nil {
			packErr = fmt.Errorf("pack %d records for rank %d: %w", len(lids), peer, err)
			break
		}
		send[peer] = buf
		sent += len(buf)
	}
	if packErr != nil {
		// peers still wait for this rank, empty payloads fail their size checks
		clear(send)
	}
	recv, err := s.tr.AllToAll(ctx, send)
	switch {
	case err != nil:
		syncsFailed.Inc()
		return transportError("exchange records", err)
	case packErr != nil:
		syncsFailed.Inc()
		return packErr
	}
	if len(recv) != len(plan.Recv) {
		syncsFailed.Inc()
		return fmt.Errorf("%w: payloads from %d ranks, expected %d", ErrPayloadSize, len(recv), len(plan.Recv))
	}
	// no record is written unless every payload has the expected size
	for peer, lids := range plan.Recv {
		if len(recv[peer]) != len(lids)*size {
			syncsFailed.Inc()
			return fmt.Errorf("%w: %d bytes from rank %d, expected %d",
				ErrPayloadSize, len(recv[peer]), peer, len(lids)*size)
		}
	}
	received := 0
	for peer, lids := range plan.Recv {
		if len(lids) == 0 {
			continue
		}
		if err := ch.Unpack(recv[peer], lids); err != nil {
			syncsFailed.Inc()
			return fmt.Errorf("unpack %d records from rank %d: %w", len(lids), peer, err)
		}
		received += len(recv[peer])
	}
	syncsDone.Inc()
	syncBytesSent.Add(float64(sent))
	syncBytesReceived.Add(float64(received))
	s.logger.Debug("channel synchronized",
		zap.Int("sent_bytes", sent),
		zap.Int("received_bytes", received),
		zap.Int("peers", len(plan.Peers())),
	)
	return nil
}
