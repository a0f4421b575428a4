package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/n0rdy/queuewatch/broker"
	"github.com/n0rdy/queuewatch/common"
	"github.com/n0rdy/queuewatch/configs"
	"github.com/n0rdy/queuewatch/jobs/refresh"
	"github.com/n0rdy/queuewatch/metrics"
	"github.com/n0rdy/queuewatch/queues"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Live
)

func (cs ConnectionState) String() string {
	switch cs {
	case Connecting:
		return "connecting"
	case Live:
		return "live"
	default:
		return "disconnected"
	}
}

type QueuesFetcher interface {
	FetchQueues(ctx context.Context, address string) (*queues.Batch, error)
}

// AddressStore persists the last server address that was connected to successfully.
type AddressStore interface {
	GetAddress(ctx context.Context) (string, bool, error)
	SaveAddress(ctx context.Context, address string) error
}

// Notification is a user-visible connect failure that stays until dismissed or superseded.
type Notification struct {
	Id       string
	Kind     string
	Message  string
	RaisedAt time.Time
}

// View is the committed state handed to renderers. Batch is shared and must not be mutated.
type View struct {
	State           ConnectionState
	Address         string
	Batch           *queues.Batch
	Notification    *Notification
	RefreshInterval time.Duration
}

// ConnectionService owns the connection state machine:
// Disconnected -> Connecting -> Live, with a background refresh job running exactly while Live.
//
// Every fetch takes a sequence number; a result is applied only if no other fetch,
// address edit or teardown happened since it was issued.
type ConnectionService struct {
	fetcher        QueuesFetcher
	store          AddressStore
	metricsService metrics.Service
	clock          clockwork.Clock
	appConfigs     *configs.AppConfigs

	mu           sync.Mutex
	persistMu    sync.Mutex
	state        ConnectionState
	address      string
	batch        *queues.Batch
	notification *Notification
	seq          uint64
	refreshJob   *refresh.Job
	connectSeq   uint64 // seq of the latest applied connect
	closed       bool
}

func NewConnectionService(
	fetcher QueuesFetcher,
	store AddressStore,
	metricsService metrics.Service,
	clock clockwork.Clock,
	appConfigs *configs.AppConfigs,
) *ConnectionService {
	cs := &ConnectionService{
		fetcher:        fetcher,
		store:          store,
		metricsService: metricsService,
		clock:          clock,
		appConfigs:     appConfigs,
		state:          Disconnected,
		address:        appConfigs.Polling.DefaultAddress,
	}
	metricsService.SetConnectionState(Disconnected.String())
	return cs
}

// LoadPersistedAddress sets the target address from the store, falling back to the configured default.
// It never fetches.
func (cs *ConnectionService) LoadPersistedAddress(ctx context.Context) error {
	address, found, err := cs.store.GetAddress(ctx)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err != nil || !found {
		cs.address = cs.appConfigs.Polling.DefaultAddress
	} else {
		cs.address = address
	}

	if err != nil {
		return fmt.Errorf("load persisted address: %w", err)
	}
	return nil
}

// Connect is the user-initiated fetch. The state is Connecting before the request is sent.
// On failure the previous batch is kept on display and a notification is raised.
func (cs *ConnectionService) Connect(ctx context.Context, address string) error {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return common.ErrClosed
	}
	cs.address = address
	seq := cs.nextSeqLocked()
	cs.setStateLocked(Connecting)
	cs.mu.Unlock()

	log.Info().Str("address", address).Msg("connecting to broker")

	start := cs.clock.Now()
	batch, err := cs.fetcher.FetchQueues(ctx, address)
	cs.metricsService.ObserveFetchDuration(common.ConnectFetchKind, cs.clock.Since(start))

	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		cs.metricsService.IncFetchesTotal(common.ConnectFetchKind, common.DiscardedFetchOutcome)
		return common.ErrClosed
	}
	if seq != cs.seq {
		cs.mu.Unlock()
		cs.metricsService.IncFetchesTotal(common.ConnectFetchKind, common.DiscardedFetchOutcome)
		log.Debug().Str("address", address).Msg("connect result discarded, superseded by a newer request")
		return common.ErrFetchSuperseded
	}

	if err != nil {
		cs.notification = cs.newNotification(err)
		cs.setStateLocked(Disconnected)
		cs.mu.Unlock()

		cs.metricsService.IncFetchesTotal(common.ConnectFetchKind, broker.KindOf(err))
		log.Error().Err(err).Str("address", address).Msg("failed to connect to broker")
		return fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
	}

	cs.applyBatchLocked(batch)
	cs.notification = nil
	cs.connectSeq = seq
	cs.setStateLocked(Live)
	cs.mu.Unlock()

	cs.metricsService.IncFetchesTotal(common.ConnectFetchKind, common.SuccessFetchOutcome)
	cs.persistAddress(ctx, address, seq)
	return nil
}

// Refresh is the silent background fetch. It only runs while Live, and a failure leaves
// both the state and the last known batch untouched.
func (cs *ConnectionService) Refresh(ctx context.Context) error {
	return cs.refresh(ctx, nil)
}

func (cs *ConnectionService) refresh(ctx context.Context, job *refresh.Job) error {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return common.ErrClosed
	}
	// a tick from a disarmed job must not fetch, even if the service went Live again meanwhile
	if cs.state != Live || (job != nil && job != cs.refreshJob) {
		cs.mu.Unlock()
		return common.ErrNotLive
	}
	seq := cs.nextSeqLocked()
	address := cs.address
	cs.mu.Unlock()

	start := cs.clock.Now()
	batch, err := cs.fetcher.FetchQueues(ctx, address)
	cs.metricsService.ObserveFetchDuration(common.RefreshFetchKind, cs.clock.Since(start))

	cs.mu.Lock()
	if cs.closed || seq != cs.seq || cs.state != Live {
		cs.mu.Unlock()
		cs.metricsService.IncFetchesTotal(common.RefreshFetchKind, common.DiscardedFetchOutcome)
		return common.ErrFetchSuperseded
	}
	if err != nil {
		cs.mu.Unlock()
		cs.metricsService.IncFetchesTotal(common.RefreshFetchKind, broker.KindOf(err))
		log.Warn().Err(err).Str("address", address).Msg("background refresh failed, keeping the last known queues")
		return fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
	}

	cs.applyBatchLocked(batch)
	cs.mu.Unlock()

	cs.metricsService.IncFetchesTotal(common.RefreshFetchKind, common.SuccessFetchOutcome)
	return nil
}

// SetAddress replaces the target address. Any state other than Disconnected is left,
// which stops the refresh job and invalidates fetches in flight.
func (cs *ConnectionService) SetAddress(address string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.closed {
		return common.ErrClosed
	}
	cs.address = address
	cs.nextSeqLocked()
	cs.setStateLocked(Disconnected)
	return nil
}

func (cs *ConnectionService) DismissNotification(id string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.notification == nil || cs.notification.Id != id {
		return false
	}
	cs.notification = nil
	return true
}

func (cs *ConnectionService) State() ConnectionState {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state
}

func (cs *ConnectionService) View() View {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var notification *Notification
	if cs.notification != nil {
		n := *cs.notification
		notification = &n
	}

	return View{
		State:           cs.state,
		Address:         cs.address,
		Batch:           cs.batch,
		Notification:    notification,
		RefreshInterval: cs.appConfigs.RefreshInterval(),
	}
}

// Close stops the refresh job and waits for it and for an in-flight address write to finish.
// Results of fetches still in flight are discarded when they arrive.
func (cs *ConnectionService) Close() error {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return nil
	}
	cs.closed = true
	cs.nextSeqLocked()
	job := cs.refreshJob
	cs.disarmLocked()
	cs.mu.Unlock()

	if job != nil {
		<-job.Done()
	}

	// wait for a store write that passed its check before the close
	cs.persistMu.Lock()
	cs.persistMu.Unlock()
	return nil
}

func (cs *ConnectionService) nextSeqLocked() uint64 {
	cs.seq++
	return cs.seq
}

// setStateLocked is the only place the state changes, so that the refresh job
// is armed exactly on entering Live and disarmed exactly on leaving it.
func (cs *ConnectionService) setStateLocked(next ConnectionState) {
	prev := cs.state
	if prev == next {
		return
	}
	cs.state = next

	if prev == Live {
		cs.disarmLocked()
	}
	if next == Live {
		cs.armLocked()
	}

	cs.metricsService.SetConnectionState(next.String())
	log.Info().Str("from", prev.String()).Str("to", next.String()).Msg("connection state changed")
}

func (cs *ConnectionService) armLocked() {
	cs.refreshJob = refresh.NewJob(cs.clock, cs.appConfigs.RefreshInterval(), func(ctx context.Context, job *refresh.Job) {
		// failures are logged and counted inside
		_ = cs.refresh(ctx, job)
	})
}

func (cs *ConnectionService) disarmLocked() {
	if cs.refreshJob == nil {
		return
	}
	cs.refreshJob.Close()
	cs.refreshJob = nil
}

func (cs *ConnectionService) applyBatchLocked(batch *queues.Batch) {
	cs.batch = batch

	cs.metricsService.ResetQueues()
	for _, s := range batch.Queues {
		cs.metricsService.SetQueueDepth(s.Name, s.Pending)
		cs.metricsService.SetQueueConsumers(s.Name, s.Consumers)
		cs.metricsService.SetQueueProcessed(s.Name, s.Processed)
		cs.metricsService.SetQueueCritical(s.Name, queues.Classify(s) == queues.Critical)
	}
}

func (cs *ConnectionService) newNotification(err error) *Notification {
	id, uuidErr := uuid.NewV7()
	if uuidErr != nil {
		id = uuid.New()
	}

	return &Notification{
		Id:       id.String(),
		Kind:     broker.KindOf(err),
		Message:  err.Error(),
		RaisedAt: cs.clock.Now(),
	}
}

// persistAddress runs outside the state lock. Writes are serialized, and a write is skipped
// once a newer connect was applied or the service was closed, so the store never goes back
// to an older address. A failed write is logged and does not affect the connection.
func (cs *ConnectionService) persistAddress(ctx context.Context, address string, seq uint64) {
	cs.persistMu.Lock()
	defer cs.persistMu.Unlock()

	cs.mu.Lock()
	stale := cs.closed || seq != cs.connectSeq
	cs.mu.Unlock()
	if stale {
		log.Debug().Str("address", address).Msg("address write skipped, superseded by a newer connect")
		return
	}

	ctx, cancelFunc := context.WithTimeout(context.WithoutCancel(ctx), cs.appConfigs.PersistTimeout())
	defer cancelFunc()

	if err := cs.store.SaveAddress(ctx, address); err != nil {
		cs.metricsService.IncAddressPersistFailuresTotal()
		log.Error().Err(err).Str("address", address).Msg("failed to persist server address")
	}
}
