// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package delegatevm is a ledger of accounts whose holders pledge and redeem
// votes for delegate candidates. The VM applies blocks of delegate vote txs
// and serves the resulting ledger over JSON-RPC.
package delegatevm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/utils/json"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/delegatevm/config"
	"github.com/luxfi/delegatevm/genesis"
	"github.com/luxfi/delegatevm/metrics"
	"github.com/luxfi/delegatevm/state"
	"github.com/luxfi/delegatevm/txs"
	"github.com/luxfi/delegatevm/txs/executor"
)

const (
	Name    = "delegatevm"
	Version = "v1.0.0"
)

var (
	errAlreadyInitialized = errors.New("vm already initialized")
	errNotRunning         = errors.New("vm is not running")
	errStaleHeight        = errors.New("block height must exceed the last applied height")
)

// TxResult is the outcome of one tx of an applied block.
type TxResult struct {
	TxID     ids.ID          `json:"txID"`
	Accepted bool            `json:"accepted"`
	Reason   string          `json:"reason,omitempty"`
	Error    string          `json:"error,omitempty"`
	Receipts []state.Receipt `json:"receipts,omitempty"`
}

type VM struct {
	lock sync.RWMutex

	log     log.Logger
	config  *config.Config
	genesis *genesis.Genesis
	state   state.State
	backend *executor.Backend
	metrics metrics.Metrics
	status  State
}

// Initialize loads the ledger stored in [db]. An empty database is populated
// from [genesisBytes] first. A nil [registerer] disables metrics.
func (vm *VM) Initialize(
	_ context.Context,
	db database.Database,
	genesisBytes []byte,
	configBytes []byte,
	registerer prometheus.Registerer,
) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.status != Unknown {
		return errAlreadyInitialized
	}
	if vm.log == nil {
		vm.log = log.NewNoOpLogger()
	}
	vm.log.Info("initializing delegatevm",
		log.String("version", Version),
	)

	cfg, err := config.GetConfig(configBytes)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	vm.config = cfg

	vm.metrics = metrics.Noop
	if registerer != nil {
		vm.metrics, err = metrics.New(registerer)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	vm.genesis, err = genesis.Parse(genesisBytes)
	if err != nil {
		return err
	}

	vm.state = state.New(db, cfg.AccountCacheSize, vm.log)
	vm.backend = executor.NewBackend(cfg, vm.metrics, vm.log)

	if err := vm.initGenesis(); err != nil {
		vm.state.Abort()
		return err
	}

	height, err := vm.state.GetHeight()
	if err != nil {
		return err
	}
	vm.status = NormalOp
	vm.log.Info("initialized delegatevm",
		log.Uint64("height", height),
	)
	return nil
}

func (vm *VM) initGenesis() error {
	initialized, err := vm.state.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}

	accounts, err := vm.genesis.Apply(vm.state, vm.config.BaseCoinSymbol, vm.config.MaxBaseCoinSupply)
	if err != nil {
		return fmt.Errorf("failed to initialize genesis state: %w", err)
	}
	if err := vm.state.SetInitialized(); err != nil {
		return err
	}
	if err := vm.state.Commit(); err != nil {
		return err
	}
	vm.log.Info("applied genesis",
		log.Int("numAccounts", len(accounts)),
	)
	return nil
}

// ApplyBlock applies [blockTxs] in order at [height]. Each tx either takes
// effect as a whole or is dropped with its reason recorded in the result.
// The block is persisted once every tx was processed.
func (vm *VM) ApplyBlock(ctx context.Context, height uint64, blockTxs []*txs.Tx) ([]TxResult, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.status != NormalOp {
		return nil, errNotRunning
	}

	lastHeight, err := vm.state.GetHeight()
	if err != nil {
		return nil, err
	}
	if height <= lastHeight {
		return nil, fmt.Errorf("%w: %d <= %d", errStaleHeight, height, lastHeight)
	}

	results := make([]TxResult, len(blockTxs))
	numAccepted := 0
	for i, tx := range blockTxs {
		if err := ctx.Err(); err != nil {
			vm.state.Abort()
			return nil, err
		}

		result := &results[i]
		if tx != nil {
			result.TxID = tx.ID()
		}

		receipts, err := executor.ApplyTx(vm.backend, vm.state, height, i, tx)
		if err != nil {
			result.Reason, _ = executor.ReasonCode(err)
			result.Error = err.Error()
			continue
		}
		result.Accepted = true
		result.Receipts = receipts
		numAccepted++
	}

	if err := vm.state.SetHeight(height); err != nil {
		vm.state.Abort()
		return nil, err
	}
	if err := vm.state.Commit(); err != nil {
		vm.state.Abort()
		return nil, err
	}

	vm.metrics.MarkBlockApplied(height)
	vm.log.Info("applied block",
		log.Uint64("height", height),
		log.Int("numTxs", len(blockTxs)),
		log.Int("numAccepted", numAccepted),
	)
	return results, nil
}

// VerifyTx checks [tx] against the current ledger as if it were included in
// the next block. The ledger is left untouched.
func (vm *VM) VerifyTx(tx *txs.Tx) error {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.status != NormalOp {
		return errNotRunning
	}

	height, err := vm.state.GetHeight()
	if err != nil {
		return err
	}
	diff, err := state.NewDiffOn(vm.state)
	if err != nil {
		return err
	}
	defer diff.Abort()

	return executor.VerifyDelegateVoteTx(vm.backend, diff, height+1, tx)
}

func (vm *VM) Height() (uint64, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.status != NormalOp {
		return 0, errNotRunning
	}
	return vm.state.GetHeight()
}

func (vm *VM) GetAccount(uid txs.UserID) (*state.Account, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.status != NormalOp {
		return nil, errNotRunning
	}
	return state.GetAccountByUserID(vm.state, uid)
}

// GetCandidateVotes returns the vote set cast by [voter].
func (vm *VM) GetCandidateVotes(voter txs.UserID) (state.VoteSet, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.status != NormalOp {
		return state.VoteSet{}, errNotRunning
	}
	keyID, err := state.GetKeyID(vm.state, voter)
	if err != nil {
		return state.VoteSet{}, err
	}
	return vm.state.GetDelegateVotes(keyID)
}

// GetDelegates returns up to [limit] candidates ranked by received votes.
func (vm *VM) GetDelegates(limit int) ([]state.Delegate, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.status != NormalOp {
		return nil, errNotRunning
	}
	return vm.state.GetTopDelegates(limit)
}

func (vm *VM) GetTxReceipts(txID ids.ID) ([]state.Receipt, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.status != NormalOp {
		return nil, errNotRunning
	}
	return vm.state.GetTxReceipts(txID)
}

func (vm *VM) Config() *config.Config {
	return vm.config
}

func (vm *VM) Status() State {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	return vm.status
}

func (vm *VM) Shutdown(context.Context) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.status != NormalOp {
		return nil
	}
	vm.status = Stopped
	return vm.state.Close()
}

func (*VM) Version(context.Context) (string, error) {
	return Version, nil
}

func (vm *VM) CreateHandlers(context.Context) (map[string]http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	return map[string]http.Handler{
		"": server,
	}, server.RegisterService(&Service{vm: vm}, Name)
}

func (vm *VM) HealthCheck(context.Context) (interface{}, error) {
	height, err := vm.Height()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status": vm.Status().String(),
		"height": height,
	}, nil
}
