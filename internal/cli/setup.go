package cli

import (
	"github.com/charmbracelet/log"

	"github.com/razonbilstro/nucleo/internal/config"
	"github.com/razonbilstro/nucleo/internal/dispatch"
	"github.com/razonbilstro/nucleo/internal/history"
	"github.com/razonbilstro/nucleo/internal/journal"
	"github.com/razonbilstro/nucleo/internal/policy"
	"github.com/razonbilstro/nucleo/internal/session"
	"github.com/razonbilstro/nucleo/internal/utils"
)

// deps bundles the wired collaborators for one invocation.
type deps struct {
	cfg        config.Config
	store      *policy.Store
	journal    *journal.Journal
	mirror     *history.DB
	dispatcher *dispatch.Dispatcher
	logger     *log.Logger
}

// close releases the history mirror connection.
func (d *deps) close() {
	if d.mirror != nil {
		_ = d.mirror.Close()
	}
}

// setup loads config and wires the dispatcher with its collaborators.
// A broken history mirror degrades to journal-only recording with a
// warning; the journal itself is required.
func setup() (*deps, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigPath: flagConfig})
	if err != nil {
		return nil, err
	}

	logger := utils.InitDispatchLogger(cfg.General.LogLevel)

	store := policy.NewStore(cfg.Policy.Safe, cfg.Policy.Dangerous, cfg.Policy.Backgroundable)
	logger.Debug("policy loaded",
		"safe", store.SafeCount(),
		"dangerous", store.DangerousCount(),
		"backgroundable", store.BackgroundableCount())

	jnl, err := journal.Open(config.JournalPath(cfg))
	if err != nil {
		return nil, err
	}

	var mirror *history.DB
	if cfg.History.MirrorEnabled {
		mirror, err = history.Open(config.HistoryDBPath(cfg))
		if err != nil {
			logger.Warn("history mirror unavailable", "err", err)
			mirror = nil
		}
	}

	recorder := newRecorderChain(logger, jnl, mirror)

	d := dispatch.New(
		store,
		nil, // terminal confirmer
		session.NewLauncher(),
		recorder,
		dispatch.Config{
			TimeoutSecs: cfg.General.TimeoutSecs,
			Shell:       cfg.General.Shell,
		},
		logger,
	)

	return &deps{
		cfg:        cfg,
		store:      store,
		journal:    jnl,
		mirror:     mirror,
		dispatcher: d,
		logger:     logger,
	}, nil
}

// rebuildDispatcher re-wires the dispatcher after a config override (for
// example a per-invocation timeout flag).
func rebuildDispatcher(d *deps) *dispatch.Dispatcher {
	return dispatch.New(
		d.store,
		nil,
		session.NewLauncher(),
		newRecorderChain(d.logger, d.journal, d.mirror),
		dispatch.Config{
			TimeoutSecs: d.cfg.General.TimeoutSecs,
			Shell:       d.cfg.General.Shell,
		},
		d.logger,
	)
}

// recorderChain appends to the journal first (canonical), then mirrors to
// sqlite. The journal error propagates so the dispatcher can warn; mirror
// errors are only warned here.
type recorderChain struct {
	logger  *log.Logger
	primary dispatch.Recorder
	mirror  dispatch.Recorder
}

func newRecorderChain(logger *log.Logger, primary *journal.Journal, mirror *history.DB) *recorderChain {
	rc := &recorderChain{logger: logger, primary: primary}
	if mirror != nil {
		rc.mirror = mirror
	}
	return rc
}

// Append implements dispatch.Recorder.
func (rc *recorderChain) Append(rec journal.Record) error {
	err := rc.primary.Append(rec)
	if rc.mirror != nil {
		if merr := rc.mirror.Append(rec); merr != nil {
			rc.logger.Warn("history mirror append failed", "err", merr)
		}
	}
	return err
}
