// internal/node/manager.go
package node

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/domain"
)

// manager owns the single session. Only the session goroutine calls
// ensure and close; connected may be called from anywhere.
type manager struct {
	settings Settings
	dial     DialFunc
	log      *zap.Logger
	obs      Observer

	sess  Session
	bound domain.Target

	live atomic.Pointer[boundSession]
}

type boundSession struct {
	s Session
}

// ensure returns a session bound to the current target, replacing
// the existing one when the target changed or the link died.
func (m *manager) ensure(ctx context.Context) (Session, bool) {
	target, ok := m.settings.Target()
	if !ok {
		m.close()
		return nil, false
	}

	if m.sess != nil && m.bound == target && m.sess.Connected() {
		return m.sess, true
	}

	m.close()

	s, err := m.dial(ctx, target)
	if err != nil {
		m.log.Info("node: connect failed", zap.String("target", target.String()), zap.Error(err))
		return nil, false
	}
	if !s.Connected() {
		_ = s.Close()
		return nil, false
	}

	m.sess = s
	m.bound = target
	m.live.Store(&boundSession{s: s})
	m.obs.ObserveReconnect()
	m.log.Info("node: connected", zap.String("target", target.String()))

	return s, true
}

// close drops the current session. Close errors are not actionable.
func (m *manager) close() {
	if m.sess == nil {
		return
	}
	if err := m.sess.Close(); err != nil {
		m.log.Debug("node: close failed", zap.String("target", m.bound.String()), zap.Error(err))
	}
	m.sess = nil
	m.bound = domain.Target{}
	m.live.Store(nil)
}

func (m *manager) connected() bool {
	b := m.live.Load()
	return b != nil && b.s.Connected()
}
