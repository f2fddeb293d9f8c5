// Package safe_close provides coordinated graceful shutdown for long-running goroutines
// Package safe_close 为长期运行的 goroutine 提供协同的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose coordinates a group of goroutines that must all observe a single
// close signal and report completion before the process exits.
// SafeClose 协调一组 goroutine：它们共享同一个关闭信号，并在进程退出前全部完成。
type SafeClose struct {
	mu        sync.Mutex
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeCh   chan struct{}
	doneCh    chan struct{}
	err       error
}

// NewSafeClose creates a SafeClose instance
// NewSafeClose 创建 SafeClose 实例
func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Attach runs f in a new goroutine. f must call done() when it has finished
// its shutdown work, and should start shutting down once closeSignal fires.
// Attach 在新 goroutine 中运行 f。f 完成关闭工作后必须调用 done()，
// 并在 closeSignal 触发后开始关闭流程。
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var doneOnce sync.Once
	done := func() {
		doneOnce.Do(s.wg.Done)
	}
	go f(done, s.closeCh)
}

// SendCloseSignal fires the close signal once; the first error wins.
// SendCloseSignal 发送关闭信号（只生效一次）；保留第一个错误。
func (s *SafeClose) SendCloseSignal(err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.closeCh)

		go func() {
			s.wg.Wait()
			close(s.doneCh)
		}()
	})
}

// CloseSignal returns the close signal channel
// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeCh
}

// WaitClosed blocks until every attached goroutine has called done, then
// returns the error passed to the first SendCloseSignal call.
// WaitClosed 阻塞直到所有附加的 goroutine 调用 done，
// 返回首次 SendCloseSignal 传入的错误。
func (s *SafeClose) WaitClosed() error {
	<-s.doneCh
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
