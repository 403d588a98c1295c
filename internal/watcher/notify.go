package watcher

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/journalwatch/internal/journal"
)

// dirNotifier turns filesystem events on journal files into wake-ups for the
// loop, so new lines are picked up before the poll interval elapses. Polling
// stays authoritative: a missed or unavailable notification only costs
// latency.
type dirNotifier struct {
	fsw  *fsnotify.Watcher
	wake chan struct{}
	done chan struct{}
}

// newDirNotifier watches dir. When fsnotify is unavailable it returns a
// notifier whose channel never fires.
func newDirNotifier(dir string, log *logrus.Entry) *dirNotifier {
	n := &dirNotifier{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Debug("fsnotify unavailable, polling only")
		close(n.done)
		return n
	}
	if err := fsw.Add(dir); err != nil {
		log.WithError(err).Debug("cannot watch journal directory, polling only")
		fsw.Close()
		close(n.done)
		return n
	}
	n.fsw = fsw

	go n.run(log)
	return n
}

func (n *dirNotifier) run(log *logrus.Entry) {
	defer close(n.done)
	for {
		select {
		case event, ok := <-n.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !journal.IsJournalName(filepath.Base(event.Name)) {
				continue
			}
			select {
			case n.wake <- struct{}{}:
			default:
			}
		case err, ok := <-n.fsw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Debug("fsnotify error")
		}
	}
}

// C fires at most once per burst of journal changes.
func (n *dirNotifier) C() <-chan struct{} {
	if n == nil {
		return nil
	}
	return n.wake
}

// Close stops watching and waits for the event goroutine to exit.
func (n *dirNotifier) Close() {
	if n == nil || n.fsw == nil {
		return
	}
	n.fsw.Close()
	<-n.done
}
