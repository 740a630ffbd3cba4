package tarindex

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarlite/src/errdefs"
	"github.com/aurora-is-near/tarlite/src/tarlite"
)

type lister struct {
	c     chan interface{}
	close int32
}

func (list *lister) closed() bool {
	return atomic.LoadInt32(&list.close) != 0
}

func (list *lister) exit() {
	atomic.StoreInt32(&list.close, 1)
}

func newLister() *lister {
	return &lister{
		c: make(chan interface{}, 10),
	}
}

func (list *lister) closeChan() {
	if list.c != nil {
		close(list.c)
		list.c = nil
	}
}

func (list *lister) addArchive(path string) error {
	r, err := tarlite.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
EntryLoop:
	for {
		if list.closed() {
			return nil
		}
		first := r.Offset()
		h, err := r.ReadHeader()
		if err != nil {
			if errors.Is(err, errdefs.ErrNullRecord) {
				break EntryLoop
			}
			return err
		}
		if err := r.Next(); err != nil {
			return err
		}
		list.c <- &ListEntry{
			Size:      h.Size,
			Name:      h.Name,
			Type:      entryType(h.Typeflag),
			FirstByte: first,
			LastByte:  r.Offset(),
		}
	}
	return nil
}

func listToChan(path string) (list *lister) {
	list = newLister()
	go func() {
		defer list.closeChan()
		if err := list.addArchive(path); err != nil {
			list.c <- err
		}
	}()
	return list
}

// ListToChan produces a flow of the archive's member entries sent to
// chan entries. The channel is closed after listing has been completed.
// The channel will contain either *ListEntry or error entries.
func ListToChan(path string) (entries chan interface{}) {
	list := listToChan(path)
	return list.c
}

// ListToFunc produces a flow of member entries that are given to
// entryFunc for processing.
func ListToFunc(path string, entryFunc func(*ListEntry) error) error {
	list := listToChan(path)
	for m := range list.c {
		switch n := m.(type) {
		case *ListEntry:
			if err := entryFunc(n); err != nil {
				list.exit()
				return err
			}
		case error:
			return n
		}
	}
	return nil
}
