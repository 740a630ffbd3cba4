// Package deliver serves tar archives over HTTP. A request for
// /<name>.tar streams the whole archive with Range support; adding
// ?file=<member> extracts a single member located by a linear scan of the
// archive's headers (tarlite.Reader.Find).
package deliver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/tarlite/src/tarlite"
)

const copyChunkSize = 32 * 1024

// TarHandler serves the archives found in ArchiveDirectory.
type TarHandler struct {
	ArchiveDirectory string
	Log              *logrus.Entry
}

func (handler *TarHandler) log() *logrus.Entry {
	if handler.Log != nil {
		return handler.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func (handler *TarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler.Handler(w, r)
}

// Handler implements the delivery flow. Unknown archives and members
// answer 404; backend failures mid-stream are logged and abandoned.
func (handler *TarHandler) Handler(w http.ResponseWriter, r *http.Request) {
	archiveName := path.Base(r.URL.Path)
	archivePath := path.Join(handler.ArchiveDirectory, archiveName)
	member := r.URL.Query().Get("file")
	log := handler.log().WithFields(logrus.Fields{
		"archive": archiveName,
		"member":  member,
	})
	if member == "" {
		handler.serveArchive(w, r, archivePath, log)
		return
	}
	handler.serveMember(w, r, archivePath, member, log)
}

func (handler *TarHandler) serveArchive(w http.ResponseWriter, r *http.Request, archivePath string, log *logrus.Entry) {
	f, err := os.Open(archivePath)
	if err != nil {
		log.WithError(err).Warn("archive not found")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer func() { _ = f.Close() }()
	stat, err := f.Stat()
	if err != nil {
		log.WithError(err).Error("stat failed")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Add("Content-Type", "application/tar")
	w.Header().Add("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(archivePath)))
	http.ServeContent(w, r, path.Base(archivePath), stat.ModTime(), f)
}

func (handler *TarHandler) serveMember(w http.ResponseWriter, r *http.Request, archivePath, member string, log *logrus.Entry) {
	archive, err := tarlite.Open(archivePath)
	if err != nil {
		log.WithError(err).Warn("archive not found")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer func() { _ = archive.Close() }()
	h, err := archive.Find(member)
	if err != nil {
		log.WithError(err).Warn("member not found")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Add("Content-Type", "application/octet-stream")
	w.Header().Add("Content-Length", strconv.FormatInt(h.Size, 10))
	w.Header().Add("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(member)))
	if r.Method == http.MethodHead {
		return
	}
	buf := make([]byte, copyChunkSize)
	for left := h.Size; left > 0; {
		n := int64(len(buf))
		if n > left {
			n = left
		}
		if _, err := archive.ReadData(buf[:n]); err != nil {
			log.WithError(err).Error("payload read failed")
			return
		}
		if _, err := w.Write(buf[:n]); err != nil {
			if err != io.ErrClosedPipe {
				log.WithError(err).Debug("client went away")
			}
			return
		}
		left -= n
	}
}
