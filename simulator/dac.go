package simulator

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sockerless/dbexport/dac"
)

// ExportJob is a simulated import/export request.
type ExportJob struct {
	ID        string
	Server    string
	Database  string
	User      string
	Password  string
	BlobURI   string
	Container string
	Blob      string
	Status    string
	Error     string
	Polls     int
	Queued    time.Time
	Modified  time.Time
}

// ExportCount returns the number of export requests received.
func (s *Server) ExportCount() int {
	return s.exports.Len()
}

func (s *Server) registerDAC() {
	s.mux.HandleFunc("POST /dac/Export", func(w http.ResponseWriter, r *http.Request) {
		var in dac.ExportInput
		if err := xml.NewDecoder(r.Body).Decode(&in); err != nil {
			DACFault(w, "InvalidRequest", "Failed to parse request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		ci := in.ConnectionInfo
		if ci.ServerName == "" || ci.DatabaseName == "" || in.BlobCredentials.URI == "" {
			DACFault(w, "InvalidRequest", "ServerName, DatabaseName and BlobCredentials.Uri are required.", http.StatusBadRequest)
			return
		}

		now := time.Now().UTC()
		job := ExportJob{
			ID:       uuid.NewString(),
			Server:   ci.ServerName,
			Database: ci.DatabaseName,
			User:     ci.UserName,
			Password: ci.Password,
			BlobURI:  in.BlobCredentials.URI,
			Status:   dac.StatusPending,
			Queued:   now,
			Modified: now,
		}
		if reason := s.rejectExport(&job, in.BlobCredentials.StorageAccessKey); reason != "" {
			job.Status = dac.StatusFailed
			job.Error = reason
		}
		s.exports.Put(job.ID, job)
		s.logger.Debug().Str("request_id", job.ID).Str("database", job.Database).Str("status", job.Status).Msg("export queued")

		WriteXML(w, http.StatusOK, dac.GUID{Value: job.ID})
	})

	s.mux.HandleFunc("GET /dac/Status", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id := q.Get("reqId")
		job, ok := s.exports.Get(id)
		if !ok {
			WriteXML(w, http.StatusOK, dac.StatusList{})
			return
		}
		if q.Get("servername") != job.Server || q.Get("username") != job.User || q.Get("password") != job.Password {
			DACFault(w, "Unauthorized", "The credentials do not match the request.", http.StatusUnauthorized)
			return
		}

		completed := false
		s.exports.Update(id, func(j *ExportJob) {
			if j.Status == dac.StatusCompleted || j.Status == dac.StatusFailed {
				return
			}
			j.Polls++
			j.Modified = time.Now().UTC()
			if j.Polls > s.config.CompleteAfter {
				j.Status = dac.StatusCompleted
				completed = true
			} else {
				j.Status = fmt.Sprintf("%s, Progress = %d%%", dac.StatusRunning, j.Polls*100/(s.config.CompleteAfter+1))
			}
		})
		job, _ = s.exports.Get(id)
		if completed {
			s.blobs.Put(blobKey(job.Container, job.Blob), Blob{
				Container: job.Container,
				Name:      job.Blob,
				Data:      bacpacPlaceholder(job),
				Modified:  job.Modified,
			})
		}

		WriteXML(w, http.StatusOK, dac.StatusList{Items: []dac.StatusInfo{statusInfo(job)}})
	})
}

// rejectExport returns the failure the real service would report
// asynchronously for this request, or "".
func (s *Server) rejectExport(job *ExportJob, storageKey string) string {
	if s.config.SQLUser != "" && (job.User != s.config.SQLUser || job.Password != s.config.SQLPassword) {
		return fmt.Sprintf("Login failed for user '%s'.", job.User)
	}
	u, err := url.Parse(job.BlobURI)
	if err != nil {
		return "Invalid blob URI: " + err.Error()
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 3)
	if len(parts) != 3 || parts[2] == "" {
		return fmt.Sprintf("Invalid blob URI %q.", job.BlobURI)
	}
	job.Container, job.Blob = parts[1], parts[2]
	if parts[0] != s.config.AccountName || storageKey != s.config.AccountKey {
		return "The remote server returned an error: (403) Forbidden."
	}
	if !s.ContainerExists(job.Container) {
		return "The remote server returned an error: (404) Not Found."
	}
	return ""
}

func statusInfo(j ExportJob) dac.StatusInfo {
	info := dac.StatusInfo{
		DatabaseName:     j.Database,
		ErrorMessage:     j.Error,
		LastModifiedTime: j.Modified.Format(time.RFC3339),
		QueuedTime:       j.Queued.Format(time.RFC3339),
		RequestID:        j.ID,
		RequestType:      "Export",
		ServerName:       j.Server,
		Status:           j.Status,
	}
	if j.Status == dac.StatusCompleted {
		info.BlobURI = j.BlobURI
	}
	return info
}

func bacpacPlaceholder(j ExportJob) []byte {
	return []byte(fmt.Sprintf("PK\x03\x04 bacpac server=%s database=%s exported=%s",
		j.Server, j.Database, j.Modified.Format(time.RFC3339)))
}
